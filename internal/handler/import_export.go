package handler

import (
	"io"
	"net/http"

	"meridian/internal/pkg/response"
	"meridian/internal/service"
	"meridian/internal/service/areafile"
	"meridian/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type ImportExportHandler struct {
	trace         *telemetry.Trace
	importService *service.ImportExportService
}

func NewImportExportHandler(trace *telemetry.Trace, importService *service.ImportExportService) *ImportExportHandler {
	return &ImportExportHandler{trace: trace, importService: importService}
}

// Import 匯入服務區域
// @Summary 匯入服務區域（GeoJSON/CSV/KML/KMZ，multipart 或 raw body）
// @Tags ServiceArea
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "匯入檔"
// @Param filename query string false "raw body 上傳時的檔名（決定格式）"
// @Success 200 {object} dto.ImportResultDto
// @Failure 400 {object} map[string]string
// @Router /api/v1/service-areas/import [post]
func (h *ImportExportHandler) Import(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	var body io.Reader
	filename := c.Query("filename")
	contentEncoding := c.GetHeader("Content-Encoding")

	if fileHeader, fileErr := c.FormFile("file"); fileErr == nil {
		opened, openErr := fileHeader.Open()
		if openErr != nil {
			end(openErr)
			response.AbortWithError(c, openErr)
			return
		}
		defer opened.Close()
		body = opened
		filename = fileHeader.Filename
		contentEncoding = "" // multipart 檔案內容不會套用傳輸壓縮
	} else {
		body = c.Request.Body
	}

	res, err := h.importService.ImportServiceAreas(ctx, actorID, filename, contentEncoding, body)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Export 匯出服務區域
// @Summary 匯出服務區域（format=geojson/csv/kml，zip 為三種格式打包）
// @Tags ServiceArea
// @Security BearerAuth
// @Produce application/octet-stream
// @Param format query string false "匯出格式，預設 geojson"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/service-areas/export [get]
func (h *ImportExportHandler) Export(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	format := c.DefaultQuery("format", string(areafile.FormatGeoJSON))

	var payload []byte
	var filename string
	var err error
	if format == "zip" {
		payload, filename, err = h.importService.ExportBundle(ctx)
	} else {
		payload, filename, err = h.importService.ExportServiceAreas(ctx, format)
	}
	if err != nil {
		response.AbortWithError(c, err)
		return
	}

	// 檔案下載不走統一 JSON 包裝
	c.Set("passthrough_raw", true)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, exportContentType(format), payload)
}

func exportContentType(format string) string {
	switch areafile.Format(format) {
	case areafile.FormatGeoJSON:
		return "application/geo+json"
	case areafile.FormatCSV:
		return "text/csv"
	case areafile.FormatKML:
		return "application/vnd.google-earth.kml+xml"
	default:
		return "application/zip"
	}
}
