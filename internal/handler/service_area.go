package handler

import (
	"meridian/internal/dto"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/pkg/response"
	"meridian/internal/service"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"github.com/gin-gonic/gin"
)

type ServiceAreaHandler struct {
	trace       *telemetry.Trace
	areaService *service.ServiceAreaService
}

func NewServiceAreaHandler(trace *telemetry.Trace, areaService *service.ServiceAreaService) *ServiceAreaHandler {
	return &ServiceAreaHandler{trace: trace, areaService: areaService}
}

// Create 建立服務區域
// @Summary 建立服務區域（邊界或中心點+半徑擇一）
// @Tags ServiceArea
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateServiceAreaDto true "區域資訊"
// @Success 201 {object} dto.ServiceAreaResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/service-areas [post]
func (h *ServiceAreaHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	var req dto.CreateServiceAreaDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.areaService.CreateServiceArea(ctx, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Get 取得單一服務區域
// @Summary 取得單一服務區域
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service Area ID"
// @Success 200 {object} dto.ServiceAreaResponseDto
// @Failure 404 {object} map[string]string
// @Router /api/v1/service-areas/{id} [get]
func (h *ServiceAreaHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.areaService.GetServiceAreaByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// List 服務區域列表
// @Summary 服務區域列表
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param page query int false "頁碼"
// @Param size query int false "每頁筆數"
// @Param status query string false "狀態"
// @Param areaType query string false "區域類型"
// @Param search query string false "代碼或名稱模糊搜尋"
// @Success 200 {object} response.Paginated
// @Router /api/v1/service-areas [get]
func (h *ServiceAreaHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	page := getInt64Query(c, "page", 1)
	size := getInt64Query(c, "size", 20)
	items, total, err := h.areaService.ListServiceAreas(ctx, c.Query("status"), c.Query("search"), c.Query("areaType"), page, size)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, page, size))
}

// Update 更新服務區域
// @Summary 更新服務區域（幾何變更會重新計算重疊提示）
// @Tags ServiceArea
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service Area ID"
// @Param body body dto.UpdateServiceAreaDto true "更新資訊"
// @Success 200 {object} dto.ServiceAreaResponseDto
// @Failure 400 {object} map[string]string
// @Router /api/v1/service-areas/{id} [put]
func (h *ServiceAreaHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateServiceAreaDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.areaService.UpdateServiceArea(ctx, id, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateStatus 更新服務區域狀態
// @Summary 更新服務區域狀態
// @Tags ServiceArea
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service Area ID"
// @Param body body dto.UpdateStatusDto true "狀態資訊"
// @Success 200 {object} map[string]string
// @Router /api/v1/service-areas/{id}/status [patch]
func (h *ServiceAreaHandler) UpdateStatus(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateStatusDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.areaService.UpdateServiceAreaStatus(ctx, id, actorID, &req); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "service area status updated successfully")
}

// Delete 刪除服務區域
// @Summary 刪除服務區域
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service Area ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/service-areas/{id} [delete]
func (h *ServiceAreaHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	if err := h.areaService.DeleteServiceArea(ctx, id, actorID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "service area deleted successfully")
}

// AssignBranch 指派分支據點
// @Summary 指派分支據點（isPrimary 會取代原主要據點）
// @Tags ServiceArea
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service Area ID"
// @Param body body dto.AssignBranchDto true "指派資訊"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/service-areas/{id}/branches [post]
func (h *ServiceAreaHandler) AssignBranch(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.AssignBranchDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.areaService.AssignBranch(ctx, id, actorID, &req); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "branch assigned successfully")
}

// RemoveBranch 移除分支據點指派
// @Summary 移除分支據點指派
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service Area ID"
// @Param branchId path string true "Branch ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/service-areas/{id}/branches/{branchId} [delete]
func (h *ServiceAreaHandler) RemoveBranch(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	branchID, cause, respErr := validate.ParseObjectID(c, "branchId")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	if err := h.areaService.RemoveBranch(ctx, id, branchID, actorID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "branch assignment removed successfully")
}

// UpdatePricing 更新計價設定
// @Summary 更新計價設定（整塊覆寫）
// @Tags ServiceArea
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service Area ID"
// @Param body body dto.PricingDto true "計價設定"
// @Success 200 {object} map[string]string
// @Router /api/v1/service-areas/{id}/pricing [put]
func (h *ServiceAreaHandler) UpdatePricing(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.PricingDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.areaService.UpdatePricing(ctx, id, actorID, &req); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "service area pricing updated successfully")
}

// ByLocation 座標所屬區域
// @Summary 查詢包含指定座標的啟用區域
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param lon query number true "經度"
// @Param lat query number true "緯度"
// @Success 200 {array} dto.ContainingAreaDto
// @Failure 400 {object} map[string]string
// @Router /api/v1/service-areas/point [get]
func (h *ServiceAreaHandler) ByLocation(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	lon, okLon := getFloatQuery(c, "lon")
	lat, okLat := getFloatQuery(c, "lat")
	if !okLon || !okLat {
		cause := cErr.BadRequestParams("lon and lat query parameters are required")
		end(cause)
		response.AbortWithError(c, cause)
		return
	}
	res, err := h.areaService.FindByLocation(ctx, lon, lat)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Nearby 附近區域
// @Summary 查詢距離內的啟用區域（近到遠，附距離公里數）
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param lon query number true "經度"
// @Param lat query number true "緯度"
// @Param maxKm query number false "最大距離（公里），預設 10"
// @Success 200 {array} dto.NearbyAreaDto
// @Failure 400 {object} map[string]string
// @Router /api/v1/service-areas/location [get]
func (h *ServiceAreaHandler) Nearby(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	lon, okLon := getFloatQuery(c, "lon")
	lat, okLat := getFloatQuery(c, "lat")
	if !okLon || !okLat {
		cause := cErr.BadRequestParams("lon and lat query parameters are required")
		end(cause)
		response.AbortWithError(c, cause)
		return
	}
	maxKm, ok := getFloatQuery(c, "maxKm")
	if !ok || maxKm <= 0 {
		maxKm = 10
	}
	res, err := h.areaService.FindNearby(ctx, lon, lat, maxKm)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Overlaps 重疊區域
// @Summary 查詢與指定區域重疊的啟用區域
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service Area ID"
// @Success 200 {array} dto.OverlapDto
// @Router /api/v1/service-areas/{id}/overlaps [get]
func (h *ServiceAreaHandler) Overlaps(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.areaService.GetOverlaps(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// History 異動紀錄
// @Summary 服務區域異動紀錄
// @Tags ServiceArea
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service Area ID"
// @Param action query string false "動作過濾"
// @Param from query string false "起始時間 RFC3339"
// @Param to query string false "結束時間 RFC3339"
// @Param page query int false "頁碼"
// @Param limit query int false "每頁筆數"
// @Success 200 {object} response.Paginated
// @Router /api/v1/service-areas/{id}/history [get]
func (h *ServiceAreaHandler) History(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.HistoryQueryDto
	if err := c.ShouldBindQuery(&req); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	items, total, err := h.areaService.GetServiceAreaHistory(ctx, id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, req.Page, req.Limit))
}
