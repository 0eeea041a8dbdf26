package handler

import (
	"meridian/internal/dto"
	"meridian/internal/pkg/response"
	"meridian/internal/service"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"github.com/gin-gonic/gin"
)

type DivisionHandler struct {
	trace           *telemetry.Trace
	divisionService *service.DivisionService
}

func NewDivisionHandler(trace *telemetry.Trace, divisionService *service.DivisionService) *DivisionHandler {
	return &DivisionHandler{trace: trace, divisionService: divisionService}
}

// Create 建立部門
// @Summary 建立部門
// @Tags Division
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateDivisionDto true "部門資訊"
// @Success 201 {object} dto.DivisionResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/divisions [post]
func (h *DivisionHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	var req dto.CreateDivisionDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.divisionService.CreateDivision(ctx, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Get 取得單一部門
// @Summary 取得單一部門
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param id path string true "Division ID"
// @Success 200 {object} dto.DivisionResponseDto
// @Failure 404 {object} map[string]string
// @Router /api/v1/divisions/{id} [get]
func (h *DivisionHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.divisionService.GetDivisionByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// List 部門列表
// @Summary 部門列表
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param page query int false "頁碼"
// @Param size query int false "每頁筆數"
// @Param status query string false "狀態"
// @Param search query string false "代碼或名稱模糊搜尋"
// @Param branchId query string false "所屬據點"
// @Success 200 {object} response.Paginated
// @Router /api/v1/divisions [get]
func (h *DivisionHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	page := getInt64Query(c, "page", 1)
	size := getInt64Query(c, "size", 20)
	items, total, err := h.divisionService.ListDivisions(ctx, c.Query("status"), c.Query("search"), c.Query("branchId"), page, size)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, page, size))
}

// Update 更新部門
// @Summary 更新部門（含搬移上層）
// @Tags Division
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Division ID"
// @Param body body dto.UpdateDivisionDto true "更新資訊"
// @Success 200 {object} dto.DivisionResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/divisions/{id} [put]
func (h *DivisionHandler) Update(c *gin.Context) {
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
	var req dto.UpdateDivisionDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.divisionService.UpdateDivision(ctx, id, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateStatus 更新部門狀態
// @Summary 更新部門狀態
// @Tags Division
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Division ID"
// @Param body body dto.UpdateStatusDto true "狀態資訊"
// @Success 200 {object} map[string]string
// @Router /api/v1/divisions/{id}/status [patch]
func (h *DivisionHandler) UpdateStatus(c *gin.Context) {
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

	if err := h.divisionService.UpdateDivisionStatus(ctx, id, actorID, &req); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "division status updated successfully")
}

// Delete 刪除部門
// @Summary 刪除部門（有子部門或職位時拒絕）
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param id path string true "Division ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/divisions/{id} [delete]
func (h *DivisionHandler) Delete(c *gin.Context) {
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
	if err := h.divisionService.DeleteDivision(ctx, id, actorID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "division deleted successfully")
}

// Children 直接子部門
// @Summary 直接子部門
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param id path string true "Division ID"
// @Success 200 {array} dto.DivisionResponseDto
// @Router /api/v1/divisions/{id}/children [get]
func (h *DivisionHandler) Children(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.divisionService.GetDivisionChildren(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Descendants 子樹展開
// @Summary 子樹展開（巢狀）
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param id path string true "Division ID"
// @Success 200 {array} dto.DivisionTreeDto
// @Router /api/v1/divisions/{id}/descendants [get]
func (h *DivisionHandler) Descendants(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.divisionService.GetDivisionDescendants(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Ancestors 祖先鏈
// @Summary 祖先鏈
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param id path string true "Division ID"
// @Success 200 {array} dto.DivisionResponseDto
// @Router /api/v1/divisions/{id}/ancestors [get]
func (h *DivisionHandler) Ancestors(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.divisionService.GetDivisionAncestors(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// History 異動紀錄
// @Summary 部門異動紀錄
// @Tags Division
// @Security BearerAuth
// @Produce json
// @Param id path string true "Division ID"
// @Param action query string false "動作過濾"
// @Param from query string false "起始時間 RFC3339"
// @Param to query string false "結束時間 RFC3339"
// @Param page query int false "頁碼"
// @Param limit query int false "每頁筆數"
// @Success 200 {object} response.Paginated
// @Router /api/v1/divisions/{id}/history [get]
func (h *DivisionHandler) History(c *gin.Context) {
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
	items, total, err := h.divisionService.GetDivisionHistory(ctx, id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, req.Page, req.Limit))
}
