package handler

import (
	"meridian/internal/dto"
	"meridian/internal/pkg/response"
	"meridian/internal/service"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"github.com/gin-gonic/gin"
)

type PositionHandler struct {
	trace           *telemetry.Trace
	positionService *service.PositionService
}

func NewPositionHandler(trace *telemetry.Trace, positionService *service.PositionService) *PositionHandler {
	return &PositionHandler{trace: trace, positionService: positionService}
}

// Create 建立職位
// @Summary 建立職位
// @Tags Position
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreatePositionDto true "職位資訊"
// @Success 201 {object} dto.PositionResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/positions [post]
func (h *PositionHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	var req dto.CreatePositionDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.positionService.CreatePosition(ctx, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Get 取得單一職位
// @Summary 取得單一職位
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} dto.PositionResponseDto
// @Failure 404 {object} map[string]string
// @Router /api/v1/positions/{id} [get]
func (h *PositionHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.positionService.GetPositionByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// List 職位列表
// @Summary 職位列表
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param page query int false "頁碼"
// @Param size query int false "每頁筆數"
// @Param status query string false "狀態"
// @Param search query string false "代碼或名稱模糊搜尋"
// @Param divisionId query string false "所屬部門"
// @Success 200 {object} response.Paginated
// @Router /api/v1/positions [get]
func (h *PositionHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	page := getInt64Query(c, "page", 1)
	size := getInt64Query(c, "size", 20)
	items, total, err := h.positionService.ListPositions(ctx, c.Query("status"), c.Query("search"), c.Query("divisionId"), page, size)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, page, size))
}

// Update 更新職位
// @Summary 更新職位（含改隸回報對象）
// @Tags Position
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param body body dto.UpdatePositionDto true "更新資訊"
// @Success 200 {object} dto.PositionResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/positions/{id} [put]
func (h *PositionHandler) Update(c *gin.Context) {
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
	var req dto.UpdatePositionDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.positionService.UpdatePosition(ctx, id, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateStatus 更新職位狀態
// @Summary 更新職位狀態
// @Tags Position
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param body body dto.UpdateStatusDto true "狀態資訊"
// @Success 200 {object} map[string]string
// @Router /api/v1/positions/{id}/status [patch]
func (h *PositionHandler) UpdateStatus(c *gin.Context) {
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

	if err := h.positionService.UpdatePositionStatus(ctx, id, actorID, &req); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "position status updated successfully")
}

// Delete 刪除職位
// @Summary 刪除職位（有直屬回報職位時拒絕）
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/positions/{id} [delete]
func (h *PositionHandler) Delete(c *gin.Context) {
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
	if err := h.positionService.DeletePosition(ctx, id, actorID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "position deleted successfully")
}

// Children 直屬回報職位
// @Summary 直屬回報職位
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {array} dto.PositionResponseDto
// @Router /api/v1/positions/{id}/children [get]
func (h *PositionHandler) Children(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.positionService.GetPositionChildren(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Descendants 回報鏈子樹
// @Summary 回報鏈子樹（巢狀）
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {array} dto.PositionTreeDto
// @Router /api/v1/positions/{id}/descendants [get]
func (h *PositionHandler) Descendants(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.positionService.GetPositionDescendants(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Ancestors 回報鏈（由上而下）
// @Summary 回報鏈
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {array} dto.PositionResponseDto
// @Router /api/v1/positions/{id}/ancestors [get]
func (h *PositionHandler) Ancestors(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.positionService.GetPositionAncestors(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// History 異動紀錄
// @Summary 職位異動紀錄
// @Tags Position
// @Security BearerAuth
// @Produce json
// @Param id path string true "Position ID"
// @Param action query string false "動作過濾"
// @Param from query string false "起始時間 RFC3339"
// @Param to query string false "結束時間 RFC3339"
// @Param page query int false "頁碼"
// @Param limit query int false "每頁筆數"
// @Success 200 {object} response.Paginated
// @Router /api/v1/positions/{id}/history [get]
func (h *PositionHandler) History(c *gin.Context) {
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
	items, total, err := h.positionService.GetPositionHistory(ctx, id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, req.Page, req.Limit))
}
