package handler

import (
	"meridian/internal/dto"
	"meridian/internal/pkg/response"
	"meridian/internal/service"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	trace         *telemetry.Trace
	branchService *service.BranchService
}

func NewBranchHandler(trace *telemetry.Trace, branchService *service.BranchService) *BranchHandler {
	return &BranchHandler{trace: trace, branchService: branchService}
}

// Create 建立分支據點
// @Summary 建立分支據點
// @Tags Branch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateBranchDto true "據點資訊"
// @Success 201 {object} dto.BranchResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	actorID, err := actorFromContext(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	var req dto.CreateBranchDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.branchService.CreateBranch(ctx, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Get 取得單一據點
// @Summary 取得單一據點
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} dto.BranchResponseDto
// @Failure 404 {object} map[string]string
// @Router /api/v1/branches/{id} [get]
func (h *BranchHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.branchService.GetBranchByID(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// List 據點列表
// @Summary 據點列表
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param page query int false "頁碼"
// @Param size query int false "每頁筆數"
// @Param status query string false "狀態"
// @Param search query string false "代碼或名稱模糊搜尋"
// @Success 200 {object} response.Paginated
// @Router /api/v1/branches [get]
func (h *BranchHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	page := getInt64Query(c, "page", 1)
	size := getInt64Query(c, "size", 20)
	items, total, err := h.branchService.ListBranches(ctx, c.Query("status"), c.Query("search"), page, size)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, page, size))
}

// Update 更新據點
// @Summary 更新據點（含搬移上層）
// @Tags Branch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param body body dto.UpdateBranchDto true "更新資訊"
// @Success 200 {object} dto.BranchResponseDto
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
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
	var req dto.UpdateBranchDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.branchService.UpdateBranch(ctx, id, actorID, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateStatus 更新據點狀態
// @Summary 更新據點狀態
// @Tags Branch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param body body dto.UpdateStatusDto true "狀態資訊"
// @Success 200 {object} map[string]string
// @Router /api/v1/branches/{id}/status [patch]
func (h *BranchHandler) UpdateStatus(c *gin.Context) {
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

	if err := h.branchService.UpdateBranchStatus(ctx, id, actorID, &req); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "branch status updated successfully")
}

// Delete 刪除據點
// @Summary 刪除據點（有子據點、部門或服務區域時拒絕）
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/branches/{id} [delete]
func (h *BranchHandler) Delete(c *gin.Context) {
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
	if err := h.branchService.DeleteBranch(ctx, id, actorID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "branch deleted successfully")
}

// Children 直接子據點
// @Summary 直接子據點
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {array} dto.BranchResponseDto
// @Router /api/v1/branches/{id}/children [get]
func (h *BranchHandler) Children(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.branchService.GetBranchChildren(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Descendants 子樹展開
// @Summary 子樹展開（巢狀）
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {array} dto.BranchTreeDto
// @Router /api/v1/branches/{id}/descendants [get]
func (h *BranchHandler) Descendants(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.branchService.GetBranchDescendants(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Ancestors 祖先鏈（根到父節點）
// @Summary 祖先鏈
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {array} dto.BranchResponseDto
// @Router /api/v1/branches/{id}/ancestors [get]
func (h *BranchHandler) Ancestors(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	res, err := h.branchService.GetBranchAncestors(ctx, id)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// History 異動紀錄
// @Summary 據點異動紀錄
// @Tags Branch
// @Security BearerAuth
// @Produce json
// @Param id path string true "Branch ID"
// @Param action query string false "動作過濾"
// @Param from query string false "起始時間 RFC3339"
// @Param to query string false "結束時間 RFC3339"
// @Param page query int false "頁碼"
// @Param limit query int false "每頁筆數"
// @Success 200 {object} response.Paginated
// @Router /api/v1/branches/{id}/history [get]
func (h *BranchHandler) History(c *gin.Context) {
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
	items, total, err := h.branchService.GetBranchHistory(ctx, id, &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, response.NewPaginated(items, total, req.Page, req.Limit))
}
