package router

import (
	"meridian/internal/core"
	"meridian/internal/handler"
	"meridian/internal/middleware"

	"github.com/gin-gonic/gin"
)

type BranchRouter struct {
	branchHandler *handler.BranchHandler
	permission    *middleware.Permission
}

func NewBranchRouter(
	branchHandler *handler.BranchHandler,
	permission *middleware.Permission,
) *BranchRouter {
	return &BranchRouter{
		branchHandler: branchHandler,
		permission:    permission,
	}
}

func (br *BranchRouter) Register(api *gin.RouterGroup) {
	read := br.permission.Require(core.ResourceBranch, core.ActionRead, false)
	branches := api.Group("/branches")
	{
		branches.GET("", read, br.branchHandler.List)
		branches.POST("", br.permission.Require(core.ResourceBranch, core.ActionCreate, false), br.branchHandler.Create)
		branches.GET("/:id", read, br.branchHandler.Get)
		branches.PUT("/:id", br.permission.Require(core.ResourceBranch, core.ActionUpdate, true), br.branchHandler.Update)
		branches.PATCH("/:id/status", br.permission.Require(core.ResourceBranch, core.ActionUpdate, true), br.branchHandler.UpdateStatus)
		branches.DELETE("/:id", br.permission.Require(core.ResourceBranch, core.ActionDelete, true), br.branchHandler.Delete)
		branches.GET("/:id/children", read, br.branchHandler.Children)
		branches.GET("/:id/descendants", read, br.branchHandler.Descendants)
		branches.GET("/:id/ancestors", read, br.branchHandler.Ancestors)
		branches.GET("/:id/history", read, br.branchHandler.History)
	}
}
