package router

import (
	"meridian/internal/core"
	"meridian/internal/handler"
	"meridian/internal/middleware"

	"github.com/gin-gonic/gin"
)

type DivisionRouter struct {
	divisionHandler *handler.DivisionHandler
	permission      *middleware.Permission
}

func NewDivisionRouter(
	divisionHandler *handler.DivisionHandler,
	permission *middleware.Permission,
) *DivisionRouter {
	return &DivisionRouter{
		divisionHandler: divisionHandler,
		permission:      permission,
	}
}

func (dr *DivisionRouter) Register(api *gin.RouterGroup) {
	read := dr.permission.Require(core.ResourceDivision, core.ActionRead, false)
	divisions := api.Group("/divisions")
	{
		divisions.GET("", read, dr.divisionHandler.List)
		divisions.POST("", dr.permission.Require(core.ResourceDivision, core.ActionCreate, false), dr.divisionHandler.Create)
		divisions.GET("/:id", read, dr.divisionHandler.Get)
		divisions.PUT("/:id", dr.permission.Require(core.ResourceDivision, core.ActionUpdate, true), dr.divisionHandler.Update)
		divisions.PATCH("/:id/status", dr.permission.Require(core.ResourceDivision, core.ActionUpdate, true), dr.divisionHandler.UpdateStatus)
		divisions.DELETE("/:id", dr.permission.Require(core.ResourceDivision, core.ActionDelete, true), dr.divisionHandler.Delete)
		divisions.GET("/:id/children", read, dr.divisionHandler.Children)
		divisions.GET("/:id/descendants", read, dr.divisionHandler.Descendants)
		divisions.GET("/:id/ancestors", read, dr.divisionHandler.Ancestors)
		divisions.GET("/:id/history", read, dr.divisionHandler.History)
	}
}
