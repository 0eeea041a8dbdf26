package router

import (
	"meridian/internal/core"
	"meridian/internal/handler"
	"meridian/internal/middleware"

	"github.com/gin-gonic/gin"
)

type PositionRouter struct {
	positionHandler *handler.PositionHandler
	permission      *middleware.Permission
}

func NewPositionRouter(
	positionHandler *handler.PositionHandler,
	permission *middleware.Permission,
) *PositionRouter {
	return &PositionRouter{
		positionHandler: positionHandler,
		permission:      permission,
	}
}

func (pr *PositionRouter) Register(api *gin.RouterGroup) {
	read := pr.permission.Require(core.ResourcePosition, core.ActionRead, false)
	positions := api.Group("/positions")
	{
		positions.GET("", read, pr.positionHandler.List)
		positions.POST("", pr.permission.Require(core.ResourcePosition, core.ActionCreate, false), pr.positionHandler.Create)
		positions.GET("/:id", read, pr.positionHandler.Get)
		positions.PUT("/:id", pr.permission.Require(core.ResourcePosition, core.ActionUpdate, true), pr.positionHandler.Update)
		positions.PATCH("/:id/status", pr.permission.Require(core.ResourcePosition, core.ActionUpdate, true), pr.positionHandler.UpdateStatus)
		positions.DELETE("/:id", pr.permission.Require(core.ResourcePosition, core.ActionDelete, true), pr.positionHandler.Delete)
		positions.GET("/:id/children", read, pr.positionHandler.Children)
		positions.GET("/:id/descendants", read, pr.positionHandler.Descendants)
		positions.GET("/:id/ancestors", read, pr.positionHandler.Ancestors)
		positions.GET("/:id/history", read, pr.positionHandler.History)
	}
}
