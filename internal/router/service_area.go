package router

import (
	"meridian/internal/core"
	"meridian/internal/handler"
	"meridian/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ServiceAreaRouter struct {
	areaHandler         *handler.ServiceAreaHandler
	importExportHandler *handler.ImportExportHandler
	permission          *middleware.Permission
}

func NewServiceAreaRouter(
	areaHandler *handler.ServiceAreaHandler,
	importExportHandler *handler.ImportExportHandler,
	permission *middleware.Permission,
) *ServiceAreaRouter {
	return &ServiceAreaRouter{
		areaHandler:         areaHandler,
		importExportHandler: importExportHandler,
		permission:          permission,
	}
}

func (sr *ServiceAreaRouter) Register(api *gin.RouterGroup) {
	read := sr.permission.Require(core.ResourceServiceArea, core.ActionRead, false)
	update := sr.permission.Require(core.ResourceServiceArea, core.ActionUpdate, true)
	areas := api.Group("/service-areas")
	{
		areas.GET("", read, sr.areaHandler.List)
		areas.POST("", sr.permission.Require(core.ResourceServiceArea, core.ActionCreate, false), sr.areaHandler.Create)

		// 地理查詢與匯入匯出要排在 /:id 之前註冊，閱讀起來才不會誤會
		areas.GET("/point", read, sr.areaHandler.ByLocation)
		areas.GET("/location", read, sr.areaHandler.Nearby)
		areas.GET("/export", read, sr.importExportHandler.Export)
		areas.POST("/import", sr.permission.Require(core.ResourceServiceArea, core.ActionCreate, false), sr.importExportHandler.Import)

		areas.GET("/:id", read, sr.areaHandler.Get)
		areas.PUT("/:id", update, sr.areaHandler.Update)
		areas.PATCH("/:id/status", update, sr.areaHandler.UpdateStatus)
		areas.DELETE("/:id", sr.permission.Require(core.ResourceServiceArea, core.ActionDelete, true), sr.areaHandler.Delete)
		areas.POST("/:id/branches", update, sr.areaHandler.AssignBranch)
		areas.DELETE("/:id/branches/:branchId", update, sr.areaHandler.RemoveBranch)
		areas.PUT("/:id/pricing", update, sr.areaHandler.UpdatePricing)
		areas.GET("/:id/overlaps", read, sr.areaHandler.Overlaps)
		areas.GET("/:id/history", read, sr.areaHandler.History)
	}
}
