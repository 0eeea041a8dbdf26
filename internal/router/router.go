package router

import (
	"net/http"

	docs "meridian/cmd/docs"
	"meridian/config"
	"meridian/internal/middleware"
	"meridian/internal/pkg/response"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewHealthRouter,
	NewBranchRouter,
	NewDivisionRouter,
	NewPositionRouter,
	NewServiceAreaRouter,
)

// 透過依賴注入將
func NewRouter(
	config *config.Configuration,
	traceEntry *middleware.TraceEntry,
	recovery *middleware.Recovery,
	cors *middleware.Cors,
	logger *middleware.Logger,
	responseMiddleware *middleware.Response,
	auth *middleware.Auth,
	healthRouter *HealthRouter,
	branchRouter *BranchRouter,
	divisionRouter *DivisionRouter,
	positionRouter *PositionRouter,
	serviceAreaRouter *ServiceAreaRouter,
) *gin.Engine {

	switch config.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(traceEntry.Handler())
	router.Use(logger.LoggerHandler())
	router.Use(cors.CorsHandler())
	router.Use(recovery.ErrorHandler())
	router.Use(responseMiddleware.FormatHandler())
	router.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Response{
			Code:        0,
			Data:        "ok",
			Message:     "success",
			Description: "service is alive",
		})
		c.Abort()
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.App.SwaggerEnabled {
		router.GET("/swagger/*any", func(c *gin.Context) {
			docs.SwaggerInfo.Host = c.Request.Host

			if config.App.Env == "production" {
				docs.SwaggerInfo.Schemes = []string{"https"}
				docs.SwaggerInfo.BasePath = "/api/v1"
			}
		}, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	healthRouter.RegisterHealthRoutes(router)

	// 業務路由都掛在 /api/v1 之下，進入前先過 JWT
	api := router.Group("/api/v1", auth.Handler())
	branchRouter.Register(api)
	divisionRouter.Register(api)
	positionRouter.Register(api)
	serviceAreaRouter.Register(api)

	pprof.Register(router)
	return router
}
