package middleware

import (
	"meridian/internal/core"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/pkg/response"
	"meridian/internal/service"
	"meridian/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Permission struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	permissionService *service.PermissionService
}

func NewPermission(
	logger *zap.Logger,
	trace *telemetry.Trace,
	permissionService *service.PermissionService,
) *Permission {
	return &Permission{
		logger:            logger,
		trace:             trace,
		permissionService: permissionService,
	}
}

// Require 指定資源與動作的授權檢查。withOwnership=true 時把路徑 :id
// 帶進去，讓建立者保有自己資料的寫入權。
func (middleware *Permission) Require(resource core.Resource, action core.Action, withOwnership bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanPermissionMiddleware))
		var cause error = nil

		claims := ClaimsFromContext(c)
		if claims == nil {
			middleware.trace.ApplyTraceAttributes(span, core.TracePermissionMeta{
				Resource: string(resource), Action: string(action), Status: "missing_claims",
			})
			cause = cErr.Unauthorized("missing auth context")
			response.AbortWithError(c, cause)
			end(cause)
			return
		}

		targetID := ""
		if withOwnership {
			targetID = c.Param("id")
		}
		if !middleware.permissionService.Check(ctx, claims, resource, action, targetID) {
			middleware.logger.Warn("[Permission Denied]",
				zap.String("userID", claims.UserID),
				zap.String("resource", string(resource)),
				zap.String("action", string(action)),
			)
			cause = cErr.Forbidden("permission denied")
			response.AbortWithError(c, cause)
			end(cause)
			return
		}

		end(nil)
		c.Next()
	}
}
