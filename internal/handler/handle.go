package handler

import (
	"strconv"

	"meridian/internal/middleware"
	cErr "meridian/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProviderSet Provider对象集合
var ProviderSet = wire.NewSet(
	NewBranchHandler,
	NewDivisionHandler,
	NewPositionHandler,
	NewServiceAreaHandler,
	NewImportExportHandler,
	NewHealthHandler,
)

// actorFromContext 由 auth middleware 驗好的 claims 取出操作者 ID
func actorFromContext(c *gin.Context) (primitive.ObjectID, error) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return primitive.NilObjectID, cErr.Unauthorized("missing auth context")
	}
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, cErr.InvalidToken("user id in token is not a valid id")
	}
	return actorID, nil
}

func getInt64Query(c *gin.Context, key string, defaultVal int64) int64 {
	if v := c.Query(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloatQuery(c *gin.Context, key string) (float64, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
