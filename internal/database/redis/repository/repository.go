package repository

import (
	"github.com/google/wire"
)

// 統一管理所有 Redis repository
type RedisRepository struct {
	permissionCacheRepo *PermissionCacheRepository
}

// 建立 Redis repository 物件
func NewRedisRepository(
	permissionCacheRepo *PermissionCacheRepository,
) *RedisRepository {
	return &RedisRepository{
		permissionCacheRepo: permissionCacheRepo,
	}
}

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewPermissionCacheRepository,
	NewRedisRepository)
