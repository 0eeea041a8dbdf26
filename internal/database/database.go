package database

import (
	client "meridian/internal/database/client"
	fluentdRepo "meridian/internal/database/fluentd/repository"
	mongoRepo "meridian/internal/database/mongodb/repository"
	redisRepo "meridian/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
