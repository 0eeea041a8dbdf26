package repository

import (
	"context"
	"fmt"
	"time"

	"meridian/internal/core"
	client "meridian/internal/database/client"
	"meridian/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

type PermissionCacheRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewPermissionCacheRepository(trace *telemetry.Trace, client *client.RedisClient) *PermissionCacheRepository {
	return &PermissionCacheRepository{trace: trace, client: client.Client()}
}

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
)

// Get 讀取快取過的權限判定。
// found=false 代表沒有快取（含 Redis 故障），呼叫端需重新判定。
func (repository *PermissionCacheRepository) Get(
	contextValue context.Context,
	userIdentifier, resource, action, target string,
) (allowed bool, found bool, returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	redisKey := repository.buildKey(userIdentifier, resource, action, target)
	value, getError := repository.client.Get(contextValue, redisKey).Result()
	if getError == redis.Nil {
		return false, false, nil
	}
	if getError != nil {
		returnedError = getError
		return false, false, returnedError
	}

	traceMetadata := core.TracePermissionMeta{
		UserID:   userIdentifier,
		Resource: resource,
		Action:   action,
		Target:   target,
		Source:   "cache",
		Allowed:  value == decisionAllow,
	}
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return value == decisionAllow, true, nil
}

// Set 快取權限判定結果，允許與拒絕都快取
func (repository *PermissionCacheRepository) Set(
	contextValue context.Context,
	userIdentifier, resource, action, target string,
	allowed bool,
	timeToLive time.Duration,
) (returnedError error) {

	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	value := decisionDeny
	if allowed {
		value = decisionAllow
	}
	redisKey := repository.buildKey(userIdentifier, resource, action, target)
	returnedError = repository.client.Set(contextValue, redisKey, value, timeToLive).Err()
	return returnedError
}

// InvalidateUser 清掉單一使用者的所有判定（權限異動後呼叫）
func (repository *PermissionCacheRepository) InvalidateUser(
	contextValue context.Context,
	userIdentifier string,
) (returnedError error) {

	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	pattern := fmt.Sprintf("%s:%s:%s:*", core.RedisKeyServerName, core.RedisKeyPermission, userIdentifier)
	iterator := repository.client.Scan(contextValue, 0, pattern, 100).Iterator()
	for iterator.Next(contextValue) {
		if delError := repository.client.Del(contextValue, iterator.Val()).Err(); delError != nil {
			returnedError = delError
			return returnedError
		}
	}
	returnedError = iterator.Err()
	return returnedError
}

// buildKey：meridian:perm:{user}:{resource}:{action}[:{target}]
func (repository *PermissionCacheRepository) buildKey(userIdentifier, resource, action, target string) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%s", core.RedisKeyServerName, core.RedisKeyPermission, userIdentifier, resource, action)
	if target != "" {
		key += ":" + target
	}
	return key
}
