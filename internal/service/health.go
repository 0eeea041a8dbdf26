package service

import (
	"context"
	"sync/atomic"
	"time"

	client "meridian/internal/database/client"
)

type HealthService struct {
	live        atomic.Bool
	ready       atomic.Bool
	mongoClient *client.MongoClient
	redisClient *client.RedisClient
}

func NewHealthService(mongoClient *client.MongoClient, redisClient *client.RedisClient) *HealthService {
	s := &HealthService{mongoClient: mongoClient, redisClient: redisClient}
	s.live.Store(true)
	s.ready.Store(false) // 啟動完成後再打開
	return s
}

func (s *HealthService) SetReady(v bool) {
	s.ready.Store(v)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

// IsReady 啟動完成且兩個後端都 ping 得到才算 ready
func (s *HealthService) IsReady(ctx context.Context) bool {
	if !s.ready.Load() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.mongoClient.Client().Ping(ctx, nil); err != nil {
		return false
	}
	if err := s.redisClient.Client().Ping(ctx).Err(); err != nil {
		return false
	}
	return true
}
