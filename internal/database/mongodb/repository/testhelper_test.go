//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"meridian/config"
	client "meridian/internal/database/client"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error
)

// setupTestMongo 啟動共用的 MongoDB 容器（整個測試行程只起一次），
// 回傳連上它的 MongoClient；client 由 t.Cleanup 關閉，容器活到行程結束
func setupTestMongo(t *testing.T) *client.MongoClient {
	t.Helper()

	mongoOnce.Do(func() {
		mongoURI, mongoErr = startMongoContainer()
	})
	if mongoErr != nil {
		t.Fatalf("failed to setup test MongoDB: %v", mongoErr)
	}

	conf := &config.Configuration{}
	conf.MongoDB.URI = mongoURI

	mongoClient, cleanup, err := client.NewMongoClient(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("failed to create MongoClient: %v", err)
	}
	t.Cleanup(cleanup)

	return mongoClient
}

func startMongoContainer() (string, error) {
	contextValue, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	request := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForLog("Waiting for connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(contextValue, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(contextValue)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(contextValue, "27017")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("mongodb://%s:%s", host, port.Port()), nil
}
