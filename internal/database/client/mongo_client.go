package client

import (
	"context"
	"meridian/config"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoClient 連接 MongoDB
type MongoClient struct {
	client *mongo.Client
	logger *zap.Logger
}

func NewMongoClient(logger *zap.Logger, config *config.Configuration) (*MongoClient, func(), error) {
	mongoClient := &MongoClient{logger: logger}
	client, err := mongoClient.connectDB(config)
	if err != nil {
		logger.Error("failed to connect to MongoDB", zap.Error(err))
		return nil, nil, err
	}
	logger.Info("Connected to MongoDB")
	mongoClient.client = client

	cleanup := func() {
		logger.Info("closing the MongoDB resources")
		if err := mongoClient.Close(); err != nil {
			logger.Error("failed to close MongoDB client", zap.Error(err))
		}
	}

	return mongoClient, cleanup, nil
}

func (client *MongoClient) connectDB(config *config.Configuration) (*mongo.Client, error) {
	uri := buildMongoURI(config.MongoDB.URI, config.MongoDB.Options)
	return mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
}
func buildMongoURI(baseURI, optionStr string) string {
	if optionStr == "" {
		return baseURI
	}
	if strings.Contains(baseURI, "?") {
		return baseURI + "&" + optionStr
	}
	return baseURI + "?" + optionStr
}

// Close 關閉 MongoDB 連線
func (m *MongoClient) Close() error {
	return m.client.Disconnect(context.Background())
}

// Client 回傳 MongoDB 連線
func (m *MongoClient) Client() *mongo.Client {
	return m.client
}

// WithTransaction 在交易中執行 fn；單機部署不支援交易時降級為直接執行，
// 此時寫入不具原子性，僅保留順序。
func (m *MongoClient) WithTransaction(contextValue context.Context, fn func(sessionContext context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		if isTransactionUnsupported(err) {
			m.logger.Warn("transactions unsupported, falling back to sequential writes", zap.Error(err))
			return fn(contextValue)
		}
		return err
	}
	defer session.EndSession(contextValue)

	_, err = session.WithTransaction(contextValue, func(sessionContext mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessionContext)
	})
	if err != nil && isTransactionUnsupported(err) {
		m.logger.Warn("transactions unsupported, falling back to sequential writes", zap.Error(err))
		return fn(contextValue)
	}
	return err
}

// 單機 MongoDB 回報 IllegalOperation / Transaction numbers 相關錯誤
func isTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "Transaction numbers are only allowed") ||
		strings.Contains(message, "IllegalOperation") ||
		strings.Contains(message, "transactions are not supported")
}
