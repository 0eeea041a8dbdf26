package core

import "go.mongodb.org/mongo-driver/bson"

// ─── Database Types ────────────────────────────────────────────────────────────

// DatabaseType defines the type of database
type DatabaseType string

const (
	Mongo DatabaseType = "mongo"
	Redis DatabaseType = "redis"
)

// Databases contains all supported database types
var Databases = []DatabaseType{Mongo, Redis}

type MongoDatabaseName string
type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	MongoDBMeridian MongoDatabaseName = "meridian"
)

// MongoDB collections；每個資源都有成對的 *_histories 異動紀錄集合
const (
	MongoCollectionBranches             MongoCollection = "branches"
	MongoCollectionBranchHistories      MongoCollection = "branch_histories"
	MongoCollectionDivisions            MongoCollection = "divisions"
	MongoCollectionDivisionHistories    MongoCollection = "division_histories"
	MongoCollectionPositions            MongoCollection = "positions"
	MongoCollectionPositionHistories    MongoCollection = "position_histories"
	MongoCollectionServiceAreas         MongoCollection = "service_areas"
	MongoCollectionServiceAreaHistories MongoCollection = "service_area_histories"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyPermission RedisKey = "perm"     // 權限判定快取
	RedisKeyServerName RedisKey = "meridian" // 伺服器名稱（key 前綴）
)

const (
	FluentdRequest  FluentdSubTag = "request_log"
	FluentdResponse FluentdSubTag = "response_log"
	FluentdMutation FluentdSubTag = "mutation_log"
)

type ListOptions struct {
	Filter bson.M `json:"filter,omitempty" bson:"filter,omitempty"`
	Page   int64  `json:"page,omitempty" bson:"page,omitempty"`
	Size   int64  `json:"size,omitempty" bson:"size,omitempty"`
}
