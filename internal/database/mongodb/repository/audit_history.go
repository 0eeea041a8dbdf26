package repository

import (
	"context"
	"time"

	"meridian/internal/core"
	client "meridian/internal/database/client"
	"meridian/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryQuery 異動紀錄查詢條件
type HistoryQuery struct {
	Action string
	From   *time.Time
	To     *time.Time
	Page   int64
	Limit  int64
}

// historyStore 每個資源各有一個 *_histories 集合，行為完全一致，
// 型別只是為了讓 wire 能分辨注入對象。
type historyStore struct {
	collection *mongo.Collection
}

func newHistoryStore(mongoClient *client.MongoClient, name core.MongoCollection) historyStore {
	store := historyStore{
		collection: mongoClient.Client().Database(string(core.MongoDBMeridian)).Collection(string(name)),
	}
	_ = store.EnsureIndexes(context.Background())
	return store
}

func (store *historyStore) EnsureIndexes(contextValue context.Context) error {
	_, err := store.collection.Indexes().CreateMany(contextValue, model.AuditHistoryIndexes)
	return err
}

// Append 寫入一筆異動紀錄；紀錄是 append-only，沒有更新/刪除路徑
func (store *historyStore) Append(contextValue context.Context, record *model.AuditHistory) (returnedError error) {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, returnedError = store.collection.InsertOne(contextValue, record)
	return returnedError
}

// Query 依 entityId 做新→舊分頁查詢，同時回傳總筆數
func (store *historyStore) Query(
	contextValue context.Context,
	entityIdentifier primitive.ObjectID,
	query HistoryQuery,
) (_ []*model.AuditHistory, returnedTotal int64, returnedError error) {

	filter := bson.M{"entityId": entityIdentifier}
	if query.Action != "" {
		filter["action"] = query.Action
	}
	if query.From != nil || query.To != nil {
		dateRange := bson.M{}
		if query.From != nil {
			dateRange["$gte"] = query.From.UTC()
		}
		if query.To != nil {
			dateRange["$lte"] = query.To.UTC()
		}
		filter["createdAt"] = dateRange
	}

	total, countError := store.collection.CountDocuments(contextValue, filter)
	if countError != nil {
		return nil, 0, countError
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, findError := store.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	defer cursor.Close(contextValue)

	var records []*model.AuditHistory
	if decodeError := cursor.All(contextValue, &records); decodeError != nil {
		return nil, 0, decodeError
	}
	return records, total, nil
}

type BranchHistoryRepository struct{ historyStore }

func NewBranchHistoryRepository(mongoClient *client.MongoClient) *BranchHistoryRepository {
	return &BranchHistoryRepository{newHistoryStore(mongoClient, core.MongoCollectionBranchHistories)}
}

type DivisionHistoryRepository struct{ historyStore }

func NewDivisionHistoryRepository(mongoClient *client.MongoClient) *DivisionHistoryRepository {
	return &DivisionHistoryRepository{newHistoryStore(mongoClient, core.MongoCollectionDivisionHistories)}
}

type PositionHistoryRepository struct{ historyStore }

func NewPositionHistoryRepository(mongoClient *client.MongoClient) *PositionHistoryRepository {
	return &PositionHistoryRepository{newHistoryStore(mongoClient, core.MongoCollectionPositionHistories)}
}

type ServiceAreaHistoryRepository struct{ historyStore }

func NewServiceAreaHistoryRepository(mongoClient *client.MongoClient) *ServiceAreaHistoryRepository {
	return &ServiceAreaHistoryRepository{newHistoryStore(mongoClient, core.MongoCollectionServiceAreaHistories)}
}
