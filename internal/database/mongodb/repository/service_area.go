package repository

import (
	"context"
	"fmt"
	"time"

	"meridian/internal/core"
	client "meridian/internal/database/client"
	"meridian/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ServiceAreaRepository struct {
	collection *mongo.Collection
}

func NewServiceAreaRepository(mongoClient *client.MongoClient) *ServiceAreaRepository {
	repository := &ServiceAreaRepository{
		collection: mongoClient.Client().Database(string(core.MongoDBMeridian)).Collection(string(core.MongoCollectionServiceAreas)),
	}
	_ = repository.EnsureIndexes(context.Background())
	return repository
}

func (repository *ServiceAreaRepository) EnsureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.ServiceAreaIndexes)
	return err
}

func (repository *ServiceAreaRepository) Create(contextValue context.Context, area *model.ServiceArea) (_ *model.ServiceArea, returnedError error) {
	nowUTC := time.Now().UTC()
	if area.ID.IsZero() {
		area.ID = primitive.NewObjectID()
	}
	area.CreatedAt = nowUTC
	area.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, area)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	area.ID = objectID
	return area, nil
}

func (repository *ServiceAreaRepository) GetByID(contextValue context.Context, areaIdentifier primitive.ObjectID) (_ *model.ServiceArea, returnedError error) {
	var area model.ServiceArea
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": areaIdentifier}).Decode(&area); returnedError != nil {
		return nil, returnedError
	}
	return &area, nil
}

func (repository *ServiceAreaRepository) GetByCode(contextValue context.Context, code string) (_ *model.ServiceArea, returnedError error) {
	var area model.ServiceArea
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"code": code}).Decode(&area); returnedError != nil {
		return nil, returnedError
	}
	return &area, nil
}

func (repository *ServiceAreaRepository) List(contextValue context.Context, listOptions core.ListOptions) (_ []*model.ServiceArea, returnedTotal int64, returnedError error) {
	filter := listOptions.Filter
	if filter == nil {
		filter = bson.M{}
	}
	total, countError := repository.collection.CountDocuments(contextValue, filter)
	if countError != nil {
		return nil, 0, countError
	}

	size := listOptions.Size
	if size <= 0 {
		size = 20
	}
	page := listOptions.Page
	if page < 1 {
		page = 1
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * size).
		SetLimit(size)

	areas, findError := repository.find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	return areas, total, nil
}

// FindContaining：邊界包含指定座標的啟用區域（$geoIntersects 走 2dsphere 索引）
func (repository *ServiceAreaRepository) FindContaining(contextValue context.Context, longitude, latitude float64) ([]*model.ServiceArea, error) {
	filter := bson.M{
		"status": core.StatusActive,
		"boundaries": bson.M{
			"$geoIntersects": bson.M{
				"$geometry": model.NewGeoPoint(longitude, latitude),
			},
		},
	}
	return repository.find(contextValue, filter, options.Find())
}

// FindNearby：以中心點距離排序，maxDistance 以公尺計
func (repository *ServiceAreaRepository) FindNearby(contextValue context.Context, longitude, latitude float64, maxDistanceMeters float64) ([]*model.ServiceArea, error) {
	nearClause := bson.M{"$geometry": model.NewGeoPoint(longitude, latitude)}
	if maxDistanceMeters > 0 {
		nearClause["$maxDistance"] = maxDistanceMeters
	}
	filter := bson.M{
		"status": core.StatusActive,
		"center": bson.M{"$nearSphere": nearClause},
	}
	return repository.find(contextValue, filter, options.Find())
}

// FindOverlapping：與指定多邊形相交的其他啟用區域（重疊為提示性質，不擋寫入）
func (repository *ServiceAreaRepository) FindOverlapping(contextValue context.Context, boundaries model.GeoPolygon, excludeIdentifier primitive.ObjectID) ([]*model.ServiceArea, error) {
	filter := bson.M{
		"status": core.StatusActive,
		"boundaries": bson.M{
			"$geoIntersects": bson.M{"$geometry": boundaries},
		},
	}
	if !excludeIdentifier.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeIdentifier}
	}
	return repository.find(contextValue, filter, options.Find())
}

// CountByBranch：分店刪除前的依賴檢查
func (repository *ServiceAreaRepository) CountByBranch(contextValue context.Context, branchIdentifier primitive.ObjectID) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"branches.branchId": branchIdentifier})
}

func (repository *ServiceAreaRepository) UpdateByID(contextValue context.Context, areaIdentifier primitive.ObjectID, setFields bson.M) (_ int64, returnedError error) {
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": areaIdentifier}, withUpdatedAt(bson.M{"$set": setFields}))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

func (repository *ServiceAreaRepository) UpdateStatus(contextValue context.Context, areaIdentifier primitive.ObjectID, change model.StatusChange) (_ int64, returnedError error) {
	update := bson.M{
		"$set":  bson.M{"status": change.Status, "updatedBy": change.ChangedBy},
		"$push": bson.M{"statusHistory": change},
	}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": areaIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// ClearPrimaryBranches：指派新的主要分店前先取消既有主要標記
func (repository *ServiceAreaRepository) ClearPrimaryBranches(contextValue context.Context, areaIdentifier primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"branches.$[assignment].isPrimary": false}}
	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{bson.M{"assignment.isPrimary": true}},
	}
	_, err := repository.collection.UpdateOne(
		contextValue,
		bson.M{"_id": areaIdentifier},
		withUpdatedAt(update),
		options.Update().SetArrayFilters(arrayFilters),
	)
	return err
}

// PushBranchAssignment：加入分店指派（服務層先確認不重複）
func (repository *ServiceAreaRepository) PushBranchAssignment(contextValue context.Context, areaIdentifier primitive.ObjectID, assignment model.BranchAssignment) (_ int64, returnedError error) {
	update := bson.M{"$push": bson.M{"branches": assignment}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": areaIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// PullBranchAssignment：移除分店指派
func (repository *ServiceAreaRepository) PullBranchAssignment(contextValue context.Context, areaIdentifier, branchIdentifier primitive.ObjectID) (_ int64, returnedError error) {
	update := bson.M{"$pull": bson.M{"branches": bson.M{"branchId": branchIdentifier}}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": areaIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.ModifiedCount, nil
}

// UpdatePricing：整塊覆寫計價設定
func (repository *ServiceAreaRepository) UpdatePricing(contextValue context.Context, areaIdentifier primitive.ObjectID, pricing model.Pricing, updatedBy primitive.ObjectID) (_ int64, returnedError error) {
	update := bson.M{"$set": bson.M{"pricing": pricing, "updatedBy": updatedBy}}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": areaIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

func (repository *ServiceAreaRepository) DeleteByID(contextValue context.Context, areaIdentifier primitive.ObjectID) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": areaIdentifier})
	return returnedError
}

// ListActive：夜間重疊掃描用，整批撈出啟用中的區域
func (repository *ServiceAreaRepository) ListActive(contextValue context.Context) ([]*model.ServiceArea, error) {
	return repository.find(contextValue, bson.M{"status": core.StatusActive}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

// ListAll：匯出用，整批撈出所有區域
func (repository *ServiceAreaRepository) ListAll(contextValue context.Context) ([]*model.ServiceArea, error) {
	return repository.find(contextValue, bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

func (repository *ServiceAreaRepository) find(contextValue context.Context, filter bson.M, findOptions *options.FindOptions) ([]*model.ServiceArea, error) {
	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var results []*model.ServiceArea
	if decodeError := cursor.All(contextValue, &results); decodeError != nil {
		return nil, decodeError
	}
	return results, nil
}
