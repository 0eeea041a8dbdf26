package repository

import (
	"context"
	"fmt"
	"time"

	"meridian/internal/core"
	client "meridian/internal/database/client"
	"meridian/internal/database/mongodb/model"
	"meridian/internal/hierarchy"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BranchRepository struct {
	collection *mongo.Collection
}

func NewBranchRepository(mongoClient *client.MongoClient) *BranchRepository {
	repository := &BranchRepository{
		collection: mongoClient.Client().Database(string(core.MongoDBMeridian)).Collection(string(core.MongoCollectionBranches)),
	}
	// 啟動時建立常用索引（冪等、存在即跳過）
	_ = repository.EnsureIndexes(context.Background())
	return repository
}

func (repository *BranchRepository) EnsureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.BranchIndexes)
	return err
}

// Create：單文件插入
func (repository *BranchRepository) Create(contextValue context.Context, branch *model.Branch) (_ *model.Branch, returnedError error) {
	nowUTC := time.Now().UTC()
	if branch.ID.IsZero() {
		branch.ID = primitive.NewObjectID()
	}
	branch.CreatedAt = nowUTC
	branch.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, branch)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	branch.ID = objectID
	return branch, nil
}

func (repository *BranchRepository) GetByID(contextValue context.Context, branchIdentifier primitive.ObjectID) (_ *model.Branch, returnedError error) {
	var branch model.Branch
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": branchIdentifier}).Decode(&branch); returnedError != nil {
		return nil, returnedError
	}
	return &branch, nil
}

func (repository *BranchRepository) GetByCode(contextValue context.Context, code string) (_ *model.Branch, returnedError error) {
	var branch model.Branch
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"code": code}).Decode(&branch); returnedError != nil {
		return nil, returnedError
	}
	return &branch, nil
}

// GetNode 階層計算用的輕量讀取
func (repository *BranchRepository) GetNode(contextValue context.Context, branchIdentifier primitive.ObjectID) (*hierarchy.Node, error) {
	branch, err := repository.GetByID(contextValue, branchIdentifier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &hierarchy.Node{ID: branch.ID, ParentID: branch.ParentID, Path: branch.Path, Level: branch.Level}, nil
}

// ListChildren：直接下層（parentId 相等）
func (repository *BranchRepository) ListChildren(contextValue context.Context, parentIdentifier primitive.ObjectID) ([]*model.Branch, error) {
	return repository.find(contextValue, bson.M{"parentId": parentIdentifier}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

// ListDescendants：整棵子樹（path 前綴 + 分隔符，避免純字串前綴誤判）
func (repository *BranchRepository) ListDescendants(contextValue context.Context, path string) ([]*model.Branch, error) {
	filter := bson.M{"path": hierarchy.DescendantRegex(path)}
	return repository.find(contextValue, filter, options.Find().SetSort(bson.D{{Key: "path", Value: 1}}))
}

// GetManyByIDs 依呼叫端給的順序回傳（祖先鏈查詢用）
func (repository *BranchRepository) GetManyByIDs(contextValue context.Context, identifiers []primitive.ObjectID) ([]*model.Branch, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	found, err := repository.find(contextValue, bson.M{"_id": bson.M{"$in": identifiers}}, options.Find())
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*model.Branch, len(found))
	for _, branch := range found {
		byID[branch.ID] = branch
	}
	ordered := make([]*model.Branch, 0, len(identifiers))
	for _, id := range identifiers {
		if branch, ok := byID[id]; ok {
			ordered = append(ordered, branch)
		}
	}
	return ordered, nil
}

func (repository *BranchRepository) CountChildren(contextValue context.Context, parentIdentifier primitive.ObjectID) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"parentId": parentIdentifier})
}

// List：分頁查詢（page 為 1 起算），回傳總筆數供分頁
func (repository *BranchRepository) List(contextValue context.Context, listOptions core.ListOptions) (_ []*model.Branch, returnedTotal int64, returnedError error) {
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

	branches, findError := repository.find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	return branches, total, nil
}

// UpdateByID：將呼叫端給的欄位寫入 $set
func (repository *BranchRepository) UpdateByID(contextValue context.Context, branchIdentifier primitive.ObjectID, setFields bson.M) (_ int64, returnedError error) {
	update := bson.M{"$set": setFields}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": branchIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// UpdateStatus：狀態變更同時把 StatusChange 推進 statusHistory
func (repository *BranchRepository) UpdateStatus(contextValue context.Context, branchIdentifier primitive.ObjectID, change model.StatusChange) (_ int64, returnedError error) {
	update := bson.M{
		"$set":  bson.M{"status": change.Status, "updatedBy": change.ChangedBy},
		"$push": bson.M{"statusHistory": change},
	}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": branchIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

// RebasePaths：換父節點後重寫整棵子樹的 path/level
func (repository *BranchRepository) RebasePaths(contextValue context.Context, descendants []*model.Branch, oldPath, newPath string, levelDelta int) error {
	if len(descendants) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(descendants))
	for _, descendant := range descendants {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": descendant.ID}).
			SetUpdate(withUpdatedAt(bson.M{"$set": bson.M{
				"path":  hierarchy.Rebase(descendant.Path, oldPath, newPath),
				"level": descendant.Level + levelDelta,
			}})))
	}
	_, err := repository.collection.BulkWrite(contextValue, writes)
	return err
}

func (repository *BranchRepository) DeleteByID(contextValue context.Context, branchIdentifier primitive.ObjectID) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": branchIdentifier})
	return returnedError
}

func (repository *BranchRepository) find(contextValue context.Context, filter bson.M, findOptions *options.FindOptions) ([]*model.Branch, error) {
	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var results []*model.Branch
	if decodeError := cursor.All(contextValue, &results); decodeError != nil {
		return nil, decodeError
	}
	return results, nil
}
