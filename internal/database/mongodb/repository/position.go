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

type PositionRepository struct {
	collection *mongo.Collection
}

func NewPositionRepository(mongoClient *client.MongoClient) *PositionRepository {
	repository := &PositionRepository{
		collection: mongoClient.Client().Database(string(core.MongoDBMeridian)).Collection(string(core.MongoCollectionPositions)),
	}
	_ = repository.EnsureIndexes(context.Background())
	return repository
}

func (repository *PositionRepository) EnsureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.PositionIndexes)
	return err
}

func (repository *PositionRepository) Create(contextValue context.Context, position *model.Position) (_ *model.Position, returnedError error) {
	nowUTC := time.Now().UTC()
	if position.ID.IsZero() {
		position.ID = primitive.NewObjectID()
	}
	position.CreatedAt = nowUTC
	position.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, position)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	position.ID = objectID
	return position, nil
}

func (repository *PositionRepository) GetByID(contextValue context.Context, positionIdentifier primitive.ObjectID) (_ *model.Position, returnedError error) {
	var position model.Position
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": positionIdentifier}).Decode(&position); returnedError != nil {
		return nil, returnedError
	}
	return &position, nil
}

func (repository *PositionRepository) GetByCode(contextValue context.Context, code string) (_ *model.Position, returnedError error) {
	var position model.Position
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"code": code}).Decode(&position); returnedError != nil {
		return nil, returnedError
	}
	return &position, nil
}

// GetNode：職位的階層父節點是匯報對象 reportingTo
func (repository *PositionRepository) GetNode(contextValue context.Context, positionIdentifier primitive.ObjectID) (*hierarchy.Node, error) {
	position, err := repository.GetByID(contextValue, positionIdentifier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &hierarchy.Node{ID: position.ID, ParentID: position.ReportingTo, Path: position.Path, Level: position.Level}, nil
}

// ListChildren：直接下屬
func (repository *PositionRepository) ListChildren(contextValue context.Context, reportingToIdentifier primitive.ObjectID) ([]*model.Position, error) {
	return repository.find(contextValue, bson.M{"reportingTo": reportingToIdentifier}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

func (repository *PositionRepository) ListDescendants(contextValue context.Context, path string) ([]*model.Position, error) {
	return repository.find(contextValue, bson.M{"path": hierarchy.DescendantRegex(path)}, options.Find().SetSort(bson.D{{Key: "path", Value: 1}}))
}

func (repository *PositionRepository) GetManyByIDs(contextValue context.Context, identifiers []primitive.ObjectID) ([]*model.Position, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	found, err := repository.find(contextValue, bson.M{"_id": bson.M{"$in": identifiers}}, options.Find())
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*model.Position, len(found))
	for _, position := range found {
		byID[position.ID] = position
	}
	ordered := make([]*model.Position, 0, len(identifiers))
	for _, id := range identifiers {
		if position, ok := byID[id]; ok {
			ordered = append(ordered, position)
		}
	}
	return ordered, nil
}

func (repository *PositionRepository) CountChildren(contextValue context.Context, reportingToIdentifier primitive.ObjectID) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"reportingTo": reportingToIdentifier})
}

// CountByDivision：部門刪除前的依賴檢查
func (repository *PositionRepository) CountByDivision(contextValue context.Context, divisionIdentifier primitive.ObjectID) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"divisionId": divisionIdentifier})
}

func (repository *PositionRepository) List(contextValue context.Context, listOptions core.ListOptions) (_ []*model.Position, returnedTotal int64, returnedError error) {
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

	positions, findError := repository.find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	return positions, total, nil
}

func (repository *PositionRepository) UpdateByID(contextValue context.Context, positionIdentifier primitive.ObjectID, setFields bson.M) (_ int64, returnedError error) {
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": positionIdentifier}, withUpdatedAt(bson.M{"$set": setFields}))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

func (repository *PositionRepository) UpdateStatus(contextValue context.Context, positionIdentifier primitive.ObjectID, change model.StatusChange) (_ int64, returnedError error) {
	update := bson.M{
		"$set":  bson.M{"status": change.Status, "updatedBy": change.ChangedBy},
		"$push": bson.M{"statusHistory": change},
	}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": positionIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

func (repository *PositionRepository) RebasePaths(contextValue context.Context, descendants []*model.Position, oldPath, newPath string, levelDelta int) error {
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

func (repository *PositionRepository) DeleteByID(contextValue context.Context, positionIdentifier primitive.ObjectID) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": positionIdentifier})
	return returnedError
}

func (repository *PositionRepository) find(contextValue context.Context, filter bson.M, findOptions *options.FindOptions) ([]*model.Position, error) {
	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var results []*model.Position
	if decodeError := cursor.All(contextValue, &results); decodeError != nil {
		return nil, decodeError
	}
	return results, nil
}
