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

type DivisionRepository struct {
	collection *mongo.Collection
}

func NewDivisionRepository(mongoClient *client.MongoClient) *DivisionRepository {
	repository := &DivisionRepository{
		collection: mongoClient.Client().Database(string(core.MongoDBMeridian)).Collection(string(core.MongoCollectionDivisions)),
	}
	_ = repository.EnsureIndexes(context.Background())
	return repository
}

func (repository *DivisionRepository) EnsureIndexes(contextValue context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(contextValue, model.DivisionIndexes)
	return err
}

func (repository *DivisionRepository) Create(contextValue context.Context, division *model.Division) (_ *model.Division, returnedError error) {
	nowUTC := time.Now().UTC()
	if division.ID.IsZero() {
		division.ID = primitive.NewObjectID()
	}
	division.CreatedAt = nowUTC
	division.UpdatedAt = nowUTC

	insertResult, insertError := repository.collection.InsertOne(contextValue, division)
	if insertError != nil {
		return nil, insertError
	}
	objectID, ok := insertResult.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected InsertedID type: %T", insertResult.InsertedID)
	}
	division.ID = objectID
	return division, nil
}

func (repository *DivisionRepository) GetByID(contextValue context.Context, divisionIdentifier primitive.ObjectID) (_ *model.Division, returnedError error) {
	var division model.Division
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": divisionIdentifier}).Decode(&division); returnedError != nil {
		return nil, returnedError
	}
	return &division, nil
}

func (repository *DivisionRepository) GetByCode(contextValue context.Context, code string) (_ *model.Division, returnedError error) {
	var division model.Division
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"code": code}).Decode(&division); returnedError != nil {
		return nil, returnedError
	}
	return &division, nil
}

func (repository *DivisionRepository) GetNode(contextValue context.Context, divisionIdentifier primitive.ObjectID) (*hierarchy.Node, error) {
	division, err := repository.GetByID(contextValue, divisionIdentifier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &hierarchy.Node{ID: division.ID, ParentID: division.ParentID, Path: division.Path, Level: division.Level}, nil
}

func (repository *DivisionRepository) ListChildren(contextValue context.Context, parentIdentifier primitive.ObjectID) ([]*model.Division, error) {
	return repository.find(contextValue, bson.M{"parentId": parentIdentifier}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

func (repository *DivisionRepository) ListDescendants(contextValue context.Context, path string) ([]*model.Division, error) {
	return repository.find(contextValue, bson.M{"path": hierarchy.DescendantRegex(path)}, options.Find().SetSort(bson.D{{Key: "path", Value: 1}}))
}

func (repository *DivisionRepository) GetManyByIDs(contextValue context.Context, identifiers []primitive.ObjectID) ([]*model.Division, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	found, err := repository.find(contextValue, bson.M{"_id": bson.M{"$in": identifiers}}, options.Find())
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*model.Division, len(found))
	for _, division := range found {
		byID[division.ID] = division
	}
	ordered := make([]*model.Division, 0, len(identifiers))
	for _, id := range identifiers {
		if division, ok := byID[id]; ok {
			ordered = append(ordered, division)
		}
	}
	return ordered, nil
}

func (repository *DivisionRepository) CountChildren(contextValue context.Context, parentIdentifier primitive.ObjectID) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"parentId": parentIdentifier})
}

// CountByBranch：分店刪除前的依賴檢查
func (repository *DivisionRepository) CountByBranch(contextValue context.Context, branchIdentifier primitive.ObjectID) (int64, error) {
	return repository.collection.CountDocuments(contextValue, bson.M{"branchId": branchIdentifier})
}

func (repository *DivisionRepository) List(contextValue context.Context, listOptions core.ListOptions) (_ []*model.Division, returnedTotal int64, returnedError error) {
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

	divisions, findError := repository.find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, 0, findError
	}
	return divisions, total, nil
}

func (repository *DivisionRepository) UpdateByID(contextValue context.Context, divisionIdentifier primitive.ObjectID, setFields bson.M) (_ int64, returnedError error) {
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": divisionIdentifier}, withUpdatedAt(bson.M{"$set": setFields}))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

func (repository *DivisionRepository) UpdateStatus(contextValue context.Context, divisionIdentifier primitive.ObjectID, change model.StatusChange) (_ int64, returnedError error) {
	update := bson.M{
		"$set":  bson.M{"status": change.Status, "updatedBy": change.ChangedBy},
		"$push": bson.M{"statusHistory": change},
	}
	result, updateError := repository.collection.UpdateOne(contextValue, bson.M{"_id": divisionIdentifier}, withUpdatedAt(update))
	if updateError != nil {
		return 0, updateError
	}
	return result.MatchedCount, nil
}

func (repository *DivisionRepository) RebasePaths(contextValue context.Context, descendants []*model.Division, oldPath, newPath string, levelDelta int) error {
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

func (repository *DivisionRepository) DeleteByID(contextValue context.Context, divisionIdentifier primitive.ObjectID) (returnedError error) {
	_, returnedError = repository.collection.DeleteOne(contextValue, bson.M{"_id": divisionIdentifier})
	return returnedError
}

func (repository *DivisionRepository) find(contextValue context.Context, filter bson.M, findOptions *options.FindOptions) ([]*model.Division, error) {
	cursor, findError := repository.collection.Find(contextValue, filter, findOptions)
	if findError != nil {
		return nil, findError
	}
	defer cursor.Close(contextValue)

	var results []*model.Division
	if decodeError := cursor.All(contextValue, &results); decodeError != nil {
		return nil, decodeError
	}
	return results, nil
}
