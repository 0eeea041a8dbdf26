package repository

import (
	"context"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// 統一管理所有 MongoDB repository
type MongoDBRepository struct {
	branchRepo             *BranchRepository
	divisionRepo           *DivisionRepository
	positionRepo           *PositionRepository
	serviceAreaRepo        *ServiceAreaRepository
	branchHistoryRepo      *BranchHistoryRepository
	divisionHistoryRepo    *DivisionHistoryRepository
	positionHistoryRepo    *PositionHistoryRepository
	serviceAreaHistoryRepo *ServiceAreaHistoryRepository
}

// 建立 MongoDB repository 物件
func NewMongoDBRepository(
	branchRepo *BranchRepository,
	divisionRepo *DivisionRepository,
	positionRepo *PositionRepository,
	serviceAreaRepo *ServiceAreaRepository,
	branchHistoryRepo *BranchHistoryRepository,
	divisionHistoryRepo *DivisionHistoryRepository,
	positionHistoryRepo *PositionHistoryRepository,
	serviceAreaHistoryRepo *ServiceAreaHistoryRepository,
) *MongoDBRepository {
	return &MongoDBRepository{
		branchRepo:             branchRepo,
		divisionRepo:           divisionRepo,
		positionRepo:           positionRepo,
		serviceAreaRepo:        serviceAreaRepo,
		branchHistoryRepo:      branchHistoryRepo,
		divisionHistoryRepo:    divisionHistoryRepo,
		positionHistoryRepo:    positionHistoryRepo,
		serviceAreaHistoryRepo: serviceAreaHistoryRepo,
	}
}

// EnsureAllIndexes 重新套用所有集合的索引定義（ensure-indexes 子命令用）
func (repository *MongoDBRepository) EnsureAllIndexes(contextValue context.Context) error {
	indexed := []interface {
		EnsureIndexes(context.Context) error
	}{
		repository.branchRepo,
		repository.divisionRepo,
		repository.positionRepo,
		repository.serviceAreaRepo,
		repository.branchHistoryRepo,
		repository.divisionHistoryRepo,
		repository.positionHistoryRepo,
		repository.serviceAreaHistoryRepo,
	}
	for _, target := range indexed {
		if err := target.EnsureIndexes(contextValue); err != nil {
			return err
		}
	}
	return nil
}

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewBranchRepository,
	NewDivisionRepository,
	NewPositionRepository,
	NewServiceAreaRepository,
	NewBranchHistoryRepository,
	NewDivisionHistoryRepository,
	NewPositionHistoryRepository,
	NewServiceAreaHistoryRepository,
	NewMongoDBRepository)

func withUpdatedAt(update bson.M) bson.M {
	// 確保 $currentDate 存在
	currentDate, ok := update["$currentDate"].(bson.M)
	if !ok || currentDate == nil {
		currentDate = bson.M{}
	}
	currentDate["updatedAt"] = true
	update["$currentDate"] = currentDate
	return update
}

// IsDuplicateKey 唯一索引衝突（unique code 重複）
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
