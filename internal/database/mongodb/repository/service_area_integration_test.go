//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"meridian/internal/core"
	"meridian/internal/database/mongodb/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestServiceArea(code string) *model.ServiceArea {
	ring := [][]float64{
		{121.50, 25.00},
		{121.60, 25.00},
		{121.60, 25.10},
		{121.50, 25.10},
		{121.50, 25.00},
	}
	return &model.ServiceArea{
		Code:           code,
		Name:           "測試服務區域",
		Boundaries:     model.NewGeoPolygon(ring),
		Center:         model.NewGeoPoint(121.55, 25.05),
		CoverageRadius: 10,
		AreaType:       string(core.AreaTypeBoth),
		Status:         string(core.StatusActive),
		CreatedBy:      primitive.NewObjectID(),
	}
}

func uniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, primitive.NewObjectID().Hex())
}

func TestServiceAreaRepository_CreateDuplicateCode(t *testing.T) {
	mongoClient := setupTestMongo(t)
	areaRepository := NewServiceAreaRepository(mongoClient)

	contextValue, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	code := uniqueCode("dup")

	_, createError := areaRepository.Create(contextValue, newTestServiceArea(code))
	require.NoError(t, createError)

	_, duplicateError := areaRepository.Create(contextValue, newTestServiceArea(code))
	require.Error(t, duplicateError)
	assert.True(t, IsDuplicateKey(duplicateError), "second insert with the same code should hit the unique index")
}

func TestServiceAreaRepository_ClearPrimaryBranches(t *testing.T) {
	mongoClient := setupTestMongo(t)
	areaRepository := NewServiceAreaRepository(mongoClient)

	contextValue, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, createError := areaRepository.Create(contextValue, newTestServiceArea(uniqueCode("primary")))
	require.NoError(t, createError)

	actorID := primitive.NewObjectID()
	firstBranchID := primitive.NewObjectID()
	secondBranchID := primitive.NewObjectID()

	_, pushError := areaRepository.PushBranchAssignment(contextValue, created.ID, model.BranchAssignment{
		BranchID:   firstBranchID,
		IsPrimary:  true,
		AssignedBy: actorID,
		AssignedAt: time.Now().UTC(),
	})
	require.NoError(t, pushError)

	// 指派新的主要據點前先清掉舊旗標，區域內不得同時存在兩筆 isPrimary=true
	require.NoError(t, areaRepository.ClearPrimaryBranches(contextValue, created.ID))

	_, pushError = areaRepository.PushBranchAssignment(contextValue, created.ID, model.BranchAssignment{
		BranchID:   secondBranchID,
		IsPrimary:  true,
		AssignedBy: actorID,
		AssignedAt: time.Now().UTC(),
	})
	require.NoError(t, pushError)

	fetched, fetchError := areaRepository.GetByID(contextValue, created.ID)
	require.NoError(t, fetchError)
	require.Len(t, fetched.Branches, 2)

	primaryCount := 0
	for _, assignment := range fetched.Branches {
		if assignment.IsPrimary {
			primaryCount++
			assert.Equal(t, secondBranchID, assignment.BranchID)
		}
	}
	assert.Equal(t, 1, primaryCount)
}
