package service

import (
	"net/http"
	"testing"

	"meridian/internal/database/mongodb/model"
	"meridian/internal/geo"
	cErr "meridian/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testRing = [][]float64{
	{121.50, 25.00},
	{121.60, 25.00},
	{121.60, 25.10},
	{121.50, 25.10},
	{121.50, 25.00},
}

func TestPlanGeometryUpdate_radiusOnlyKeepsExistingBoundaries(t *testing.T) {
	// 只改 coverageRadius 時，既有的明確多邊形必須原封不動
	plan, err := planGeometryUpdate(nil, nil, true, 25, testRing, []float64{121.55, 25.05})
	require.NoError(t, err)

	assert.False(t, plan.setBoundaries)
	assert.False(t, plan.setCenter)
}

func TestPlanGeometryUpdate_centerOnlyKeepsExistingBoundaries(t *testing.T) {
	plan, err := planGeometryUpdate(nil, []float64{121.80, 25.20}, false, 0, testRing, []float64{121.55, 25.05})
	require.NoError(t, err)

	assert.False(t, plan.setBoundaries)
	require.True(t, plan.setCenter)
	assert.Equal(t, []float64{121.80, 25.20}, plan.center.Coordinates)
}

func TestPlanGeometryUpdate_boundariesReplaceGeometry(t *testing.T) {
	newRing := [][]float64{
		{120.00, 24.00},
		{120.10, 24.00},
		{120.10, 24.10},
		{120.00, 24.00},
	}

	plan, err := planGeometryUpdate(newRing, nil, false, 0, testRing, []float64{121.55, 25.05})
	require.NoError(t, err)

	require.True(t, plan.setBoundaries)
	assert.Equal(t, newRing, plan.boundaries.OuterRing())
	require.True(t, plan.setCenter)
	assert.Len(t, plan.center.Coordinates, 2)
}

func TestPlanGeometryUpdate_regeneratesCircleWhenNoRingToPreserve(t *testing.T) {
	// 區域本來沒有邊界時，半徑更新才會以中心點重新生成圓形多邊形
	plan, err := planGeometryUpdate(nil, nil, true, 25, nil, []float64{121.55, 25.05})
	require.NoError(t, err)

	require.True(t, plan.setBoundaries)
	ring := plan.boundaries.OuterRing()
	assert.Len(t, ring, circlePolygonPoints+1)
	assert.True(t, geo.RingClosed(ring))
}

func TestPlanGeometryUpdate_invalidCenter(t *testing.T) {
	_, err := planGeometryUpdate(nil, []float64{200, 95}, false, 0, testRing, nil)
	require.Error(t, err)

	appErr := cErr.From(err)
	assert.Equal(t, http.StatusBadRequest, appErr.HttpCode())
	assert.Equal(t, cErr.INVALID_GEOMETRY, appErr.ErrorCode())
}

func newLocationTestArea(centerLon, centerLat, coverageRadius float64) *model.ServiceArea {
	return &model.ServiceArea{
		ID:             primitive.NewObjectID(),
		Code:           "north-01",
		Name:           "北區",
		Boundaries:     model.NewGeoPolygon(testRing),
		Center:         model.NewGeoPoint(centerLon, centerLat),
		CoverageRadius: coverageRadius,
		CreatedBy:      primitive.NewObjectID(),
	}
}

func TestContainingAreaDto_distanceAndCoverage(t *testing.T) {
	area := newLocationTestArea(121.55, 25.05, 10)

	// 查詢點即中心點
	atCenter := containingAreaDto(area, 121.55, 25.05)
	assert.InDelta(t, 0, atCenter.DistanceKm, 1e-9)
	assert.True(t, atCenter.WithinCoverage)

	// 約 0.1 度經度 ≈ 10.1 公里，超出 10 公里涵蓋半徑
	outside := containingAreaDto(area, 121.65, 25.05)
	expected := geo.Haversine(121.65, 25.05, 121.55, 25.05)
	assert.InDelta(t, expected, outside.DistanceKm, 1e-9)
	assert.Greater(t, outside.DistanceKm, 10.0)
	assert.False(t, outside.WithinCoverage)
}

func TestContainingAreaDto_zeroRadiusNeverWithinCoverage(t *testing.T) {
	area := newLocationTestArea(121.55, 25.05, 0)

	out := containingAreaDto(area, 121.55, 25.05)
	assert.InDelta(t, 0, out.DistanceKm, 1e-9)
	assert.False(t, out.WithinCoverage)
}
