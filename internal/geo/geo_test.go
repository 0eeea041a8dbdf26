package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	// 台北車站 -> 台中車站，約 130 公里
	d := Haversine(121.5170, 25.0478, 120.6869, 24.1369)
	assert.InDelta(t, 131, d, 5)

	// 同一點距離為零
	assert.Zero(t, Haversine(121.5, 25.0, 121.5, 25.0))

	// 對稱性
	assert.InDelta(t,
		Haversine(121.5, 25.0, 120.7, 24.1),
		Haversine(120.7, 24.1, 121.5, 25.0),
		1e-9)
}

func TestCirclePolygon(t *testing.T) {
	ring := CirclePolygon(25.0, 121.5, 5, 32)

	require.Len(t, ring, 33)
	assert.True(t, RingClosed(ring))

	// 每個頂點到圓心的距離都應接近半徑
	for _, p := range ring[:32] {
		d := Haversine(121.5, 25.0, p[0], p[1])
		assert.InDelta(t, 5, d, 0.1)
	}
}

func TestCirclePolygon_tooFewPoints(t *testing.T) {
	// points < 3 回退為預設 32 邊
	ring := CirclePolygon(25.0, 121.5, 1, 2)
	assert.Len(t, ring, 33)
}

func TestCentroid(t *testing.T) {
	square := [][]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	lon, lat := Centroid(square)
	assert.InDelta(t, 1, lon, 1e-9)
	assert.InDelta(t, 1, lat, 1e-9)

	lon, lat = Centroid(nil)
	assert.Zero(t, lon)
	assert.Zero(t, lat)
}

func TestContainsPoint(t *testing.T) {
	square := [][]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}

	assert.True(t, ContainsPoint(square, 1, 1))
	assert.False(t, ContainsPoint(square, 3, 1))
	assert.False(t, ContainsPoint(square, -1, -1))

	// 退化環
	assert.False(t, ContainsPoint([][]float64{{0, 0}, {1, 1}}, 0.5, 0.5))
}

func TestRingClosed(t *testing.T) {
	assert.True(t, RingClosed([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0}}))
	assert.False(t, RingClosed([][]float64{{0, 0}, {1, 0}, {1, 1}}))
	assert.False(t, RingClosed([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}))
}

func TestBBoxOverlap(t *testing.T) {
	a := [][]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	b := [][]float64{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}
	c := [][]float64{{5, 5}, {6, 5}, {6, 6}, {5, 6}, {5, 5}}

	assert.True(t, BBoxOverlap(a, b))
	assert.True(t, BBoxOverlap(b, a))
	assert.False(t, BBoxOverlap(a, c))
}

func TestValidLonLat(t *testing.T) {
	assert.True(t, ValidLonLat(121.5, 25.0))
	assert.True(t, ValidLonLat(-180, -90))
	assert.False(t, ValidLonLat(181, 0))
	assert.False(t, ValidLonLat(0, 91))
}
