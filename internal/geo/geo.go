// Package geo 提供服務區域用的球面距離與多邊形運算。
// 儲存端的空間判定（$geoIntersects / $nearSphere）由 repository 層下放給
// MongoDB 2dsphere 索引；這裡只處理已載入文件的記憶體內運算。
package geo

import "math"

// EarthRadiusKm 地球半徑（公里）
const EarthRadiusKm = 6371.0

// Haversine 兩點間大圓距離（公里）。座標皆為 [lon, lat] 順序的度數。
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// CirclePolygon 以正多邊形近似圓形，回傳封閉的外環（首尾座標相同，共 points+1 個頂點）。
// 匯入「中心點 + 半徑」紀錄（CSV）時用來產生邊界多邊形。
func CirclePolygon(lat, lon, radiusKm float64, points int) [][]float64 {
	if points < 3 {
		points = 32
	}
	ring := make([][]float64, 0, points+1)
	latRad := toRad(lat)
	for i := 0; i < points; i++ {
		theta := 2 * math.Pi * float64(i) / float64(points)
		dLon := (radiusKm * math.Cos(theta)) / (EarthRadiusKm * math.Cos(latRad)) * (180 / math.Pi)
		dLat := (radiusKm * math.Sin(theta)) / EarthRadiusKm * (180 / math.Pi)
		ring = append(ring, []float64{lon + dLon, lat + dLat})
	}
	ring = append(ring, []float64{ring[0][0], ring[0][1]})
	return ring
}

// Centroid 外環頂點的算術平均（非面積加權）。
// 只對小範圍、近似凸的區域夠用；封閉環重複的首點不計入，避免偏移。
func Centroid(ring [][]float64) (lon, lat float64) {
	n := len(ring)
	if n == 0 {
		return 0, 0
	}
	if n > 1 && ring[0][0] == ring[n-1][0] && ring[0][1] == ring[n-1][1] {
		n--
	}
	for _, p := range ring[:n] {
		lon += p[0]
		lat += p[1]
	}
	return lon / float64(n), lat / float64(n)
}

// ContainsPoint ray casting 判斷點是否落在外環內（邊界上視為包含與否不保證）
func ContainsPoint(ring [][]float64, lon, lat float64) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// RingClosed 外環是否封閉（首尾頂點一致且至少四個頂點）
func RingClosed(ring [][]float64) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	return ring[0][0] == ring[n-1][0] && ring[0][1] == ring[n-1][1]
}

// BoundingBox 外環的外接矩形 (minLon, minLat, maxLon, maxLat)
func BoundingBox(ring [][]float64) (minLon, minLat, maxLon, maxLat float64) {
	if len(ring) == 0 {
		return 0, 0, 0, 0
	}
	minLon, minLat = ring[0][0], ring[0][1]
	maxLon, maxLat = minLon, minLat
	for _, p := range ring[1:] {
		minLon = math.Min(minLon, p[0])
		maxLon = math.Max(maxLon, p[0])
		minLat = math.Min(minLat, p[1])
		maxLat = math.Max(maxLat, p[1])
	}
	return minLon, minLat, maxLon, maxLat
}

// BBoxOverlap 兩外環的外接矩形是否相交；記憶體內 overlap 檢查的粗篩
func BBoxOverlap(a, b [][]float64) bool {
	aMinLon, aMinLat, aMaxLon, aMaxLat := BoundingBox(a)
	bMinLon, bMinLat, bMaxLon, bMaxLat := BoundingBox(b)
	return aMinLon <= bMaxLon && bMinLon <= aMaxLon &&
		aMinLat <= bMaxLat && bMinLat <= aMaxLat
}

// ValidLonLat 座標是否在合法範圍
func ValidLonLat(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
