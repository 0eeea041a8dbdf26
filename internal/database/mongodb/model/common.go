package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusChange 狀態異動的內嵌紀錄，依時間序附掛在實體文件上
type StatusChange struct {
	Status    string             `json:"status" bson:"status"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	ChangedBy primitive.ObjectID `json:"changedBy" bson:"changedBy"`
	ChangedAt time.Time          `json:"changedAt" bson:"changedAt"`
}

// GeoPoint GeoJSON Point，座標為 [lon, lat]
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// GeoPolygon GeoJSON Polygon，第一個環是必要的封閉外環
type GeoPolygon struct {
	Type        string        `json:"type" bson:"type"`
	Coordinates [][][]float64 `json:"coordinates" bson:"coordinates"`
}

func NewGeoPolygon(outerRing [][]float64) GeoPolygon {
	return GeoPolygon{Type: "Polygon", Coordinates: [][][]float64{outerRing}}
}

// OuterRing 外環；無資料時回傳 nil
func (p GeoPolygon) OuterRing() [][]float64 {
	if len(p.Coordinates) == 0 {
		return nil
	}
	return p.Coordinates[0]
}
