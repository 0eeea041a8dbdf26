package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BranchAssignment 服務區域與分支據點的多對多關聯；
// 同一區域內最多一筆 isPrimary=true
type BranchAssignment struct {
	BranchID   primitive.ObjectID `json:"branchId" bson:"branchId"`
	IsPrimary  bool               `json:"isPrimary" bson:"isPrimary"`
	AssignedBy primitive.ObjectID `json:"assignedBy" bson:"assignedBy"`
	AssignedAt time.Time          `json:"assignedAt" bson:"assignedAt"`
}

// SpecialRate 特殊費率（時段加成等）
type SpecialRate struct {
	Label     string  `json:"label" bson:"label"`
	Rate      float64 `json:"rate" bson:"rate"`
	StartHour int     `json:"startHour" bson:"startHour"`
	EndHour   int     `json:"endHour" bson:"endHour"`
}

// Pricing 計價區塊；所有金額與距離皆非負
type Pricing struct {
	BasePrice    float64       `json:"basePrice" bson:"basePrice"`
	PerKmRate    float64       `json:"perKmRate" bson:"perKmRate"`
	MinDistance  float64       `json:"minDistance" bson:"minDistance"`
	MaxDistance  float64       `json:"maxDistance" bson:"maxDistance"`
	SpecialRates []SpecialRate `json:"specialRates,omitempty" bson:"specialRates,omitempty"`
}

// ServiceArea 服務區域：封閉外環多邊形 + 中心點 + 服務半徑
type ServiceArea struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	Code           string             `json:"code" bson:"code"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	Boundaries     GeoPolygon         `json:"boundaries" bson:"boundaries"`
	Center         GeoPoint           `json:"center" bson:"center"`
	CoverageRadius float64            `json:"coverageRadius" bson:"coverageRadius"`
	AreaType       string             `json:"areaType" bson:"areaType"`
	Branches       []BranchAssignment `json:"branches,omitempty" bson:"branches,omitempty"`
	Pricing        Pricing            `json:"pricing" bson:"pricing"`
	Status         string             `json:"status" bson:"status"`
	StatusHistory  []StatusChange     `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	CreatedBy      primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	UpdatedBy      primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var ServiceAreaIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("uniq_code").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "boundaries", Value: "2dsphere"}},
		Options: options.Index().SetName("idx_boundaries_2dsphere"),
	},
	{
		Keys:    bson.D{{Key: "center", Value: "2dsphere"}},
		Options: options.Index().SetName("idx_center_2dsphere"),
	},
	{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_status"),
	},
	{
		Keys:    bson.D{{Key: "branches.branchId", Value: 1}},
		Options: options.Index().SetName("idx_branches_branchId"),
	},
}
