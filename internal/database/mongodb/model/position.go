package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Position 職位；reportingTo 是階層上的父節點（匯報對象）
type Position struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id"`
	Code          string              `json:"code" bson:"code"`
	Title         string              `json:"title" bson:"title"`
	DivisionID    *primitive.ObjectID `json:"divisionId,omitempty" bson:"divisionId,omitempty"`
	ReportingTo   *primitive.ObjectID `json:"reportingTo,omitempty" bson:"reportingTo,omitempty"`
	Path          string              `json:"path" bson:"path"`
	Level         int                 `json:"level" bson:"level"`
	Grade         int                 `json:"grade,omitempty" bson:"grade,omitempty"`
	Status        string              `json:"status" bson:"status"`
	StatusHistory []StatusChange      `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	CreatedBy     primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	UpdatedBy     primitive.ObjectID  `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

var PositionIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("uniq_code").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "reportingTo", Value: 1}},
		Options: options.Index().SetName("idx_reportingTo"),
	},
	{
		Keys:    bson.D{{Key: "path", Value: 1}},
		Options: options.Index().SetName("idx_path"),
	},
	{
		Keys:    bson.D{{Key: "divisionId", Value: 1}},
		Options: options.Index().SetName("idx_divisionId"),
	},
	{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_status"),
	},
}
