package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Division 部門，可選擇隸屬某個分支據點
type Division struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id"`
	Code          string              `json:"code" bson:"code"`
	Name          string              `json:"name" bson:"name"`
	Description   string              `json:"description,omitempty" bson:"description,omitempty"`
	BranchID      *primitive.ObjectID `json:"branchId,omitempty" bson:"branchId,omitempty"`
	ParentID      *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Path          string              `json:"path" bson:"path"`
	Level         int                 `json:"level" bson:"level"`
	Status        string              `json:"status" bson:"status"`
	StatusHistory []StatusChange      `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	CreatedBy     primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	UpdatedBy     primitive.ObjectID  `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

var DivisionIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("uniq_code").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "parentId", Value: 1}},
		Options: options.Index().SetName("idx_parentId"),
	},
	{
		Keys:    bson.D{{Key: "path", Value: 1}},
		Options: options.Index().SetName("idx_path"),
	},
	{
		Keys:    bson.D{{Key: "branchId", Value: 1}},
		Options: options.Index().SetName("idx_branchId"),
	},
	{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_status"),
	},
}
