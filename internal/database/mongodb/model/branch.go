package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Branch 營運據點，parentId/path/level 構成 materialized path 樹
type Branch struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id"`
	Code          string              `json:"code" bson:"code"`
	Name          string              `json:"name" bson:"name"`
	ParentID      *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Path          string              `json:"path" bson:"path"`
	Level         int                 `json:"level" bson:"level"`
	Address       string              `json:"address,omitempty" bson:"address,omitempty"`
	Phone         string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Status        string              `json:"status" bson:"status"`
	StatusHistory []StatusChange      `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	CreatedBy     primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	UpdatedBy     primitive.ObjectID  `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

var BranchIndexes = []mongo.IndexModel{
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
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_status"),
	},
	{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_createdAt_desc"),
	},
}
