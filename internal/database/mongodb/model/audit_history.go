package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditHistory 附掛在每個資源旁的 append-only 異動紀錄。
// 寫入後不再更新或刪除；OldValue/NewValue 是寫入當下的不透明快照。
type AuditHistory struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	EntityID  primitive.ObjectID `json:"entityId" bson:"entityId"`
	Action    string             `json:"action" bson:"action"`
	Field     string             `json:"field,omitempty" bson:"field,omitempty"`
	OldValue  any                `json:"oldValue,omitempty" bson:"oldValue,omitempty"`
	NewValue  any                `json:"newValue,omitempty" bson:"newValue,omitempty"`
	ActorID   primitive.ObjectID `json:"actorId" bson:"actorId"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

var AuditHistoryIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "entityId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_entityId_createdAt_desc"),
	},
	{
		Keys:    bson.D{{Key: "entityId", Value: 1}, {Key: "action", Value: 1}},
		Options: options.Index().SetName("idx_entityId_action"),
	},
}
