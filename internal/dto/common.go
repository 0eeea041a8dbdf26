package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 狀態異動（所有資源共用）
type UpdateStatusDto struct {
	Status string `json:"status" binding:"required"` // 目標狀態
	Reason string `json:"reason,omitempty"`          // 異動原因，會進異動紀錄
}

// StatusChangeDto 回應用的狀態異動快照
type StatusChangeDto struct {
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// 異動紀錄查詢（query string）
type HistoryQueryDto struct {
	Action string `form:"action"`
	From   string `form:"from"` // RFC3339
	To     string `form:"to"`   // RFC3339
	Page   int64  `form:"page"`
	Limit  int64  `form:"limit"`
}

// HistoryResponseDto 單筆異動紀錄
type HistoryResponseDto struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entityId"`
	Action    string    `json:"action"`
	Field     string    `json:"field,omitempty"`
	OldValue  any       `json:"oldValue,omitempty"`
	NewValue  any       `json:"newValue,omitempty"`
	ActorID   string    `json:"actorId"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HexOrEmpty：*ObjectID 轉 hex，nil 轉空字串
func HexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
