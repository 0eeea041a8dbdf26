package model

type MutationLog struct {
	// 對應鍵
	RequestID  string `bson:"request_id,omitempty" json:"request_id"`
	EntityType string `bson:"entity_type" json:"entity_type"`
	EntityID   string `bson:"entity_id" json:"entity_id"`
	Action     string `bson:"action" json:"action"`
	Field      string `bson:"field,omitempty" json:"field,omitempty"`
	ActorID    string `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	Reason     string `bson:"reason,omitempty" json:"reason,omitempty"`
	Version    string `bson:"version" json:"version"`
	LoggedAt   string `bson:"logged_at" json:"logged_at"`
}
