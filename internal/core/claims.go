package core

import "github.com/golang-jwt/jwt/v4"

// PermissionEntry 授權項目，resource/action 皆可為 "*"
type PermissionEntry struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type Claims struct {
	UserID      string            `json:"user_id"`
	DisplayName string            `json:"display_name,omitempty"`
	Role        Role              `json:"role"`
	Permissions []PermissionEntry `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// ContextClaimsKey gin context 中存放已驗證 Claims 的鍵
const ContextClaimsKey = "authClaims"
