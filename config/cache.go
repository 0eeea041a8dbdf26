package config

type Cache struct {
	// 權限判定結果快取秒數，0 代表預設 3600
	PermissionTTLSeconds int `mapstructure:"PERMISSION_TTL_SECONDS" json:"permissionTTLSeconds" yaml:"permissionTTLSeconds"`
}
