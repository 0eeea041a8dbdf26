package config

type JWT struct {
	// 簽章密鑰（HS256）
	Secret string `mapstructure:"SECRET" json:"secret" yaml:"secret"`
	// 簽發者，空字串則不驗證
	Issuer string `mapstructure:"ISSUER" json:"issuer" yaml:"issuer"`
	// 受眾，空字串則不驗證
	Audience string `mapstructure:"AUDIENCE" json:"audience" yaml:"audience"`
}
