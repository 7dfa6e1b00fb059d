package models

// AppConfig 是面向客户端的应用配置。
type AppConfig struct {
	// Locale 是界面语言标识（如 "en-US"、"ja-JP"）。
	Locale string `json:"locale"`
}
