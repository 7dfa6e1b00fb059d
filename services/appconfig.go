package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"abyss-player/models"
)

// DefaultLocale 是未配置时使用的界面语言。
const DefaultLocale = "en-US"

// AppConfigService 负责应用配置（目前仅界面语言）的读写，
// 配置以 JSON 文件形式保存在本地。
type AppConfigService struct {
	mu      sync.RWMutex
	path    string
	current models.AppConfig
}

// NewAppConfigService 创建配置服务并加载现有配置文件。
// 文件不存在或无法解析时使用默认配置。
func NewAppConfigService(path string) *AppConfigService {
	service := &AppConfigService{
		path:    path,
		current: models.AppConfig{Locale: DefaultLocale},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return service
	}
	var loaded models.AppConfig
	if err := json.Unmarshal(data, &loaded); err == nil && loaded.Locale != "" {
		service.current = loaded
	}
	return service
}

// Get 返回当前应用配置。
func (s *AppConfigService) Get() models.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save 更新应用配置并写回文件。
func (s *AppConfigService) Save(config models.AppConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return err
	}
	s.current = config
	return nil
}
