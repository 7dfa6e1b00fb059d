package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// DefaultMaxRangeSize 是单次 Range 请求允许的默认最大字节数（100MB）
	DefaultMaxRangeSize = 100 * 1024 * 1024
	// DefaultServerHost 是服务器的默认监听地址
	DefaultServerHost = "0.0.0.0"
	// DefaultServerPort 是服务器的默认监听端口
	DefaultServerPort = 44444

	// MaxAllowedRangeSize 是单次 Range 请求允许的最大字节数上限（500MB）
	MaxAllowedRangeSize = 500 * 1024 * 1024

	// StorageBackendMemory 表示使用内存存储后端
	StorageBackendMemory = "memory"
	// StorageBackendSQLite 表示使用 SQLite 存储后端
	StorageBackendSQLite = "sqlite"
)

// Config 定义了应用程序的所有配置项。
type Config struct {
	Server  ServerConfig  `json:"server"`
	Storage StorageConfig `json:"storage"`
	State   StateConfig   `json:"state"`
}

// ServerConfig 定义了服务器相关的配置。
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	MaxRangeSize int64  `json:"max_range_size"` // 单次 Range 请求允许的最大字节数
}

// StorageConfig 定义了播放列表数据的存储后端。
// Backend 为 "memory" 或 "sqlite"，后者需要指定数据库文件路径。
type StorageConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// StateConfig 定义了本地状态文件的位置。
type StateConfig struct {
	// AppConfigPath 是应用配置（界面语言等）文件的路径。
	AppConfigPath string `json:"app_config_path"`
	// FlagsPath 是播放开关文件的路径。
	FlagsPath string `json:"flags_path"`
}

// Load 从指定的路径加载配置文件。
// 如果 configPath 为空,则返回默认配置。
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		cfg := GetDefaultConfig()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	// 读取配置文件。
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 为空字段设置默认值。
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.MaxRangeSize == 0 {
		cfg.Server.MaxRangeSize = DefaultMaxRangeSize
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageBackendMemory
	}
	if cfg.State.AppConfigPath == "" {
		cfg.State.AppConfigPath = defaultStatePath("app_config.json")
	}
	if cfg.State.FlagsPath == "" {
		cfg.State.FlagsPath = defaultStatePath("player_flags.json")
	}

	// 应用环境变量覆盖配置
	applyEnvOverrides(&cfg)

	// 验证配置的有效性
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("配置验证失败: %v", err)
	}

	return &cfg, nil
}

// applyEnvOverrides 使用环境变量覆盖配置
func applyEnvOverrides(cfg *Config) {
	// 服务器配置
	if host := os.Getenv("ABYSS_PLAYER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("ABYSS_PLAYER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			cfg.Server.Port = p
		}
	}
	if maxRange := os.Getenv("ABYSS_PLAYER_MAX_RANGE_SIZE"); maxRange != "" {
		if size, err := strconv.ParseInt(maxRange, 10, 64); err == nil && size > 0 && size <= MaxAllowedRangeSize {
			cfg.Server.MaxRangeSize = size
		}
	}

	// 存储配置
	if backend := os.Getenv("ABYSS_PLAYER_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if path := os.Getenv("ABYSS_PLAYER_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}

	// 状态文件配置
	if path := os.Getenv("ABYSS_PLAYER_APP_CONFIG_PATH"); path != "" {
		cfg.State.AppConfigPath = path
	}
	if path := os.Getenv("ABYSS_PLAYER_FLAGS_PATH"); path != "" {
		cfg.State.FlagsPath = path
	}
}

// validateConfig 验证配置的合法性
func validateConfig(cfg *Config) error {
	// 验证端口范围
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("端口必须在 1-65535 范围内，当前值: %d", cfg.Server.Port)
	}

	// 验证 MaxRangeSize
	if cfg.Server.MaxRangeSize < 0 || cfg.Server.MaxRangeSize > MaxAllowedRangeSize {
		return fmt.Errorf("MaxRangeSize 必须在 0-%d 范围内，当前值: %d", MaxAllowedRangeSize, cfg.Server.MaxRangeSize)
	}

	// 验证存储后端
	switch cfg.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendSQLite:
		if cfg.Storage.Path == "" {
			return fmt.Errorf("sqlite 后端必须指定数据库文件路径")
		}
	default:
		return fmt.Errorf("未知的存储后端: %s", cfg.Storage.Backend)
	}

	return nil
}

// defaultStatePath 返回状态文件在用户配置目录下的默认路径。
// 无法获取用户配置目录时退回当前工作目录。
func defaultStatePath(name string) string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(configDir, "abyss-player", name)
}

// GetDefaultConfig 返回一个包含默认设置的配置实例。
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultServerHost,
			Port:         DefaultServerPort,
			MaxRangeSize: DefaultMaxRangeSize,
		},
		Storage: StorageConfig{
			Backend: StorageBackendMemory,
		},
		State: StateConfig{
			AppConfigPath: defaultStatePath("app_config.json"),
			FlagsPath:     defaultStatePath("player_flags.json"),
		},
	}
}
