package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrConfigurationMissing 必要凭证缺失，启动期致命错误（不做按记录降级）
var ErrConfigurationMissing = errors.New("required configuration missing")

type Config struct {
	Server    ServerConfig
	Notion    NotionConfig    `mapstructure:"notion"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// NotionConfig 外部数据源（Notion 数据库 API）配置
type NotionConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
	Version    string `mapstructure:"version"`
	PageSize   int    `mapstructure:"page_size"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("STUDY_TRACKER")
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Notion
	viper.BindEnv("notion.base_url", "NOTION_BASE_URL")
	viper.BindEnv("notion.token", "NOTION_TOKEN")
	viper.BindEnv("notion.database_id", "NOTION_DATABASE_ID")
	viper.BindEnv("notion.version", "NOTION_VERSION")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = "https://api.notion.com"
	}
	if cfg.Notion.Version == "" {
		cfg.Notion.Version = "2022-06-28"
	}
	// Notion 查询接口单页上限 100
	if cfg.Notion.PageSize <= 0 || cfg.Notion.PageSize > 100 {
		cfg.Notion.PageSize = 100
	}

	if cfg.Notion.Token == "" {
		return nil, fmt.Errorf("notion token is not set (NOTION_TOKEN): %w", ErrConfigurationMissing)
	}
	if cfg.Notion.DatabaseID == "" {
		return nil, fmt.Errorf("notion database id is not set (NOTION_DATABASE_ID): %w", ErrConfigurationMissing)
	}

	return &cfg, nil
}
