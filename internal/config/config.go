package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/UkralStul/wikikisan-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config содержит все конфигурационные параметры приложения.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Community CommunityConfig `yaml:"community"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Weather   WeatherConfig   `yaml:"weather"`
	Market    MarketConfig    `yaml:"market"`
	Translate TranslateConfig `yaml:"translate"`
}

// ServerConfig - параметры HTTP-сервера.
type ServerConfig struct {
	Port            string `yaml:"port"`
	Debug           bool   `yaml:"debug"`
	Environment     string `yaml:"environment"`
	Version         string `yaml:"version"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StorageConfig выбирает хранилище ленты.
type StorageConfig struct {
	Type          string `yaml:"type"` // in-memory, postgres, mongo
	DatabaseURL   string `yaml:"database_url"`
	MongoDatabase string `yaml:"mongo_database"`
}

// CommunityConfig - настройки ленты сообщества.
type CommunityConfig struct {
	DefaultAuthor    domain.Author        `yaml:"default_author"`
	StrictCategories bool                 `yaml:"strict_categories"`
	FeedWindow       string               `yaml:"feed_window"` // legacy_tail, newest
	TrendingTags     []domain.TrendingTag `yaml:"trending_tags"`
	StreamBuffer     int                  `yaml:"stream_buffer"`
}

// AdvisorConfig - генератор советов.
type AdvisorConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// WeatherConfig - OpenWeather.
type WeatherConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// MarketConfig - Agmarknet.
type MarketConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Resource string `yaml:"resource"`
	Timeout  string `yaml:"timeout"`
}

// TranslateConfig - сервис перевода.
type TranslateConfig struct {
	BaseURL   string   `yaml:"base_url"`
	Supported []string `yaml:"supported"`
	Timeout   string   `yaml:"timeout"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Environment:     "development",
			Version:         "2.0.0",
			ReadTimeout:     "5s",
			WriteTimeout:    "60s",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Type:          "in-memory",
			MongoDatabase: "wikikisan",
		},
		Community: CommunityConfig{
			DefaultAuthor: domain.Author{Name: "Medhansh Reddy", Role: "farmer"},
			FeedWindow:    string(community.FeedWindowLegacyTail),
			TrendingTags:  community.DefaultTrendingTags(),
			StreamBuffer:  16,
		},
		Advisor: AdvisorConfig{
			Provider: "gemini",
			Timeout:  "30s",
		},
		Weather:   WeatherConfig{Timeout: "10s"},
		Market:    MarketConfig{Timeout: "10s"},
		Translate: TranslateConfig{Supported: []string{"en", "hi", "te"}, Timeout: "10s"},
	}
}

// Load загружает конфигурацию из YAML-файла; отсутствующий файл - не ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides применяет переменные окружения поверх файла.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.Debug = b
		}
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Server.Environment = v
	}

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
	}

	if v := os.Getenv("FEED_WINDOW"); v != "" {
		c.Community.FeedWindow = v
	}

	// Ключ советника: провайдер определяется по найденной переменной
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Advisor.APIKey = key
		c.Advisor.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Advisor.APIKey = key
		c.Advisor.Provider = "gemini"
	}

	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" {
		c.Weather.APIKey = key
	}
	if key := os.Getenv("AGMARKNET_API_KEY"); key != "" {
		c.Market.APIKey = key
	}
}

// ValidStorageTypes - поддерживаемые хранилища.
var ValidStorageTypes = []string{"in-memory", "postgres", "mongo"}

// Validate проверяет перечислимые значения.
func (c *Config) Validate() error {
	if !contains(ValidStorageTypes, c.Storage.Type) {
		return fmt.Errorf("invalid storage type %q (valid: %v)", c.Storage.Type, ValidStorageTypes)
	}
	if c.Storage.Type != "in-memory" && c.Storage.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set for %s storage", c.Storage.Type)
	}
	if !community.FeedWindow(c.Community.FeedWindow).Valid() {
		return fmt.Errorf("invalid feed window %q", c.Community.FeedWindow)
	}
	if c.Advisor.Provider != "gemini" && c.Advisor.Provider != "openai" {
		return fmt.Errorf("invalid advisor provider %q", c.Advisor.Provider)
	}
	return nil
}

// Timeout разбирает строку длительности; при ошибке - fallback.
func Timeout(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
