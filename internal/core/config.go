package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for Samachar
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	News     NewsConfig     `json:"news"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port        int    `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// AuthConfig contains authentication-related configuration
type AuthConfig struct {
	JWTSecret string        `json:"-"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// NewsConfig contains configuration for the news proxy
type NewsConfig struct {
	APIKey          string            `json:"-"`
	BaseURL         string            `json:"base_url"`
	CategoryMapping map[string]string `json:"category_mapping"`
	DefaultCacheTTL time.Duration     `json:"default_cache_ttl"`
	SearchCacheTTL  time.Duration     `json:"search_cache_ttl"`
	SweepInterval   time.Duration     `json:"sweep_interval"`
	UpstreamTimeout time.Duration     `json:"upstream_timeout"`
	DefaultLimit    int               `json:"default_limit"`
	MaxLimit        int               `json:"max_limit"`
	MaxSearchLength int               `json:"max_search_length"`
	ImageWeight     int               `json:"image_weight"`
}

// DefaultCategoryMapping returns the category name to NewsData.io code table.
// The "general" category is present so validation accepts it, but the mapper
// never sends it upstream (an unfiltered query returns the top of the feed).
func DefaultCategoryMapping() map[string]string {
	return map[string]string{
		"general":       "top",
		"business":      "business",
		"technology":    "technology",
		"sports":        "sports",
		"entertainment": "entertainment",
		"health":        "health",
		"science":       "science",
		"politics":      "politics",
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SAMACHAR_PORT", 5000),
			Host:        getEnvOrDefault("SAMACHAR_HOST", "0.0.0.0"),
			Environment: getEnvOrDefault("SAMACHAR_ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("SAMACHAR_DB_PATH", "./samachar.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("SAMACHAR_TOKEN_TTL", 7*24*time.Hour),
		},
		News: NewsConfig{
			APIKey:          getEnvOrDefault("NEWSDATA_API_KEY", ""),
			BaseURL:         getEnvOrDefault("NEWSDATA_BASE_URL", "https://newsdata.io/api/1/news"),
			CategoryMapping: DefaultCategoryMapping(),
			DefaultCacheTTL: getEnvAsDuration("SAMACHAR_CACHE_TTL", 5*time.Minute),
			SearchCacheTTL:  getEnvAsDuration("SAMACHAR_SEARCH_CACHE_TTL", 2*time.Minute),
			SweepInterval:   getEnvAsDuration("SAMACHAR_CACHE_SWEEP_INTERVAL", time.Minute),
			UpstreamTimeout: getEnvAsDuration("SAMACHAR_UPSTREAM_TIMEOUT", 10*time.Second),
			DefaultLimit:    getEnvAsInt("SAMACHAR_DEFAULT_ARTICLES", 10),
			MaxLimit:        getEnvAsInt("SAMACHAR_MAX_ARTICLES", 50),
			MaxSearchLength: getEnvAsInt("SAMACHAR_MAX_SEARCH_LENGTH", 100),
			ImageWeight:     getEnvAsInt("SAMACHAR_IMAGE_PRIORITY_WEIGHT", 1),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration.
//
// The NewsData.io API key is deliberately not required here: a missing key
// must surface as a configuration error on the first news request, not as a
// startup failure, so the auth endpoints stay usable without it.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.News.DefaultCacheTTL <= 0 || c.News.SearchCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if c.News.MaxLimit < 1 {
		return fmt.Errorf("max article limit must be at least 1")
	}

	if c.News.ImageWeight < 1 {
		return fmt.Errorf("image priority weight must be at least 1")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}
