// Package config loads application configuration from environment variables.
// All variables use the OLH_ prefix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Notify   NotifyConfig
	Admin    AdminConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// BackendConfig holds settings for the upstream curriculum API.
type BackendConfig struct {
	URL string
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// means the in-memory cache backend is used instead.
type CacheConfig struct {
	URL string
}

// DatabaseConfig holds PostgreSQL connection settings for the content
// catalog. An empty URL means the catalog is served from YAML files.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CatalogConfig holds content catalog settings.
type CatalogConfig struct {
	Path string
}

// NotifyConfig holds WebSocket notification settings.
type NotifyConfig struct {
	Enabled bool
}

// AdminConfig holds admin endpoint settings.
type AdminConfig struct {
	// TokenHash is the bcrypt hash of the admin API token. Empty disables
	// the admin endpoints.
	TokenHash string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with OLH_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("OLH_SERVER_PORT", 8080),
			Host: envStr("OLH_SERVER_HOST", "0.0.0.0"),
		},
		Backend: BackendConfig{
			URL: envStr("OLH_BACKEND_URL", "http://localhost:5000"),
		},
		Cache: CacheConfig{
			URL: envStr("OLH_CACHE_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			URL:      envStr("OLH_DATABASE_URL", ""),
			MaxConns: envInt("OLH_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("OLH_DATABASE_MIN_CONNS", 2),
		},
		Catalog: CatalogConfig{
			Path: envStr("OLH_CATALOG_PATH", "./catalog"),
		},
		Notify: NotifyConfig{
			Enabled: envBool("OLH_NOTIFY_ENABLED", true),
		},
		Admin: AdminConfig{
			TokenHash: envStr("OLH_ADMIN_TOKEN_HASH", ""),
		},
		Log: LogConfig{
			Level:  envStr("OLH_LOG_LEVEL", "info"),
			Format: envStr("OLH_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("OLH_BACKEND_URL is required")
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("OLH_BACKEND_URL must be an absolute URL, got %q", c.Backend.URL)
	}
	if c.Database.URL == "" && c.Catalog.Path == "" {
		return fmt.Errorf("either OLH_DATABASE_URL or OLH_CATALOG_PATH must be set")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
