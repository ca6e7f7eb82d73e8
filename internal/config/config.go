package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the DIC front door.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Static   StaticConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// BackendConfig locates the DIC analysis backend. Prefix is the path under
// which the backend serves its API and which the front door proxies.
type BackendConfig struct {
	BaseURL string
	Prefix  string
	Timeout time.Duration
}

type StaticConfig struct {
	Dir   string
	Index string
}

// DatabaseConfig configures the audit trail. An empty URL disables auditing.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

// RedisConfig configures the aggregate cache and rate limiter. An empty URL
// disables both.
type RedisConfig struct {
	URL                string
	AggregateTTL       time.Duration
	RateLimitPerMinute int
}

// AuthConfig enables HTTP basic auth on the front door when PasswordHash is set.
type AuthConfig struct {
	Username     string
	PasswordHash string
}

// ClientConfig is the subset needed by the dicctl command line client.
type ClientConfig struct {
	Backend  BackendConfig
	PageSize int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("FRONTDOOR_PORT", 8080),
			Env:  envString("FRONTDOOR_ENV", "development"),
		},
		Backend: loadBackend(),
		Static: StaticConfig{
			Dir:   envString("STATIC_DIR", "dist"),
			Index: envString("STATIC_INDEX", "index.html"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("AUDIT_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL:                os.Getenv("REDIS_URL"),
			AggregateTTL:       envDuration("AGGREGATE_CACHE_TTL", 10*time.Second),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Auth: AuthConfig{
			Username:     envString("FRONTDOOR_USERNAME", "admin"),
			PasswordHash: os.Getenv("FRONTDOOR_PASSWORD_HASH"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient reads the CLI configuration. backendOverride, when non-empty,
// replaces BACKEND_URL.
func LoadClient(backendOverride string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		Backend:  loadBackend(),
		PageSize: envInt("DIC_PAGE_SIZE", 10),
	}
	if backendOverride != "" {
		cfg.Backend.BaseURL = backendOverride
	}

	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("DIC_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return cfg, nil
}

// AuditEnabled reports whether a database is configured.
func (c *Config) AuditEnabled() bool { return c.Database.URL != "" }

// CacheEnabled reports whether Redis is configured.
func (c *Config) CacheEnabled() bool { return c.Redis.URL != "" }

// AuthEnabled reports whether basic auth is configured.
func (c *Config) AuthEnabled() bool { return c.Auth.PasswordHash != "" }

func loadBackend() BackendConfig {
	return BackendConfig{
		BaseURL: os.Getenv("BACKEND_URL"),
		Prefix:  envString("API_PREFIX", "/api"),
		Timeout: envDuration("BACKEND_TIMEOUT", 30*time.Second),
	}
}

func (b BackendConfig) validate() error {
	if b.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if !strings.HasPrefix(b.BaseURL, "http://") && !strings.HasPrefix(b.BaseURL, "https://") {
		return fmt.Errorf("BACKEND_URL must start with http:// or https://, got %q", b.BaseURL)
	}
	if !strings.HasPrefix(b.Prefix, "/") || strings.Trim(b.Prefix, "/") == "" {
		return fmt.Errorf("API_PREFIX must be an absolute path such as /api, got %q", b.Prefix)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", b.Timeout)
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Backend.validate(); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("FRONTDOOR_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Static.Dir == "" {
		return fmt.Errorf("STATIC_DIR is required")
	}

	if c.Redis.URL != "" {
		if !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
			return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
		}
		if c.Redis.RateLimitPerMinute < 0 {
			return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.Redis.RateLimitPerMinute)
		}
	}

	if c.Auth.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Auth.PasswordHash)); err != nil {
			return fmt.Errorf("FRONTDOOR_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		if c.Auth.Username == "" {
			return fmt.Errorf("FRONTDOOR_USERNAME is required when FRONTDOOR_PASSWORD_HASH is set")
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
