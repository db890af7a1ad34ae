package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the desk gateway
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Trading backend
	Backend BackendConfig

	// Order desk behaviour
	Desk DeskConfig

	// Preferences persistence (theme, layout)
	Preferences PreferencesConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Browser origins allowed to call the API
	CORSOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// BackendConfig holds the trading backend endpoints
type BackendConfig struct {
	BaseURL        string        // REST base, e.g. http://localhost:8000
	OrdersWSURL    string        // order feed, e.g. ws://localhost:8000/ws/orders
	ReconnectDelay time.Duration // fixed delay between feed reconnect attempts
	SubmitTimeout  time.Duration
}

// DeskConfig holds view and edit settings
type DeskConfig struct {
	ActivePageSize  int
	HistoryPageSize int
	HistoryStates   []string
	SeedOrders      bool
	SubmitRateLimit int // PUT requests per second
	UserName        string

	// StaleOverrideAfter is when an unconfirmed edit gets reported; edits are never reverted
	StaleOverrideAfter time.Duration
}

// PreferencesConfig selects the preferences backend
type PreferencesConfig struct {
	Store string // memory, redis, postgres
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
			OrdersWSURL:    getEnv("ORDERS_WS_URL", "ws://localhost:8000/ws/orders"),
			ReconnectDelay: getEnvAsDuration("ORDERS_RECONNECT_DELAY", "5s"),
			SubmitTimeout:  getEnvAsDuration("SUBMIT_TIMEOUT", "10s"),
		},

		Desk: DeskConfig{
			ActivePageSize:     getEnvAsInt("ACTIVE_PAGE_SIZE", 2),
			HistoryPageSize:    getEnvAsInt("HISTORY_PAGE_SIZE", 5),
			HistoryStates:      getEnvAsList("HISTORY_STATES", []string{"accepted", "cancelled"}),
			SeedOrders:         getEnvAsBool("SEED_ORDERS", true),
			SubmitRateLimit:    getEnvAsInt("SUBMIT_RATE_LIMIT", 5),
			UserName:           getEnv("DESK_USER_NAME", "Test User"),
			StaleOverrideAfter: getEnvAsDuration("STALE_OVERRIDE_AFTER", "2m"),
		},

		Preferences: PreferencesConfig{
			Store: getEnv("PREFERENCES_STORE", "memory"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.Backend.OrdersWSURL == "" {
		return fmt.Errorf("ORDERS_WS_URL is required")
	}
	if c.Backend.ReconnectDelay <= 0 {
		return fmt.Errorf("ORDERS_RECONNECT_DELAY must be positive")
	}

	if c.Desk.ActivePageSize < 1 || c.Desk.HistoryPageSize < 1 {
		return fmt.Errorf("page sizes must be at least 1")
	}
	if len(c.Desk.HistoryStates) == 0 {
		return fmt.Errorf("HISTORY_STATES must not be empty")
	}

	switch c.Preferences.Store {
	case "memory":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("PREFERENCES_STORE=redis requires REDIS_ENABLED=true")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("PREFERENCES_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("PREFERENCES_STORE must be one of: memory, redis, postgres")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"deploy/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
