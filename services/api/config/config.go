package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	DatabaseURL     string
	Port            int
	SupabaseURL     string
	ServiceRoleKey  string
	JWTSecret       string
	StorageBucket   string
	FetchTimeout    time.Duration
	ForceSampleData bool
	CivilOffset     int
	LogLevel        string
	LogFormat       string
	DefaultPageSize int
}

// Load reads configuration from environment variables (optionally .env).
// A missing DATABASE_URL is not an error: the API then serves sample data.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:            8080,
		StorageBucket:   "veiculos",
		FetchTimeout:    6 * time.Second,
		CivilOffset:     -3,
		LogLevel:        "info",
		LogFormat:       "text",
		DefaultPageSize: 10,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SupabaseURL = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	cfg.ServiceRoleKey = os.Getenv("SUPABASE_SERVICE_ROLE")
	cfg.JWTSecret = os.Getenv("SUPABASE_JWT_SECRET")

	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		cfg.StorageBucket = bucket
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if timeoutStr := os.Getenv("LEVELS_FETCH_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil && timeout > 0 {
			cfg.FetchTimeout = timeout
		} else {
			return cfg, fmt.Errorf("invalid LEVELS_FETCH_TIMEOUT: %s", timeoutStr)
		}
	}

	if forceStr := os.Getenv("FORCE_SAMPLE_DATA"); forceStr != "" {
		force, err := strconv.ParseBool(forceStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid FORCE_SAMPLE_DATA: %s", forceStr)
		}
		cfg.ForceSampleData = force
	}

	if offsetStr := os.Getenv("CIVIL_UTC_OFFSET_HOURS"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= -12 && offset <= 14 {
			cfg.CivilOffset = offset
		} else {
			return cfg, fmt.Errorf("invalid CIVIL_UTC_OFFSET_HOURS: %s", offsetStr)
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}

	if sizeStr := os.Getenv("API_DEFAULT_PAGE_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			cfg.DefaultPageSize = size
		} else {
			return cfg, fmt.Errorf("invalid API_DEFAULT_PAGE_SIZE: %s", sizeStr)
		}
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CivilZone is the fixed zone used for dashboard display.
func (c Config) CivilZone() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.CivilOffset), c.CivilOffset*60*60)
}

// StorageConfigured reports whether vehicle photos can be uploaded.
func (c Config) StorageConfigured() bool {
	return c.SupabaseURL != "" && c.ServiceRoleKey != ""
}
