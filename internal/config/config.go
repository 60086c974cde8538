package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record drivers
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the server configuration
type Config struct {
	Port             string
	Driver           string
	DatabaseURL      string
	BoltPath         string
	AuthDatabaseURL  string
	SessionTTL       time.Duration
	ResolveTimeout   time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	AutoMigrate      bool
	LogLevel         string
	MetricsNamespace string
}

// Load reads envFile (if it exists) and then the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	databaseURL := getEnv("DATABASE_URL", "")
	cfg := &Config{
		Port:             getEnv("API_PORT", "8080"),
		Driver:           strings.ToLower(getEnv("RECORD_DRIVER", DriverPostgres)),
		DatabaseURL:      databaseURL,
		BoltPath:         getEnv("BOLT_PATH", "travel-desk.db"),
		AuthDatabaseURL:  getEnv("AUTH_DATABASE_URL", databaseURL),
		SessionTTL:       time.Duration(getEnvAsInt("SESSION_TTL", 24)) * time.Hour,
		ResolveTimeout:   time.Duration(getEnvAsInt("SESSION_RESOLVE_TIMEOUT_MS", 2000)) * time.Millisecond,
		ReadTimeout:      time.Duration(getEnvAsInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout:     time.Duration(getEnvAsInt("WRITE_TIMEOUT", 15)) * time.Second,
		AutoMigrate:      parseBoolEnv(getEnv("AUTO_MIGRATE", "true")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "travel_desk"),
	}
	return cfg, nil
}

// Validate checks the driver and the DSNs it needs
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres driver", ErrInvalidConfig)
		}
		if c.AuthDatabaseURL == "" {
			return fmt.Errorf("%w: AUTH_DATABASE_URL is required for the postgres driver", ErrInvalidConfig)
		}
	case DriverBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("%w: BOLT_PATH is required for the bolt driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown record driver %q", ErrInvalidConfig, c.Driver)
	}
	if c.Port == "" {
		return fmt.Errorf("%w: API_PORT is empty", ErrInvalidConfig)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func parseBoolEnv(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
