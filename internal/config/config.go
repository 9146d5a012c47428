package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Leave    LeaveConfig
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// LeaveConfig controls the leave ledger runtime.
type LeaveConfig struct {
	// Backend selects the repository implementation: "pgx" or "gorm".
	Backend         string
	AccrualInterval time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendPgx  = "pgx"
	BackendGorm = "gorm"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "teamzen_hris"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("DB_SQLITE_PATH", "teamzen.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour),
	}

	config.Leave = LeaveConfig{
		Backend:         strings.ToLower(getEnv("LEAVE_BACKEND", BackendPgx)),
		AccrualInterval: getEnvDuration("LEAVE_ACCRUAL_INTERVAL", 6*time.Hour),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" && c.App.Env == "production" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Leave.Backend != BackendGorm {
			return fmt.Errorf("DB_DRIVER=sqlite requires LEAVE_BACKEND=gorm")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Leave.Backend != BackendPgx && c.Leave.Backend != BackendGorm {
		return fmt.Errorf("unsupported LEAVE_BACKEND %q", c.Leave.Backend)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Leave.AccrualInterval <= 0 {
		return fmt.Errorf("LEAVE_ACCRUAL_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GormDSN returns the DSN handed to the gorm backend for the configured driver.
func (c *Config) GormDSN() string {
	if c.Database.Driver == DriverSQLite {
		return "sqlite://" + c.Database.SQLitePath
	}
	return c.DatabaseURL()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "key", key, "value", value, "default", fallback.String())
		return fallback
	}
	return d
}
