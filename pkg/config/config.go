package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config represents the application configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	DB          DBConfig
	InFlow      InFlowConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DBConfig holds database-related configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// InFlowConfig holds the upstream inventory API configuration.
// AcceptVersion is pinned: changing it changes the upstream schema.
type InFlowConfig struct {
	BaseURL         string
	CompanyID       string
	APIKey          string
	AcceptVersion   string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	SigningKey     string
	ExpirationTime time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: "estimator-service",
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8087"),
			Env:  getEnv("APP_ENV", "development"),
		},
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "estimator_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
		},
		InFlow: InFlowConfig{
			BaseURL:         getEnv("INFLOW_BASE_URL", "https://cloudapi.inflowinventory.com"),
			CompanyID:       getEnv("INFLOW_COMPANY_ID", ""),
			APIKey:          getEnv("INFLOW_API_KEY", ""),
			AcceptVersion:   getEnv("INFLOW_API_VERSION", "2021-04-26"),
			Timeout:         getEnvAsDuration("INFLOW_TIMEOUT", 30*time.Second),
			CacheTTL:        getEnvAsDuration("INFLOW_CACHE_TTL", 5*time.Minute),
			CacheMaxEntries: getEnvAsInt("INFLOW_CACHE_MAX_ENTRIES", 1024),
		},
		JWT: JWTConfig{
			SigningKey:     getEnv("JWT_SIGNING_KEY", "estimatorsecretkey"),
			ExpirationTime: getEnvAsDuration("JWT_EXPIRATION_HOURS", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "estimator"),
		},
	}

	if cfg.InFlow.CompanyID == "" {
		return nil, fmt.Errorf("INFLOW_COMPANY_ID is required")
	}
	if cfg.InFlow.APIKey == "" {
		return nil, fmt.Errorf("INFLOW_API_KEY is required")
	}

	return cfg, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("inflow_base_url", c.InFlow.BaseURL),
		zap.String("inflow_api_version", c.InFlow.AcceptVersion),
	}
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
