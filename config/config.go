package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL         string        `envconfig:"DATABASE_URL"          required:"true"`
	HTTPPort            string        `envconfig:"HTTP_PORT"             default:":8000"`
	GrpcPort            string        `envconfig:"GRPC_PORT"             default:":50051"` // gRPC health endpoint
	LogLevel            string        `envconfig:"LOG_LEVEL"             default:"info"`
	GinMode             string        `envconfig:"GIN_MODE"              default:"release"`
	DBMaxOpenConns      int           `envconfig:"DB_MAX_OPEN_CONNS"     default:"25"`
	DBMaxIdleConns      int           `envconfig:"DB_MAX_IDLE_CONNS"     default:"5"`
	DBConnMaxLifetime   time.Duration `envconfig:"DB_CONN_MAX_LIFETIME"  default:"5m"`
	MigrateOnStart      bool          `envconfig:"MIGRATE_ON_START"      default:"true"`
	HealthCheckInterval time.Duration `envconfig:"HEALTH_CHECK_INTERVAL" default:"10s"`
	ShutdownTimeout     time.Duration `envconfig:"SHUTDOWN_TIMEOUT"      default:"10s"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("configuration error: DATABASE_URL is not set")
	}
	if cfg.HealthCheckInterval <= 0 {
		return nil, fmt.Errorf("HEALTH_CHECK_INTERVAL must be positive, got %s", cfg.HealthCheckInterval)
	}

	logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s", cfg.HTTPPort, cfg.GrpcPort, cfg.LogLevel)
	return &cfg, nil
}
