package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MaxBatchSize is the largest chunk the document store accepts atomically.
const MaxBatchSize = 500

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"dashboard"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"dashboard"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"sales_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/sales.db"`

	Collection   string        `envconfig:"SALES_COLLECTION" default:"sales"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`

	UploadChunkSize   int           `envconfig:"UPLOAD_CHUNK_SIZE" default:"400"`
	UploadMaxAttempts int           `envconfig:"UPLOAD_MAX_ATTEMPTS" default:"3"`
	UploadRetryDelay  time.Duration `envconfig:"UPLOAD_RETRY_DELAY" default:"1s"`

	HistogramBinWidth float64 `envconfig:"HISTOGRAM_BIN_WIDTH" default:"50000"`
	FieldAliasesFile  string  `envconfig:"FIELD_ALIASES_FILE" default:""`

	HTTPHost string `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	ExportPath string `envconfig:"EXPORT_PATH" default:"./output/sales_export.csv"`
}

// Load reads the .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or sqlite, got %q", c.StoreDriver)
	}
	if strings.TrimSpace(c.Collection) == "" {
		return fmt.Errorf("SALES_COLLECTION is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if c.UploadChunkSize < 1 || c.UploadChunkSize > MaxBatchSize {
		return fmt.Errorf("UPLOAD_CHUNK_SIZE must be between 1 and %d", MaxBatchSize)
	}
	if c.UploadMaxAttempts < 1 {
		return fmt.Errorf("UPLOAD_MAX_ATTEMPTS must be >= 1")
	}
	if c.HistogramBinWidth <= 0 {
		return fmt.Errorf("HISTOGRAM_BIN_WIDTH must be > 0")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
