package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"oasis/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Discovery     DiscoveryConfig
	Pricing       PricingConfig
	Sync          SyncConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"oasis"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type HTTPConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
}

// DiscoveryConfig configures the external event-discovery collaborator
type DiscoveryConfig struct {
	OpenAIKey     string        `envconfig:"OPENAI_API_KEY"`
	Model         string        `envconfig:"DISCOVERY_MODEL" default:"gpt-4o"`
	Timeout       time.Duration `envconfig:"DISCOVERY_TIMEOUT" default:"60s"`
	RatePerMinute int           `envconfig:"DISCOVERY_RATE_PER_MINUTE" default:"30"`
}

// PricingConfig carries tunables for proposal generation
type PricingConfig struct {
	OccupancyWindowDays int    `envconfig:"PRICING_OCCUPANCY_WINDOW_DAYS" default:"30"`
	MaxIncreasePct      int    `envconfig:"PRICING_MAX_INCREASE_PCT" default:"40"`
	MaxDecreasePct      int    `envconfig:"PRICING_MAX_DECREASE_PCT" default:"20"`
	DefaultMarket       string `envconfig:"PRICING_DEFAULT_MARKET" default:"Dubai"`
}

// SyncConfig carries the channel-manager staleness policy
type SyncConfig struct {
	StaleAfter time.Duration `envconfig:"SYNC_STALE_AFTER" default:"6h"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
