package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	LogLevel    string
	HTTP        HTTPConfig
	Store       StoreConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects and configures the record store
type StoreConfig struct {
	Driver      string
	DatabaseURL string
}

// RedisConfig holds query cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// Enabled reports whether a redis address is configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL              string
	EventsExchange   string
	IngestExchange   string
	IngestQueue      string
	IngestRoutingKey string
	DLQQueue         string
	PrefetchCount    int
}

// Enabled reports whether a RabbitMQ URL is configured
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// Load loads configuration from environment variables
func Load(defaultServiceName string) *Config {
	return &Config{
		ServiceName: getEnv("SERVICE_NAME", defaultServiceName),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsSeconds("HTTP_READ_TIMEOUT_SECONDS", 15),
			WriteTimeout:    getEnvAsSeconds("HTTP_WRITE_TIMEOUT_SECONDS", 15),
			ShutdownTimeout: getEnvAsSeconds("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", StoreDriverPostgres),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("QUERY_CACHE_PREFIX", "earthquakes:query"),
			TTL:       getEnvAsSeconds("QUERY_CACHE_TTL_SECONDS", 30),
		},
		RabbitMQ: RabbitMQConfig{
			URL:              getEnv("RABBITMQ_URL", ""),
			EventsExchange:   getEnv("RABBITMQ_EVENTS_EXCHANGE", "earthquakes.events.exchange"),
			IngestExchange:   getEnv("RABBITMQ_INGEST_EXCHANGE", "earthquakes.ingest.exchange"),
			IngestQueue:      getEnv("RABBITMQ_INGEST_QUEUE", "earthquakes.ingest.queue"),
			IngestRoutingKey: getEnv("RABBITMQ_INGEST_ROUTING_KEY", "earthquake.raw"),
			DLQQueue:         getEnv("RABBITMQ_DLQ_QUEUE", "earthquakes.ingest.dlq"),
			PrefetchCount:    getEnvAsInt("RABBITMQ_PREFETCH", 10),
		},
	}
}

// LoadServer loads configuration for the API server
func LoadServer() (*Config, error) {
	cfg := Load("earthquake-api")
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWorker loads configuration for the ingest worker
func LoadWorker() (*Config, error) {
	cfg := Load("earthquake-worker")
	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required but not set in environment variables")
	}
	return cfg, nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverMemory:
		return nil
	case StoreDriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required but not set in environment variables")
		}
		return nil
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.Store.Driver)
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

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}
