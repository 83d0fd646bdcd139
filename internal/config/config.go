package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Observability ObservabilityConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Events EventsConfig

	// DefaultTenantID, when set, gets the default chart of accounts seeded
	// on startup.
	DefaultTenantID int64
	SnowflakeNode   int64

	// AccountsConfigPath points at the accounts.yml default mapping file.
	// Empty means the standard search paths are used.
	AccountsConfigPath string

	Reconciliation ReconciliationConfig
}

type EventsConfig struct {
	Driver string

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	Stream        string
	StreamMaxLen  int64

	PubSubProjectID string
	PubSubTopic     string
}

// ObservabilityConfig drives logging, tracing and metric export.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string

	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64
}

// ReconciliationConfig holds the default tolerances used by auto-match
// when a request does not supply its own.
type ReconciliationConfig struct {
	DateToleranceDays int
	AmountTolerance   string
}

const (
	EventsDriverLog    = "log"
	EventsDriverRedis  = "redis"
	EventsDriverPubSub = "pubsub"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "bookkeeper"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "bookkeeper"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Events: EventsConfig{
			Driver:          normalizeEventsDriver(getenv("EVENTS_DRIVER", EventsDriverLog)),
			RedisAddress:    getenv("REDIS_ADDRESS", "localhost:6379"),
			RedisPassword:   strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:         getenvInt("REDIS_DB", 0),
			Stream:          getenv("EVENTS_STREAM", "bookkeeper.events"),
			StreamMaxLen:    getenvInt64("EVENTS_STREAM_MAXLEN", 100000),
			PubSubProjectID: strings.TrimSpace(getenv("PUBSUB_PROJECT_ID", "")),
			PubSubTopic:     getenv("PUBSUB_TOPIC", "bookkeeper-events"),
		},
		DefaultTenantID:    getenvInt64("DEFAULT_TENANT_ID", 0),
		SnowflakeNode:      getenvInt64("SNOWFLAKE_NODE", 1),
		AccountsConfigPath: strings.TrimSpace(getenv("ACCOUNTS_CONFIG_PATH", "")),
		Reconciliation: ReconciliationConfig{
			DateToleranceDays: getenvInt("RECONCILIATION_DATE_TOLERANCE_DAYS", 3),
			AmountTolerance:   getenv("RECONCILIATION_AMOUNT_TOLERANCE", "0"),
		},
		Observability: loadObservability(),
	}

	return cfg
}

func loadObservability() ObservabilityConfig {
	protocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = traces
	}
	return ObservabilityConfig{
		LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		OtelEnabled:       getenvBool("OTEL_ENABLED", true),
		OtelEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
		OtelProtocol:      strings.ToLower(strings.TrimSpace(protocol)),
		OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
	}
}

// Debug reports whether verbose logging and gin debug mode should be on:
// a debug log level or a development environment.
func (c Config) Debug() bool {
	if c.Observability.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func normalizeEventsDriver(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case EventsDriverRedis, EventsDriverPubSub:
		return value
	default:
		return EventsDriverLog
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
