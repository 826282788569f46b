package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	AutoMigrate     bool
	RedisURL        string
	ShutdownTimeout time.Duration

	Casdoor CasdoorConfig
	Events  EventsConfig
	Storage StorageConfig
	Tracing TracingConfig
}

// CasdoorConfig holds the identity provider settings used to validate bearer tokens
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type EventsConfig struct {
	KafkaBrokers []string
	Topic        string
}

// StorageConfig configures the MinIO bucket that archives exported reports.
// An empty endpoint disables archiving.
type StorageConfig struct {
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

type TracingConfig struct {
	Enabled           bool
	ServiceName       string
	CollectorEndpoint string
}

// LoadConfig reads .env (if present) and the process environment
func LoadConfig() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("EVENTS_TOPIC", "eklavya.events")
	v.SetDefault("MINIO_BUCKET", "eklavya-reports")
	v.SetDefault("TRACING_SERVICE_NAME", "eklavya-assessment-service")
	v.SetDefault("TRACING_COLLECTOR_ENDPOINT", "http://localhost:14268/api/traces")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("PORT"),
		Environment:     v.GetString("ENVIRONMENT"),
		LogLevel:        parseLogLevel(v.GetString("LOG_LEVEL")),
		LogFile:         v.GetString("LOG_FILE"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBMaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLife:   v.GetDuration("DB_CONN_MAX_LIFETIME"),
		AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		RedisURL:        v.GetString("REDIS_URL"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Casdoor: CasdoorConfig{
			Endpoint:     v.GetString("CASDOOR_ENDPOINT"),
			ClientID:     v.GetString("CASDOOR_CLIENT_ID"),
			ClientSecret: v.GetString("CASDOOR_CLIENT_SECRET"),
			Cert:         v.GetString("CASDOOR_CERT"),
			Organization: v.GetString("CASDOOR_ORGANIZATION"),
			Application:  v.GetString("CASDOOR_APPLICATION"),
		},
		Events: EventsConfig{
			KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:        v.GetString("EVENTS_TOPIC"),
		},
		Storage: StorageConfig{
			MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
			MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
			MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
			MinioBucket:    v.GetString("MINIO_BUCKET"),
			MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Tracing: TracingConfig{
			Enabled:           v.GetBool("TRACING_ENABLED"),
			ServiceName:       v.GetString("TRACING_SERVICE_NAME"),
			CollectorEndpoint: v.GetString("TRACING_COLLECTOR_ENDPOINT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Casdoor.Endpoint == "" {
		missing = append(missing, "CASDOOR_ENDPOINT")
	}
	if c.Casdoor.Cert == "" {
		missing = append(missing, "CASDOOR_CERT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Storage.MinioEndpoint != "" && c.Storage.MinioBucket == "" {
		return fmt.Errorf("MINIO_BUCKET is required when MINIO_ENDPOINT is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
