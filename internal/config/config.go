package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	CookieSecure  bool
	ProductTTL    time.Duration

	KafkaBrokers []string
	OutboxTopic  string
	OutboxTick   time.Duration

	AdminAPIKey     string
	LogMode         string
	TracingExporter string
	ServiceName     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MAX_REQUEST_BODY_SIZE", 1<<20) // 1MB

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "kookie")
	v.SetDefault("SQLITE_PATH", "kookie.db")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("PRODUCT_CACHE_TTL", "15m")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("OUTBOX_TOPIC", "storefront-orders")
	v.SetDefault("OUTBOX_TICK", "1s")

	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("TRACING_EXPORTER", "none")
	v.SetDefault("SERVICE_NAME", "storefront")
}

// Load reads configuration from the environment, after loading envFiles (a
// missing file is not an error).
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		HTTPPort:           v.GetString("HTTP_PORT"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		MaxRequestBodySize: v.GetInt64("MAX_REQUEST_BODY_SIZE"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetInt("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),
		ProductTTL:    v.GetDuration("PRODUCT_CACHE_TTL"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		OutboxTopic:  v.GetString("OUTBOX_TOPIC"),
		OutboxTick:   v.GetDuration("OUTBOX_TICK"),

		AdminAPIKey:     v.GetString("ADMIN_API_KEY"),
		LogMode:         v.GetString("LOG_MODE"),
		TracingExporter: strings.ToLower(v.GetString("TRACING_EXPORTER")),
		ServiceName:     v.GetString("SERVICE_NAME"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.RequestTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT and SHUTDOWN_TIMEOUT must be positive")
	}
	if c.OutboxTick <= 0 {
		return errors.New("OUTBOX_TICK must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
