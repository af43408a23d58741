package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")

type Config struct {
	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"eshop"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	// Auth
	JWTSecret  string `envconfig:"JWT_SECRET"`
	BcryptCost int    `envconfig:"BCRYPT_COST" default:"10"`

	// Mail relay
	EmailDriver  string        `envconfig:"EMAIL_DRIVER" default:"smtp"`
	EmailHost    string        `envconfig:"EMAIL_HOST" default:"smtp.qq.com"`
	EmailPort    int           `envconfig:"EMAIL_PORT" default:"465"`
	EmailSecure  string        `envconfig:"EMAIL_SECURE"`
	EmailUser    string        `envconfig:"EMAIL_USER"`
	EmailPass    string        `envconfig:"EMAIL_PASS"`
	EmailFrom    string        `envconfig:"EMAIL_FROM"`
	EmailTimeout time.Duration `envconfig:"EMAIL_TIMEOUT" default:"15s"`

	// Activity log
	ActivityBufferSize    int           `envconfig:"ACTIVITY_BUFFER_SIZE" default:"1024"`
	ActivityBatchSize     int           `envconfig:"ACTIVITY_BATCH_SIZE" default:"50"`
	ActivityFlushInterval time.Duration `envconfig:"ACTIVITY_FLUSH_INTERVAL" default:"2s"`

	// Domain events (disabled when AMQP_URL is empty)
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"eshop.events"`

	// Observability
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	SentryDSN string `envconfig:"SENTRY_DSN"`
	AppEnv    string `envconfig:"APP_ENV" default:"development"`

	// Server
	Port        string `envconfig:"PORT" default:"5000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`
	SeedCatalog bool   `envconfig:"SEED_CATALOG" default:"false"`
}

// Load reads the process environment once. A blank JWT_SECRET is a hard error.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, ErrMissingJWTSecret
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SMTPSecure reports whether the relay expects implicit TLS. Unset means "port 465".
func (c *Config) SMTPSecure() bool {
	if c.EmailSecure == "" {
		return c.EmailPort == 465
	}
	secure, err := strconv.ParseBool(c.EmailSecure)
	if err != nil {
		return c.EmailPort == 465
	}
	return secure
}

func (c *Config) MailFrom() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return "E-Shop <" + c.EmailUser + ">"
}
