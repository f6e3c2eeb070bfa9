// Package config loads ginkit settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// DevJWTSecret is the signing key used when JWT_SECRET is unset. It is
// rejected in production.
const DevJWTSecret = "fallback-secret-key-for-dev-only"

// DB holds database connection settings.
type DB struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"ginkit"`
	Password        string        `env:"DB_PASSWORD" envDefault:"ginkit"`
	Name            string        `env:"DB_NAME" envDefault:"ginkit"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	Path            string        `env:"DB_PATH" envDefault:"ginkit.db"`
	MigrationsDir   string        `env:"DB_MIGRATIONS_DIR" envDefault:"migrations"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

// JWT holds token issuance settings.
type JWT struct {
	Secret            string        `env:"JWT_SECRET" envDefault:"fallback-secret-key-for-dev-only"`
	Issuer            string        `env:"JWT_ISSUER" envDefault:"ginkit"`
	Audience          string        `env:"JWT_AUDIENCE"`
	SigningMethod     string        `env:"JWT_SIGNING_METHOD" envDefault:"HS256"`
	ExpiresIn         time.Duration `env:"JWT_EXPIRES_IN" envDefault:"20m"`
	AllowInsecureHTTP bool          `env:"JWT_ALLOW_INSECURE_HTTP"`
}

// Audit holds the per-action allow-lists. Empty lists audit every type.
type Audit struct {
	CreateTypes []string `env:"AUDIT_CREATE_TYPES" envSeparator:","`
	UpdateTypes []string `env:"AUDIT_UPDATE_TYPES" envSeparator:","`
	DeleteTypes []string `env:"AUDIT_DELETE_TYPES" envSeparator:","`
}

// Log holds settings for persisting log records to the database.
type Log struct {
	ToDB    bool          `env:"LOG_TO_DB"`
	DBLevel zapcore.Level `env:"LOG_DB_LEVEL" envDefault:"info"`
	Loggers []string      `env:"LOG_DB_LOGGERS" envSeparator:","`

	// Retention of zero keeps records forever.
	Retention     time.Duration `env:"LOG_DB_RETENTION"`
	PruneSchedule string        `env:"LOG_DB_PRUNE_SCHEDULE" envDefault:"@hourly"`
}

// RateLimit holds the token endpoint throttle. A zero rate disables it.
type RateLimit struct {
	TokenRPS   float64 `env:"TOKEN_RATE_LIMIT" envDefault:"1"`
	TokenBurst int     `env:"TOKEN_RATE_BURST" envDefault:"5"`
}

// Config holds application configuration.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	Env           string `env:"ENV" envDefault:"development"`
	MetricsAPIKey string `env:"METRICS_API_KEY"`

	DB    DB
	JWT   JWT
	Audit     Audit
	Log       Log
	RateLimit RateLimit
}

// Load reads .env (if present) and parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment
// when environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.IsProduction() && c.JWT.Secret == DevJWTSecret {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("config: JWT_EXPIRES_IN must be positive")
	}
	if c.Log.Retention < 0 {
		return fmt.Errorf("config: LOG_DB_RETENTION must not be negative")
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
