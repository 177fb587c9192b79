package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// minSessionSecretLen is the shortest HMAC key accepted for signing session cookies.
const minSessionSecretLen = 32

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	BcryptCost  int      `env:"BCRYPT_COST"`
	Database    Database `envPrefix:"DATABASE_"`
	Session     Session  `envPrefix:"SESSION_"`
	JWT         JWT      `envPrefix:"JWT_"`
}

// Database contains connection parameters for Postgres.
type Database struct {
	URL            string        `env:"URL"`
	QueryTimeout   time.Duration `env:"QUERY_TIMEOUT" envDefault:"3s"`
	ConnectRetries uint64        `env:"CONNECT_RETRIES" envDefault:"5"`
}

// Session configures the signed client-side session cookie.
type Session struct {
	Secret     string        `env:"SECRET"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"session"`
	MaxAge     time.Duration `env:"MAX_AGE" envDefault:"24h"`
	Secure     bool          `env:"SECURE" envDefault:"false"`
}

// JWT configures bearer tokens handed to API clients.
type JWT struct {
	Secret string        `env:"SECRET"`
	Issuer string        `env:"ISSUER" envDefault:"forum-backend"`
	TTL    time.Duration `env:"TTL" envDefault:"1h"`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Database.URL = strings.TrimSpace(cfg.Database.URL)
	cfg.Session.Secret = strings.TrimSpace(cfg.Session.Secret)
	cfg.JWT.Secret = strings.TrimSpace(cfg.JWT.Secret)
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase reads only the DATABASE_* settings, for commands that never serve traffic.
func LoadDatabase() (Database, error) {
	var db Database
	if err := env.ParseWithOptions(&db, env.Options{Prefix: "DATABASE_"}); err != nil {
		return Database{}, fmt.Errorf("parse environment: %w", err)
	}
	db.URL = strings.TrimSpace(db.URL)
	if db.URL == "" {
		return Database{}, errors.New("DATABASE_URL is required")
	}
	return db, nil
}

// Validate checks required settings and value ranges.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Database.QueryTimeout <= 0 {
		return errors.New("DATABASE_QUERY_TIMEOUT must be positive")
	}
	if c.Session.MaxAge <= 0 || c.JWT.TTL <= 0 {
		return errors.New("SESSION_MAX_AGE and JWT_TTL must be positive")
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
