// Package config loads the server configuration from CHURCH_* environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config errors
var (
	ErrCSRFKeyRequired = errors.New("CHURCH_CSRF_KEY is required in production")
	ErrCSRFKeyFormat   = errors.New("CHURCH_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrUnknownDriver   = errors.New("CHURCH_DB_DRIVER must be sqlite or postgres")
	ErrBucketRequired  = errors.New("CHURCH_BLOB_S3_BUCKET is required for the s3 blob driver")
)

// Config is the full server configuration.
type Config struct {
	Env     string `env:"CHURCH_ENV" envDefault:"development"`
	Addr    string `env:"CHURCH_ADDR" envDefault:":8080"`
	BaseURL string `env:"CHURCH_BASE_URL" envDefault:"http://localhost:8080"`

	LogLevel  string `env:"CHURCH_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"CHURCH_LOG_FORMAT" envDefault:"text"`

	DBDriver string `env:"CHURCH_DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"CHURCH_DB_PATH" envDefault:"church.db"`
	DBURL    string `env:"CHURCH_DB_URL"`

	CSRFKeyHex     string        `env:"CHURCH_CSRF_KEY"`
	SessionTTL     time.Duration `env:"CHURCH_SESSION_TTL" envDefault:"24h"`
	SlowRequestMS  int           `env:"CHURCH_SLOW_REQUEST_MS" envDefault:"200"`
	SlowQueryMS    int           `env:"CHURCH_SLOW_QUERY_MS" envDefault:"50"`
	RateLimitPerS  int           `env:"CHURCH_RATE_LIMIT" envDefault:"10"`
	StaticDir      string        `env:"CHURCH_STATIC_DIR" envDefault:"static"`
	AllowedOrigins []string      `env:"CHURCH_WS_ORIGINS" envSeparator:","`
	TrustProxy     bool          `env:"CHURCH_TRUST_PROXY"`

	ResendKey    string        `env:"CHURCH_RESEND_KEY"`
	EmailFrom    string        `env:"CHURCH_EMAIL_FROM" envDefault:"Biserica <noreply@biserica.be>"`
	ContactInbox string        `env:"CHURCH_CONTACT_INBOX" envDefault:"contact@biserica.be"`
	OutboxEvery  time.Duration `env:"CHURCH_OUTBOX_INTERVAL" envDefault:"1m"`

	GeoTimeout time.Duration `env:"CHURCH_GEO_TIMEOUT" envDefault:"900ms"`
	GeoEnabled bool          `env:"CHURCH_GEO_ENABLED" envDefault:"true"`

	BlobDriver     string `env:"CHURCH_BLOB_DRIVER" envDefault:"fs"`
	BlobDir        string `env:"CHURCH_BLOB_DIR" envDefault:"media"`
	BlobS3Bucket   string `env:"CHURCH_BLOB_S3_BUCKET"`
	BlobS3Region   string `env:"CHURCH_BLOB_S3_REGION" envDefault:"eu-west-1"`
	BlobS3Endpoint string `env:"CHURCH_BLOB_S3_ENDPOINT"`
	BlobS3Path     bool   `env:"CHURCH_BLOB_S3_PATH_STYLE"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return ErrUnknownDriver
	}
	if c.IsProduction() && c.CSRFKeyHex == "" {
		return ErrCSRFKeyRequired
	}
	if c.CSRFKeyHex != "" {
		if _, err := decodeKey(c.CSRFKeyHex); err != nil {
			return err
		}
	}
	if c.BlobDriver == "s3" && c.BlobS3Bucket == "" {
		return ErrBucketRequired
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKey returns the configured key or, outside production, a random one.
func (c Config) CSRFKey() ([]byte, error) {
	if c.CSRFKeyHex != "" {
		return decodeKey(c.CSRFKeyHex)
	}
	if c.IsProduction() {
		return nil, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set CHURCH_CSRF_KEY so sessions survive restarts")
	return key, nil
}

// Level maps the configured level name to a slog level.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger from LogFormat and LogLevel.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func decodeKey(h string) ([]byte, error) {
	key, err := hex.DecodeString(h)
	if err != nil || len(key) != 32 {
		return nil, ErrCSRFKeyFormat
	}
	return key, nil
}
