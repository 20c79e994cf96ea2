// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct that is built once at
// startup and handed to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Session backends understood by the session store.
const (
	SessionBackendPostgres = "postgres"
	SessionBackendValkey   = "valkey"
)

// Storage drivers understood by the object storage layer.
const (
	StorageDriverS3    = "s3"
	StorageDriverMinIO = "minio"
)

// Default contact details shown when none are configured.
const (
	DefaultContactEmail = "email@exemplo.com"
	DefaultContactPhone = "(00) 00000-0000"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	SiteName string

	// TrustProxy makes the client address come from X-Forwarded-For or
	// X-Real-IP. Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool

	// PostgreSQL connection. DatabaseURL wins over the discrete fields.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Pool settings; zero keeps the database/sql defaults.
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeSec int

	// Sessions
	SessionSecret  string
	SessionBackend string

	// Valkey (Redis-compatible), used by the valkey session backend
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// The single admin identity.
	AdminUsername     string
	AdminPasswordHash string

	// Object storage
	StorageDriver string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PublicURL   string
	MinIOUseSSL   bool

	// Contact page
	ContactEmail string
	ContactPhone string

	// Tracing
	OTelEndpoint string
	OTelDisabled bool
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("PORT", "3000"),
		Env:      envOrDefault("APP_ENV", "development"),
		SiteName: envOrDefault("SITE_NAME", "Notícias"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envOrDefault("DB_HOST", "localhost"),
		DBPort:      envOrDefault("DB_PORT", "5432"),
		DBUser:      envOrDefault("DB_USER", "noticias"),
		DBPassword:  envOrDefault("DB_PASSWORD", "changeme"),
		DBName:      envOrDefault("DB_DATABASE", "noticias"),
		DBSSLMode:   os.Getenv("DB_SSLMODE"),

		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionBackend: envOrDefault("SESSION_BACKEND", SessionBackendPostgres),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AdminUsername:     envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		StorageDriver: envOrDefault("STORAGE_DRIVER", StorageDriverS3),
		S3Bucket:      os.Getenv("AWS_BUCKET_NAME"),
		S3Region:      envOrDefault("AWS_REGION", "sa-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),

		ContactEmail: envOrDefault("CONTACT_EMAIL", DefaultContactEmail),
		ContactPhone: envOrDefault("CONTACT_PHONE", DefaultContactPhone),

		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.DBConnMaxLifetimeSec, err = envInt("DB_CONN_MAX_LIFETIME_SEC", 300); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = envBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}
	if cfg.MinIOUseSSL, err = envBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.OTelDisabled, err = envBool("OTEL_SDK_DISABLED", cfg.OTelEndpoint == ""); err != nil {
		return nil, err
	}

	if cfg.DBSSLMode == "" {
		// Managed Postgres in production requires TLS but is reached through
		// a provider certificate we do not pin.
		cfg.DBSSLMode = "disable"
		if cfg.IsProduction() {
			cfg.DBSSLMode = "require"
		}
	}

	switch cfg.SessionBackend {
	case SessionBackendPostgres, SessionBackendValkey:
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendPostgres, SessionBackendValkey, cfg.SessionBackend)
	}

	switch cfg.StorageDriver {
	case StorageDriverS3, StorageDriverMinIO:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q",
			StorageDriverS3, StorageDriverMinIO, cfg.StorageDriver)
	}

	if cfg.IsProduction() {
		if cfg.DatabaseURL == "" && cfg.DBPassword == "changeme" {
			return nil, errors.New("DB_PASSWORD must be set in production")
		}
		if cfg.SessionSecret == "" {
			return nil, errors.New("SESSION_SECRET must be set in production")
		}
		if cfg.AdminPasswordHash == "" {
			return nil, errors.New("ADMIN_PASSWORD_HASH must be set in production")
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_BUCKET_NAME must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string. A configured DATABASE_URL
// is used verbatim; otherwise one is built from the discrete settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   c.DBName,
		User:   url.UserPassword(c.DBUser, c.DBPassword),
	}
	q := u.Query()
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction reports whether secure cookies and strict checks apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StorageConfigured reports whether enough is set to talk to a bucket.
func (c *Config) StorageConfigured() bool {
	if c.S3Bucket == "" {
		return false
	}
	if c.StorageDriver == StorageDriverMinIO {
		return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
	}
	return true
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
