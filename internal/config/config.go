// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Content modes. A deployment uses exactly one of them for every post.
const (
	ModeMarkdown = "markdown"
	ModeRichText = "richtext"
)

const (
	defaultDBPassword = "changeme"
	defaultJWTSecret  = "techblog-dev-secret"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	SiteName string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage for post attachments
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Authoring
	ContentMode       string
	AttachmentMaxMB   int
	InlineUploadMaxMB int

	// API tokens
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode or a value cannot be parsed.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("APP_PORT", "8080"),
		Env:      envOrDefault("APP_ENV", "development"),
		SiteName: envOrDefault("SITE_NAME", "TechBlog"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "techblog"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "techblog"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "post-attachments"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		ContentMode: strings.ToLower(envOrDefault("CONTENT_MODE", ModeMarkdown)),

		JWTSecret:   envOrDefault("JWT_SECRET", defaultJWTSecret),
		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "*")),

		LogLevel: strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFile:  os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.AttachmentMaxMB, err = intOrDefault("ATTACHMENT_MAX_MB", 50); err != nil {
		return nil, err
	}
	if cfg.InlineUploadMaxMB, err = intOrDefault("INLINE_UPLOAD_MAX_MB", 20); err != nil {
		return nil, err
	}
	if cfg.LogMaxSizeMB, err = intOrDefault("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if cfg.LogMaxBackups, err = intOrDefault("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if cfg.LogMaxAgeDays, err = intOrDefault("LOG_MAX_AGE_DAYS", 28); err != nil {
		return nil, err
	}

	ttl := envOrDefault("TOKEN_TTL", "24h")
	if cfg.TokenTTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}

	if cfg.ContentMode != ModeMarkdown && cfg.ContentMode != ModeRichText {
		return nil, fmt.Errorf("CONTENT_MODE must be %q or %q, got %q", ModeMarkdown, ModeRichText, cfg.ContentMode)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return !c.IsDev() && c.Env != "testing"
}

// AttachmentMaxBytes is the per-file limit for post attachments.
func (c *Config) AttachmentMaxBytes() int64 {
	return int64(c.AttachmentMaxMB) << 20
}

// InlineUploadMaxBytes is the per-file limit for the editor upload dialog.
func (c *Config) InlineUploadMaxBytes() int64 {
	return int64(c.InlineUploadMaxMB) << 20
}

// MaxRequestBytes caps a whole request body: ten attachments (or one
// inline upload, if larger) plus room for the form fields.
func (c *Config) MaxRequestBytes() int64 {
	return max(10*c.AttachmentMaxBytes(), c.InlineUploadMaxBytes()) + 1<<20
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// intOrDefault reads a positive integer environment variable.
func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
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
