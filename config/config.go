package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Moneybag MoneybagConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// AdminConfig is the single operator account allowed to refund and inspect
// orders. PasswordHash is a bcrypt hash, never the plaintext password.
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// MoneybagConfig configures the payment gateway SDK. PublicBaseURL is this
// service's externally reachable base, e.g. https://shop.example.com -
// success/fail/cancel callback URLs and the IPN URL are derived from it.
type MoneybagConfig struct {
	APIKey        string
	Environment   string // "staging" or "production"
	Timeout       time.Duration
	MaxRetries    int
	Debug         bool
	PublicBaseURL string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8090"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DB_DSN", "moneybag:moneybag@tcp(localhost:3306)/moneybag?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: env("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: 15 * time.Minute,
			Issuer:       "moneybag-gateway",
		},
		Admin: AdminConfig{
			Email:        env("ADMIN_EMAIL", "admin@localhost"),
			PasswordHash: env("ADMIN_PASSWORD_HASH", ""),
		},
		Moneybag: MoneybagConfig{
			APIKey:        env("MONEYBAG_API_KEY", ""),
			Environment:   env("MONEYBAG_ENV", "staging"),
			Timeout:       30 * time.Second,
			MaxRetries:    3,
			Debug:         envBool("MONEYBAG_DEBUG"),
			PublicBaseURL: env("PUBLIC_BASE_URL", "http://localhost:8090"),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
