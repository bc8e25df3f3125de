package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver       string
	DBConnection   string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Identity provider
	JWKSURL        string
	JWTIssuer      string
	JWKSCacheTTL   time.Duration
	ClerkAPIURL    string
	ClerkSecretKey string

	// Reset job
	ResetHourUTC int
	AdminToken   string

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Hexagon"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8000"),

		// Database
		DBDriver:       envString("DB_DRIVER", "sqlite"),
		DBConnection:   envString("DB_CONNECTION", "./data/hexagon.db"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 5),

		// Identity provider (validated where the verifier is built, so the
		// reset entrypoint runs without it)
		JWKSURL:        envString("JWKS_URL", ""),
		JWTIssuer:      envString("JWT_ISSUER", ""),
		JWKSCacheTTL:   envDuration("JWKS_CACHE_TTL", 15*time.Minute),
		ClerkAPIURL:    envString("CLERK_API_URL", "https://api.clerk.com/v1"),
		ClerkSecretKey: envString("CLERK_SECRET_KEY", ""),

		// Reset job
		ResetHourUTC: envInt("RESET_HOUR_UTC", 0),
		AdminToken:   envString("ADMIN_TOKEN", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.ResetHourUTC < 0 || cfg.ResetHourUTC > 23 {
		slog.Warn("config RESET_HOUR_UTC out of range, using midnight", "value", cfg.ResetHourUTC)
		cfg.ResetHourUTC = 0
	}

	return cfg
}

// ValidateServer checks the settings only the API server needs. The reset
// entrypoint shares Load but talks to nothing but the database, so these
// checks stay out of Load itself.
func (c *Config) ValidateServer() error {
	if c.JWKSURL == "" {
		return errors.New("JWKS_URL is required to verify bearer tokens")
	}
	if c.IsProduction() {
		if c.ClerkSecretKey == "" {
			return errors.New("production deployment requires CLERK_SECRET_KEY (set APP_ENV=development for local testing without profile sync)")
		}
		if c.AdminToken == "" {
			return errors.New("production deployment requires ADMIN_TOKEN (the admin reset endpoint is disabled without it)")
		}
	}
	return nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
