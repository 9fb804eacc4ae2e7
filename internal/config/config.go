package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database
	MongoURI string
	MongoDB  string

	// CORS
	AllowedOrigins []string

	// Token secrets and lifetimes, one pair per token kind
	AccessSecret      string
	AccessExpiry      time.Duration
	RefreshSecret     string
	RefreshExpiry     time.Duration
	ForgotSecret      string
	ForgotExpiry      time.Duration
	VerifyEmailSecret string
	VerifyEmailExpiry time.Duration
	RestoreSecret     string
	RestoreExpiry     time.Duration

	// Retention
	OldPasswordExpiry time.Duration
	SweepInterval     time.Duration
	OldVisitAfter     time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

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
		AppName: envString("APP_NAME", "Postlane"),
		AppEnv:  envString("APP_ENV", "development"),
		AppURL:  envRequired("APP_URL"),
		Port:    envString("PORT", "8090"),

		MongoURI: envString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  envString("MONGO_DB", "postlane"),

		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:3000"),

		AccessSecret:      envRequired("JWT_ACCESS_SECRET"),
		AccessExpiry:      envDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		RefreshSecret:     envRequired("JWT_REFRESH_SECRET"),
		RefreshExpiry:     envDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days
		ForgotSecret:      envRequired("ACTION_FORGOT_PASSWORD_SECRET"),
		ForgotExpiry:      envDuration("ACTION_FORGOT_PASSWORD_EXPIRY", 1*time.Hour),
		VerifyEmailSecret: envRequired("ACTION_VERIFY_EMAIL_SECRET"),
		VerifyEmailExpiry: envDuration("ACTION_VERIFY_EMAIL_EXPIRY", 24*time.Hour),
		RestoreSecret:     envRequired("ACTION_ACCOUNT_RESTORE_SECRET"),
		RestoreExpiry:     envDuration("ACTION_ACCOUNT_RESTORE_EXPIRY", 1*time.Hour),

		OldPasswordExpiry: envDuration("OLD_PASSWORD_EXPIRY", 90*24*time.Hour),
		SweepInterval:     envDuration("SWEEP_INTERVAL", 12*time.Hour),
		OldVisitAfter:     envDuration("OLD_VISIT_AFTER", 30*24*time.Hour),

		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures services that may fall back to log mode in
// development are actually configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envList(key, def string) []string {
	raw := envString(key, def)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
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
