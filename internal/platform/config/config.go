package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration. It is built once at startup and
// passed explicitly to every component that needs it.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	LogLevel          slog.Level
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	MigrationsPath string
	RunMigrations  bool

	RedisURL         string
	CategoryCacheTTL time.Duration
	LoginRateLimit   string

	CORSAllowedOrigins []string
	DefaultCurrency    string
	ShutdownTimeout    time.Duration
	DefaultPageLimit   int
	MaxPageLimit       int
	AdminUsernames     []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "expenseflow-backend")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CATEGORY_CACHE_TTL", "5m")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DEFAULT_PAGE_LIMIT", 100)
	v.SetDefault("MAX_PAGE_LIMIT", 500)
	v.SetDefault("ADMIN_USERNAMES", "")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:    v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
		RunMigrations:    v.GetBool("RUN_MIGRATIONS"),
		RedisURL:         v.GetString("REDIS_URL"),
		LoginRateLimit:   v.GetString("LOGIN_RATE_LIMIT"),
		DefaultCurrency:  strings.ToUpper(strings.TrimSpace(v.GetString("DEFAULT_CURRENCY"))),
		DefaultPageLimit: v.GetInt("DEFAULT_PAGE_LIMIT"),
		MaxPageLimit:     v.GetInt("MAX_PAGE_LIMIT"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		slog.Warn("Invalid LOG_LEVEL, defaulting to info", slog.String("value", v.GetString("LOG_LEVEL")))
		cfg.LogLevel = slog.LevelInfo
	}

	cfg.JWTExpiryDuration = durationOrDefault(v, "JWT_EXPIRY_DURATION", time.Hour)
	cfg.CategoryCacheTTL = durationOrDefault(v, "CATEGORY_CACHE_TTL", 5*time.Minute)
	cfg.ShutdownTimeout = durationOrDefault(v, "SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.AdminUsernames = splitList(v.GetString("ADMIN_USERNAMES"))

	if cfg.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("PGSQL_URL must be set"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.IsProduction && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.JWTExpiryDuration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_DURATION must be positive"))
	}
	if len(c.DefaultCurrency) != 3 {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", c.DefaultCurrency))
	}
	if c.DefaultPageLimit <= 0 {
		errs = append(errs, errors.New("DEFAULT_PAGE_LIMIT must be positive"))
	}
	if c.MaxPageLimit < c.DefaultPageLimit {
		errs = append(errs, errors.New("MAX_PAGE_LIMIT must not be lower than DEFAULT_PAGE_LIMIT"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func durationOrDefault(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			slog.Warn("Invalid duration, using default",
				slog.String("key", key), slog.String("value", raw), slog.Duration("default", fallback))
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
