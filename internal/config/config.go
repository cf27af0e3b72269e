// Package config loads service settings from built-in defaults, an optional
// TOML file named by CONFIG_FILE, and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultDSN       = "file:studiobooking.db?cache=shared"
)

type Config struct {
	AppEnv   string         `toml:"app_env"`
	HTTP     HTTPConfig     `toml:"http"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Booking  BookingConfig  `toml:"booking"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type HTTPConfig struct {
	Port               string   `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ShutdownTimeout    Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL          string `toml:"url"`
	LogLevel     string `toml:"log_level"`
	MaxOpenConns int    `toml:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	JWTTTL    Duration `toml:"jwt_ttl"`
}

type BookingConfig struct {
	MaxRetries   int      `toml:"max_retries"`
	RetryBackoff Duration `toml:"retry_backoff"`
	// Studio day window in UTC hours, used for availability.
	OpenHour  int `toml:"open_hour"`
	CloseHour int `toml:"close_hour"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Duration reads TOML strings such as "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *Config {
	return &Config{
		AppEnv: "dev",
		HTTP: HTTPConfig{
			Port:            "8080",
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Database: DatabaseConfig{
			URL:      defaultDSN,
			LogLevel: "warn",
		},
		Auth: AuthConfig{
			JWTSecret: defaultJWTSecret,
			JWTTTL:    Duration{24 * time.Hour},
		},
		Booking: BookingConfig{
			MaxRetries:   3,
			RetryBackoff: Duration{50 * time.Millisecond},
			OpenHour:     9,
			CloseHour:    21,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the configuration. The caller loads any .env file beforehand.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s port=%s db=%s metrics=%t", cfg.AppEnv, cfg.HTTP.Port, redactDSN(cfg.Database.URL), cfg.Metrics.Enabled)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.AppEnv = getEnv("APP_ENV", getEnv("ENV", cfg.AppEnv))
	cfg.HTTP.Port = strings.TrimSpace(getEnv("HTTP_PORT", cfg.HTTP.Port))
	cfg.Database.URL = strings.TrimSpace(getEnv("DATABASE_URL", cfg.Database.URL))
	cfg.Database.LogLevel = strings.TrimSpace(getEnv("DB_LOG_LEVEL", cfg.Database.LogLevel))
	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Metrics.Path = strings.TrimSpace(getEnv("METRICS_PATH", cfg.Metrics.Path))
	cfg.Metrics.Enabled = parseBoolEnv("METRICS_ENABLED", cfg.Metrics.Enabled)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORSAllowedOrigins = splitList(v)
	}

	var errs []error
	var err error
	if cfg.Database.MaxOpenConns, err = parseIntEnv("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns); err != nil {
		errs = append(errs, err)
	}
	if cfg.Booking.MaxRetries, err = parseIntEnv("BOOKING_MAX_RETRIES", cfg.Booking.MaxRetries); err != nil {
		errs = append(errs, err)
	}
	if cfg.Booking.OpenHour, err = parseIntEnv("STUDIO_OPEN_HOUR", cfg.Booking.OpenHour); err != nil {
		errs = append(errs, err)
	}
	if cfg.Booking.CloseHour, err = parseIntEnv("STUDIO_CLOSE_HOUR", cfg.Booking.CloseHour); err != nil {
		errs = append(errs, err)
	}
	if cfg.Auth.JWTTTL.Duration, err = parseDurationEnv("JWT_TTL", cfg.Auth.JWTTTL.Duration); err != nil {
		errs = append(errs, err)
	}
	if cfg.Booking.RetryBackoff.Duration, err = parseDurationEnv("BOOKING_RETRY_BACKOFF", cfg.Booking.RetryBackoff.Duration); err != nil {
		errs = append(errs, err)
	}
	if cfg.HTTP.ShutdownTimeout.Duration, err = parseDurationEnv("SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout.Duration); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	if c.HTTP.Port == "" {
		return fmt.Errorf("HTTP_PORT must not be empty")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	switch strings.ToLower(c.Database.LogLevel) {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("DB_LOG_LEVEL must be one of: silent, error, warn, info")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 0")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.Auth.JWTTTL.Duration <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Booking.MaxRetries < 0 {
		return fmt.Errorf("BOOKING_MAX_RETRIES must be >= 0")
	}
	if c.Booking.RetryBackoff.Duration < 0 {
		return fmt.Errorf("BOOKING_RETRY_BACKOFF must be >= 0")
	}
	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("STUDIO_OPEN_HOUR and STUDIO_CLOSE_HOUR must satisfy 0 <= open < close <= 24")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with /")
	}

	if c.IsProdLike() {
		if isEmptyOrDefault(c.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.HTTP.Port, ":")
}

func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return dsn
}
