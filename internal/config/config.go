package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	EmailModeSMTP = "smtp"
	EmailModeLog  = "log"

	developmentSecretKey = "change_me_in_production"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Env      string
	Port     string
	Location *time.Location

	DBDriver    string
	DBPath      string
	DatabaseURL string

	SecretKey         string
	SessionTTL        time.Duration
	CodeTTL           time.Duration
	CookieSecure      bool
	CORSOrigins       []string
	PublicURL         string
	DemoEchoCodes     bool
	EmailMode         string
	SMTP              SMTPConfig
	AttemptLimit      int
	EmailAttemptLimit int
	AttemptWindow     time.Duration
	ShutdownDeadline  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// LoadDotEnv seeds the process environment from path. A missing file is not an error
// and variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the environment and validates combinations.
func Load() (Config, error) {
	cfg := Config{
		Env:              strings.ToLower(fallback(os.Getenv("APP_ENV"), EnvDevelopment)),
		Port:             fallback(os.Getenv("PORT"), "8080"),
		DBDriver:         strings.ToLower(fallback(os.Getenv("DB_DRIVER"), "sqlite")),
		DBPath:           fallback(os.Getenv("DB_PATH"), filepath.Join("data", "khare.db")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SecretKey:        strings.TrimSpace(os.Getenv("SECRET_KEY")),
		CORSOrigins:      parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		PublicURL:        strings.TrimRight(fallback(os.Getenv("PUBLIC_URL"), "http://localhost:8080"), "/"),
		EmailMode:        strings.ToLower(fallback(os.Getenv("EMAIL_MODE"), EmailModeLog)),
		ShutdownDeadline: 10 * time.Second,
		AttemptWindow:    15 * time.Minute,
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			User:     strings.TrimSpace(os.Getenv("SMTP_USER")),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     fallback(os.Getenv("EMAIL_FROM"), "onboarding@khare.local"),
			FromName: fallback(os.Getenv("EMAIL_FROM_NAME"), "Khare Construction"),
		},
	}

	location, err := time.LoadLocation(fallback(os.Getenv("TZ"), "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TZ: %w", err)
	}
	cfg.Location = location

	if cfg.SessionTTL, err = hoursVar("SESSION_TTL_HOURS", 24*7); err != nil {
		return Config{}, err
	}
	if cfg.CodeTTL, err = minutesVar("VERIFICATION_CODE_TTL_MINUTES", 10); err != nil {
		return Config{}, err
	}
	if cfg.SMTP.Port, err = intVar("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.AttemptLimit, err = intVar("OTP_ATTEMPT_LIMIT", 8); err != nil {
		return Config{}, err
	}
	if cfg.EmailAttemptLimit, err = intVar("OTP_EMAIL_ATTEMPT_LIMIT", 24); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolVar("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.DemoEchoCodes, err = boolVar("DEMO_ECHO_CODES", false); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("APP_ENV must be %s or %s, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}

	if cfg.SecretKey == "" {
		if cfg.Production() {
			return errors.New("SECRET_KEY is required in production")
		}
		cfg.SecretKey = developmentSecretKey
	}
	if cfg.Production() && len(cfg.SecretKey) < 32 {
		return errors.New("SECRET_KEY must be at least 32 characters in production")
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	switch cfg.EmailMode {
	case EmailModeLog:
	case EmailModeSMTP:
		if cfg.SMTP.Host == "" {
			return errors.New("SMTP_HOST is required when EMAIL_MODE=smtp")
		}
	default:
		return fmt.Errorf("EMAIL_MODE must be smtp or log, got %q", cfg.EmailMode)
	}

	if cfg.Production() && cfg.DemoEchoCodes {
		return errors.New("DEMO_ECHO_CODES cannot be enabled in production")
	}
	if cfg.AttemptLimit <= 0 {
		return errors.New("OTP_ATTEMPT_LIMIT must be positive")
	}
	if cfg.EmailAttemptLimit < cfg.AttemptLimit {
		return errors.New("OTP_EMAIL_ATTEMPT_LIMIT must be at least OTP_ATTEMPT_LIMIT")
	}
	return nil
}

func (cfg Config) Production() bool {
	return cfg.Env == EnvProduction
}

// DSN returns the connection string for the configured driver.
func (cfg Config) DSN() string {
	if cfg.DBDriver == "postgres" {
		return cfg.DatabaseURL
	}
	return cfg.DBPath
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (cfg Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", cfg.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func intVar(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func boolVar(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return value, nil
}

func hoursVar(key string, def int) (time.Duration, error) {
	hours, err := intVar(key, def)
	if err != nil {
		return 0, err
	}
	if hours <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return time.Duration(hours) * time.Hour, nil
}

func minutesVar(key string, def int) (time.Duration, error) {
	minutes, err := intVar(key, def)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return time.Duration(minutes) * time.Minute, nil
}
