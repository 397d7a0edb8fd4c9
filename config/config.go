package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCORSOrigins are the site origins allowed to call the API.
const DefaultCORSOrigins = "https://hezo.be,https://www.hezo.be,http://localhost:8080,http://localhost:5173"

const dispatchMarginSec = 30

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Viewer   ViewerConfig
	AWS      AWSConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated; unknown origins get the first entry
	PublicBaseURL      string // site origin used to build magic links
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/webinar?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables rate limiting and the email queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminConfig holds the shared admin secret and session settings.
type AdminConfig struct {
	Password      string // plain text or bcrypt hash
	SessionSecret string // HS256 key for session tokens; defaults to Password
	SessionHours  int
}

// ViewerConfig holds public viewer settings.
type ViewerConfig struct {
	RateLimitPerMinute int // 0 disables
}

// AWSConfig holds AWS credentials and the thumbnails bucket. An empty bucket disables uploads.
type AWSConfig struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	ThumbnailsBucket string
	PublicBaseURL    string
}

// EmailConfig holds invite email settings. Resend is used when APIKey is set, else SMTP when SMTPHost is set.
type EmailConfig struct {
	FromAddress       string
	FromName          string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	APIKey            string
	Concurrency       int
	SendTimeoutSec    int
	DispatchBudgetSec int // in-request email phase of a bulk create; below Server.WriteTimeout
}

// From returns the display-form sender, e.g. "Hezo <info@hezo.be>".
func (c EmailConfig) From() string {
	if c.FromName == "" {
		return c.FromAddress
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromAddress)
}

// SendTimeout returns the per-email timeout.
func (c EmailConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSec) * time.Second
}

// DispatchBudget returns the time allowed for sending a create request's emails.
func (c EmailConfig) DispatchBudget() time.Duration {
	return time.Duration(c.DispatchBudgetSec) * time.Second
}

// SessionTTL returns the admin session lifetime.
func (c AdminConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	adminPassword := getEnv("ADMIN_PASSWORD", "")
	writeTimeout := getEnvInt("WRITE_TIMEOUT_SEC", 120)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins),
			PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "https://hezo.be"), "/"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "webinar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			Password:      adminPassword,
			SessionSecret: getEnv("ADMIN_SESSION_SECRET", adminPassword),
			SessionHours:  getEnvInt("ADMIN_SESSION_HOURS", 12),
		},
		Viewer: ViewerConfig{
			RateLimitPerMinute: getEnvInt("VIEWER_RATE_LIMIT_PER_MINUTE", 60),
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "eu-west-1"),
			AccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ThumbnailsBucket: getEnv("AWS_S3_THUMBNAILS_BUCKET", ""),
			PublicBaseURL:    getEnv("AWS_S3_PUBLIC_BASE_URL", ""),
		},
		Email: EmailConfig{
			FromAddress:       getEnv("EMAIL_FROM_ADDRESS", "info@hezo.be"),
			FromName:          getEnv("EMAIL_FROM_NAME", "Hezo"),
			SMTPHost:          getEnv("SMTP_HOST", ""),
			SMTPPort:          getEnvInt("SMTP_PORT", 587),
			SMTPUser:          getEnv("SMTP_USER", ""),
			SMTPPass:          getEnv("SMTP_PASS", ""),
			APIKey:            getEnv("RESEND_API_KEY", ""),
			Concurrency:       getEnvInt("EMAIL_CONCURRENCY", 5),
			SendTimeoutSec:    getEnvInt("EMAIL_SEND_TIMEOUT_SEC", 10),
			DispatchBudgetSec: getEnvInt("EMAIL_DISPATCH_BUDGET_SEC", defaultDispatchBudgetSec(writeTimeout)),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Admin.Password == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}
	if c.Server.PublicBaseURL == "" {
		return errors.New("PUBLIC_BASE_URL is required")
	}
	if c.Admin.SessionHours <= 0 {
		return errors.New("ADMIN_SESSION_HOURS must be positive")
	}
	if c.Viewer.RateLimitPerMinute < 0 {
		return errors.New("VIEWER_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.Email.DispatchBudgetSec <= 0 {
		return errors.New("EMAIL_DISPATCH_BUDGET_SEC must be positive")
	}
	if c.Email.DispatchBudgetSec >= c.Server.WriteTimeout {
		return fmt.Errorf("EMAIL_DISPATCH_BUDGET_SEC (%d) must be below WRITE_TIMEOUT_SEC (%d)", c.Email.DispatchBudgetSec, c.Server.WriteTimeout)
	}
	return nil
}

// defaultDispatchBudgetSec leaves dispatchMarginSec of the write timeout for persisting invites and writing the response.
func defaultDispatchBudgetSec(writeTimeout int) int {
	if writeTimeout > 2*dispatchMarginSec {
		return writeTimeout - dispatchMarginSec
	}
	return writeTimeout / 2
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
