package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"library-lending-backend/internal/infrastructure/database"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Email drivers
const (
	EmailDriverSMTP = "smtp"
	EmailDriverLog  = "log"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Database     *database.DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Email        EmailConfig
	Lending      LendingConfig
	Notification NotificationConfig
	Jobs         JobConfig
	Audit        AuditConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	CORSOrigin  string
}

type StorageConfig struct {
	Driver string // postgres | memory
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

type EmailConfig struct {
	Driver   string // smtp | log
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

// =====================================================
// LENDING
// =====================================================

type LendingConfig struct {
	DefaultLoanDays int
	MaxLoanDays     int
	LateFeePerDay   decimal.Decimal
	Currency        string
}

// =====================================================
// OVERDUE NOTIFICATION
// =====================================================

type NotificationConfig struct {
	Parallelism        int           // số reader được dispatch song song
	SendRatePerSecond  float64       // giới hạn tốc độ gửi SMTP
	SendBurst          int           // burst của rate limiter
	BreakerMaxFailures uint32        // số lỗi liên tiếp trước khi mở circuit
	BreakerTimeout     time.Duration // thời gian open trước khi half-open
	RunLockTTL         time.Duration // TTL của lock chống chạy notify đồng thời
}

type JobConfig struct {
	OverdueNotifyCron    string
	OverdueNotifyTimeout time.Duration
	OverdueNotifyRetry   int
}

type AuditConfig struct {
	WriteTimeout time.Duration
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	dbCfg, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	lateFee, err := decimal.NewFromString(getEnv("LATE_FEE_PER_DAY", "0.50"))
	if err != nil {
		return nil, fmt.Errorf("invalid LATE_FEE_PER_DAY: %w", err)
	}

	sendRate, err := strconv.ParseFloat(getEnv("NOTIFY_SEND_RATE", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_SEND_RATE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library Lending API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CORSOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		},
		Database: dbCfg,
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvBool("REDIS_ENABLED", true),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:            getEnv("JWT_ISSUER", "library-lending"),
			AccessTokenExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", 8*time.Hour),
		},
		Email: EmailConfig{
			Driver:   getEnv("EMAIL_DRIVER", EmailDriverSMTP),
			SMTPHost: getEnv("SMTP_HOST", "localhost"),
			SMTPPort: getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@library.local"),
		},
		Lending: LendingConfig{
			DefaultLoanDays: getEnvInt("LENDING_DEFAULT_DAYS", 14),
			MaxLoanDays:     getEnvInt("LENDING_MAX_DAYS", 365),
			LateFeePerDay:   lateFee,
			Currency:        getEnv("LATE_FEE_CURRENCY", "USD"),
		},
		Notification: NotificationConfig{
			Parallelism:        getEnvInt("NOTIFY_PARALLELISM", 4),
			SendRatePerSecond:  sendRate,
			SendBurst:          getEnvInt("NOTIFY_SEND_BURST", 5),
			BreakerMaxFailures: uint32(getEnvInt("NOTIFY_BREAKER_MAX_FAILURES", 5)),
			BreakerTimeout:     getEnvDuration("NOTIFY_BREAKER_TIMEOUT", time.Minute),
			RunLockTTL:         getEnvDuration("NOTIFY_RUN_LOCK_TTL", 10*time.Minute),
		},
		Jobs: JobConfig{
			OverdueNotifyCron:    getEnv("JOB_OVERDUE_NOTIFY_CRON", "0 8 * * *"),
			OverdueNotifyTimeout: getEnvDuration("JOB_OVERDUE_NOTIFY_TIMEOUT", 10*time.Minute),
			OverdueNotifyRetry:   getEnvInt("JOB_OVERDUE_NOTIFY_RETRY", 2),
		},
		Audit: AuditConfig{
			WriteTimeout: getEnvDuration("AUDIT_WRITE_TIMEOUT", 5*time.Second),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Storage.Driver == StorageDriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q",
			StorageDriverPostgres, StorageDriverMemory, c.Storage.Driver)
	}

	switch c.Email.Driver {
	case EmailDriverSMTP, EmailDriverLog:
	default:
		return fmt.Errorf("EMAIL_DRIVER must be %q or %q, got %q",
			EmailDriverSMTP, EmailDriverLog, c.Email.Driver)
	}

	if c.Lending.MaxLoanDays < 1 {
		return fmt.Errorf("LENDING_MAX_DAYS must be positive")
	}
	if c.Lending.DefaultLoanDays < 1 || c.Lending.DefaultLoanDays > c.Lending.MaxLoanDays {
		return fmt.Errorf("LENDING_DEFAULT_DAYS must be between 1 and %d", c.Lending.MaxLoanDays)
	}
	if c.Lending.LateFeePerDay.IsNegative() {
		return fmt.Errorf("LATE_FEE_PER_DAY cannot be negative")
	}

	if c.Notification.Parallelism < 1 {
		return fmt.Errorf("NOTIFY_PARALLELISM must be at least 1")
	}
	if c.Notification.SendRatePerSecond <= 0 || c.Notification.SendBurst < 1 {
		return fmt.Errorf("NOTIFY_SEND_RATE and NOTIFY_SEND_BURST must be positive")
	}

	if _, err := cron.ParseStandard(c.Jobs.OverdueNotifyCron); err != nil {
		return fmt.Errorf("invalid JOB_OVERDUE_NOTIFY_CRON %q: %w", c.Jobs.OverdueNotifyCron, err)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
