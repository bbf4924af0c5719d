package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	QuickActions QuickActionsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	LogQueries      bool
	ApplicationName string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	// URL (redis://...) takes precedence over Addr, Password and DB.
	URL      string
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string // "json" (default) or "console"
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// QuickActionsConfig tunes the admin batch actions.
type QuickActionsConfig struct {
	EscalateAfterHours int
	ArchiveAfterDays   int
	LockTTLSeconds     int
	LockKeyPrefix      string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "janmat-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        maxConns,
			MinConns:        minConns,
			RunMigrations:   runMigrations,
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  connMaxIdle,
			ConnMaxLifeSec:  connMaxLife,
			LogQueries:      getEnvAsBool("POSTGRES_LOG_QUERIES", false),
			ApplicationName: getEnv("APP_NAME", "janmat-api"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("APP_NAME", "janmat-api"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24*7),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@janmat.local"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		QuickActions: QuickActionsConfig{
			EscalateAfterHours: getEnvAsInt("QUICK_ACTIONS_ESCALATE_AFTER_HOURS", 72),
			ArchiveAfterDays:   getEnvAsInt("QUICK_ACTIONS_ARCHIVE_AFTER_DAYS", 30),
			LockTTLSeconds:     getEnvAsInt("QUICK_ACTIONS_LOCK_TTL_SECONDS", 120),
			LockKeyPrefix:      getEnv("QUICK_ACTIONS_LOCK_PREFIX", "janmat:lock:"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// EscalateAfter returns the age after which open complaints are overdue.
func (q QuickActionsConfig) EscalateAfter() time.Duration {
	return time.Duration(q.EscalateAfterHours) * time.Hour
}

// ArchiveAfter returns how long a complaint stays resolved before archival.
func (q QuickActionsConfig) ArchiveAfter() time.Duration {
	return time.Duration(q.ArchiveAfterDays) * 24 * time.Hour
}

// LockTTL returns the expiry of the batch lock.
func (q QuickActionsConfig) LockTTL() time.Duration {
	if q.LockTTLSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(q.LockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
