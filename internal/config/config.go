package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Security    SecurityConfig
	Validation  ValidationConfig
	Correlation CorrelationConfig
	Redis       RedisConfig
	Alerts      AlertConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
	// TrustedProxies lists CIDR ranges whose forwarding headers are honored.
	TrustedProxies []string
}

type SecurityConfig struct {
	// IPHashSecret keys the HMAC used to anonymize client IPs before storage.
	IPHashSecret string
	// ServiceTokenSecret verifies HS256 service tokens on the consumer/admin API.
	ServiceTokenSecret string
	// ServiceTokenExpiry bounds the lifetime of issued service tokens.
	ServiceTokenExpiry time.Duration
}

type ValidationConfig struct {
	MXLookupTimeout time.Duration
	BreachBaseURL   string
	BreachTimeout   time.Duration
}

type CorrelationConfig struct {
	QueueSize     int
	WorkerCount   int
	SweepInterval time.Duration
	// LoginRetention bounds how long raw login attempt rows are kept.
	LoginRetention time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// BanStatusTTL bounds staleness of cached ban-status lookups.
	BanStatusTTL time.Duration
}

type AlertConfig struct {
	Enabled     bool
	AWSRegion   string
	FromAddress string
	ToAddresses []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	ipHashSecret := getEnv("IP_HASH_SECRET", "")
	if ipHashSecret == "" {
		return nil, fmt.Errorf("IP_HASH_SECRET is required")
	}
	serviceTokenSecret := getEnv("SERVICE_TOKEN_SECRET", "")
	if serviceTokenSecret == "" {
		return nil, fmt.Errorf("SERVICE_TOKEN_SECRET is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "vigil"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			TrustedProxies: splitAndTrim(getEnv("TRUSTED_PROXIES", "")),
		},
		Security: SecurityConfig{
			IPHashSecret:       ipHashSecret,
			ServiceTokenSecret: serviceTokenSecret,
			ServiceTokenExpiry: getEnvAsDuration("SERVICE_TOKEN_EXPIRY", 1*time.Hour),
		},
		Validation: ValidationConfig{
			MXLookupTimeout: getEnvAsDuration("MX_LOOKUP_TIMEOUT", 5*time.Second),
			BreachBaseURL:   getEnv("BREACH_API_BASE_URL", "https://api.pwnedpasswords.com"),
			BreachTimeout:   getEnvAsDuration("BREACH_API_TIMEOUT", 5*time.Second),
		},
		Correlation: CorrelationConfig{
			QueueSize:      getEnvAsInt("CORRELATION_QUEUE_SIZE", 256),
			WorkerCount:    getEnvAsInt("CORRELATION_WORKERS", 2),
			SweepInterval:  getEnvAsDuration("BAN_SWEEP_INTERVAL", 5*time.Minute),
			LoginRetention: getEnvAsDuration("LOGIN_ATTEMPT_RETENTION", 90*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			BanStatusTTL: getEnvAsDuration("BAN_STATUS_CACHE_TTL", 30*time.Second),
		},
		Alerts: AlertConfig{
			Enabled:     getEnvAsBool("ALERTS_ENABLED", false),
			AWSRegion:   getEnv("ALERTS_AWS_REGION", "us-east-1"),
			FromAddress: getEnv("ALERTS_FROM_ADDRESS", ""),
			ToAddresses: splitAndTrim(getEnv("ALERTS_TO_ADDRESSES", "")),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSecret("IP_HASH_SECRET", ipHashSecret, env); err != nil {
		return nil, err
	}
	if err := validateSecret("SERVICE_TOKEN_SECRET", serviceTokenSecret, env); err != nil {
		return nil, err
	}

	if cfg.Alerts.Enabled && (cfg.Alerts.FromAddress == "" || len(cfg.Alerts.ToAddresses) == 0) {
		return nil, fmt.Errorf("ALERTS_FROM_ADDRESS and ALERTS_TO_ADDRESSES are required when alerts are enabled")
	}

	return cfg, nil
}

// validateSecret enforces minimum strength for server-side secrets
func validateSecret(name, secret, env string) error {
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // Production requires 256 bits
	}

	if len(secret) < minLength {
		return fmt.Errorf("%s must be at least %d characters in %s environment (got %d)",
			name, minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("%s cannot be a common weak value", name)
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
