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

// MaxAccessTokenExpireMinutes caps the token lifetime at one year.
const MaxAccessTokenExpireMinutes = 365 * 24 * 60

// DefaultJWTSecret is the development secret. Validate refuses it when Env is "prod".
const DefaultJWTSecret = "change-me-in-production"

type Config struct {
	Port string

	// Env is "dev" (default) or "prod".
	Env string

	// DatabaseURL, when set, is used as-is and overrides the DB* fields.
	DatabaseURL string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// AccessTokenExpireMinutes is the bearer token lifetime (default 60).
	AccessTokenExpireMinutes int

	// BcryptCost is the work factor for password hashes (default 10).
	BcryptCost int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json".
	LogFormat string
	LogLevel  string

	// CORSAllowedOrigins is set via CORS_ORIGINS (comma-separated). Empty means same-origin only.
	CORSAllowedOrigins []string

	// AuthRateLimitPerMinute caps register/token requests per client IP. 0 disables the limiter.
	AuthRateLimitPerMinute int

	// MigrateOnStart applies embedded migrations before the API starts serving.
	MigrateOnStart bool

	// StatsCron is the cron spec for refreshing user/todo gauges. Empty disables it.
	StatsCron string
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "dev"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "tododb"),
		DBUser: getEnv("DB_USER", "todouser"),
		DBPass: getEnv("DB_PASS", "todopass"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:                getEnv("JWT_SECRET", DefaultJWTSecret),
		AccessTokenExpireMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
		BcryptCost:               getEnvInt("BCRYPT_COST", 10),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		AuthRateLimitPerMinute: getEnvIntAllowZero("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		MigrateOnStart:         getEnvBool("MIGRATE_ON_START", false),
		StatsCron:              getEnvAllowEmpty("STATS_CRON", "@every 1m"),
	}
}

// Validate reports configuration that would make the auth core unsafe or unusable.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Env == "prod" && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in prod")
	}
	if c.AccessTokenExpireMinutes <= 0 || c.AccessTokenExpireMinutes > MaxAccessTokenExpireMinutes {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be between 1 and %d, got %d",
			MaxAccessTokenExpireMinutes, c.AccessTokenExpireMinutes)
	}
	return nil
}

// TokenTTL is the bearer token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// DSN returns the postgres connection URL used by both database/sql and migrate.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvIntAllowZero(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvAllowEmpty returns fallback only when key is unset, so KEY= can switch a feature off.
func getEnvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
