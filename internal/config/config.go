package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env        string
	Port       int
	DBURL      string
	DBMaxConns int
	Store      string

	JWTSecret                string
	JWTTTLMinutes            int
	RevocationRetentionHours int
	BcryptCost               int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	OTLPEndpoint    string
	OTELServiceName string

	CORSAllowedOrigins     []string
	AuthRateLimitPerMinute int
	MaxBodyBytes           int64
}

func Load() Config {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	return Config{
		Env:        getEnv("APP_ENV", "dev"),
		Port:       getEnvInt("PORT", 8080),
		DBURL:      buildDBURL(),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 5),
		Store:      strings.ToLower(getEnv("STORE", StorePostgres)),

		JWTSecret:                os.Getenv("JWT_SECRET"),
		JWTTTLMinutes:            getEnvInt("JWT_TTL_MINUTES", 24*60),
		RevocationRetentionHours: getEnvInt("REVOCATION_RETENTION_HOURS", 30*24),
		BcryptCost:               getEnvInt("BCRYPT_COST", 10),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "admin"),

		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "bloghub-api"),

		CORSAllowedOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AuthRateLimitPerMinute: getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// Validate rejects configurations that must never reach production.
func (c Config) Validate() error {
	if c.JWTSecret == "" && c.Env != "dev" && c.Env != "test" {
		return errors.New("JWT_SECRET is required outside dev/test")
	}

	if c.Store != StorePostgres && c.Store != StoreMemory {
		return errors.New("STORE must be one of postgres, memory")
	}

	if c.JWTTTLMinutes < 0 {
		return errors.New("JWT_TTL_MINUTES must not be negative")
	}

	return nil
}

// SigningSecret falls back to a fixed development secret when none is set.
// Validate keeps that fallback out of production.
func (c Config) SigningSecret() string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}

	return "bloghub-dev-secret"
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c Config) RevocationRetention() time.Duration {
	return time.Duration(c.RevocationRetentionHours) * time.Hour
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "bloghub")
	pass := getEnv("DB_PASSWORD", "bloghub")
	name := getEnv("DB_NAME", "bloghub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a storage call made on behalf of a request. A nil
// parent means context.Background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
