package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fitroom/internal/providers/tryon"
	"fitroom/internal/retry"
)

// Storage driver names.
const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

// minSignedURLTTL is the floor applied to the configured signed-URL validity.
const minSignedURLTTL = 60 * time.Second

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	DatabaseURL string

	// SignedURLTTLDays is the process-wide validity window for signed URLs.
	// Its absence is a startup-fatal misconfiguration.
	SignedURLTTLDays int

	TryOnMode     string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	AuthEndpoint string
	AuthAPIKey   string

	StorageDriver    string
	S3Region         string
	S3Endpoint       string
	S3PathStyle      bool
	StoragePath      string
	StorageBaseURL   string
	StorageURLSecret string

	GeoIPDBPath    string
	AllowedOrigins []string

	GenerationBudget         time.Duration
	GenerationAttemptTimeout time.Duration
	GenerationRetryAttempts  int
	GenerationRetryDelay     time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Missing required keys fail startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TryOnMode:        getEnv("TRYON_MODE", tryon.ModeStub),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		AuthEndpoint:     os.Getenv("AUTH_ENDPOINT"),
		AuthAPIKey:       os.Getenv("AUTH_API_KEY"),
		StorageDriver:    getEnv("STORAGE_DRIVER", StorageDriverS3),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PathStyle:      getEnvBool("S3_PATH_STYLE", false),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/signed"),
		StorageURLSecret: os.Getenv("STORAGE_URL_SECRET"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		GenerationBudget:         getEnvMillis("GENERATION_BUDGET_MS", retry.DefaultBudget),
		GenerationAttemptTimeout: getEnvMillis("GENERATION_ATTEMPT_TIMEOUT_MS", retry.DefaultAttemptTimeout),
		GenerationRetryAttempts:  getEnvInt("GENERATION_RETRY_ATTEMPTS", retry.DefaultMaxAttempts),
		GenerationRetryDelay:     getEnvMillis("GENERATION_RETRY_DELAY_MS", retry.DefaultBaseDelay),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	ttlRaw, ok := os.LookupEnv("SIGNED_URL_TTL_DAYS")
	if !ok || strings.TrimSpace(ttlRaw) == "" {
		return nil, fmt.Errorf("SIGNED_URL_TTL_DAYS is required")
	}
	ttlDays, err := strconv.Atoi(strings.TrimSpace(ttlRaw))
	if err != nil {
		return nil, fmt.Errorf("SIGNED_URL_TTL_DAYS must be an integer: %w", err)
	}
	cfg.SignedURLTTLDays = ttlDays

	switch cfg.TryOnMode {
	case tryon.ModeLive:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when TRYON_MODE=live")
		}
	case tryon.ModeStub:
	default:
		return nil, fmt.Errorf("TRYON_MODE must be %q or %q", tryon.ModeLive, tryon.ModeStub)
	}

	if cfg.AuthEndpoint == "" {
		return nil, fmt.Errorf("AUTH_ENDPOINT is required")
	}

	switch cfg.StorageDriver {
	case StorageDriverS3:
	case StorageDriverLocal:
		if cfg.StorageURLSecret == "" {
			return nil, fmt.Errorf("STORAGE_URL_SECRET is required when STORAGE_DRIVER=local")
		}
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageDriverS3, StorageDriverLocal)
	}

	return cfg, nil
}

// SignedURLTTL converts the configured day count to a duration, clamped to a
// 60-second floor with no upper bound.
func (c *Config) SignedURLTTL() time.Duration {
	ttl := time.Duration(c.SignedURLTTLDays) * 24 * time.Hour
	if ttl < minSignedURLTTL {
		return minSignedURLTTL
	}
	return ttl
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
