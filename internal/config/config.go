package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// MasterEncryptionKey is the key material the credential vault derives
	// its AES key from. Required in production.
	MasterEncryptionKey string

	// DefaultSMSSegmentPrice is the fallback per-segment SMS price in minor
	// units, used when a tenant has no price configured.
	DefaultSMSSegmentPrice int64

	// SupplierTimeout bounds each outbound supplier API call.
	SupplierTimeout time.Duration

	// SMSProviderURL is the messaging endpoint SMS notifications are
	// posted to. The per-tenant API key and sender come from the tenant
	// record.
	SMSProviderURL string
	SMSTimeout     time.Duration

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RateLimit RateLimitConfig
	Poller    PollerConfig
}

// PollerConfig controls the background order status poller.
type PollerConfig struct {
	Enabled   bool
	Interval  time.Duration
	MinAge    time.Duration
	BatchSize int
}

// RateLimitConfig selects the rate limiter backend. With an empty RedisAddr
// the in-process fixed-window limiter is used.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OrderRate     float64
	OrderBurst    int
	WindowMax     int
	Window        time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "unlockd"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		MasterEncryptionKey:    strings.TrimSpace(getenv("ENCRYPTION_KEY", "")),
		DefaultSMSSegmentPrice: getenvInt64("SMS_SEGMENT_PRICE", 5),
		SupplierTimeout:        getenvDuration("SUPPLIER_TIMEOUT", 30*time.Second),

		SMSProviderURL: getenv("SMS_PROVIDER_URL", "https://api.imiconnect.io/resources/v1/messaging"),
		SMSTimeout:     getenvDuration("SMS_TIMEOUT", 15*time.Second),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "unlockd"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", true),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
			OrderRate:     getenvFloat("RATE_LIMIT_ORDER_RATE", 1),
			OrderBurst:    int(getenvInt64("RATE_LIMIT_ORDER_BURST", 10)),
			WindowMax:     int(getenvInt64("RATE_LIMIT_WINDOW_MAX", 60)),
			Window:        getenvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},

		Poller: PollerConfig{
			Enabled:   getenvBool("POLLER_ENABLED", true),
			Interval:  getenvDuration("POLLER_INTERVAL", time.Minute),
			MinAge:    getenvDuration("POLLER_MIN_AGE", 2*time.Minute),
			BatchSize: int(getenvInt64("POLLER_BATCH_SIZE", 50)),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
