package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	AdminToken string

	BotUsername string

	OTLPEndpoint string
	OtelEnabled  bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis RedisConfig

	RateLimit RateLimitConfig

	Payment PaymentConfig

	Leaderboard LeaderboardConfig
}

// RedisConfig backs both the rate limiter and the leaderboard cache.
// Both degrade gracefully when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig guards the check-in and claim endpoints. Disabled when
// no redis is configured.
type RateLimitConfig struct {
	Enabled      bool
	CheckInRate  float64
	CheckInBurst int
	ClaimRate    float64
	ClaimBurst   int
}

type PaymentConfig struct {
	Provider       string // "toncenter" or "noop"
	Endpoint       string
	APIKey         string
	OwnerAddress   string
	TimeoutSeconds int
}

type LeaderboardConfig struct {
	CacheTTLSeconds    int
	RollupIntervalSecs int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	redisAddr := strings.TrimSpace(getenv("REDIS_ADDR", ""))

	return Config{
		AppName:     getenv("APP_SERVICE", "tonbox"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		AdminToken: strings.TrimSpace(getenv("ADMIN_API_TOKEN", "")),

		BotUsername: getenv("BOT_USERNAME", "Tonboxxx_bot"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4318"),
		OtelEnabled:  getenvBool("OTEL_ENABLED", false),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "tonbox"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},

		RateLimit: RateLimitConfig{
			Enabled:      redisAddr != "" && getenvBool("RATE_LIMIT_ENABLED", true),
			CheckInRate:  getenvFloat("RATE_LIMIT_CHECKIN_RATE", 1),
			CheckInBurst: getenvInt("RATE_LIMIT_CHECKIN_BURST", 3),
			ClaimRate:    getenvFloat("RATE_LIMIT_CLAIM_RATE", 0.5),
			ClaimBurst:   getenvInt("RATE_LIMIT_CLAIM_BURST", 2),
		},

		Payment: PaymentConfig{
			Provider:       getenv("PAYMENT_PROVIDER", "noop"),
			Endpoint:       getenv("PAYMENT_ENDPOINT", "https://toncenter.com/api/v2"),
			APIKey:         strings.TrimSpace(getenv("PAYMENT_API_KEY", "")),
			OwnerAddress:   getenv("PAYMENT_OWNER_ADDRESS", "UQAXXoHQRVRB6cXvgN388lWbyogUvKZI3V4aXAokmEzU38QQ"),
			TimeoutSeconds: getenvInt("PAYMENT_TIMEOUT_SECONDS", 30),
		},

		Leaderboard: LeaderboardConfig{
			CacheTTLSeconds:    getenvInt("LEADERBOARD_CACHE_TTL_SECONDS", 60),
			RollupIntervalSecs: getenvInt("LEADERBOARD_ROLLUP_INTERVAL_SECONDS", 300),
		},
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
