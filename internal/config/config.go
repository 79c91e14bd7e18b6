package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string

	PostgresDSN   string
	RedisAddr     string
	ClickHouseDSN string

	// Selection weights and exploration probability
	WeightProfit       float64
	WeightRelevance    float64
	WeightFulfillment  float64
	WeightTimeLeft     float64
	ExplorationEpsilon float64

	// Moderation
	ModerationSensitivity float64

	// Text generation backend
	GPTURL          string
	GPTTimeout      time.Duration
	GPTTitlePrompt  string
	GPTTextPrompt   string

	// Campaign images
	MaxImagesPerCampaign int
	MaxImageSize         int64
	AllowedImageTypes    []string

	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent. A .env file in the working directory
// is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Port = getenv("PORT", "8080")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "adengine")

	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "")

	cfg.WeightProfit = envFloat("W_PROFIT", 0.5)
	cfg.WeightRelevance = envFloat("W_RELEVANCE", 0.25)
	cfg.WeightFulfillment = envFloat("W_FULFILLMENT", 0.15)
	cfg.WeightTimeLeft = envFloat("W_TIME_LEFT", 0)
	cfg.ExplorationEpsilon = envFloat("EXPLORATION_EPSILON", 0.04)

	cfg.ModerationSensitivity = envFloat("MODERATION_SENSITIVITY", 0.3)

	cfg.GPTURL = getenv("GPT_URL", "http://localhost:8000")
	cfg.GPTTimeout = envDuration("GPT_TIMEOUT", 15*time.Second)
	cfg.GPTTitlePrompt = getenv("GPT_TITLE_PROMPT",
		"You are an advertising copywriter. Produce a short catchy ad title for the product described by the user. Reply with the title only.")
	cfg.GPTTextPrompt = getenv("GPT_TEXT_PROMPT",
		"You are an advertising copywriter. Produce persuasive ad body text for the product described by the user. Reply with the text only.")

	cfg.MaxImagesPerCampaign = envInt("MAX_IMAGES_PER_CAMPAIGN", 5)
	cfg.MaxImageSize = int64(envInt("MAX_IMAGE_SIZE", 2<<20))
	cfg.AllowedImageTypes = envList("ALLOWED_IMAGE_TYPES", []string{"image/png", "image/jpeg", "image/webp"})

	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getenv("OTLP_ENDPOINT", "localhost:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}

// envList parses a comma-separated environment variable.
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
