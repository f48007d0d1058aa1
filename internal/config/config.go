package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Session tokens
	SessionSecret   string
	SessionTokenTTL time.Duration
	SessionIdleTTL  time.Duration

	// Assistant
	MinThinkingDelay time.Duration
	MaxThinkingDelay time.Duration
	NodeID           int64

	// Optional backends; empty disables them
	DatabaseURL string
	RedisURL    string

	FeedbackWorkers int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "development"),
		SessionSecret:    mustGetEnv("SESSION_SECRET"),
		SessionTokenTTL:  time.Duration(getEnvAsIntOrDefault("SESSION_TOKEN_TTL_HOURS", 24)) * time.Hour,
		SessionIdleTTL:   time.Duration(getEnvAsIntOrDefault("SESSION_IDLE_TTL_MINUTES", 30)) * time.Minute,
		MinThinkingDelay: time.Duration(getEnvAsIntOrDefault("ASSISTANT_MIN_DELAY_MS", 800)) * time.Millisecond,
		MaxThinkingDelay: time.Duration(getEnvAsIntOrDefault("ASSISTANT_MAX_DELAY_MS", 2000)) * time.Millisecond,
		NodeID:           int64(getEnvAsIntOrDefault("NODE_ID", 1)),
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:         getEnvOrDefault("REDIS_URL", ""),
		FeedbackWorkers:  getEnvAsIntOrDefault("FEEDBACK_WORKERS", 2),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.MaxThinkingDelay < cfg.MinThinkingDelay {
		cfg.MaxThinkingDelay = cfg.MinThinkingDelay
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
