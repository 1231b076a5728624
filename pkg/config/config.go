package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Brapi (quote/fundamentals provider)
	Brapi BrapiConfig

	// Screener
	Screener ScreenerConfig

	// Redis
	Redis RedisConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// BrapiConfig holds brapi.dev API configuration
type BrapiConfig struct {
	BaseURL string
	Token   string // optional, sent as Bearer when set

	Timeout time.Duration

	// Client-side throttle, requests per second (0 disables)
	RateLimitRPS int
}

// ScreenerConfig holds screening run parameters
type ScreenerConfig struct {
	UniverseLimit int // tickers pulled from the quote list, largest first
	BatchSize     int // tickers per quote request (brapi accepts up to 20)
	Workers       int // concurrent batch fetches
	DefaultLimit  int // default result count when the caller does not say
	MaxLimit      int // hard cap on the result count
	TopFloor      int // minimum universe size for the top-discounted variant
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// SchedulerConfig holds the snapshot refresh scheduler configuration
type SchedulerConfig struct {
	Enabled  bool
	Schedule string // cron spec (with seconds field)
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Brapi: BrapiConfig{
			BaseURL:      getEnv("BRAPI_BASE_URL", "https://brapi.dev/api"),
			Token:        getEnv("BRAPI_TOKEN", ""),
			Timeout:      getEnvAsDuration("BRAPI_TIMEOUT", "30s"),
			RateLimitRPS: getEnvAsInt("BRAPI_RATE_LIMIT_RPS", 10),
		},

		Screener: ScreenerConfig{
			UniverseLimit: getEnvAsInt("SCREENER_UNIVERSE_LIMIT", 300),
			BatchSize:     getEnvAsInt("SCREENER_BATCH_SIZE", 10),
			Workers:       getEnvAsInt("SCREENER_WORKERS", 4),
			DefaultLimit:  getEnvAsInt("SCREENER_DEFAULT_LIMIT", 15),
			MaxLimit:      getEnvAsInt("SCREENER_MAX_LIMIT", 100),
			TopFloor:      getEnvAsInt("SCREENER_TOP_FLOOR", 40),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Scheduler: SchedulerConfig{
			Enabled:  getEnvAsBool("SCHEDULER_ENABLED", false),
			Schedule: getEnv("SCHEDULER_SCHEDULE", "0 */5 * * * *"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Brapi.BaseURL == "" {
		return fmt.Errorf("BRAPI_BASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screener.BatchSize < 1 || c.Screener.BatchSize > 20 {
		return fmt.Errorf("SCREENER_BATCH_SIZE must be between 1 and 20")
	}

	if c.Screener.Workers < 1 {
		return fmt.Errorf("SCREENER_WORKERS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsBool(key string, defaultValue bool) bool {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
