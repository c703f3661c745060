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
	LogLevel    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Scheduler SchedulerConfig
	Textgen   TextgenConfig
}

type SchedulerConfig struct {
	Interval           time.Duration
	BatchSize          int
	SuccessProbability float64
	BillingDelay       time.Duration
	AutoStart          bool
}

type TextgenConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "donare"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:     getenv("DATABASE_TYPE", "sqlite"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "file:donare?mode=memory&cache=shared"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		Scheduler: SchedulerConfig{
			Interval:           getenvDuration("SCHEDULER_INTERVAL", time.Minute),
			BatchSize:          getenvInt("SCHEDULER_BATCH_SIZE", 5),
			SuccessProbability: getenvFloat("SCHEDULER_SUCCESS_PROBABILITY", 0.9),
			BillingDelay:       getenvDuration("SCHEDULER_BILLING_DELAY", 25*time.Millisecond),
			AutoStart:          getenvBool("SCHEDULER_AUTO_START", true),
		},
		Textgen: TextgenConfig{
			APIKey:    strings.TrimSpace(getenv("TEXTGEN_API_KEY", "")),
			Model:     getenv("TEXTGEN_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens: getenvInt("TEXTGEN_MAX_TOKENS", 256),
			Timeout:   getenvDuration("TEXTGEN_TIMEOUT", 10*time.Second),
		},
	}
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

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
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
