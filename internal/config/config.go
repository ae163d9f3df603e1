package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds client configuration
type Config struct {
	Env      string
	LogLevel string

	// Backend REST API
	APIBaseURL string
	APITimeout time.Duration

	// Push transport (WebSocket endpoint)
	PushURL string

	// Local status server for presentation adapters
	StatusAddr string

	// Durable local state store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Unread-count refresh cadence
	UnreadRefreshInterval time.Duration

	// Error throttle window for the primary notification surface
	ErrorThrottleWindow time.Duration

	// Auto-dismiss delay for success/info notifications (0 disables)
	NotificationAutoDismiss time.Duration
}

// Load reads configuration from the environment
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api"),
		APITimeout: getEnvAsDuration("API_TIMEOUT", 15*time.Second),

		PushURL: getEnv("PUSH_URL", "ws://localhost:8080/ws"),

		StatusAddr: getEnv("STATUS_ADDR", ":9180"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UnreadRefreshInterval:   getEnvAsDuration("UNREAD_REFRESH_INTERVAL", 30*time.Second),
		ErrorThrottleWindow:     getEnvAsDuration("ERROR_THROTTLE_WINDOW", 30*time.Second),
		NotificationAutoDismiss: getEnvAsDuration("NOTIFICATION_AUTO_DISMISS", 5*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
