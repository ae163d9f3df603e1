package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.PushURL)
	assert.Equal(t, 30*time.Second, cfg.UnreadRefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.ErrorThrottleWindow)
	assert.Equal(t, 5*time.Second, cfg.NotificationAutoDismiss)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://clinic.example.com/api")
	t.Setenv("UNREAD_REFRESH_INTERVAL", "10s")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "https://clinic.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UnreadRefreshInterval)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("API_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
}
