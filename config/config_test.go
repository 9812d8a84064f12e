package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BIND_ADDRESS", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("ROOM_IDLE_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.BindAddress)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60*time.Minute, cfg.RoomIdleTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ROOM_IDLE_TIMEOUT", "15m")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.RoomIdleTimeout)
}

func TestLoadIgnoresMalformedTimeout(t *testing.T) {
	t.Setenv("ROOM_IDLE_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 60*time.Minute, cfg.RoomIdleTimeout)
}
