package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	BindAddress     string
	AllowedOrigins  []string
	RoomIdleTimeout time.Duration
}

func Load() *Config {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		BindAddress:     getEnv("BIND_ADDRESS", "0.0.0.0"),
		AllowedOrigins:  splitEnv("ALLOWED_ORIGINS", "*"),
		RoomIdleTimeout: getDurationEnv("ROOM_IDLE_TIMEOUT", 60*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
