package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "auto", cfg.Blob.Region)
	assert.True(t, cfg.CorsConfig.AllowCredentials)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Contains(t, cfg.CorsConfig.AllowedOrigins, "https://app.example.com")
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("BCRYPT_COST", "lots")
	cfg := Load()
	assert.Equal(t, 10, cfg.BcryptCost)
}
