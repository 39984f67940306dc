package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("PLACE_SEARCH_PROVIDER", "Naver")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "naver", cfg.PlaceSearchProvider)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	t.Setenv("PLACE_CACHE_TTL", "soon")
	t.Setenv("DEBUG_ROUTES", "maybe")

	assert.Equal(t, 0, getEnvInt("REDIS_DB", 0))
	assert.Equal(t, 10*time.Minute, getEnvDuration("PLACE_CACHE_TTL", 10*time.Minute))
	assert.False(t, getEnvBool("DEBUG_ROUTES", false))
}
