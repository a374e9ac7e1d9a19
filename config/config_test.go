package config

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_TTL_HOURS", "MAX_TURBINES_PER_STRING", "AUTO_ROUTE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, cfg.Port, "8080")
	assert.Equal(t, cfg.JWTTTL, 24*time.Hour)
	assert.Equal(t, cfg.MaxTurbinesPerString, 5)
	assert.Assert(t, cfg.AutoRoute)
	assert.DeepEqual(t, cfg.CORSOrigins, []string{"*"})
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("MAX_TURBINES_PER_STRING", "7")
	t.Setenv("AUTO_ROUTE", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	cfg := LoadConfig()

	assert.Equal(t, cfg.Port, "9090")
	assert.Equal(t, cfg.JWTTTL, 2*time.Hour)
	assert.Equal(t, cfg.MaxTurbinesPerString, 7)
	assert.Assert(t, !cfg.AutoRoute)
	assert.DeepEqual(t, cfg.CORSOrigins, []string{"http://a.test", "http://b.test"})
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("MAX_TURBINES_PER_STRING", "lots")
	assert.Equal(t, getEnvInt("MAX_TURBINES_PER_STRING", 5), 5)
}
