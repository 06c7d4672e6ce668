package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.Optimizer.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Optimizer.CacheTTL)
	assert.Equal(t, 20, cfg.Optimizer.MaxCourses)
	assert.Equal(t, 2, cfg.Optimizer.MaxAlternatives)
	assert.True(t, cfg.Exports.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPTIMIZER_MAX_COURSES", "5")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.Optimizer.MaxCourses)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFallsBackOnBadDuration(t *testing.T) {
	t.Setenv("OPTIMIZER_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Optimizer.CacheTTL)
}
