package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, 50*time.Millisecond, cfg.PassBudget)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 24, cfg.WindowSize)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("FXLAB_HTTP_ADDR", ":9999")
	t.Setenv("FXLAB_PASS_BUDGET", "10ms")
	t.Setenv("FXLAB_WORKERS", "4")
	t.Setenv("FXLAB_POSTGRES_DSN", "postgres://localhost/fx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Millisecond, cfg.PassBudget)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "postgres://localhost/fx", cfg.PostgresDSN)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("FXLAB_WORKERS", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
