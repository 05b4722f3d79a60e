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

	assert.Equal(t, defaultPort, cfg.HTTP.Port)
	assert.Equal(t, defaultGraphURI, cfg.Graph.URI)
	assert.Equal(t, defaultSchemaAttempts, cfg.Schema.MaxAttempts)
	assert.Equal(t, defaultLoggingLevel, cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GRAPH_URI", "bolt://graph:7687")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SCHEMA_MAX_ATTEMPTS", "8")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "bolt://graph:7687", cfg.Graph.URI)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 8, cfg.Schema.MaxAttempts)
	assert.Equal(t, "http://localhost:5173", cfg.HTTP.AllowedOriginsCSV)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SERVER_PORT", "70000")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}
