package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "https://api.apollo.io/v1", cfg.Apollo.BaseURL)
	assert.Equal(t, 2.0, cfg.Apollo.RequestsPerSec)
	assert.Equal(t, "https://google.serper.dev", cfg.WebSearch.BaseURL)
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.Places.BaseURL)

	assert.Equal(t, 3, cfg.Pipeline.MatchAcceptThreshold)
	assert.Equal(t, 5, cfg.Pipeline.SearchPerPage)
	assert.Equal(t, 6, cfg.Pipeline.ConfidenceHighFound)
	assert.Equal(t, 2, cfg.Pipeline.ConfidenceHighMissing)
	assert.Equal(t, 3, cfg.Pipeline.ConfidenceMediumFound)
	assert.Equal(t, 5, cfg.Pipeline.QualityCompleteFields)
	assert.Equal(t, 2, cfg.Pipeline.QualityPartialFields)
	assert.Equal(t, 30, cfg.Pipeline.StepTimeoutSecs)
	assert.Equal(t, 24, cfg.Pipeline.ProfileCacheTTLHours)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, 5000, cfg.Retry.MaxBackoffMs)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, 0.2, cfg.Retry.JitterFraction)

	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
	assert.Equal(t, 30, cfg.Circuit.ResetTimeoutSecs)

	assert.Equal(t, 5, cfg.Batch.MaxConcurrentContacts)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENRICH_STORE_DRIVER", "sqlite")
	t.Setenv("ENRICH_PIPELINE_MATCH_ACCEPT_THRESHOLD", "4")
	t.Setenv("ENRICH_BATCH_MAX_CONCURRENT_CONTACTS", "10")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Pipeline.MatchAcceptThreshold)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrentContacts)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level"}))
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrich.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"store:\n  driver: sqlite\n  database_url: enrich.db\nserver:\n  port: 9090\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "enrich.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level, "defaults still apply")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
