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

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 100, cfg.SweepBatchSize)
	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.MailConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("SWEEP_BATCH_SIZE", "25")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 25, cfg.SweepBatchSize)
	assert.True(t, cfg.MailConfigured())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SWEEP_BATCH_SIZE", "not-a-number")
	t.Setenv("SWEEP_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.SweepBatchSize)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestGetDirectoryEnv(t *testing.T) {
	t.Setenv("RECIPIENT_DIRECTORY", "Ana Cabrera=a.cabrera@example.com, jaime barona =j.barona@example.com,broken,=x")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.RecipientDirectory, 2)
	assert.Equal(t, "a.cabrera@example.com", cfg.RecipientDirectory["ana cabrera"])
	assert.Equal(t, "j.barona@example.com", cfg.RecipientDirectory["jaime barona"])
}
