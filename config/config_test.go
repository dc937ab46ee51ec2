package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Sync.SweepInterval)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.yaml")
	body := `
server:
  port: 9090
timezone: Asia/Kolkata
sync:
  max_attempts: 5
auth:
  enabled: true
  secret: shhh
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.True(t, cfg.Auth.Enabled)
	// Untouched keys keep their defaults
	assert.Equal(t, "./data/hr.db", cfg.Database.Path)
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Mars/Olympus"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_AuthNeedsSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  enabled: true"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}
