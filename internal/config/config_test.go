package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "taskdeck.db", cfg.Database.Path)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "forward_only", cfg.Cascade.Policy)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	data := `
server:
  addr: ":9000"
  rate_limit: 10
database:
  path: /tmp/td.db
auth:
  secret: file-secret
  token_ttl: 1h
cascade:
  policy: bidirectional
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, float64(10), cfg.Server.RateLimit)
	assert.Equal(t, "/tmp/td.db", cfg.Database.Path)
	assert.Equal(t, "file-secret", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "bidirectional", cfg.Cascade.Policy)
}

func TestEnvSecretOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  secret: file-secret\n"), 0644))

	t.Setenv("TASKDECK_AUTH_SECRET", "env-secret")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
}

func TestLoadInvalidCascadePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	require.NoError(t, os.WriteFile(path, []byte("cascade:\n  policy: sideways\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid cascade policy")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
