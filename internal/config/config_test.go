package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad_ValidConfig(t *testing.T) {
	configContent := `
env: test
storage_path: "/tmp/licenses.json"
admin_token: "supersecret"
http_server:
  addresshttp: ":8000"
  timeouthttp: 5s
  idle_timeout: 30s
presence:
  window_seconds: 120
rate_limit:
  rps: 10
  burst: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg := MustLoad()

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "/tmp/licenses.json", cfg.StoragePath)
	assert.Equal(t, "supersecret", cfg.AdminToken)
	assert.Equal(t, ":8000", cfg.AddressHTTP)
	assert.Equal(t, 5*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 120, cfg.WindowSeconds)
	assert.Equal(t, float64(10), cfg.RPS)
	assert.Equal(t, 20, cfg.Burst)
}

func TestMustLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: local\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ADMIN_TOKEN", "")

	cfg := MustLoad()

	assert.Equal(t, "db.json", cfg.StoragePath)
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, ":8000", cfg.AddressHTTP)
	assert.Equal(t, 300, cfg.WindowSeconds)
}

func TestMustLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: local\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ADMIN_TOKEN", "from-env")

	cfg := MustLoad()

	assert.Equal(t, "from-env", cfg.AdminToken)
}

func TestString_MasksToken(t *testing.T) {
	cfg := &Config{AdminToken: "secret"}
	assert.NotContains(t, cfg.String(), "secret")
}
