package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	t.Setenv("REACT_APP_BACKEND_URL", "")
	t.Setenv("PROMPTLY_BACKEND_URL", "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001", cfg.BackendURL)
	assert.Equal(t, "http://localhost:3001", cfg.PreviewURL)
	assert.Equal(t, time.Hour, cfg.Server.SessionTTL)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("REACT_APP_BACKEND_URL", "")
	t.Setenv("PROMPTLY_BACKEND_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
backend_url: https://gen.example.com
request_timeout: 30s
logging:
  level: debug
server:
  addr: ":9000"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://gen.example.com", cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	// untouched keys keep their defaults
	assert.Equal(t, 5*time.Minute, cfg.Server.SweepInterval)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("REACT_APP_BACKEND_URL", "http://react:8001")
	t.Setenv("PROMPTLY_BACKEND_URL", "http://promptly:8001")
	t.Setenv("PROMPTLY_DOWNLOAD_DIR", "/tmp/dl")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://promptly:8001", cfg.BackendURL)
	assert.Equal(t, "/tmp/dl", cfg.ResolveDownloadDir())
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: [oops"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.BackendURL = "  "
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.SessionTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BackendURL = ""
	cfg.RequestTimeout = -time.Second
	cfg.Server.SweepInterval = 0

	errs := multierr.Errors(cfg.Validate())
	require.Len(t, errs, 3)
	assert.EqualError(t, errs[0], "backend_url must not be empty")
	assert.EqualError(t, errs[1], "request_timeout must not be negative")
	assert.EqualError(t, errs[2], "server.sweep_interval must be positive")
}
