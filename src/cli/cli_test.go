package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/config"
	"github.com/Protocol-Lattice/promptly/src/genserver"
)

const todoReply = `{"files":[{"path":"src/App.js","content":"export default function App() {}"},{"path":"src/index.js","content":"import App from './App'\nrender(App)"}]}`

func todoGenerator() genserver.Generator {
	return genserver.GeneratorFunc(func(_ context.Context, _ string, prompt string) (string, error) {
		if strings.HasPrefix(prompt, genserver.OptimizerPrompt) {
			return "Build a todo app in React with add, toggle and delete", nil
		}
		return todoReply, nil
	})
}

// isolate keeps tests away from the user's config, state and downloads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PROMPTLY_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("PROMPTLY_LOG_FILE", "")
	t.Setenv("PROMPTLY_BACKEND_URL", "")
	t.Setenv("REACT_APP_BACKEND_URL", "")
	return dir
}

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	scope := tally.NewTestScope("", nil)
	sessions := genserver.NewSessions(time.Hour, scope, nil)
	srv := genserver.NewServer("", todoGenerator(), sessions, scope, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateWritesProject(t *testing.T) {
	dir := isolate(t)
	ts := backend(t)
	out := filepath.Join(dir, "todo")

	got, err := run(t, "generate", "Build", "a", "todo", "app", "--backend", ts.URL, "--out", out)
	require.NoError(t, err)

	assert.Contains(t, got, "Build a todo app in React with add, toggle and delete")
	assert.Contains(t, got, "saved     src/App.js (1 lines)")
	assert.Contains(t, got, "saved     src/index.js (2 lines)")

	data, err := os.ReadFile(filepath.Join(out, "src", "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "import App from './App'\nrender(App)", string(data))

	_, err = os.Stat(filepath.Join(dir, "state", "promptly", "promptly.log"))
	assert.NoError(t, err)
}

func TestGenerateZip(t *testing.T) {
	dir := isolate(t)
	ts := backend(t)
	downloads := filepath.Join(dir, "downloads")
	require.NoError(t, os.MkdirAll(downloads, 0o755))

	got, err := run(t, "generate", "Build a todo app", "--backend", ts.URL, "--download-dir", downloads, "--zip")
	require.NoError(t, err)
	assert.Contains(t, got, "generated src/App.js")
	assert.Contains(t, got, "Zip file downloaded successfully!")

	info, err := os.Stat(filepath.Join(downloads, "generated_code.zip"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGenerateBackendDown(t *testing.T) {
	isolate(t)
	ts := backend(t)
	url := ts.URL
	ts.Close()

	_, err := run(t, "generate", "Build a todo app", "--backend", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to optimize prompt")
}

func TestGenerateRequiresPrompt(t *testing.T) {
	isolate(t)
	_, err := run(t, "generate")
	assert.Error(t, err)
}

func TestInvalidConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: [unterminated"), 0o644))

	_, err := run(t, "generate", "x", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestServeOptionsLifecycle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"

	var srv *genserver.Server
	svc := fxtest.New(t,
		serveOptions(cfg, zap.NewNop(), todoGenerator),
		fx.Populate(&srv),
	)
	svc.RequireStart()

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.RequireStop()
	http.DefaultClient.CloseIdleConnections()
}
