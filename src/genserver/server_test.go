package genserver

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
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
	"github.com/Protocol-Lattice/promptly/src/session"
)

const todoReply = `{"files":[{"path":"src/App.js","content":"export default function App() {}"},{"path":"src/index.js","content":"import App from './App'"}]}`

// scripted answers optimize calls with optimized and generate calls with reply.
func scripted(optimized, reply string, err error) GeneratorFunc {
	return func(_ context.Context, _ string, prompt string) (string, error) {
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(prompt, OptimizerPrompt) {
			return optimized, nil
		}
		return reply, nil
	}
}

func newTestServer(gen Generator) (*Server, tally.TestScope) {
	scope := tally.NewTestScope("", nil)
	return NewServer("127.0.0.1:0", gen, NewSessions(time.Hour, scope, nil), scope, zap.NewNop()), scope
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func counter(scope tally.TestScope, name string) int64 {
	var total int64
	for _, c := range scope.Snapshot().Counters() {
		if c.Name() == name {
			total += c.Value()
		}
	}
	return total
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(scripted("", "", nil))
	rec := do(t, srv.Handler(), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOptimizeAndGenerate(t *testing.T) {
	srv, scope := newTestServer(scripted("  Build a todo app with CRUD and auth\n", todoReply, nil))
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/optimize-prompt", `{"prompt":"Build a todo app"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var opt session.OptimizeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opt))
	assert.Equal(t, "Build a todo app", opt.OriginalPrompt)
	assert.Equal(t, "Build a todo app with CRUD and auth", opt.OptimizedPrompt)
	require.NotEmpty(t, opt.SessionID)

	rec = do(t, h, http.MethodPost, "/api/generate-code",
		fmt.Sprintf(`{"optimized_prompt":%q,"session_id":%q}`, opt.OptimizedPrompt, opt.SessionID))
	require.Equal(t, http.StatusOK, rec.Code)
	var gen session.GenerateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	require.Len(t, gen.Files, 2)
	assert.Equal(t, "src/App.js", gen.Files[0].Path)
	assert.Equal(t, opt.SessionID, gen.SessionID)

	assert.Equal(t, int64(1), counter(scope, "prompts_optimized"))
	assert.Equal(t, int64(2), counter(scope, "files_generated"))
	assert.Equal(t, int64(2), counter(scope, "requests"))
}

func TestOptimizeErrors(t *testing.T) {
	srv, scope := newTestServer(scripted("", "", errors.New("quota exceeded")))
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/optimize-prompt", `{"prompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error optimizing prompt: quota exceeded", detail(t, rec))

	rec = do(t, h, http.MethodPost, "/api/optimize-prompt", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/optimize-prompt", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", detail(t, rec))

	assert.Equal(t, int64(3), counter(scope, "errors"))
	assert.Zero(t, srv.sessions.Len())
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		err    error
		status int
		detail string
	}{
		{"not json", "sorry, no", nil, http.StatusInternalServerError, "Generated response is not valid JSON"},
		{"bad structure", `{"answer": 42}`, nil, http.StatusInternalServerError, "Invalid generated code structure"},
		{"model error", "", errors.New("boom"), http.StatusInternalServerError, "Error generating code: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(scripted("opt", tt.reply, tt.err))
			srv.sessions.Create("sid", "p", "opt")

			rec := do(t, srv.Handler(), http.MethodPost, "/api/generate-code", `{"optimized_prompt":"opt","session_id":"sid"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.detail, detail(t, rec))

			sess, _ := srv.sessions.Get("sid")
			assert.False(t, sess.Generated)
		})
	}
}

func TestGenerateUnknownSession(t *testing.T) {
	srv, _ := newTestServer(scripted("o", todoReply, nil))
	rec := do(t, srv.Handler(), http.MethodPost, "/api/generate-code", `{"optimized_prompt":"o","session_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Session not found", detail(t, rec))
}

func TestDownloads(t *testing.T) {
	srv, _ := newTestServer(scripted("o", todoReply, nil))
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/download-zip/sid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Session or files not found", detail(t, rec))

	srv.sessions.Create("sid", "p", "o")
	rec = do(t, h, http.MethodGet, "/api/download-file/sid/0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no files before generation")

	rec = do(t, h, http.MethodPost, "/api/generate-code", `{"optimized_prompt":"o","session_id":"sid"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/download-zip/sid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "generated_code.zip")
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "src/index.js", zr.File[1].Name)

	rec = do(t, h, http.MethodGet, "/api/download-file/sid/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "import App from './App'", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="index.js"`)

	rec = do(t, h, http.MethodGet, "/api/download-file/sid/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", detail(t, rec))

	rec = do(t, h, http.MethodGet, "/api/download-file/sid/-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/download-file/sid/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(scripted("", "", nil))
	rec := do(t, srv.Handler(), http.MethodOptions, "/api/optimize-prompt", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestClientRoundTrip(t *testing.T) {
	srv, _ := newTestServer(scripted("Build a todo app with CRUD and auth", todoReply, nil))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := session.NewClient(ts.URL, session.WithHTTPClient(ts.Client()))
	ctx := context.Background()

	opt, err := c.OptimizePrompt(ctx, "Build a todo app")
	require.NoError(t, err)
	gen, err := c.GenerateCode(ctx, opt.OptimizedPrompt, opt.SessionID)
	require.NoError(t, err)
	require.Len(t, gen.Files, 2)

	file, err := c.DownloadFile(ctx, opt.SessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, "export default function App() {}", string(file))

	archive, err := c.DownloadArchive(ctx, opt.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), archive[:2])

	_, err = c.DownloadArchive(ctx, "unknown")
	var sErr *session.ServiceError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusNotFound, sErr.Status)
	assert.Equal(t, "Session or files not found", sErr.Detail)
}

func TestModuleLifecycle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.SweepInterval = time.Millisecond

	var srv *Server
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg, zap.NewNop()),
		fx.Provide(func() Generator { return scripted("o", todoReply, nil) }),
		Module,
		fx.Populate(&srv),
	)
	app.RequireStart()

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	app.RequireStop()
	http.DefaultClient.CloseIdleConnections()
}
