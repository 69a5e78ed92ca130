// Package genserver is a reference generation service. It serves the
// optimize, generate and download endpoints the client talks to and
// delegates the text work to an LLM agent.
package genserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/session"
	"github.com/Protocol-Lattice/promptly/src/workspace"
)

// Server owns the HTTP listener and the session table.
type Server struct {
	gen      Generator
	sessions *Sessions
	stats    tally.Scope
	logger   *zap.Logger
	addr     string

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

func NewServer(addr string, gen Generator, sessions *Sessions, stats tally.Scope, logger *zap.Logger) *Server {
	if stats == nil {
		stats = tally.NoopScope
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		gen:      gen,
		sessions: sessions,
		stats:    stats,
		logger:   logger,
		addr:     addr,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/optimize-prompt", s.handleOptimize)
	mux.HandleFunc("POST /api/generate-code", s.handleGenerate)
	mux.HandleFunc("GET /api/download-zip/{sessionId}", s.handleDownloadZip)
	mux.HandleFunc("GET /api/download-file/{sessionId}/{fileIndex}", s.handleDownloadFile)
	return s.withCORS(s.withLogging(mux))
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	s.mu.Lock()
	s.http = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("generation service listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type optimizeBody struct {
	Prompt string `json:"prompt"`
}

type generateBody struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	SessionID       string `json:"session_id"`
}

type generateResponse struct {
	Files     []session.FilePayload `json:"files"`
	SessionID string                `json:"session_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, "optimize", http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		s.fail(w, "optimize", http.StatusBadRequest, "Prompt is required")
		return
	}

	id, err := NewSessionID()
	if err != nil {
		s.fail(w, "optimize", http.StatusInternalServerError, "Error optimizing prompt: "+err.Error())
		return
	}
	optimized, err := s.gen.Generate(r.Context(), id, optimizeMessage(body.Prompt))
	if err != nil {
		s.logger.Warn("optimize failed", zap.Error(err))
		s.fail(w, "optimize", http.StatusInternalServerError, "Error optimizing prompt: "+err.Error())
		return
	}
	optimized = strings.TrimSpace(optimized)
	sess := s.sessions.Create(id, body.Prompt, optimized)
	s.stats.Counter("prompts_optimized").Inc(1)
	writeJSON(w, http.StatusOK, session.OptimizeResult{
		OriginalPrompt:  body.Prompt,
		OptimizedPrompt: optimized,
		SessionID:       sess.ID,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, "generate", http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := s.sessions.Get(body.SessionID); !ok {
		s.fail(w, "generate", http.StatusNotFound, "Session not found")
		return
	}
	if strings.TrimSpace(body.OptimizedPrompt) == "" {
		s.fail(w, "generate", http.StatusBadRequest, "Optimized prompt is required")
		return
	}

	reply, err := s.gen.Generate(r.Context(), body.SessionID, generateMessage(body.OptimizedPrompt))
	if err != nil {
		s.logger.Warn("generate failed", zap.String("session_id", body.SessionID), zap.Error(err))
		s.fail(w, "generate", http.StatusInternalServerError, "Error generating code: "+err.Error())
		return
	}
	files, err := ParseFiles(reply)
	switch {
	case errors.Is(err, ErrNotJSON):
		s.fail(w, "generate", http.StatusInternalServerError, "Generated response is not valid JSON")
		return
	case errors.Is(err, ErrInvalidStructure):
		s.fail(w, "generate", http.StatusInternalServerError, "Invalid generated code structure")
		return
	case err != nil:
		s.fail(w, "generate", http.StatusInternalServerError, "Error generating code: "+err.Error())
		return
	}
	if err := s.sessions.SetFiles(body.SessionID, files); err != nil {
		// expired between the lookup and now
		s.fail(w, "generate", http.StatusNotFound, "Session not found")
		return
	}

	s.stats.Counter("files_generated").Inc(int64(len(files)))
	resp := generateResponse{Files: make([]session.FilePayload, len(files)), SessionID: body.SessionID}
	for i, f := range files {
		resp.Files[i] = session.FilePayload{Path: f.Path, Content: f.Content}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) generated(id string) (Session, bool) {
	sess, ok := s.sessions.Get(id)
	if !ok || !sess.Generated {
		return Session{}, false
	}
	return sess, true
}

func (s *Server) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.generated(r.PathValue("sessionId"))
	if !ok {
		s.fail(w, "download_zip", http.StatusNotFound, "Session or files not found")
		return
	}
	var buf bytes.Buffer
	if err := workspace.WriteFiles(&buf, sess.Files); err != nil {
		s.fail(w, "download_zip", http.StatusInternalServerError, "Error creating zip: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename="+session.DefaultArchiveName)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.generated(r.PathValue("sessionId"))
	if !ok {
		s.fail(w, "download_file", http.StatusNotFound, "Session or files not found")
		return
	}
	idx, err := strconv.Atoi(r.PathValue("fileIndex"))
	if err != nil {
		s.fail(w, "download_file", http.StatusBadRequest, "Invalid file index")
		return
	}
	if idx < 0 || idx >= len(sess.Files) {
		s.fail(w, "download_file", http.StatusNotFound, "File not found")
		return
	}
	f := sess.Files[idx]
	name := session.SafeName(f.Path)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(f.Content))
}

func (s *Server) fail(w http.ResponseWriter, endpoint string, status int, detail string) {
	s.stats.Tagged(map[string]string{"endpoint": endpoint}).Counter("errors").Inc(1)
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		took := time.Since(start)
		s.stats.Counter("requests").Inc(1)
		s.stats.Timer("latency").Record(took)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", took),
		)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
