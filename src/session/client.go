// Package session talks to the external generation service: the two pipeline
// requests (optimize, generate) and the two exports (archive, single file).
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	opOptimize        = "optimize prompt"
	opGenerate        = "generate code"
	opDownloadArchive = "download archive"
	opDownloadFile    = "download file"
)

//go:generate mockgen -destination=sessionmock/service_mock.go -package=sessionmock github.com/Protocol-Lattice/promptly/src/session Service

// Service is the request/response contract with the generation service.
type Service interface {
	OptimizePrompt(ctx context.Context, rawPrompt string) (*OptimizeResult, error)
	GenerateCode(ctx context.Context, optimizedPrompt, sessionID string) (*GenerateResult, error)
	DownloadArchive(ctx context.Context, sessionID string) ([]byte, error)
	DownloadFile(ctx context.Context, sessionID string, fileIndex int) ([]byte, error)
}

type optimizeRequest struct {
	Prompt string `json:"prompt"`
}

// OptimizeResult is the success body of POST /api/optimize-prompt.
type OptimizeResult struct {
	OriginalPrompt  string `json:"original_prompt,omitempty"`
	OptimizedPrompt string `json:"optimized_prompt"`
	SessionID       string `json:"session_id"`
}

type generateRequest struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	SessionID       string `json:"session_id"`
}

// FilePayload is one generated file as it travels on the wire.
type FilePayload struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// GenerateResult is the success body of POST /api/generate-code.
type GenerateResult struct {
	Files     []FilePayload `json:"files"`
	SessionID string        `json:"session_id,omitempty"`
}

// Client implements Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets a per-request timeout. Zero means none, which is the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		cp := *c.http
		cp.Timeout = d
		c.http = &cp
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) OptimizePrompt(ctx context.Context, rawPrompt string) (*OptimizeResult, error) {
	if strings.TrimSpace(rawPrompt) == "" {
		return nil, validation(opOptimize, ErrEmptyPrompt)
	}
	var out OptimizeResult
	if err := c.doJSON(ctx, opOptimize, "/api/optimize-prompt", optimizeRequest{Prompt: rawPrompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateCode(ctx context.Context, optimizedPrompt, sessionID string) (*GenerateResult, error) {
	if strings.TrimSpace(optimizedPrompt) == "" {
		return nil, validation(opGenerate, ErrEmptyOptimizedPrompt)
	}
	var out GenerateResult
	req := generateRequest{OptimizedPrompt: optimizedPrompt, SessionID: sessionID}
	if err := c.doJSON(ctx, opGenerate, "/api/generate-code", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DownloadArchive(ctx context.Context, sessionID string) ([]byte, error) {
	if sessionID == "" {
		return nil, validation(opDownloadArchive, ErrNoSession)
	}
	return c.download(ctx, opDownloadArchive, "/api/download-zip/"+url.PathEscape(sessionID))
}

func (c *Client) DownloadFile(ctx context.Context, sessionID string, fileIndex int) ([]byte, error) {
	if sessionID == "" {
		return nil, validation(opDownloadFile, ErrNoSession)
	}
	if fileIndex < 0 {
		return nil, validation(opDownloadFile, ErrInvalidFileIndex)
	}
	path := fmt.Sprintf("/api/download-file/%s/%s", url.PathEscape(sessionID), strconv.Itoa(fileIndex))
	return c.download(ctx, opDownloadFile, path)
}

func (c *Client) doJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, err := c.send(op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ServiceError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) download(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}
	return c.send(op, req)
}

// send performs req and returns the whole body of a 2xx response. The body is
// always drained and closed.
func (c *Client) send(op string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.String("url", req.URL.String()), zap.Error(err))
		return nil, &ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debug("request done",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{Op: op, Status: resp.StatusCode, Detail: extractDetail(data)}
	}
	return data, nil
}

// extractDetail pulls the "detail" field out of an error body. FastAPI style
// validation errors carry a list; the first message is used.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
