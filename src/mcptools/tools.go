// Package mcptools exposes the workflow and the workspace over MCP so an
// agent can drive a generation session through tool calls.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/editor"
	"github.com/Protocol-Lattice/promptly/src/session"
	"github.com/Protocol-Lattice/promptly/src/workflow"
)

const (
	toolOptimizePrompt  = "optimize_prompt"
	toolGenerateCode    = "generate_code"
	toolListFiles       = "list_files"
	toolReadFile        = "read_file"
	toolEditFile        = "edit_file"
	toolDiffFile        = "diff_file"
	toolFileMetrics     = "file_metrics"
	toolTerminalRun     = "terminal_run"
	toolDownloadArchive = "download_archive"
	toolDownloadFile    = "download_file"
	toolResetSession    = "reset_session"
	toolWorkflowStatus  = "workflow_status"
)

// Tools binds MCP handlers to one workflow controller.
type Tools struct {
	ctrl   *workflow.Controller
	logger *zap.Logger
}

func New(ctrl *workflow.Controller, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{ctrl: ctrl, logger: logger}
}

// NewServer returns an MCP server with every tool registered.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"promptly",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	t.Register(s)
	return s
}

// Serve runs s over stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool(toolOptimizePrompt,
		mcp.WithDescription("Rewrite a short product request into a detailed code generation prompt and open a session"),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("What to build, e.g. 'Build a todo app'")),
	), t.handleOptimize)

	s.AddTool(mcp.NewTool(toolGenerateCode,
		mcp.WithDescription("Generate the project files for the optimized prompt of the current session"),
		mcp.WithString("optimized_prompt", mcp.Description("Replacement for the optimized prompt before generating")),
	), t.handleGenerate)

	s.AddTool(mcp.NewTool(toolListFiles,
		mcp.WithDescription("List the generated files as a tree"),
	), t.handleListFiles)

	s.AddTool(mcp.NewTool(toolReadFile,
		mcp.WithDescription("Read the current content of a generated file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path as listed by list_files")),
	), t.handleReadFile)

	s.AddTool(mcp.NewTool(toolEditFile,
		mcp.WithDescription("Replace the content of a generated file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path as listed by list_files")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Complete new file content")),
	), t.handleEditFile)

	s.AddTool(mcp.NewTool(toolDiffFile,
		mcp.WithDescription("Show a unified diff of a file against its generated content"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path as listed by list_files")),
	), t.handleDiffFile)

	s.AddTool(mcp.NewTool(toolFileMetrics,
		mcp.WithDescription("Count lines and characters of a file, plus lines changed since generation"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path as listed by list_files")),
	), t.handleFileMetrics)

	s.AddTool(mcp.NewTool(toolTerminalRun,
		mcp.WithDescription("Send a command line to the simulated project terminal"),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command line, e.g. 'npm start' or 'ls'")),
	), t.handleTerminalRun)

	s.AddTool(mcp.NewTool(toolDownloadArchive,
		mcp.WithDescription("Save all files as generated_code.zip into the download directory"),
		mcp.WithBoolean("local", mcp.Description("Zip the edited workspace instead of asking the service")),
	), t.handleDownloadArchive)

	s.AddTool(mcp.NewTool(toolDownloadFile,
		mcp.WithDescription("Save one generated file into the download directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path as listed by list_files")),
	), t.handleDownloadFile)

	s.AddTool(mcp.NewTool(toolResetSession,
		mcp.WithDescription("Discard the session, its files, edits and terminal output"),
	), t.handleReset)

	s.AddTool(mcp.NewTool(toolWorkflowStatus,
		mcp.WithDescription("Report the workflow state, session and last status message"),
	), t.handleStatus)
}

// failure renders err the way the status banner would. Rejections that
// never reach the banner are reported as is.
func (t *Tools) failure(err error) *mcp.CallToolResult {
	st := t.ctrl.Status()
	if errors.Is(err, workflow.ErrInvalidState) || errors.Is(err, workflow.ErrBusy) || !st.IsError() {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(st.Message)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) handleOptimize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing prompt"), nil
	}
	if t.ctrl.State() == workflow.StateEditing {
		t.ctrl.Reset()
	}
	t.ctrl.SetPrompt(prompt)
	if err := t.ctrl.Optimize(ctx); err != nil {
		return t.failure(err), nil
	}
	return jsonResult(map[string]any{
		"optimized_prompt": t.ctrl.OptimizedPrompt(),
		"session_id":       t.ctrl.SessionID(),
		"message":          t.ctrl.Status().Message,
	})
}

type fileSummary struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
	Lines int    `json:"lines"`
	Chars int    `json:"chars"`
}

func (t *Tools) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if override := req.GetString("optimized_prompt", ""); override != "" {
		if !t.ctrl.SetOptimizedPrompt(override) {
			return mcp.NewToolResultError("no optimized prompt to replace; call optimize_prompt first"), nil
		}
	}
	if err := t.ctrl.Generate(ctx); err != nil {
		return t.failure(err), nil
	}
	files := t.ctrl.Store().Files()
	out := make([]fileSummary, len(files))
	for i, f := range files {
		m := editor.Measure(f.Content)
		out[i] = fileSummary{Path: f.Path, Index: f.Index, Lines: m.Lines, Chars: m.Chars}
	}
	return jsonResult(map[string]any{
		"session_id": t.ctrl.SessionID(),
		"files":      out,
		"tree":       t.ctrl.Store().RenderTree(),
	})
}

func (t *Tools) handleListFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.ctrl.Store().Len() == 0 {
		return mcp.NewToolResultText("No files generated yet"), nil
	}
	var b strings.Builder
	b.WriteString(t.ctrl.Store().RenderTree())
	b.WriteString("\n\n")
	for _, f := range t.ctrl.Store().Files() {
		fmt.Fprintf(&b, "%d\t%s\n", f.Index, f.Path)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *Tools) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing path"), nil
	}
	content, ok := t.ctrl.Store().Content(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown file: %s", path)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (t *Tools) handleEditFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing path"), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing content"), nil
	}
	if !t.ctrl.Editor().EditPath(path, content) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown file: %s", path)), nil
	}
	m := editor.Measure(content)
	return mcp.NewToolResultText(fmt.Sprintf("Updated %s (%d lines, %d characters)", path, m.Lines, m.Chars)), nil
}

func (t *Tools) handleDiffFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing path"), nil
	}
	if !t.ctrl.Store().Has(path) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown file: %s", path)), nil
	}
	d := t.ctrl.Editor().Diff(path)
	if d == "" {
		d = "No changes"
	}
	return mcp.NewToolResultText(d), nil
}

func (t *Tools) handleFileMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing path"), nil
	}
	m, ok := t.ctrl.Editor().Metrics(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown file: %s", path)), nil
	}
	added, removed := t.ctrl.Store().Stats(path)
	return jsonResult(map[string]any{
		"path":    path,
		"lines":   m.Lines,
		"chars":   m.Chars,
		"added":   added,
		"removed": removed,
	})
}

func (t *Tools) handleTerminalRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil || strings.TrimSpace(command) == "" {
		return mcp.NewToolResultError("missing command"), nil
	}
	sh := t.ctrl.Shell()
	sh.Open()
	return mcp.NewToolResultText(strings.Join(sh.Run(command), "\n")), nil
}

func (t *Tools) handleDownloadArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		path string
		err  error
	)
	if req.GetBool("local", false) {
		path, err = t.ctrl.SaveLocalArchive()
	} else {
		path, err = t.ctrl.DownloadArchive(ctx)
	}
	if err != nil {
		return t.failure(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\nSaved to %s", t.ctrl.Status().Message, path)), nil
}

func (t *Tools) handleDownloadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing path"), nil
	}
	saved, err := t.ctrl.DownloadFile(ctx, path)
	if err != nil {
		return t.failure(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\nSaved to %s", t.ctrl.Status().Message, saved)), nil
}

func (t *Tools) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.ctrl.Reset()
	t.logger.Info("session reset over MCP")
	return mcp.NewToolResultText("Session reset"), nil
}

func (t *Tools) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := t.ctrl.Snapshot()
	busy := make([]string, len(snap.Busy))
	for i, a := range snap.Busy {
		busy[i] = a.String()
	}
	status := map[string]any{
		"state":            snap.State.String(),
		"prompt":           snap.Prompt,
		"optimized_prompt": snap.OptimizedPrompt,
		"session_id":       snap.SessionID,
		"files":            snap.Files,
		"busy":             busy,
		"backend":          backendOf(t.ctrl.Service()),
	}
	switch snap.Status.Kind {
	case workflow.StatusError:
		status["error"] = snap.Status.Message
	case workflow.StatusSuccess:
		status["success"] = snap.Status.Message
	}
	return jsonResult(status)
}

func backendOf(svc session.Service) string {
	if c, ok := svc.(*session.Client); ok {
		return c.BaseURL()
	}
	return ""
}
