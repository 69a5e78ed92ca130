// Package workflow drives the optimize, generate and edit pipeline. It owns
// the pipeline state and the status banner, and is the only place where
// service results are applied to the workspace.
//
// Network work is split in three so an event loop never blocks: Begin runs
// the guards and moves to the in-flight state, Run performs the request and
// touches nothing, Complete applies the result. Every request carries a
// sequence number; a result whose number is no longer current (because of a
// reset) is dropped with ErrStale.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/editor"
	"github.com/Protocol-Lattice/promptly/src/session"
	"github.com/Protocol-Lattice/promptly/src/terminal"
	"github.com/Protocol-Lattice/promptly/src/workspace"
)

const (
	opOptimize      = "optimize prompt"
	opGenerate      = "generate code"
	opDownloadZip   = "download archive"
	opDownloadFile  = "download file"
	opLocalArchive  = "save archive"
	opCopyClipboard = "copy to clipboard"
)

// Saver stores a downloaded blob and returns where it went.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// Options wires a Controller. Only Service is required.
type Options struct {
	Service   session.Service
	Store     *workspace.Store
	Editor    *editor.Coordinator
	Shell     *terminal.Shell
	Saver     Saver
	Previewer terminal.Previewer
	Logger    *zap.Logger
}

type Controller struct {
	mu sync.Mutex

	svc     session.Service
	store   *workspace.Store
	editor  *editor.Coordinator
	shell   *terminal.Shell
	saver   Saver
	preview terminal.Previewer
	logger  *zap.Logger

	state     State
	prompt    string
	optimized string
	sessionID string
	status    Status

	seq      uint64
	inflight map[Action]uint64
}

func New(opts Options) *Controller {
	c := &Controller{
		svc:      opts.Service,
		store:    opts.Store,
		editor:   opts.Editor,
		shell:    opts.Shell,
		saver:    opts.Saver,
		preview:  opts.Previewer,
		logger:   opts.Logger,
		inflight: map[Action]uint64{},
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.store == nil {
		c.store = workspace.NewStore(c.logger)
	}
	if c.editor == nil {
		c.editor = editor.NewCoordinator(c.store, nil)
	}
	if c.shell == nil {
		c.shell = terminal.NewShell(terminal.Simulator{Files: c.store})
	}
	if c.saver == nil {
		c.saver = session.Saver{Dir: "."}
	}
	if c.preview == nil {
		c.preview = terminal.StaticPreview("")
	}
	return c
}

func (c *Controller) Store() *workspace.Store { return c.store }

func (c *Controller) Editor() *editor.Coordinator { return c.editor }

func (c *Controller) Shell() *terminal.Shell { return c.shell }

func (c *Controller) Service() session.Service { return c.svc }

func (c *Controller) Logger() *zap.Logger { return c.logger }

// PreviewURL is where the generated app would be served.
func (c *Controller) PreviewURL() string { return c.preview.PreviewURL() }

func (c *Controller) setStatus(k StatusKind, msg string) {
	c.status = Status{Kind: k, Message: msg}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

func (c *Controller) OptimizedPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.optimized
}

// SessionID is the id received from the last optimize, or the one of the
// active workspace once code is generated.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) DismissStatus() {
	c.mu.Lock()
	c.status = Status{}
	c.mu.Unlock()
}

// Busy reports whether a is in flight.
func (c *Controller) Busy(a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[a]
	return ok
}

// Loading reports whether a pipeline request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, o := c.inflight[ActionOptimize]
	_, g := c.inflight[ActionGenerate]
	return o || g
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State           State
	Prompt          string
	OptimizedPrompt string
	SessionID       string
	Files           int
	Status          Status
	Busy            []Action
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:           c.state,
		Prompt:          c.prompt,
		OptimizedPrompt: c.optimized,
		SessionID:       c.sessionID,
		Files:           c.store.Len(),
		Status:          c.status,
	}
	for _, a := range []Action{ActionOptimize, ActionGenerate, ActionDownloadArchive, ActionDownloadFile} {
		if _, ok := c.inflight[a]; ok {
			snap.Busy = append(snap.Busy, a)
		}
	}
	return snap
}

// SetPrompt records the raw prompt. Outside the pipeline it toggles between
// idle and prompt-entered on emptiness.
func (c *Controller) SetPrompt(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = text
	switch c.state {
	case StateIdle, StatePromptEntered, StateError:
		if strings.TrimSpace(text) == "" {
			c.state = StateIdle
		} else {
			c.state = StatePromptEntered
		}
	}
}

// SetOptimizedPrompt edits the optimized prompt in place. It reports false
// outside the optimized state.
func (c *Controller) SetOptimizedPrompt(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOptimized {
		return false
	}
	c.optimized = text
	return true
}

// UseExample loads the i-th canned prompt.
func (c *Controller) UseExample(i int) bool {
	if i < 0 || i >= len(examples) {
		return false
	}
	c.SetPrompt(examples[i].Title)
	return true
}

// Reset drops the session and returns to idle from any state. Results of
// requests still in flight will be discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.prompt = ""
	c.optimized = ""
	c.sessionID = ""
	c.status = Status{}
	c.inflight = map[Action]uint64{}
	c.store.Reset()
	c.editor.Clear()
	c.shell.Reset()
	c.logger.Info("workflow reset")
}

// begin claims a for a new request. Callers hold c.mu.
func (c *Controller) begin(a Action) (uint64, error) {
	if _, ok := c.inflight[a]; ok {
		return 0, fmt.Errorf("%s: %w", a, ErrBusy)
	}
	c.seq++
	c.inflight[a] = c.seq
	c.status = Status{}
	return c.seq, nil
}

// finish releases a if seq is still its current request. Callers hold c.mu.
func (c *Controller) finish(a Action, seq uint64) error {
	cur, ok := c.inflight[a]
	if !ok || cur != seq {
		c.logger.Debug("discarding stale response", zap.Stringer("action", a), zap.Uint64("seq", seq))
		return ErrStale
	}
	delete(c.inflight, a)
	return nil
}

func (c *Controller) fail(op string, err error) error {
	verr := session.NewValidationError(op, err)
	c.setStatus(StatusError, verr.Error())
	return verr
}

// OptimizeRequest is an optimize call prepared by BeginOptimize.
type OptimizeRequest struct {
	seq    uint64
	Prompt string
}

func (c *Controller) BeginOptimize() (OptimizeRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[ActionOptimize]; ok {
		return OptimizeRequest{}, fmt.Errorf("%s: %w", ActionOptimize, ErrBusy)
	}
	switch c.state {
	case StateIdle, StatePromptEntered, StateError, StateOptimized:
	default:
		return OptimizeRequest{}, fmt.Errorf("optimize in %s: %w", c.state, ErrInvalidState)
	}
	if strings.TrimSpace(c.prompt) == "" {
		return OptimizeRequest{}, c.fail(opOptimize, session.ErrEmptyPrompt)
	}
	seq, err := c.begin(ActionOptimize)
	if err != nil {
		return OptimizeRequest{}, err
	}
	c.state = StateOptimizing
	return OptimizeRequest{seq: seq, Prompt: c.prompt}, nil
}

// RunOptimize performs the request. It does not touch controller state.
func (c *Controller) RunOptimize(ctx context.Context, req OptimizeRequest) (*session.OptimizeResult, error) {
	return c.svc.OptimizePrompt(ctx, req.Prompt)
}

func (c *Controller) CompleteOptimize(req OptimizeRequest, res *session.OptimizeResult, runErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(ActionOptimize, req.seq); err != nil {
		return err
	}
	if runErr == nil && res == nil {
		runErr = &session.ServiceError{Op: opOptimize, Err: errors.New("empty response")}
	}
	if runErr != nil {
		c.state = StateError
		c.setStatus(StatusError, session.UserMessage(runErr, msgOptimizeErr))
		c.logger.Warn("optimize failed", zap.Error(runErr))
		return runErr
	}
	c.optimized = res.OptimizedPrompt
	c.sessionID = res.SessionID
	c.state = StateOptimized
	c.setStatus(StatusSuccess, msgOptimized)
	c.logger.Info("prompt optimized", zap.String("session_id", res.SessionID))
	return nil
}

// Optimize runs the optimize step synchronously.
func (c *Controller) Optimize(ctx context.Context) error {
	req, err := c.BeginOptimize()
	if err != nil {
		return err
	}
	res, err := c.RunOptimize(ctx, req)
	return c.CompleteOptimize(req, res, err)
}

// GenerateRequest is a generate call prepared by BeginGenerate.
type GenerateRequest struct {
	seq             uint64
	OptimizedPrompt string
	SessionID       string
}

func (c *Controller) BeginGenerate() (GenerateRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[ActionGenerate]; ok {
		return GenerateRequest{}, fmt.Errorf("%s: %w", ActionGenerate, ErrBusy)
	}
	if c.state != StateOptimized {
		return GenerateRequest{}, fmt.Errorf("generate in %s: %w", c.state, ErrInvalidState)
	}
	if strings.TrimSpace(c.optimized) == "" {
		return GenerateRequest{}, c.fail(opGenerate, session.ErrEmptyOptimizedPrompt)
	}
	seq, err := c.begin(ActionGenerate)
	if err != nil {
		return GenerateRequest{}, err
	}
	c.state = StateGenerating
	return GenerateRequest{seq: seq, OptimizedPrompt: c.optimized, SessionID: c.sessionID}, nil
}

func (c *Controller) RunGenerate(ctx context.Context, req GenerateRequest) (*session.GenerateResult, error) {
	return c.svc.GenerateCode(ctx, req.OptimizedPrompt, req.SessionID)
}

func (c *Controller) CompleteGenerate(req GenerateRequest, res *session.GenerateResult, runErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(ActionGenerate, req.seq); err != nil {
		return err
	}
	if runErr == nil && res == nil {
		runErr = &session.ServiceError{Op: opGenerate, Err: errors.New("empty response")}
	}
	if runErr == nil {
		sid := res.SessionID
		if sid == "" {
			sid = req.SessionID
		}
		files := make([]workspace.GeneratedFile, len(res.Files))
		for i, f := range res.Files {
			files[i] = workspace.GeneratedFile{Path: f.Path, Content: f.Content}
		}
		if err := c.store.InitializeFromGeneration(sid, files); err != nil {
			runErr = &session.ServiceError{Op: opGenerate, Err: err}
		} else {
			c.sessionID = sid
		}
	}
	if runErr != nil {
		c.state = StateOptimized
		c.setStatus(StatusError, session.UserMessage(runErr, msgGenerateErr))
		c.logger.Warn("generate failed", zap.Error(runErr))
		return runErr
	}
	c.editor.Clear()
	c.state = StateEditing
	c.setStatus(StatusSuccess, msgGenerated)
	c.logger.Info("code generated", zap.String("session_id", c.sessionID), zap.Int("files", c.store.Len()))
	return nil
}

// Generate runs the generate step synchronously.
func (c *Controller) Generate(ctx context.Context) error {
	req, err := c.BeginGenerate()
	if err != nil {
		return err
	}
	res, err := c.RunGenerate(ctx, req)
	return c.CompleteGenerate(req, res, err)
}
