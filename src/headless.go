package src

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Protocol-Lattice/promptly/src/editor"
	"github.com/Protocol-Lattice/promptly/src/workflow"
)

// FileAction reports what happened to one generated file on disk.
type FileAction struct {
	Path, Action, Message string
	Err                   error
	Lines, Chars          int
}

type HeadlessResult struct {
	SessionID       string
	OptimizedPrompt string
	Tree            string
	Actions         []FileAction
}

// RunHeadless optimizes userPrompt, generates the project and, when out is
// set, writes every file below it.
func RunHeadless(ctx context.Context, ctrl *workflow.Controller, userPrompt, out string) (*HeadlessResult, error) {
	if ctrl == nil {
		return nil, errors.New("controller is nil")
	}
	if strings.TrimSpace(userPrompt) == "" {
		return nil, errors.New("prompt cannot be empty")
	}

	ctrl.SetPrompt(userPrompt)
	if err := ctrl.Optimize(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ctrl.Status().Message, err)
	}
	if err := ctrl.Generate(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", ctrl.Status().Message, err)
	}

	res := &HeadlessResult{
		SessionID:       ctrl.SessionID(),
		OptimizedPrompt: ctrl.OptimizedPrompt(),
		Tree:            ctrl.Store().RenderTree(),
	}
	for _, f := range ctrl.Store().Files() {
		m := editor.Measure(f.Content)
		action := FileAction{Path: f.Path, Action: "generated", Lines: m.Lines, Chars: m.Chars}
		if out != "" {
			action = writeFile(out, f.Path, f.Content, action)
		}
		res.Actions = append(res.Actions, action)
	}
	return res, nil
}

func writeFile(root, rel, content string, action FileAction) FileAction {
	abs, err := filepath.Abs(root)
	if err != nil {
		action.Action, action.Err = "error", err
		return action
	}
	dst := filepath.Join(abs, filepath.FromSlash(rel))
	if dst != abs && !strings.HasPrefix(dst, abs+string(filepath.Separator)) {
		action.Action, action.Message = "skipped", "path escapes output directory"
		return action
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		action.Action, action.Err = "error", err
		return action
	}
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
		action.Action, action.Err = "error", err
		return action
	}
	action.Action, action.Message = "saved", dst
	return action
}
