package src

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Protocol-Lattice/promptly/src/session"
	"github.com/Protocol-Lattice/promptly/src/session/sessionmock"
	"github.com/Protocol-Lattice/promptly/src/workflow"
)

func TestRunHeadlessWritesFiles(t *testing.T) {
	svc := sessionmock.NewMockService(gomock.NewController(t))
	svc.EXPECT().OptimizePrompt(gomock.Any(), "Build a todo app").
		Return(&session.OptimizeResult{OptimizedPrompt: "opt", SessionID: "abc123"}, nil)
	svc.EXPECT().GenerateCode(gomock.Any(), "opt", "abc123").
		Return(&session.GenerateResult{Files: []session.FilePayload{
			{Path: "src/App.js", Content: "a\nb"},
			{Path: "../escape.js", Content: "x"},
		}}, nil)
	ctrl := workflow.New(workflow.Options{Service: svc})
	out := t.TempDir()

	res, err := RunHeadless(context.Background(), ctrl, "Build a todo app", out)
	require.NoError(t, err)

	assert.Equal(t, "abc123", res.SessionID)
	assert.Equal(t, "opt", res.OptimizedPrompt)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, "saved", res.Actions[0].Action)
	assert.Equal(t, 2, res.Actions[0].Lines)
	assert.Equal(t, "skipped", res.Actions[1].Action)

	data, err := os.ReadFile(filepath.Join(out, "src", "App.js"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(data))
	_, err = os.Stat(filepath.Join(filepath.Dir(out), "escape.js"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunHeadlessOptimizeFailure(t *testing.T) {
	svc := sessionmock.NewMockService(gomock.NewController(t))
	svc.EXPECT().OptimizePrompt(gomock.Any(), "x").
		Return(nil, &session.ServiceError{Op: "optimize", Status: 500, Detail: "Error optimizing prompt: boom"})
	ctrl := workflow.New(workflow.Options{Service: svc})

	_, err := RunHeadless(context.Background(), ctrl, "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error optimizing prompt: boom")
}

func TestRunHeadlessEmptyPrompt(t *testing.T) {
	_, err := RunHeadless(context.Background(), workflow.New(workflow.Options{}), "  ", "")
	assert.EqualError(t, err, "prompt cannot be empty")
}
