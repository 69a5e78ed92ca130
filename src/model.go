package src

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Protocol-Lattice/promptly/src/session"
	"github.com/Protocol-Lattice/promptly/src/ui"
	"github.com/Protocol-Lattice/promptly/src/workflow"
)

// fileItem is one generated file in the IDE file list.
type fileItem struct {
	path  string
	index int
	first bool
}

func (f fileItem) Title() string {
	if f.first {
		return "★ " + f.path
	}
	return f.path
}
func (f fileItem) Description() string { return fmt.Sprintf("#%d", f.index) }
func (f fileItem) FilterValue() string { return f.path }

type optimizeDoneMsg struct {
	req workflow.OptimizeRequest
	res *session.OptimizeResult
	err error
}

type generateDoneMsg struct {
	req workflow.GenerateRequest
	res *session.GenerateResult
	err error
}

type downloadDoneMsg struct {
	req   workflow.DownloadRequest
	saved string
	err   error
}

type model struct {
	ctx  context.Context
	ctrl *workflow.Controller

	focus      ui.Focus
	showDiff   bool
	exampleIdx int
	notice     string

	// buf tracks the open file; editable is false when the editor could
	// not hold all of it.
	buf      editBuffer
	editable bool

	prompt    textarea.Model
	optimized textarea.Model
	editor    textarea.Model
	files     list.Model
	terminal  viewport.Model
	termInput textinput.Model
	spinner   spinner.Model
	style     ui.Styles

	width  int
	height int
}

// NewModel returns the bubbletea model driving ctrl.
func NewModel(ctx context.Context, ctrl *workflow.Controller) *model {
	st := ui.NewStyles()

	prompt := textarea.New()
	prompt.Placeholder = "Describe the app you want, e.g. Build a todo app"
	prompt.SetHeight(5)
	prompt.Focus()

	optimized := textarea.New()
	optimized.SetHeight(12)
	optimized.CharLimit = 0

	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.CharLimit = 0

	files := list.New(nil, st.FileDelegate(), 0, 0)
	files.Title = "Files"
	files.SetShowHelp(false)
	files.SetShowStatusBar(false)
	files.SetFilteringEnabled(false)

	ti := textinput.New()
	ti.Prompt = "$ "
	ti.Placeholder = "npm start"

	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = st.Thinking

	return &model{
		ctx:        ctx,
		ctrl:       ctrl,
		exampleIdx: -1,
		prompt:     prompt,
		optimized:  optimized,
		editor:     editor,
		files:      files,
		terminal:   viewport.New(0, 6),
		termInput:  ti,
		spinner:    s,
		style:      st,
	}
}

func (m *model) Init() tea.Cmd { return textarea.Blink }

// screen maps the workflow state onto a screen.
func (m *model) screen() ui.Mode {
	switch m.ctrl.State() {
	case workflow.StateOptimized, workflow.StateGenerating:
		return ui.ModeOptimized
	case workflow.StateEditing:
		return ui.ModeIDE
	default:
		return ui.ModePrompt
	}
}

// busyText describes the request in flight, if any.
func (m *model) busyText() string {
	switch {
	case m.ctrl.Busy(workflow.ActionOptimize):
		return "Optimizing..."
	case m.ctrl.Busy(workflow.ActionGenerate):
		return "Generating..."
	case m.ctrl.Busy(workflow.ActionDownloadArchive):
		return "Downloading zip..."
	case m.ctrl.Busy(workflow.ActionDownloadFile):
		return "Downloading file..."
	}
	return ""
}
