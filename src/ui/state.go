package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Mode is the screen being shown.
type Mode int

const (
	ModePrompt Mode = iota
	ModeOptimized
	ModeIDE
)

// Focus is the IDE pane receiving keys.
type Focus int

const (
	FocusFiles Focus = iota
	FocusEditor
	FocusTerminal
)

// State contains all the data required to render the UI.
// This decouples the renderer from the workflow.
type State struct {
	Mode      Mode
	Focus     Focus
	SessionID string

	IsBusy   bool
	BusyText string

	ErrorText   string
	SuccessText string
	Notice      string

	ExampleTitle string

	// IDE
	SelectedPath string
	Lines        int
	Chars        int
	Added        int
	Removed      int
	Modified     int
	ShowDiff     bool
	Diff         string
	TerminalOpen bool

	// Bubble Tea models
	Prompt        textarea.Model
	Optimized     textarea.Model
	Files         list.Model
	Editor        textarea.Model
	Terminal      viewport.Model
	TerminalInput textinput.Model
	Spinner       spinner.Model
}
