package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

func ideState() State {
	ta := textarea.New()
	ta.SetWidth(60)
	return State{
		Mode:          ModeIDE,
		Prompt:        textarea.New(),
		Optimized:     textarea.New(),
		Files:         list.New([]list.Item{}, list.NewDefaultDelegate(), 20, 10),
		Editor:        ta,
		Terminal:      viewport.New(60, 5),
		TerminalInput: textinput.New(),
		Spinner:       spinner.New(),
	}
}

func TestRenderPromptScreen(t *testing.T) {
	styles := NewStyles()
	ta := textarea.New()
	ta.SetWidth(80)

	output := Render(State{Mode: ModePrompt, Prompt: ta, ExampleTitle: "Build a todo app"}, styles)

	if !strings.Contains(output, "What do you want to build?") {
		t.Errorf("Expected prompt screen heading")
	}
	if !strings.Contains(output, "Example: Build a todo app") {
		t.Errorf("Expected example hint")
	}
	if !strings.Contains(output, "enter: optimize") {
		t.Errorf("Expected optimize key in footer")
	}
}

func TestRenderFooterContainsQuit(t *testing.T) {
	for _, mode := range []Mode{ModePrompt, ModeOptimized, ModeIDE} {
		s := ideState()
		s.Mode = mode
		if !strings.Contains(Render(s, NewStyles()), "ctrl+c: quit") {
			t.Errorf("Expected footer to contain quit instruction in mode %d", mode)
		}
	}
}

func TestRenderOptimizedScreen(t *testing.T) {
	ta := textarea.New()
	ta.SetWidth(80)
	output := Render(State{Mode: ModeOptimized, Optimized: ta, SessionID: "abc123"}, NewStyles())

	if !strings.Contains(output, "Optimized prompt") {
		t.Errorf("Expected optimized screen heading")
	}
	if !strings.Contains(output, "session abc123") {
		t.Errorf("Expected session id in header")
	}
	if !strings.Contains(output, "enter: generate") {
		t.Errorf("Expected generate key in footer")
	}
}

func TestRenderIDEStatusBar(t *testing.T) {
	s := ideState()
	s.SelectedPath = "src/App.js"
	s.Lines = 3
	s.Chars = 42
	s.Added = 1
	s.Removed = 2

	output := Render(s, NewStyles())

	for _, want := range []string{"src/App.js", "Lines: 3", "Characters: 42", "+1 -2"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRenderIDEWithoutSelection(t *testing.T) {
	s := ideState()
	output := Render(s, NewStyles())

	if !strings.Contains(output, "Select a file to view and edit") {
		t.Errorf("Expected empty editor hint")
	}
	if strings.Contains(output, "Lines:") {
		t.Errorf("Status bar should be hidden without a selection")
	}
}

func TestRenderDiffPane(t *testing.T) {
	s := ideState()
	s.SelectedPath = "src/App.js"
	s.ShowDiff = true
	s.Diff = "--- a/src/App.js\n+++ b/src/App.js\n@@ -1,1 +1,1 @@\n-old line\n+new line\n"

	output := Render(s, NewStyles())

	for _, want := range []string{"src/App.js (diff)", "@@ -1,1 +1,1 @@", "-old line", "+new line"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected diff pane to contain %q", want)
		}
	}

	s.Diff = ""
	if !strings.Contains(Render(s, NewStyles()), "No changes") {
		t.Errorf("Expected 'No changes' for an empty diff")
	}
}

func TestRenderTerminalPane(t *testing.T) {
	s := ideState()
	s.TerminalOpen = true
	s.Terminal.SetContent("Welcome to PromptlyDone Terminal\n$ ls\nApp.js  index.js")

	output := Render(s, NewStyles())

	if !strings.Contains(output, "App.js  index.js") {
		t.Errorf("Expected terminal transcript")
	}
	if !strings.Contains(output, "ctrl+l: clear terminal") {
		t.Errorf("Expected clear key while terminal is open")
	}

	s.TerminalOpen = false
	if strings.Contains(Render(s, NewStyles()), "App.js  index.js") {
		t.Errorf("Closed terminal should not render")
	}
}

func TestRenderBanner(t *testing.T) {
	s := ideState()
	s.ErrorText = "Failed to download zip file"
	s.SuccessText = "ignored while an error shows"
	output := Render(s, NewStyles())
	if !strings.Contains(output, "Failed to download zip file") {
		t.Errorf("Expected error banner")
	}
	if strings.Contains(output, "ignored while an error shows") {
		t.Errorf("Error banner should take precedence")
	}

	s = ideState()
	s.IsBusy = true
	s.BusyText = "Generating..."
	s.SuccessText = "Code copied to clipboard!"
	s.Notice = "Preview: http://localhost:3001"
	output = Render(s, NewStyles())
	for _, want := range []string{"Generating...", "Code copied to clipboard!", "Preview: http://localhost:3001"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected banner to contain %q", want)
		}
	}
}

func TestNewStyles(t *testing.T) {
	styles := NewStyles()

	if styles.Header.GetPaddingLeft() < 0 {
		t.Errorf("Header style should be initialized")
	}
	if styles.Accent.GetForeground() == nil {
		t.Errorf("Accent style should have a foreground color")
	}
	if styles.DiffAdd.GetForeground() == nil {
		t.Errorf("DiffAdd style should have a foreground color")
	}
}

func TestFileDelegateUsesListStyles(t *testing.T) {
	styles := NewStyles()
	d := styles.FileDelegate()
	if d.ShowDescription {
		t.Errorf("Expected file entries without description")
	}
	if d.Height() != 1 {
		t.Errorf("Expected one row per file, got %d", d.Height())
	}
	if d.Styles.NormalTitle.GetPaddingLeft() != styles.ListItem.GetPaddingLeft() {
		t.Errorf("Expected normal entries to use the list item style")
	}
	if d.Styles.SelectedTitle.GetForeground() != styles.ListSelected.GetForeground() {
		t.Errorf("Expected selected entry to use the list selected style")
	}
}
