// Package terminal is the simulated shell under the editor. It recognizes a
// few commands and echoes everything else; nothing is executed.
package terminal

import (
	"strings"
	"sync"
)

const (
	WelcomeLine = "Welcome to PromptlyDone Terminal"
	HintLine    = "Type your commands below..."

	DefaultPreviewURL = "http://localhost:3001"
)

// Runner turns one command line into output lines.
type Runner interface {
	Run(input string) []string
}

// Previewer supplies the live preview address.
type Previewer interface {
	PreviewURL() string
}

// FileLister lists the names shown by ls.
type FileLister interface {
	Names() []string
}

// StaticPreview is a fixed preview address.
type StaticPreview string

func (p StaticPreview) PreviewURL() string {
	if p == "" {
		return DefaultPreviewURL
	}
	return string(p)
}

// Simulator is the canned Runner.
type Simulator struct {
	Files FileLister
}

func (s Simulator) Run(input string) []string {
	out := []string{"$ " + input}
	switch {
	case strings.Contains(input, "npm start") || strings.Contains(input, "yarn start"):
		out = append(out, "Starting development server...", "Server running on http://localhost:3000")
	case strings.Contains(input, "npm install") || strings.Contains(input, "yarn install"):
		out = append(out, "Installing dependencies...", "Dependencies installed successfully!")
	case input == "ls" || input == "dir":
		var names []string
		if s.Files != nil {
			names = s.Files.Names()
		}
		out = append(out, strings.Join(names, "  "))
	default:
		out = append(out, "Command '"+input+"' executed")
	}
	return out
}

// Shell keeps the transcript and visibility of the terminal pane.
type Shell struct {
	mu         sync.Mutex
	runner     Runner
	open       bool
	transcript []string
}

// NewShell returns a closed shell. A nil runner falls back to a Simulator
// without files.
func NewShell(r Runner) *Shell {
	if r == nil {
		r = Simulator{}
	}
	return &Shell{runner: r}
}

func (s *Shell) Open() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

func (s *Shell) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// Toggle flips visibility and reports the new value.
func (s *Shell) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}

func (s *Shell) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Run appends the output of input to the transcript and returns just those
// lines. Blank input is ignored.
func (s *Shell) Run(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	lines := s.runner.Run(input)
	s.mu.Lock()
	s.transcript = append(s.transcript, lines...)
	s.mu.Unlock()
	return append([]string(nil), lines...)
}

func (s *Shell) Transcript() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.transcript...)
}

func (s *Shell) Clear() {
	s.mu.Lock()
	s.transcript = nil
	s.mu.Unlock()
}

// Reset clears the transcript and closes the pane.
func (s *Shell) Reset() {
	s.mu.Lock()
	s.transcript = nil
	s.open = false
	s.mu.Unlock()
}
