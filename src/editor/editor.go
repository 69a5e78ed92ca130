// Package editor tracks which workspace file is open and routes edits and
// clipboard copies for it.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/atotto/clipboard"

	"github.com/Protocol-Lattice/promptly/src/workspace"
)

var ErrUnknownFile = errors.New("unknown file")

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Metrics are the live counters shown under the editor.
type Metrics struct {
	Lines int
	Chars int
}

// Measure counts lines the way a newline split does (empty text is one line)
// and characters as runes.
func Measure(text string) Metrics {
	return Metrics{
		Lines: strings.Count(text, "\n") + 1,
		Chars: utf8.RuneCountInString(text),
	}
}

// Coordinator binds the selection to a workspace store.
type Coordinator struct {
	mu        sync.Mutex
	store     *workspace.Store
	clipboard Clipboard
	selected  string
}

func NewCoordinator(store *workspace.Store, cb Clipboard) *Coordinator {
	if cb == nil {
		cb = SystemClipboard{}
	}
	return &Coordinator{store: store, clipboard: cb}
}

// Select opens path. Paths outside the current tree are refused.
func (c *Coordinator) Select(path string) bool {
	if !c.store.Has(path) {
		return false
	}
	c.mu.Lock()
	c.selected = path
	c.mu.Unlock()
	return true
}

// Selected is the open path, or "" when nothing is open or the open file no
// longer exists.
func (c *Coordinator) Selected() string {
	c.mu.Lock()
	sel := c.selected
	c.mu.Unlock()
	if sel != "" && !c.store.Has(sel) {
		return ""
	}
	return sel
}

func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// Content is the text of the open file.
func (c *Coordinator) Content() string {
	sel := c.Selected()
	if sel == "" {
		return ""
	}
	s, _ := c.store.Content(sel)
	return s
}

// Edit replaces the content of the open file.
func (c *Coordinator) Edit(content string) bool {
	sel := c.Selected()
	if sel == "" {
		return false
	}
	return c.store.EditFile(sel, content)
}

// EditPath replaces the content of path; unknown paths are ignored.
func (c *Coordinator) EditPath(path, content string) bool {
	return c.store.EditFile(path, content)
}

func (c *Coordinator) Metrics(path string) (Metrics, bool) {
	s, ok := c.store.Content(path)
	if !ok {
		return Metrics{}, false
	}
	return Measure(s), true
}

// CopyToClipboard places the current content of path on the clipboard.
func (c *Coordinator) CopyToClipboard(path string) error {
	s, ok := c.store.Content(path)
	if !ok {
		return fmt.Errorf("copy %s: %w", path, ErrUnknownFile)
	}
	if err := c.clipboard.WriteAll(s); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}

func (c *Coordinator) Diff(path string) string {
	return c.store.Diff(path)
}
