// Package workspace holds the files of the active generation: the ordered
// file list, the editable content map and the tree projection shown in the
// sidebar. All three are kept consistent under one lock.
package workspace

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrInvalidPath   = errors.New("invalid file path")
	ErrDuplicatePath = errors.New("duplicate file path")
)

// GeneratedFile is one file of a generation. Index is its position in the
// generation response and stays fixed for the life of the session.
type GeneratedFile struct {
	Path    string
	Content string
	Index   int
}

// Name is the last path segment.
func (f GeneratedFile) Name() string {
	return baseName(f.Path)
}

// Store is the workspace of one session.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	files     []GeneratedFile
	byPath    map[string]int
	contents  map[string]string
	tree      []FileTreeNode
	changes   *ChangeTracker
	logger    *zap.Logger
}

// NewStore returns an empty store. A nil logger is replaced with a no-op one.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		byPath:   map[string]int{},
		contents: map[string]string{},
		changes:  NewChangeTracker(),
		logger:   logger,
	}
}

// InitializeFromGeneration replaces everything the store holds with files.
// Index values are reassigned from position. Input with an empty or repeated
// path is rejected and leaves the store as it was.
func (s *Store) InitializeFromGeneration(sessionID string, files []GeneratedFile) error {
	next := make([]GeneratedFile, len(files))
	byPath := make(map[string]int, len(files))
	contents := make(map[string]string, len(files))
	for i, f := range files {
		p := normalizePath(f.Path)
		if p == "" {
			return fmt.Errorf("file %d: %w", i, ErrInvalidPath)
		}
		if _, dup := byPath[p]; dup {
			return fmt.Errorf("%s: %w", p, ErrDuplicatePath)
		}
		next[i] = GeneratedFile{Path: p, Content: f.Content, Index: i}
		byPath[p] = i
		contents[p] = f.Content
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
	s.files = next
	s.byPath = byPath
	s.contents = contents
	s.tree = buildNodes(next)
	s.changes.Baseline(next)
	s.logger.Debug("workspace initialized",
		zap.String("session_id", sessionID),
		zap.Int("files", len(next)),
	)
	return nil
}

// EditFile replaces the content of path. Unknown paths are ignored and
// reported as false.
func (s *Store) EditFile(path, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byPath[path]
	if !ok {
		s.logger.Debug("edit ignored: unknown path", zap.String("path", path))
		return false
	}
	s.contents[path] = content
	s.files[i].Content = content
	s.tree[i].Content = content
	return true
}

// Reset drops the session and every file.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
	s.files = nil
	s.byPath = map[string]int{}
	s.contents = map[string]string{}
	s.tree = nil
	s.changes.Baseline(nil)
}

func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Files returns a copy of the files in generation order.
func (s *Store) Files() []GeneratedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]GeneratedFile(nil), s.files...)
}

// Tree returns a copy of the tree projection.
func (s *Store) Tree() []FileTreeNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FileTreeNode(nil), s.tree...)
}

// Names lists the display names of the tree nodes in order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.tree))
	for i, n := range s.tree {
		names[i] = n.Name
	}
	return names
}

func (s *Store) Content(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contents[path]
	return c, ok
}

func (s *Store) File(path string) (GeneratedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byPath[path]
	if !ok {
		return GeneratedFile{}, false
	}
	return s.files[i], true
}

func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byPath[path]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Diff returns the unified diff of path against its generated content, or ""
// when the file is unchanged or unknown.
func (s *Store) Diff(path string) string {
	cur, ok := s.Content(path)
	if !ok {
		return ""
	}
	return s.changes.Diff(path, cur)
}

// Stats counts added and removed lines of path since generation.
func (s *Store) Stats(path string) (added, removed int) {
	cur, ok := s.Content(path)
	if !ok {
		return 0, 0
	}
	return s.changes.Stats(path, cur)
}

// Modified lists the paths whose content differs from the generated one, in
// generation order.
func (s *Store) Modified() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, f := range s.files {
		if s.changes.Changed(f.Path, f.Content) {
			out = append(out, f.Path)
		}
	}
	return out
}

func normalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "./")
	if strings.Trim(p, "/") == "" {
		return ""
	}
	return p
}

func baseName(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
