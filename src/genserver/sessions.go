package genserver

import (
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/workspace"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one optimize/generate run held by the server.
type Session struct {
	ID              string
	OriginalPrompt  string
	OptimizedPrompt string
	CreatedAt       time.Time
	Files           []workspace.GeneratedFile
	Generated       bool
}

// Sessions is the in-memory session table. Entries older than the TTL are
// removed by Sweep, which the janitor started by Start calls periodically.
type Sessions struct {
	mu     sync.Mutex
	items  map[string]*Session
	ttl    time.Duration
	now    func() time.Time
	stats  tally.Scope
	logger *zap.Logger

	running bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

func NewSessions(ttl time.Duration, stats tally.Scope, logger *zap.Logger) *Sessions {
	if stats == nil {
		stats = tally.NoopScope
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		items:  map[string]*Session{},
		ttl:    ttl,
		now:    time.Now,
		stats:  stats,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// NewSessionID returns a random session id.
func NewSessionID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create registers a session under id.
func (s *Sessions) Create(id, original, optimized string) Session {
	sess := &Session{
		ID:              id,
		OriginalPrompt:  original,
		OptimizedPrompt: optimized,
		CreatedAt:       s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = sess
	s.updateGauge()
	return *sess
}

// Get returns a copy of the session.
func (s *Sessions) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		return Session{}, false
	}
	cp := *sess
	cp.Files = append([]workspace.GeneratedFile(nil), sess.Files...)
	return cp, true
}

// SetFiles stores the generation result of a session, replacing any
// previous one.
func (s *Sessions) SetFiles(id string, files []workspace.GeneratedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Files = append([]workspace.GeneratedFile(nil), files...)
	sess.Generated = true
	return nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.items {
		if now.Sub(sess.CreatedAt) > s.ttl {
			delete(s.items, id)
			removed++
		}
	}
	if removed > 0 {
		s.stats.Counter("sessions_expired").Inc(int64(removed))
		s.logger.Debug("expired sessions removed", zap.Int("count", removed))
	}
	s.updateGauge()
	return removed
}

// Start runs Sweep every interval until Close.
func (s *Sessions) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.closed {
		return
	}
	s.running = true
	go s.janitor(interval)
}

func (s *Sessions) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Close stops the janitor and waits for it to exit.
func (s *Sessions) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	running := s.running
	close(s.stop)
	s.mu.Unlock()

	if running {
		<-s.done
	}
	return nil
}

func (s *Sessions) updateGauge() {
	s.stats.Gauge("active_sessions").Update(float64(len(s.items)))
}
