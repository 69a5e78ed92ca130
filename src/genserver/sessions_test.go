package genserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	"github.com/Protocol-Lattice/promptly/src/workspace"
)

func gaugeValue(t *testing.T, scope tally.TestScope, name string) float64 {
	t.Helper()
	for _, g := range scope.Snapshot().Gauges() {
		if g.Name() == name {
			return g.Value()
		}
	}
	t.Fatalf("gauge %q not reported", name)
	return 0
}

func TestSessionsLifecycle(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	s := NewSessions(time.Hour, scope, nil)

	id, err := NewSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 36)

	sess := s.Create(id, "todo", "todo with auth")
	assert.Equal(t, id, sess.ID)
	assert.False(t, sess.Generated)
	assert.Equal(t, float64(1), gaugeValue(t, scope, "active_sessions"))

	files := []workspace.GeneratedFile{{Path: "a.js", Content: "x"}}
	require.NoError(t, s.SetFiles(id, files))
	files[0].Content = "mutated"

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.True(t, got.Generated)
	assert.Equal(t, "x", got.Files[0].Content)

	assert.ErrorIs(t, s.SetFiles("missing", nil), ErrSessionNotFound)
	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestSessionsSweep(t *testing.T) {
	s := NewSessions(time.Hour, nil, nil)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Create("old", "p", "o")
	now = now.Add(30 * time.Minute)
	s.Create("new", "p", "o")

	now = now.Add(31 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("new")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestSessionsJanitorStops(t *testing.T) {
	s := NewSessions(time.Nanosecond, nil, nil)
	s.Create("a", "p", "o")
	s.Start(time.Millisecond)
	s.Start(time.Millisecond)

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSessionsCloseWithoutStart(t *testing.T) {
	s := NewSessions(time.Hour, nil, nil)
	require.NoError(t, s.Close())
	s.Start(time.Millisecond)
}
