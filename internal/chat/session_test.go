package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}

func TestAppendAndHistory(t *testing.T) {
	s := NewSessionStore(time.Minute)
	defer s.Stop()

	id := NewSessionID()
	s.Append(id, Turn{Role: RoleUser, Text: "hello"})
	s.Append(id, Turn{Role: RoleModel, Text: "hi there"})

	history := s.History(id)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, RoleModel, history[1].Role)

	// The returned slice is a copy; mutating it must not affect the store.
	history[0].Text = "tampered"
	assert.Equal(t, "hello", s.History(id)[0].Text)
}

func TestHistoryOfUnknownSession(t *testing.T) {
	s := NewSessionStore(time.Minute)
	defer s.Stop()

	assert.Empty(t, s.History("sess_missing"))
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewSessionStore(time.Minute)
	defer s.Stop()

	s.Append("a", Turn{Role: RoleUser, Text: "one"})
	s.Append("b", Turn{Role: RoleUser, Text: "two"})

	require.Len(t, s.History("a"), 1)
	assert.Equal(t, "one", s.History("a")[0].Text)
	assert.Equal(t, "two", s.History("b")[0].Text)
	assert.Equal(t, 2, s.Len())
}

func TestExpireStale(t *testing.T) {
	s := NewSessionStore(10 * time.Millisecond)
	defer s.Stop()

	s.Append("old", Turn{Role: RoleUser, Text: "hello"})
	time.Sleep(25 * time.Millisecond)
	s.Append("fresh", Turn{Role: RoleUser, Text: "hi"})

	removed := s.expireStale()
	assert.Equal(t, 1, removed)
	assert.Empty(t, s.History("old"))
	assert.Len(t, s.History("fresh"), 1)
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewSessionStore(time.Minute)
	s.Stop()
	s.Stop()
}
