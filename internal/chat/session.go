package chat

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Turn roles mirror what the LLM API expects.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role string
	Text string
}

type session struct {
	history  []Turn
	lastSeen time.Time
}

// SessionStore holds per-session conversation history in memory.
// Sessions are created on first contact and expired after a period of
// inactivity; history is process-lifetime only and lost on restart by
// design.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*session
	ttl          time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity, and starts the background janitor.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		sessions:    make(map[string]*session),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
	go s.startCleanup()
	return s
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("sess_%d", time.Now().UnixNano())
	}
	return "sess_" + hex.EncodeToString(bytes)
}

// Append records a turn on the session, creating it if needed.
func (s *SessionStore) Append(id string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.history = append(sess.history, turn)
	sess.lastSeen = time.Now()
}

// History returns a copy of the session's conversation so far. A
// missing or expired session yields an empty history.
func (s *SessionStore) History(id string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.lastSeen = time.Now()
	out := make([]Turn, len(sess.history))
	copy(out, sess.history)
	return out
}

// Len reports how many sessions are currently alive.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.expireStale(); removed > 0 {
				slog.Debug("Expired chat sessions", "removed", removed)
			}
		case <-s.stopCleanup:
			return
		}
	}
}

// expireStale drops sessions idle past the TTL and returns how many
// were removed.
func (s *SessionStore) expireStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Stop shuts down the janitor goroutine.
func (s *SessionStore) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}
