package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// ReviewSession holds the full reconciliation state for one reviewer:
// the raw findings of the current validation run, the classified items,
// and the decision store. All of it is session-scoped; starting a new
// run replaces everything atomically.
type ReviewSession struct {
	ID         string
	Company    string
	CreatedAt  time.Time
	LastActive time.Time

	Findings Findings
	Items    []ReviewItem
	Store    *ReviewStore

	mu sync.Mutex
}

// Do runs fn while holding the session lock and bumps the activity
// timestamp. Reviewer actions within a session are serialized; sessions
// never share mutable state with each other.
func (s *ReviewSession) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActive = time.Now()
	return fn()
}

// BeginRun installs a new validation run: prior decisions and edited
// texts are discarded before the new findings are classified, so mixed
// state from two runs can never be observed.
func (s *ReviewSession) BeginRun(raw Findings, company string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Store.ResetAll()
	s.Findings = raw
	s.Items = ClassifyFindings(raw)
	s.Company = company
	s.LastActive = time.Now()
}

// SessionManager owns all live review sessions keyed by ID.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*ReviewSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*ReviewSession)}
}

// Create makes an empty session with a fresh store.
func (m *SessionManager) Create() *ReviewSession {
	now := time.Now()
	s := &ReviewSession{
		ID:         newSessionID(),
		CreatedAt:  now,
		LastActive: now,
		Store:      NewReviewStore(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session for an ID.
func (m *SessionManager) Get(id string) (*ReviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ExpireIdle removes sessions idle for longer than ttl and returns how
// many were dropped.
func (m *SessionManager) ExpireIdle(ttl time.Duration, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.LastActive)
		s.mu.Unlock()
		if idle > ttl {
			delete(m.sessions, id)
			expired++
		}
	}
	return expired
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// a time-derived ID rather than panicking the server.
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))[:32]
	}
	return hex.EncodeToString(buf)
}
