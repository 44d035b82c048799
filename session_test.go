package main

import (
	"errors"
	"testing"
	"time"
)

func TestSessionManagerCreateAndGet(t *testing.T) {
	m := NewSessionManager()
	s := m.Create()
	if s.ID == "" {
		t.Fatal("session ID must not be empty")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != s {
		t.Fatal("Get returned a different session")
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionIDsUnique(t *testing.T) {
	m := NewSessionManager()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := m.Create()
		if seen[s.ID] {
			t.Fatalf("duplicate session ID: %s", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestBeginRunResetsDecisions(t *testing.T) {
	m := NewSessionManager()
	s := m.Create()

	s.BeginRun(Findings{Issues: []Issue{{Category: "실적"}}}, "회사A")
	if err := s.Store.SetDecision("issue-0", StatusAccepted, ""); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// A new run discards all prior decisions atomically.
	s.BeginRun(Findings{Issues: []Issue{{Category: "가이던스"}, {Category: "q&a"}}}, "회사B")
	if d := s.Store.GetDecision("issue-0"); d.Status != StatusPending {
		t.Fatalf("prior decision survived a new run: %s", d.Status)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items after new run, got %d", len(s.Items))
	}
	if s.Company != "회사B" {
		t.Fatalf("company not updated: %s", s.Company)
	}
}

func TestExpireIdle(t *testing.T) {
	m := NewSessionManager()
	stale := m.Create()
	fresh := m.Create()

	stale.mu.Lock()
	stale.LastActive = time.Now().Add(-5 * time.Hour)
	stale.mu.Unlock()

	expired := m.ExpireIdle(4*time.Hour, time.Now())
	if expired != 1 {
		t.Fatalf("expected 1 expired session, got %d", expired)
	}
	if _, err := m.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("stale session should be gone")
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", m.Len())
	}
}

func TestSessionDoBumpsActivity(t *testing.T) {
	m := NewSessionManager()
	s := m.Create()

	s.mu.Lock()
	s.LastActive = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	_ = s.Do(func() error { return nil })

	s.mu.Lock()
	idle := time.Since(s.LastActive)
	s.mu.Unlock()
	if idle > time.Minute {
		t.Fatalf("Do did not refresh activity, idle=%s", idle)
	}
}
