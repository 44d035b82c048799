package main

import (
	"errors"
	"strings"
)

// Store-boundary errors for invalid reviewer actions. Data-shape
// irregularities never surface as errors; these do, synchronously, so
// the caller can block the action and re-prompt.
var (
	ErrEmptyManualText = errors.New("manual decision requires non-empty edited text")
	ErrInvalidStatus   = errors.New("invalid decision status")
)

// ReviewStore holds the reviewer's per-item decisions for one session.
// Statuses and edited texts live in separate maps: moving an item away
// from manual keeps its edited text around in case the reviewer comes
// back, but only a manual status ever consults it.
type ReviewStore struct {
	statuses    map[string]Status
	editedTexts map[string]string
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{
		statuses:    make(map[string]Status),
		editedTexts: make(map[string]string),
	}
}

// SetDecision records a reviewer decision for an item. A manual decision
// with empty edited text is rejected and the store is left unchanged.
func (s *ReviewStore) SetDecision(id string, status Status, editedText string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	if status == StatusManual {
		if strings.TrimSpace(editedText) == "" {
			return ErrEmptyManualText
		}
		s.editedTexts[id] = editedText
	}
	s.statuses[id] = status
	return nil
}

// GetDecision returns the decision for an item, defaulting to pending
// for anything never decided. EditedText is populated only while the
// status is manual.
func (s *ReviewStore) GetDecision(id string) Decision {
	status, ok := s.statuses[id]
	if !ok {
		return Decision{Status: StatusPending}
	}
	d := Decision{Status: status}
	if status == StatusManual {
		d.EditedText = s.editedTexts[id]
	}
	return d
}

// EditedText returns the stored edited text for an item regardless of
// its current status. The assembler uses this as the manual fallback.
func (s *ReviewStore) EditedText(id string) string {
	return s.editedTexts[id]
}

// ResetAll discards every decision and edited text. Called exactly once
// per new validation run; a run must never start with mixed state from
// the previous one.
func (s *ReviewStore) ResetAll() {
	s.statuses = make(map[string]Status)
	s.editedTexts = make(map[string]string)
}

// Counts returns how many of the given items sit in each status.
func (s *ReviewStore) Counts(items []ReviewItem) map[Status]int {
	counts := map[Status]int{
		StatusPending:  0,
		StatusAccepted: 0,
		StatusRejected: 0,
		StatusManual:   0,
	}
	for _, item := range items {
		counts[s.GetDecision(item.ID).Status]++
	}
	return counts
}
