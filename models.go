package main

import "time"

// Findings is the payload produced by the validation model: numeric
// corrections and contextual issues (including verified matches).
// Either list may be absent; absent means empty, never an error.
type Findings struct {
	Corrections []Correction `json:"corrections"`
	Issues      []Issue      `json:"issues"`
}

// Correction asserts that a numeric value in the DSS differs from the
// transcript and proposes a replacement value.
type Correction struct {
	Metric         string `json:"metric"`
	Period         string `json:"period"`
	Company        string `json:"company"`
	OriginalValue  string `json:"original_value"`
	CorrectedValue string `json:"corrected_value"`
	DSSContext     string `json:"dss_context"`
	Reason         string `json:"reason"`
	SourceContext  string `json:"source_context"`
	Category       string `json:"category"`
}

// Issue asserts a contextual problem with a DSS sentence (exaggeration,
// omission, overreach), or marks the sentence as verified-consistent when
// ValidationStatus is "passed".
type Issue struct {
	Metric           string `json:"metric"`
	Period           string `json:"period"`
	Company          string `json:"company"`
	DSSSentence      string `json:"dss_sentence"`
	Description      string `json:"issue"`
	IssueType        string `json:"issue_type"`
	Severity         string `json:"severity"`
	Recommendation   string `json:"recommendation"`
	SourceContext    string `json:"source_context"`
	Category         string `json:"category"`
	ValidationStatus string `json:"validation_status"` // "passed" or "issue_found"
}

// Passed reports whether this issue is a verified match rather than an
// actionable problem.
func (i Issue) Passed() bool {
	return i.ValidationStatus == "passed"
}

type ItemKind string

const (
	KindCorrection ItemKind = "correction"
	KindIssue      ItemKind = "issue"
)

// ReviewItem is the core-owned view of one finding. Identity is
// positional ("correction-0", "issue-3"), so re-classifying the same raw
// findings always yields the same IDs in the same order.
type ReviewItem struct {
	ID         string      `json:"id"`
	Kind       ItemKind    `json:"kind"`
	Section    string      `json:"section"`
	Correction *Correction `json:"correction,omitempty"`
	Issue      *Issue      `json:"issue,omitempty"`
	Status     Status      `json:"status"`
	EditedText string      `json:"edited_text,omitempty"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusManual   Status = "manual"
)

// ValidStatus reports whether s is one of the four decision statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusManual:
		return true
	}
	return false
}

// Decision is one reviewer decision for one item.
type Decision struct {
	Status     Status `json:"status"`
	EditedText string `json:"edited_text,omitempty"`
}

// Section keys, in canonical document order.
const (
	SectionResults  = "results"
	SectionGuidance = "guidance"
	SectionQA       = "qa"
)

// SectionOrder is the fixed order sections appear in rendered documents
// and API responses, regardless of classification order.
var SectionOrder = []string{SectionResults, SectionGuidance, SectionQA}

// sectionTitles maps section keys to the Korean headers used in the
// assembled DSS document.
var sectionTitles = map[string]string{
	SectionResults:  "실적발표",
	SectionGuidance: "가이던스",
	SectionQA:       "Q&A",
}

// SectionTitle returns the document header for a section key.
func SectionTitle(key string) string {
	if t, ok := sectionTitles[key]; ok {
		return t
	}
	return key
}

// Assessment is the run-level quality summary computed from findings.
type Assessment struct {
	AccuracyScore   int    `json:"accuracy_score"`
	Faithfulness    string `json:"faithfulness"` // "good", "fair", "poor"
	MajorIssueCount int    `json:"major_issues_count"`
	Summary         string `json:"summary"`
}

// ValidationRun is one recorded validation pass (persisted history).
type ValidationRun struct {
	ID           int64
	SessionID    string
	Company      string
	Corrections  int
	Issues       int
	Passed       int
	Faithfulness string
	CreatedAt    time.Time
}

// DraftExport records one assembled final draft written to disk.
type DraftExport struct {
	ID           int64
	SessionID    string
	Filename     string
	ChangedCount int
	ExportedAt   time.Time
}
