package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// Server is the HTTP surface of the review engine. One server owns the
// session manager, the run-history database, and the optional Slack
// notifier.
type Server struct {
	cfg      Config
	db       *sql.DB
	sessions *SessionManager
	slackAPI *slack.Client
}

func NewServer(cfg Config, db *sql.DB, sessions *SessionManager, slackAPI *slack.Client) *Server {
	return &Server{cfg: cfg, db: db, sessions: sessions, slackAPI: slackAPI}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/sessions/{id}/sections", s.handleSections)
	mux.HandleFunc("POST /api/sessions/{id}/decision", s.handleDecision)
	mux.HandleFunc("GET /api/sessions/{id}/progress", s.handleProgress)
	mux.HandleFunc("POST /api/sessions/{id}/draft", s.handleDraft)
	mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

type validateRequest struct {
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
	Company    string `json:"company"`
	SessionID  string `json:"session_id"`
}

type validateResponse struct {
	SessionID  string                 `json:"session_id"`
	Company    string                 `json:"company"`
	Assessment Assessment             `json:"assessment"`
	Progress   Progress               `json:"progress"`
	Sections   map[string]SectionView `json:"sections"`
	Usage      map[string]int64       `json:"usage"`
}

// handleValidate runs one validation pass: the transcript and summary go
// to the model, the findings are classified into review items, and any
// prior decisions in the session are discarded. A request without a
// session_id starts a fresh session.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" || strings.TrimSpace(req.Summary) == "" {
		writeError(w, http.StatusBadRequest, "transcript and summary are required")
		return
	}

	var session *ReviewSession
	if req.SessionID != "" {
		var err error
		session, err = s.sessions.Get(req.SessionID)
		if err != nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
	} else {
		session = s.sessions.Create()
	}

	findings, usage, err := validateFn(r.Context(), s.cfg, req.Transcript, req.Summary)
	if err != nil {
		log.Printf("Validation error session=%s: %v", session.ID, err)
		writeError(w, http.StatusBadGateway, "validation failed: "+err.Error())
		return
	}

	session.BeginRun(findings, req.Company)
	assessment := ComputeAssessment(findings)

	passed := 0
	for _, is := range findings.Issues {
		if is.Passed() {
			passed++
		}
	}
	run := ValidationRun{
		SessionID:    session.ID,
		Company:      req.Company,
		Corrections:  len(findings.Corrections),
		Issues:       len(findings.Issues) - passed,
		Passed:       passed,
		Faithfulness: assessment.Faithfulness,
	}
	if _, err := InsertValidationRun(s.db, run); err != nil {
		log.Printf("Error recording validation run session=%s: %v", session.ID, err)
	}
	if s.cfg.NotifyConfigured() {
		go NotifyRunComplete(s.slackAPI, s.cfg.NotifyChannelID, run, assessment)
	}

	log.Printf("Validation complete session=%s company=%s corrections=%d issues=%d passed=%d tokens=%d",
		session.ID, req.Company, run.Corrections, run.Issues, run.Passed, usage.TotalTokens())

	var progress Progress
	var sections map[string]SectionView
	_ = session.Do(func() error {
		progress = ProgressSummary(session.Items, session.Store)
		sections = OrganizeItems(session.Items, session.Store)
		return nil
	})

	writeJSON(w, http.StatusOK, validateResponse{
		SessionID:  session.ID,
		Company:    req.Company,
		Assessment: assessment,
		Progress:   progress,
		Sections:   sections,
		Usage: map[string]int64{
			"input_tokens":  usage.InputTokens,
			"output_tokens": usage.OutputTokens,
			"total_tokens":  usage.TotalTokens(),
		},
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*ReviewSession, bool) {
	session, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return session, true
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var sections map[string]SectionView
	_ = session.Do(func() error {
		sections = OrganizeItems(session.Items, session.Store)
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"sections":   sections,
	})
}

type decisionRequest struct {
	ItemID     string `json:"item_id"`
	Status     Status `json:"status"`
	EditedText string `json:"edited_text"`
}

var errItemNotFound = errors.New("item not found")

// handleDecision records one reviewer decision. Invalid actions (unknown
// status, manual without text, unknown item) come back as 400/404 and
// leave the session untouched.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var progress Progress
	err := session.Do(func() error {
		known := false
		for _, item := range session.Items {
			if item.ID == req.ItemID {
				known = true
				break
			}
		}
		if !known {
			return errItemNotFound
		}
		if err := session.Store.SetDecision(req.ItemID, req.Status, req.EditedText); err != nil {
			return err
		}
		progress = ProgressSummary(session.Items, session.Store)
		return nil
	})
	switch {
	case errors.Is(err, errItemNotFound):
		writeError(w, http.StatusNotFound, "item not found: "+req.ItemID)
		return
	case errors.Is(err, ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrEmptyManualText):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"item_id":  req.ItemID,
		"status":   req.Status,
		"progress": progress,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var progress Progress
	_ = session.Do(func() error {
		progress = ProgressSummary(session.Items, session.Store)
		return nil
	})
	writeJSON(w, http.StatusOK, progress)
}

type draftResponse struct {
	SessionID string   `json:"session_id"`
	Draft     Draft    `json:"draft"`
	Filename  string   `json:"filename"`
	Progress  Progress `json:"progress"`
}

// handleDraft assembles the reconciled document from the current
// decision state, writes it to the output directory, and records the
// export.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var draft Draft
	var progress Progress
	_ = session.Do(func() error {
		draft = AssembleDraft(session.Items, session.Store)
		progress = ProgressSummary(session.Items, session.Store)
		return nil
	})

	filename, err := WriteDraftFile(draft.Rendered, s.cfg.DraftOutputDir, time.Now())
	if err != nil {
		log.Printf("Error writing draft file session=%s: %v", session.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to write draft file")
		return
	}
	export := DraftExport{
		SessionID:    session.ID,
		Filename:     filename,
		ChangedCount: draft.ChangedCount,
	}
	if err := InsertDraftExport(s.db, export); err != nil {
		log.Printf("Error recording draft export session=%s: %v", session.ID, err)
	}
	if s.cfg.NotifyConfigured() {
		go NotifyDraftExported(s.slackAPI, s.cfg.NotifyChannelID, export)
	}
	log.Printf("Draft exported session=%s file=%s sentences=%d", session.ID, filename, draft.ChangedCount)

	writeJSON(w, http.StatusOK, draftResponse{
		SessionID: session.ID,
		Draft:     draft,
		Filename:  filename,
		Progress:  progress,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if !ValidExportFilename(filename) {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	path := filepath.Join(s.cfg.DraftOutputDir, filename)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	http.ServeFile(w, r, path)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := ListRecentRuns(s.db, 50)
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	type runJSON struct {
		ID           int64     `json:"id"`
		SessionID    string    `json:"session_id"`
		Company      string    `json:"company"`
		Corrections  int       `json:"corrections"`
		Issues       int       `json:"issues"`
		Passed       int       `json:"passed"`
		Faithfulness string    `json:"faithfulness"`
		CreatedAt    time.Time `json:"created_at"`
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}
