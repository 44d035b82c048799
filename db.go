package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS validation_runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id   TEXT NOT NULL,
		company      TEXT DEFAULT '',
		corrections  INTEGER NOT NULL DEFAULT 0,
		issues       INTEGER NOT NULL DEFAULT 0,
		passed       INTEGER NOT NULL DEFAULT 0,
		faithfulness TEXT DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_vr_session ON validation_runs(session_id);
	CREATE INDEX IF NOT EXISTS idx_vr_created ON validation_runs(created_at);

	CREATE TABLE IF NOT EXISTS draft_exports (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id    TEXT NOT NULL,
		filename      TEXT NOT NULL,
		changed_count INTEGER NOT NULL DEFAULT 0,
		exported_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_de_session ON draft_exports(session_id);
	CREATE INDEX IF NOT EXISTS idx_de_exported ON draft_exports(exported_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func InsertValidationRun(db *sql.DB, run ValidationRun) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO validation_runs (session_id, company, corrections, issues, passed, faithfulness)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.SessionID, run.Company, run.Corrections, run.Issues, run.Passed, run.Faithfulness,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func InsertDraftExport(db *sql.DB, export DraftExport) error {
	_, err := db.Exec(
		`INSERT INTO draft_exports (session_id, filename, changed_count)
		 VALUES (?, ?, ?)`,
		export.SessionID, export.Filename, export.ChangedCount,
	)
	return err
}

func ListRecentRuns(db *sql.DB, limit int) ([]ValidationRun, error) {
	rows, err := db.Query(
		`SELECT id, session_id, company, corrections, issues, passed, faithfulness, created_at
		 FROM validation_runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ValidationRun
	for rows.Next() {
		var r ValidationRun
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.Company, &r.Corrections,
			&r.Issues, &r.Passed, &r.Faithfulness, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func ListExportsBySession(db *sql.DB, sessionID string) ([]DraftExport, error) {
	rows, err := db.Query(
		`SELECT id, session_id, filename, changed_count, exported_at
		 FROM draft_exports
		 WHERE session_id = ?
		 ORDER BY exported_at DESC, id DESC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []DraftExport
	for rows.Next() {
		var e DraftExport
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Filename, &e.ChangedCount, &e.ExportedAt); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}
