// Package storage persists generation attempts: the raw model reply, the
// recovered document and its validation report. Attempts are kept append-only
// so past quality can be inspected from the CLI.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chaitanyakcs/survey-engine-sub004/internal/survey"
	"github.com/chaitanyakcs/survey-engine-sub004/internal/validate"
)

type SQLiteStore struct {
	db *sql.DB
}

// Attempt is one stored generation run.
type Attempt struct {
	ID           string
	RFQTitle     string
	RawResponse  string
	Document     *survey.Document
	Report       *validate.Report
	OverallScore float64
	CreatedAt    time.Time
}

// NewSQLiteStore creates or opens the attempts database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			rfq_title TEXT,
			raw_response TEXT,
			document JSON,
			report JSON,
			overall_score REAL,
			created_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveAttempt stores one generation run.
func (s *SQLiteStore) SaveAttempt(ctx context.Context, a Attempt) error {
	docJSON, err := json.Marshal(a.Document)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	reportJSON, err := json.Marshal(a.Report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, rfq_title, raw_response, document, report, overall_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RFQTitle, a.RawResponse, string(docJSON), string(reportJSON), a.OverallScore, a.CreatedAt.UTC(),
	)
	return err
}

// LoadAttempt fetches one attempt by id.
func (s *SQLiteStore) LoadAttempt(ctx context.Context, id string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, rfq_title, raw_response, document, report, overall_score, created_at
		 FROM attempts WHERE id = ?`, id)
	return scanAttempt(row)
}

// ListAttempts returns the most recent attempts, newest first.
func (s *SQLiteStore) ListAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rfq_title, raw_response, document, report, overall_score, created_at
		 FROM attempts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var a Attempt
	var docJSON, reportJSON string
	if err := row.Scan(&a.ID, &a.RFQTitle, &a.RawResponse, &docJSON, &reportJSON, &a.OverallScore, &a.CreatedAt); err != nil {
		return nil, err
	}
	if docJSON != "" && docJSON != "null" {
		doc, err := survey.DecodeDocument([]byte(docJSON))
		if err != nil {
			return nil, fmt.Errorf("decoding stored document: %w", err)
		}
		a.Document = doc
	}
	if reportJSON != "" && reportJSON != "null" {
		var report validate.Report
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("decoding stored report: %w", err)
		}
		a.Report = &report
	}
	return &a, nil
}
