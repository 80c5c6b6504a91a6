// Package audit persists a local trail of handler invocations in SQLite.
// Webhook deliveries are fire-and-forget on the platform side, so this trail
// is the only place to answer "what did the bot do to issue N, and when".
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Invocation is one recorded handler run.
type Invocation struct {
	ID        string
	Timestamp time.Time
	Platform  string
	ProjectID string
	IssueID   int
	Outcome   string
	Success   bool
	Error     string
}

// Store is a SQLite-backed invocation trail.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the trail database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one invocation. A missing ID or timestamp is filled in.
func (s *Store) Record(ctx context.Context, inv *Invocation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Timestamp.IsZero() {
		inv.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO invocations (
			id, timestamp, platform, project_id, issue_id, outcome, success, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID,
		inv.Timestamp,
		inv.Platform,
		inv.ProjectID,
		inv.IssueID,
		inv.Outcome,
		inv.Success,
		inv.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation (outcome=%s, issue=%d): %w", inv.Outcome, inv.IssueID, err)
	}

	return nil
}

// Recent retrieves the most recent invocations up to the specified limit,
// newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Invocation, error) {
	query := `
		SELECT id, timestamp, platform, project_id, issue_id, outcome, success, error
		FROM invocations
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent invocations: %w", err)
	}
	defer rows.Close()

	return scanInvocations(rows)
}

// ForIssue retrieves every invocation recorded against one issue, oldest
// first.
func (s *Store) ForIssue(ctx context.Context, projectID string, issueID int) ([]*Invocation, error) {
	query := `
		SELECT id, timestamp, platform, project_id, issue_id, outcome, success, error
		FROM invocations
		WHERE project_id = ? AND issue_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations for issue %d: %w", issueID, err)
	}
	defer rows.Close()

	return scanInvocations(rows)
}

func scanInvocations(rows *sql.Rows) ([]*Invocation, error) {
	var result []*Invocation

	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(
			&inv.ID,
			&inv.Timestamp,
			&inv.Platform,
			&inv.ProjectID,
			&inv.IssueID,
			&inv.Outcome,
			&inv.Success,
			&inv.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		result = append(result, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invocations: %w", err)
	}

	return result, nil
}
