package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps feedback in a local SQLite file. It is used for single-machine
// deployments and the CLI.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS interview_feedback (
		response_id    TEXT PRIMARY KEY,
		question       TEXT NOT NULL DEFAULT '',
		transcript     TEXT NOT NULL DEFAULT '',
		feedback       TEXT NOT NULL,
		overall_score  INTEGER NOT NULL,
		schema_version TEXT NOT NULL,
		updated_at     DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interview_feedback_updated ON interview_feedback(updated_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveFeedback upserts the record for responseID. The latest write wins.
func (s *SQLiteStore) SaveFeedback(ctx context.Context, responseID string, rec FeedbackRecord) error {
	content, err := encodeRecord(responseID, &rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interview_feedback (response_id, question, transcript, feedback, overall_score, schema_version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(response_id) DO UPDATE SET
		   question = excluded.question,
		   transcript = excluded.transcript,
		   feedback = excluded.feedback,
		   overall_score = excluded.overall_score,
		   schema_version = excluded.schema_version,
		   updated_at = excluded.updated_at`,
		responseID, rec.Question, rec.Transcript, string(content), rec.OverallScore, rec.SchemaVersion, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback %s: %w", responseID, err)
	}
	return nil
}

// GetFeedback returns the stored record, or nil when none exists.
func (s *SQLiteStore) GetFeedback(ctx context.Context, responseID string) (*FeedbackRecord, error) {
	var rec FeedbackRecord
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT response_id, question, transcript, feedback, overall_score, schema_version, updated_at
		 FROM interview_feedback WHERE response_id = ?`,
		responseID,
	).Scan(&rec.ResponseID, &rec.Question, &rec.Transcript, &content, &rec.OverallScore, &rec.SchemaVersion, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback %s: %w", responseID, err)
	}
	if err := decodeFeedback([]byte(content), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListFeedback returns the most recently updated records, newest first.
func (s *SQLiteStore) ListFeedback(ctx context.Context, limit int) ([]FeedbackSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT response_id, question, overall_score, schema_version, updated_at
		 FROM interview_feedback ORDER BY updated_at DESC, response_id LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	summaries := []FeedbackSummary{}
	for rows.Next() {
		var sum FeedbackSummary
		if err := rows.Scan(&sum.ResponseID, &sum.Question, &sum.OverallScore, &sum.SchemaVersion, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
