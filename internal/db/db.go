// Package db persists normalized interview feedback in PostgreSQL or SQLite.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Migrate creates the feedback table when it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS interview_feedback (
			response_id    TEXT PRIMARY KEY,
			question       TEXT NOT NULL DEFAULT '',
			transcript     TEXT NOT NULL DEFAULT '',
			feedback       JSONB NOT NULL,
			overall_score  INTEGER NOT NULL,
			schema_version TEXT NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate feedback table: %w", err)
	}
	return nil
}

// SaveFeedback upserts the record for responseID. The latest write wins.
func (db *DB) SaveFeedback(ctx context.Context, responseID string, rec FeedbackRecord) error {
	content, err := encodeRecord(responseID, &rec)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO interview_feedback (response_id, question, transcript, feedback, overall_score, schema_version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (response_id) DO UPDATE SET
		   question = $2, transcript = $3, feedback = $4, overall_score = $5, schema_version = $6, updated_at = $7`,
		responseID, rec.Question, rec.Transcript, content, rec.OverallScore, rec.SchemaVersion, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback %s: %w", responseID, err)
	}
	return nil
}

// GetFeedback returns the stored record, or nil when none exists.
func (db *DB) GetFeedback(ctx context.Context, responseID string) (*FeedbackRecord, error) {
	var rec FeedbackRecord
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT response_id, question, transcript, feedback, overall_score, schema_version, updated_at
		 FROM interview_feedback WHERE response_id = $1`,
		responseID,
	).Scan(&rec.ResponseID, &rec.Question, &rec.Transcript, &content, &rec.OverallScore, &rec.SchemaVersion, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback %s: %w", responseID, err)
	}
	if err := decodeFeedback(content, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListFeedback returns the most recently updated records, newest first.
func (db *DB) ListFeedback(ctx context.Context, limit int) ([]FeedbackSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT response_id, question, overall_score, schema_version, updated_at
		 FROM interview_feedback ORDER BY updated_at DESC, response_id LIMIT $1`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	summaries := []FeedbackSummary{}
	for rows.Next() {
		var s FeedbackSummary
		if err := rows.Scan(&s.ResponseID, &s.Question, &s.OverallScore, &s.SchemaVersion, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func stamp(rec *FeedbackRecord) {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
}
