package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/interview-coach/internal/feedback"
)

// DefaultListLimit caps ListFeedback when the caller passes a non-positive limit.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// FeedbackRecord is the persisted feedback for one interview response.
type FeedbackRecord struct {
	ResponseID    string            `json:"response_id"`
	Question      string            `json:"question"`
	Transcript    string            `json:"transcript"`
	Feedback      feedback.Document `json:"feedback"`
	OverallScore  int               `json:"overall_score"`
	SchemaVersion string            `json:"schema_version"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// FeedbackSummary is a listing row without the document body.
type FeedbackSummary struct {
	ResponseID    string    `json:"response_id"`
	Question      string    `json:"question"`
	OverallScore  int       `json:"overall_score"`
	SchemaVersion string    `json:"schema_version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewFeedbackRecord builds a record whose overall score always matches the document.
func NewFeedbackRecord(responseID, question, transcript string, doc feedback.Document) FeedbackRecord {
	return FeedbackRecord{
		ResponseID:    responseID,
		Question:      question,
		Transcript:    transcript,
		Feedback:      doc,
		OverallScore:  doc.OverallScore(),
		SchemaVersion: feedback.SchemaVersion,
		UpdatedAt:     time.Now().UTC(),
	}
}

// encodeRecord fills derived columns and returns the document JSON.
func encodeRecord(responseID string, rec *FeedbackRecord) ([]byte, error) {
	if strings.TrimSpace(responseID) == "" {
		return nil, fmt.Errorf("response id is required")
	}
	rec.ResponseID = responseID
	rec.OverallScore = rec.Feedback.OverallScore()
	if rec.SchemaVersion == "" {
		rec.SchemaVersion = feedback.SchemaVersion
	}
	stamp(rec)

	content, err := json.Marshal(rec.Feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feedback: %w", err)
	}
	return content, nil
}

func decodeFeedback(content []byte, rec *FeedbackRecord) error {
	if err := json.Unmarshal(content, &rec.Feedback); err != nil {
		return fmt.Errorf("failed to unmarshal feedback %s: %w", rec.ResponseID, err)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
