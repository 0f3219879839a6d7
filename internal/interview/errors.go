package interview

import (
	"fmt"

	"github.com/jonathan/interview-coach/internal/feedback"
)

// MissingInputError means a required request field was absent. The pipeline did not run.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}

// TranscriptionFailure means the speech service could not be reached or rejected the audio.
type TranscriptionFailure struct {
	Cause error
}

func (e *TranscriptionFailure) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Cause)
}

func (e *TranscriptionFailure) Unwrap() error {
	return e.Cause
}

// GenerationFailure means the critique model call failed at the transport level.
// Malformed critique text is not a GenerationFailure; it falls back instead.
type GenerationFailure struct {
	Cause error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("critique generation failed: %v", e.Cause)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Cause
}

// PersistenceFailure means a complete document was built but could not be saved.
type PersistenceFailure struct {
	ResponseID string
	Document   feedback.Document
	Cause      error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("failed to persist feedback for %s: %v", e.ResponseID, e.Cause)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Cause
}

// NotFoundError means no feedback has been stored for a response.
type NotFoundError struct {
	ResponseID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no feedback for response %s", e.ResponseID)
}
