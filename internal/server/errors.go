package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-coach/internal/interview"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable means a route depends on an adapter that is not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// ErrUpstream means a speech or model provider call failed outside the feedback pipeline.
type ErrUpstream struct {
	Service string
	Cause   error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Cause)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error. Wrapped pipeline errors
// are unwrapped before matching.
func HTTPStatus(err error) int {
	var (
		missing     *interview.MissingInputError
		transcribe  *interview.TranscriptionFailure
		generate    *interview.GenerationFailure
		persist     *interview.PersistenceFailure
		notFound    *interview.NotFoundError
		validation  *ErrValidation
		unavailable *ErrUnavailable
		upstream    *ErrUpstream
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &transcribe), errors.As(err, &generate), errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &unavailable):
		return http.StatusNotImplemented
	case errors.As(err, &persist):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable code sent alongside the message.
func errorCode(err error) string {
	var (
		missing     *interview.MissingInputError
		transcribe  *interview.TranscriptionFailure
		generate    *interview.GenerationFailure
		persist     *interview.PersistenceFailure
		notFound    *interview.NotFoundError
		validation  *ErrValidation
		unavailable *ErrUnavailable
		upstream    *ErrUpstream
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &validation):
		return "invalid_request"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &transcribe):
		return "transcription_failed"
	case errors.As(err, &generate):
		return "critique_failed"
	case errors.As(err, &upstream):
		return "upstream_failed"
	case errors.As(err, &unavailable):
		return "not_configured"
	case errors.As(err, &persist):
		return "persistence_failed"
	default:
		return "internal_error"
	}
}
