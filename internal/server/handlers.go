package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/speech"
)

// multipartMemory is how much of a multipart body is held in memory before spilling to disk.
const multipartMemory = 8 << 20

// FeedbackResponse is returned by both submit routes.
type FeedbackResponse struct {
	ResponseID    string                `json:"response_id"`
	Transcript    string                `json:"transcript"`
	Feedback      feedback.Document     `json:"feedback"`
	Metrics       feedback.Metrics      `json:"metrics"`
	SchemaVersion string                `json:"schema_version"`
	FallbackUsed  bool                  `json:"fallback_used"`
	Defaulted     []string              `json:"defaulted"`
	Corrections   []feedback.Correction `json:"corrections"`
	Persisted     bool                  `json:"persisted"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func newFeedbackResponse(out *interview.Outcome) *FeedbackResponse {
	return &FeedbackResponse{
		ResponseID:    out.ResponseID,
		Transcript:    out.Transcript,
		Feedback:      out.Feedback,
		Metrics:       out.Metrics,
		SchemaVersion: out.Report.SchemaVersion,
		FallbackUsed:  out.Report.FallbackUsed(),
		Defaulted:     out.Report.Defaulted,
		Corrections:   out.Report.Corrections,
		Persisted:     out.Persisted,
		UpdatedAt:     out.UpdatedAt,
	}
}

// TranscriptRequest is the body of POST /responses/{id}/feedback/transcript.
type TranscriptRequest struct {
	Question   string `json:"question"`
	Transcript string `json:"transcript"`
}

// SpeechRequest is the body of POST /speech.
type SpeechRequest struct {
	Question string `json:"question"`
}

// handleSubmitAudio accepts multipart form fields "question" and "audio".
func (s *Server) handleSubmitAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxAudioBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "audio exceeds the upload limit")
			return
		}
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "expected multipart/form-data: " + err.Error()})
		return
	}

	req := interview.AudioRequest{
		ResponseID: r.PathValue("id"),
		Question:   r.FormValue("question"),
	}

	file, header, err := r.FormFile("audio")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Left empty; the pipeline reports it as missing input.
	case err != nil:
		s.writeError(w, r, &ErrValidation{Field: "audio", Message: err.Error()})
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Field: "audio", Message: "failed to read upload: " + err.Error()})
			return
		}
		if int64(len(data)) > s.maxAudioBytes {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "audio exceeds the upload limit")
			return
		}
		req.Audio = speech.Audio{
			Data:     data,
			Filename: header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
		}
	}

	out, err := s.pipeline.SubmitAudio(r.Context(), req)
	s.writeOutcome(w, r, out, err)
}

func (s *Server) handleSubmitTranscript(w http.ResponseWriter, r *http.Request) {
	var body TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	out, err := s.pipeline.SubmitTranscript(r.Context(), interview.TranscriptRequest{
		ResponseID: r.PathValue("id"),
		Question:   body.Question,
		Transcript: body.Transcript,
	})
	s.writeOutcome(w, r, out, err)
}

// writeOutcome writes 200 with the feedback, or the error. A persistence failure still
// carries the built feedback in the error body.
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, out *interview.Outcome, err error) {
	if err == nil {
		s.jsonResponse(w, http.StatusOK, newFeedbackResponse(out))
		return
	}

	body := ErrorBody{Error: err.Error(), Code: errorCode(err)}
	var persist *interview.PersistenceFailure
	if errors.As(err, &persist) && out != nil {
		body.Result = newFeedbackResponse(out)
	}
	body.RequestID = middleware.GetRequestID(r)
	s.jsonResponse(w, HTTPStatus(err), body)
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	rec, err := s.pipeline.Feedback(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleListFeedback lists stored feedback, newest first. ?limit= is optional.
func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	items, err := s.pipeline.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// handleSpeech returns audio of the question being read aloud.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if s.synthesizer == nil {
		s.writeError(w, r, &ErrUnavailable{Feature: "speech synthesis"})
		return
	}

	var body SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	text, err := speech.QuestionText(body.Question)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "question", Message: err.Error()})
		return
	}

	audio, contentType, err := s.synthesizer.Synthesize(r.Context(), text)
	if err != nil {
		s.writeError(w, r, &ErrUpstream{Service: "speech synthesis", Cause: err})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		s.log.Warn("failed to write speech audio", "error", err)
	}
}

// handleSchema returns the JSON Schema of the feedback document.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := feedback.ContractV1.JSONSchema()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Schema-Version", feedback.ContractV1.Version)
	s.jsonResponse(w, http.StatusOK, schema)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "store": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.health.Ping(ctx); err != nil {
		s.log.Warn("store health check failed", "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
}
