// Package interview runs the answer-to-feedback pipeline: transcription, critique,
// normalization and persistence.
package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-coach/internal/critique"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/speech"
)

// Store persists feedback records. db.DB and db.SQLiteStore implement it.
type Store interface {
	SaveFeedback(ctx context.Context, responseID string, rec db.FeedbackRecord) error
	GetFeedback(ctx context.Context, responseID string) (*db.FeedbackRecord, error)
	ListFeedback(ctx context.Context, limit int) ([]db.FeedbackSummary, error)
}

// AudioRequest is a recorded answer to critique.
type AudioRequest struct {
	ResponseID string `validate:"required,max=128"`
	Question   string `validate:"required"`
	Audio      speech.Audio
}

// TranscriptRequest is an answer that has already been transcribed.
type TranscriptRequest struct {
	ResponseID string `validate:"required,max=128"`
	Question   string `validate:"required"`
	Transcript string
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	ResponseID string            `json:"response_id"`
	Transcript string            `json:"transcript"`
	Feedback   feedback.Document `json:"feedback"`
	Metrics    feedback.Metrics  `json:"metrics"`
	Report     feedback.Report   `json:"report"`
	Persisted  bool              `json:"persisted"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Service runs the pipeline. Each call is sequential and makes at most one
// transcription call, one critique call and one write.
type Service struct {
	transcriber speech.Transcriber
	generator   critique.Generator
	store       Store
	log         *logging.Logger
	validate    *validator.Validate
	now         func() time.Time
}

// NewService wires a pipeline. transcriber may be nil when only transcripts are submitted;
// store may be nil to normalize without saving.
func NewService(transcriber speech.Transcriber, generator critique.Generator, store Store, log *logging.Logger) *Service {
	return &Service{
		transcriber: transcriber,
		generator:   generator,
		store:       store,
		log:         logging.OrNop(log).With("component", "interview"),
		validate:    validator.New(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitAudio transcribes a recorded answer, then critiques and stores it.
func (s *Service) SubmitAudio(ctx context.Context, req AudioRequest) (*Outcome, error) {
	req.ResponseID = strings.TrimSpace(req.ResponseID)
	req.Question = strings.TrimSpace(req.Question)
	if err := s.check(req); err != nil {
		return nil, err
	}
	if len(req.Audio.Data) == 0 {
		return nil, &MissingInputError{Field: "audio"}
	}
	if s.transcriber == nil {
		return nil, &TranscriptionFailure{Cause: errors.New("no transcriber configured")}
	}

	start := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, req.Audio)
	if err != nil {
		s.log.Error("transcription failed", "response_id", req.ResponseID, "error", err)
		return nil, &TranscriptionFailure{Cause: err}
	}
	s.log.Info("transcribed answer", "response_id", req.ResponseID, "words", feedback.CountWords(transcript), "duration_ms", time.Since(start).Milliseconds())

	return s.run(ctx, req.ResponseID, req.Question, transcript)
}

// SubmitTranscript critiques and stores an answer that is already text.
func (s *Service) SubmitTranscript(ctx context.Context, req TranscriptRequest) (*Outcome, error) {
	req.ResponseID = strings.TrimSpace(req.ResponseID)
	req.Question = strings.TrimSpace(req.Question)
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.run(ctx, req.ResponseID, req.Question, req.Transcript)
}

// Feedback returns the stored record for responseID.
func (s *Service) Feedback(ctx context.Context, responseID string) (*db.FeedbackRecord, error) {
	if strings.TrimSpace(responseID) == "" {
		return nil, &MissingInputError{Field: "response_id"}
	}
	if s.store == nil {
		return nil, &NotFoundError{ResponseID: responseID}
	}
	rec, err := s.store.GetFeedback(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{ResponseID: responseID}
	}
	return rec, nil
}

// Recent lists stored feedback, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]db.FeedbackSummary, error) {
	if s.store == nil {
		return []db.FeedbackSummary{}, nil
	}
	return s.store.ListFeedback(ctx, limit)
}

func (s *Service) run(ctx context.Context, responseID, question, transcript string) (*Outcome, error) {
	log := s.log.With("response_id", responseID)

	var raw string
	if strings.TrimSpace(transcript) != "" {
		start := time.Now()
		text, err := s.generator.Generate(ctx, question, transcript)
		if err != nil {
			log.Error("critique generation failed", "error", err)
			return nil, &GenerationFailure{Cause: err}
		}
		log.Debug("critique generated", "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
		raw = text
	}

	res := feedback.Normalize(raw, transcript, feedback.Options{Logger: log})
	if res.Report.FallbackUsed() {
		log.Warn("feedback used fallback",
			"parse_failed", res.Report.ParseFailed,
			"empty_transcript", res.Report.EmptyTranscript,
			"defaulted", res.Report.Defaulted)
	}
	if n := len(res.Report.Corrections); n > 0 {
		log.Info("feedback corrected", "corrections", n)
	}

	out := &Outcome{
		ResponseID: responseID,
		Transcript: transcript,
		Feedback:   res.Document,
		Metrics:    res.Metrics,
		Report:     res.Report,
		UpdatedAt:  s.now(),
	}
	if s.store == nil {
		return out, nil
	}

	rec := db.NewFeedbackRecord(responseID, question, transcript, res.Document)
	rec.UpdatedAt = out.UpdatedAt
	if err := s.store.SaveFeedback(ctx, responseID, rec); err != nil {
		log.Error("failed to persist feedback", "error", err)
		return out, &PersistenceFailure{ResponseID: responseID, Document: res.Document, Cause: err}
	}
	out.Persisted = true
	log.Info("feedback saved", "overall_score", rec.OverallScore, "fallback_used", res.Report.FallbackUsed())
	return out, nil
}

// check maps struct validation failures onto MissingInputError for the first bad field.
func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &MissingInputError{Field: fieldName(verrs[0].Field())}
	}
	return err
}

func fieldName(f string) string {
	switch f {
	case "ResponseID":
		return "response_id"
	case "Question":
		return "question"
	default:
		return strings.ToLower(f)
	}
}
