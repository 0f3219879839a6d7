package interview

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/speech"
)

// The worked example is often quoted as 13 words; it has 12 whitespace-delimited tokens.
// 12 words still estimate to 5 seconds.
const answer = "I led a team of five engineers and delivered the project early"

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, speech.Audio) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type memoryStore struct {
	records map[string]db.FeedbackRecord
	err     error
	saves   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]db.FeedbackRecord{}}
}

func (m *memoryStore) SaveFeedback(_ context.Context, id string, rec db.FeedbackRecord) error {
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.records[id] = rec
	return nil
}

func (m *memoryStore) GetFeedback(_ context.Context, id string) (*db.FeedbackRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memoryStore) ListFeedback(context.Context, int) ([]db.FeedbackSummary, error) {
	out := []db.FeedbackSummary{}
	for id, rec := range m.records {
		out = append(out, db.FeedbackSummary{ResponseID: id, OverallScore: rec.OverallScore})
	}
	return out, nil
}

func validCritique(t *testing.T, overall int) string {
	t.Helper()
	doc := feedback.Fallback()
	doc.OverallPerformance.Score = feedback.Score(overall)
	doc.OverallPerformance.Summary = "Clear, specific answer."
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func TestSubmitTranscript_PersistsNormalizedDocument(t *testing.T) {
	gen := &fakeGenerator{text: validCritique(t, 81)}
	store := newMemoryStore()
	svc := NewService(nil, gen, store, nil)

	out, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{
		ResponseID: "resp-1", Question: "Tell me about a time you led a team", Transcript: answer,
	})
	require.NoError(t, err)

	assert.True(t, out.Persisted)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 12, out.Metrics.TotalWords)
	assert.Equal(t, 5, out.Metrics.Seconds)
	assert.Equal(t, "0:05", out.Feedback.Length.Duration)
	assert.Equal(t, feedback.StatusGood, out.Feedback.OverallPerformance.Status)

	rec := store.records["resp-1"]
	assert.Equal(t, 81, rec.OverallScore)
	assert.Equal(t, rec.Feedback.OverallScore(), rec.OverallScore)
	assert.Equal(t, out.Feedback, rec.Feedback)
	assert.Equal(t, feedback.SchemaVersion, rec.SchemaVersion)
}

func TestSubmitTranscript_MalformedCritiqueFallsBack(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(nil, &fakeGenerator{text: "Great answer! Score: 90"}, store, nil)

	out, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{
		ResponseID: "resp-1", Question: "q", Transcript: answer,
	})
	require.NoError(t, err)
	assert.True(t, out.Report.ParseFailed)
	assert.True(t, out.Persisted)
	assert.Equal(t, 0, store.records["resp-1"].OverallScore)
}

func TestSubmitTranscript_BlankTranscriptSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{text: "{}"}
	svc := NewService(nil, gen, newMemoryStore(), nil)

	out, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{ResponseID: "r", Question: "q", Transcript: "  "})
	require.NoError(t, err)
	assert.Equal(t, 0, gen.calls)
	assert.True(t, out.Report.EmptyTranscript)
	assert.Equal(t, 0, out.Metrics.TotalWords)
}

func TestSubmitTranscript_MissingInput(t *testing.T) {
	svc := NewService(nil, &fakeGenerator{}, newMemoryStore(), nil)

	tests := []struct {
		name  string
		req   TranscriptRequest
		field string
	}{
		{"no response id", TranscriptRequest{Question: "q", Transcript: answer}, "response_id"},
		{"blank response id", TranscriptRequest{ResponseID: "  ", Question: "q"}, "response_id"},
		{"no question", TranscriptRequest{ResponseID: "r", Transcript: answer}, "question"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitTranscript(context.Background(), tt.req)
			var missing *MissingInputError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.field, missing.Field)
		})
	}
}

func TestSubmitTranscript_GenerationFailure(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	store := newMemoryStore()
	svc := NewService(nil, &fakeGenerator{err: cause}, store, nil)

	_, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{ResponseID: "r", Question: "q", Transcript: answer})
	var gf *GenerationFailure
	require.True(t, errors.As(err, &gf))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, store.saves)
}

func TestSubmitTranscript_PersistenceFailureCarriesDocument(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("disk full")
	svc := NewService(nil, &fakeGenerator{text: validCritique(t, 60)}, store, nil)

	out, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{ResponseID: "r", Question: "q", Transcript: answer})
	var pf *PersistenceFailure
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, feedback.Score(60), pf.Document.OverallPerformance.Score)
	require.NotNil(t, out)
	assert.False(t, out.Persisted)
	assert.Equal(t, 1, store.saves)
}

func TestSubmitTranscript_NoStore(t *testing.T) {
	svc := NewService(nil, &fakeGenerator{text: validCritique(t, 90)}, nil, nil)

	out, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{ResponseID: "r", Question: "q", Transcript: answer})
	require.NoError(t, err)
	assert.False(t, out.Persisted)
}

func TestSubmitAudio(t *testing.T) {
	tr := &fakeTranscriber{text: answer}
	gen := &fakeGenerator{text: validCritique(t, 75)}
	store := newMemoryStore()
	svc := NewService(tr, gen, store, nil)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	out, err := svc.SubmitAudio(context.Background(), AudioRequest{
		ResponseID: "resp-9", Question: "q", Audio: speech.Audio{Data: []byte("webm"), MIMEType: "audio/webm"},
	})
	require.NoError(t, err)
	assert.Equal(t, answer, out.Transcript)
	assert.Equal(t, fixed, out.UpdatedAt)
	assert.Equal(t, fixed, store.records["resp-9"].UpdatedAt)
	assert.Equal(t, 1, tr.calls)
}

func TestSubmitAudio_Errors(t *testing.T) {
	t.Run("missing audio", func(t *testing.T) {
		tr := &fakeTranscriber{}
		svc := NewService(tr, &fakeGenerator{}, newMemoryStore(), nil)
		_, err := svc.SubmitAudio(context.Background(), AudioRequest{ResponseID: "r", Question: "q"})
		var missing *MissingInputError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "audio", missing.Field)
		assert.Equal(t, 0, tr.calls)
	})

	t.Run("transcription failure", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := NewService(&fakeTranscriber{err: errors.New("503")}, gen, newMemoryStore(), nil)
		_, err := svc.SubmitAudio(context.Background(), AudioRequest{ResponseID: "r", Question: "q", Audio: speech.Audio{Data: []byte{1}}})
		var tf *TranscriptionFailure
		require.True(t, errors.As(err, &tf))
		assert.Equal(t, 0, gen.calls)
	})

	t.Run("no speech recognized", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := NewService(&fakeTranscriber{text: ""}, gen, newMemoryStore(), nil)
		out, err := svc.SubmitAudio(context.Background(), AudioRequest{ResponseID: "r", Question: "q", Audio: speech.Audio{Data: []byte{1}}})
		require.NoError(t, err)
		assert.True(t, out.Report.EmptyTranscript)
		assert.Equal(t, 0, gen.calls)
	})
}

func TestFeedback(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(nil, &fakeGenerator{text: validCritique(t, 70)}, store, nil)
	_, err := svc.SubmitTranscript(context.Background(), TranscriptRequest{ResponseID: "r", Question: "q", Transcript: answer})
	require.NoError(t, err)

	rec, err := svc.Feedback(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, 70, rec.OverallScore)

	_, err = svc.Feedback(context.Background(), "other")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	list, err := svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
