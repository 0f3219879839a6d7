package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func derivedFallback(transcript string) Document {
	doc := Fallback()
	m := Derive(&doc, transcript)
	Validate(&doc, m)
	return doc
}

func TestNormalize_ValidCritique(t *testing.T) {
	res := Normalize(critiqueJSON(t, sampleDocument(), nil), thirteenWords, Options{})

	assert.False(t, res.Report.ParseFailed)
	assert.False(t, res.Report.FallbackUsed())
	assert.Empty(t, res.Report.Corrections)
	assert.Equal(t, sampleDocument(), res.Document)
	assert.Equal(t, SchemaVersion, res.Report.SchemaVersion)
	assert.Equal(t, 13, res.Metrics.TotalWords)
}

func TestNormalize_ParseFailureMatchesFallback(t *testing.T) {
	inputs := []string{"", "not json", "```json\n{}\n```", `{"overallPerformance":`}
	for _, raw := range inputs {
		res := Normalize(raw, thirteenWords, Options{})

		assert.True(t, res.Report.ParseFailed, raw)
		assert.True(t, res.Report.FallbackUsed(), raw)
		assert.Empty(t, res.Report.Corrections, raw)
		assert.Equal(t, derivedFallback(thirteenWords), res.Document, raw)
		assertComplete(t, res.Document)
	}
}

func TestNormalize_EmptyTranscriptIgnoresCritique(t *testing.T) {
	res := Normalize(critiqueJSON(t, sampleDocument(), nil), "  ", Options{})

	assert.True(t, res.Report.EmptyTranscript)
	assert.False(t, res.Report.ParseFailed)
	assert.Equal(t, derivedFallback(""), res.Document)
	assert.Equal(t, 0, res.Metrics.TotalWords)
}

func TestNormalize_ZeroWordDeterminism(t *testing.T) {
	a := Normalize("anything", "", Options{})
	b := Normalize("", "", Options{})
	assert.Equal(t, a.Document, b.Document)
	assert.Equal(t, 0.0, a.Document.UmCounter.Per100Words)
	assert.Equal(t, 0.0, a.Document.FillerWords.Per100Words)
}

func TestNormalize_PartialCritique(t *testing.T) {
	raw := critiqueJSON(t, sampleDocument(), func(m map[string]any) {
		delete(m, KeyPauseCounter)
		delete(m, KeyLength)
		m[KeyOverallPerformance].(map[string]any)["score"] = 120
	})
	res := Normalize(raw, thirteenWords, Options{})

	assertComplete(t, res.Document)
	assert.ElementsMatch(t, []string{KeyPauseCounter, KeyLength}, res.Report.Defaulted)
	assert.True(t, res.Report.FallbackUsed())
	assert.Equal(t, Score(100), res.Document.OverallPerformance.Score)
	assert.Equal(t, "0:05", res.Document.Length.Duration)
	require.NotEmpty(t, res.Report.Corrections)
	assert.Equal(t, "overallPerformance.score", res.Report.Corrections[0].Field)
}

func TestNormalize_HugeNumbersSaturate(t *testing.T) {
	raw := critiqueJSON(t, sampleDocument(), func(m map[string]any) {
		m[KeyOverallPerformance].(map[string]any)["score"] = 1e300
		m[KeyAnswerRelevance].(map[string]any)["score"] = -1e300
		m[KeyUmCounter].(map[string]any)["count"] = 1e19
	})
	res := Normalize(raw, thirteenWords, Options{})

	assert.Empty(t, res.Report.Defaulted)
	assert.Equal(t, Score(100), res.Document.OverallPerformance.Score)
	assert.Equal(t, StatusExcellent, res.Document.OverallPerformance.Status)
	assert.Equal(t, Score(0), res.Document.AnswerRelevance.Score)
	assert.Equal(t, StatusPoor, res.Document.AnswerRelevance.Status)
	assert.Equal(t, Count(13), res.Document.UmCounter.Count)
	assert.Equal(t, 100.0, res.Document.UmCounter.Per100Words)
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(critiqueJSON(t, sampleDocument(), func(m map[string]any) {
		delete(m, KeyLength)
	}), thirteenWords, Options{})

	second := Normalize(critiqueJSON(t, first.Document, nil), thirteenWords, Options{})
	assert.Equal(t, first.Document, second.Document)
	assert.Empty(t, second.Report.Corrections)
}
