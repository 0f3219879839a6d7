package feedback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const thirteenWords = "I led a team of five engineers to ship the billing service early"

func sampleCategory(score int) Category {
	return Category{
		Score:            Score(score),
		Status:           StatusForScore(score),
		Summary:          "Solid answer.",
		Description:      "What this measures.",
		DetailedAnalysis: "The answer was specific and well structured.",
		Examples:         []string{"I led a team"},
		Tips:             []string{"Quantify the outcome."},
	}
}

// sampleDocument is a consistent document for thirteenWords.
func sampleDocument() Document {
	return Document{
		OverallPerformance: sampleCategory(82),
		AnswerRelevance:    sampleCategory(90),
		PaceOfSpeech:       PaceOfSpeech{Category: sampleCategory(75), WPM: 156},
		UmCounter:          CountedCategory{Category: sampleCategory(95), Count: 0, Per100Words: 0},
		Vocabulary:         Vocabulary{Category: sampleCategory(70), Level: "intermediate", GradeLevel: 9},
		PowerWords:         PowerWords{Category: sampleCategory(80), Count: 2, Words: []string{"led", "ship"}},
		FillerWords:        FillerWords{CountedCategory: CountedCategory{Category: sampleCategory(90), Count: 1, Per100Words: 7.69}, CommonWords: []string{"like"}},
		PauseCounter:       PauseCounter{Category: sampleCategory(88), Count: 0},
		NegativeTone: NegativeTone{
			Category: func() Category {
				c := sampleCategory(10)
				c.Status = StatusExcellent
				return c
			}(),
			Count:   0,
			Phrases: []string{},
		},
		Length:            Length{Category: sampleCategory(40), Duration: "0:05", Seconds: 5, OptimalRange: false},
		AuthenticityScore: Authenticity{Category: sampleCategory(85), ConversationalLevel: "high"},
		Clarity:           sampleCategory(78),
		Strengths:         []string{"Concrete example"},
		Improvements:      []string{"Add a measurable result"},
	}
}

// critiqueJSON marshals doc and lets the caller mutate the generic form before re-encoding.
func critiqueJSON(t *testing.T, doc Document, mutate func(m map[string]any)) string {
	t.Helper()
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	if mutate == nil {
		return string(b)
	}
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	mutate(m)
	b, err = json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func assertComplete(t *testing.T, doc Document) {
	t.Helper()
	for _, s := range doc.slots() {
		c := s.base
		require.NotEmpty(t, c.Status, s.key)
		require.NotEmpty(t, c.Summary, s.key)
		require.NotEmpty(t, c.Description, s.key)
		require.NotEmpty(t, c.DetailedAnalysis, s.key)
		require.NotNil(t, c.Examples, s.key)
		require.NotNil(t, c.Tips, s.key)
		require.GreaterOrEqual(t, int(c.Score), 0, s.key)
		require.LessOrEqual(t, int(c.Score), 100, s.key)
	}
	require.NotNil(t, doc.Strengths)
	require.NotNil(t, doc.Improvements)
}
