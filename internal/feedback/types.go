// Package feedback turns free-form critique output from a generative model into a complete,
// internally consistent feedback document for one spoken interview answer.
package feedback

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/invopop/jsonschema"
)

// Status is the coarse rating band shown next to a category score.
type Status string

// Status constants, best to worst.
const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusCaution   Status = "caution"
	StatusPoor      Status = "poor"
)

// Score is a 0-100 rating. Fractional values from the model are rounded on decode.
type Score int

// UnmarshalJSON accepts any JSON number and rounds it to the nearest integer.
func (s *Score) UnmarshalJSON(data []byte) error {
	n, err := decodeWhole(data)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	*s = Score(n)
	return nil
}

// JSONSchema reports Score as a plain number so "87.5" passes the category gate.
func (Score) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: "Integer from 0 to 100"}
}

// Count is a non-negative tally (words, seconds, occurrences).
type Count int

// UnmarshalJSON accepts any JSON number and rounds it to the nearest integer.
func (c *Count) UnmarshalJSON(data []byte) error {
	n, err := decodeWhole(data)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	*c = Count(n)
	return nil
}

// JSONSchema reports Count as a plain number.
func (Count) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number"}
}

// decodeWhole rounds a JSON number to an int. Magnitudes beyond int32 are saturated
// before conversion, so an absurd value lands at the matching end of every clamp.
func decodeWhole(data []byte) (int, error) {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	f = math.Max(math.Min(math.Round(f), math.MaxInt32), math.MinInt32)
	return int(f), nil
}

// Category is the shape every scored dimension shares.
type Category struct {
	Score            Score    `json:"score" jsonschema:"required"`
	Status           Status   `json:"status" jsonschema:"required" jsonschema_description:"One of excellent, good, caution, poor"`
	Summary          string   `json:"summary" jsonschema:"required" jsonschema_description:"One sentence verdict"`
	Description      string   `json:"description" jsonschema:"required" jsonschema_description:"What this category measures"`
	DetailedAnalysis string   `json:"detailedAnalysis" jsonschema:"required" jsonschema_description:"Two to four sentences grounded in the transcript"`
	Examples         []string `json:"examples" jsonschema:"required" jsonschema_description:"Short quotes from the transcript"`
	Tips             []string `json:"tips" jsonschema:"required" jsonschema_description:"Actionable advice"`
}

// PaceOfSpeech adds the speaking rate.
type PaceOfSpeech struct {
	Category
	WPM float64 `json:"wpm" jsonschema_description:"Words per minute"`
}

// CountedCategory is a category backed by an occurrence count and its rate per 100 words.
type CountedCategory struct {
	Category
	Count       Count   `json:"count"`
	Per100Words float64 `json:"per100Words"`
}

// FillerWords adds the most frequent fillers to the counted shape.
type FillerWords struct {
	CountedCategory
	CommonWords []string `json:"commonWords"`
}

// Vocabulary adds the estimated register of the answer.
type Vocabulary struct {
	Category
	Level      string  `json:"level" jsonschema_description:"basic, intermediate or advanced"`
	GradeLevel float64 `json:"gradeLevel"`
}

// PowerWords lists strong action words found in the answer.
type PowerWords struct {
	Category
	Count Count    `json:"count"`
	Words []string `json:"words"`
}

// PauseCounter counts noticeable hesitations.
type PauseCounter struct {
	Category
	Count Count `json:"count"`
}

// NegativeTone lists negative or self-deprecating phrases. A lower score is better here.
type NegativeTone struct {
	Category
	Count   Count    `json:"count"`
	Phrases []string `json:"phrases"`
}

// Length describes how long the answer ran.
type Length struct {
	Category
	Duration     string `json:"duration" jsonschema_description:"m:ss"`
	Seconds      Count  `json:"seconds"`
	OptimalRange bool   `json:"optimalRange" jsonschema_description:"True when the answer ran 60 to 120 seconds"`
}

// Authenticity rates how natural and conversational the answer sounded.
type Authenticity struct {
	Category
	ConversationalLevel string `json:"conversationalLevel"`
}

// Document is the full feedback record for one interview response.
type Document struct {
	OverallPerformance Category        `json:"overallPerformance" jsonschema:"required"`
	AnswerRelevance    Category        `json:"answerRelevance" jsonschema:"required"`
	PaceOfSpeech       PaceOfSpeech    `json:"paceOfSpeech" jsonschema:"required"`
	UmCounter          CountedCategory `json:"umCounter" jsonschema:"required"`
	Vocabulary         Vocabulary      `json:"vocabulary" jsonschema:"required"`
	PowerWords         PowerWords      `json:"powerWords" jsonschema:"required"`
	FillerWords        FillerWords     `json:"fillerWords" jsonschema:"required"`
	PauseCounter       PauseCounter    `json:"pauseCounter" jsonschema:"required"`
	NegativeTone       NegativeTone    `json:"negativeTone" jsonschema:"required"`
	Length             Length          `json:"length" jsonschema:"required"`
	AuthenticityScore  Authenticity    `json:"authenticityScore" jsonschema:"required"`
	Clarity            Category        `json:"clarity" jsonschema:"required"`
	Strengths          []string        `json:"strengths" jsonschema:"required"`
	Improvements       []string        `json:"improvements" jsonschema:"required"`
}

// slot ties a contract key to the document field that stores it.
type slot struct {
	key  string
	ptr  any       // full category struct, used for decoding
	base *Category // embedded base shape
}

func (d *Document) slots() []slot {
	return []slot{
		{KeyOverallPerformance, &d.OverallPerformance, &d.OverallPerformance},
		{KeyAnswerRelevance, &d.AnswerRelevance, &d.AnswerRelevance},
		{KeyPaceOfSpeech, &d.PaceOfSpeech, &d.PaceOfSpeech.Category},
		{KeyUmCounter, &d.UmCounter, &d.UmCounter.Category},
		{KeyVocabulary, &d.Vocabulary, &d.Vocabulary.Category},
		{KeyPowerWords, &d.PowerWords, &d.PowerWords.Category},
		{KeyFillerWords, &d.FillerWords, &d.FillerWords.Category},
		{KeyPauseCounter, &d.PauseCounter, &d.PauseCounter.Category},
		{KeyNegativeTone, &d.NegativeTone, &d.NegativeTone.Category},
		{KeyLength, &d.Length, &d.Length.Category},
		{KeyAuthenticityScore, &d.AuthenticityScore, &d.AuthenticityScore.Category},
		{KeyClarity, &d.Clarity, &d.Clarity},
	}
}

// Category returns the base shape of the category stored under key, or nil for an unknown key.
func (d *Document) Category(key string) *Category {
	for _, s := range d.slots() {
		if s.key == key {
			return s.base
		}
	}
	return nil
}

// OverallScore is the top-level score persisted alongside the document.
func (d *Document) OverallScore() int {
	return int(d.OverallPerformance.Score)
}
