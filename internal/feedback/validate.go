package feedback

import (
	"fmt"
	"math"
	"strings"
)

// Correction is one change Validate made to bring the document back in line.
type Correction struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// Per100Words is count/totalWords*100 rounded to two decimals, and 0 for an empty transcript.
func Per100Words(count, totalWords int) float64 {
	if totalWords <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(totalWords)*100*100) / 100
}

// Validate repairs range and cross-field problems in place and reports every repair.
// It never rejects a document. Replacing a nil list with an empty one is not reported.
func Validate(doc *Document, m Metrics) []Correction {
	v := validator{corrections: []Correction{}}

	for _, s := range doc.slots() {
		spec, _ := ContractV1.Spec(s.key)
		v.category(spec, s.base)
	}

	total := m.TotalWords
	v.count(KeyPowerWords+".count", &doc.PowerWords.Count, len(doc.PowerWords.Words), total)
	v.count(KeyNegativeTone+".count", &doc.NegativeTone.Count, len(doc.NegativeTone.Phrases), total)
	v.count(KeyPauseCounter+".count", &doc.PauseCounter.Count, 0, total)
	v.counted(KeyUmCounter, &doc.UmCounter, total)
	v.counted(KeyFillerWords, &doc.FillerWords.CountedCategory, total)

	v.text(KeyVocabulary+".level", &doc.Vocabulary.Level, notAssessed)
	if doc.Vocabulary.GradeLevel < 0 {
		v.record(KeyVocabulary+".gradeLevel", doc.Vocabulary.GradeLevel, 0.0)
		doc.Vocabulary.GradeLevel = 0
	}
	v.text(KeyAuthenticityScore+".conversationalLevel", &doc.AuthenticityScore.ConversationalLevel, notAssessed)

	if doc.PaceOfSpeech.WPM < 0 {
		v.record(KeyPaceOfSpeech+".wpm", doc.PaceOfSpeech.WPM, 0.0)
		doc.PaceOfSpeech.WPM = 0
	}
	if doc.Length.Seconds < 0 {
		v.record(KeyLength+".seconds", int(doc.Length.Seconds), 0)
		doc.Length.Seconds = 0
		doc.Length.Duration = formatDuration(0)
	}
	if want := InOptimalRange(int(doc.Length.Seconds)); doc.Length.OptimalRange != want {
		v.record(KeyLength+".optimalRange", doc.Length.OptimalRange, want)
		doc.Length.OptimalRange = want
	}

	nonNil(&doc.FillerWords.CommonWords)
	nonNil(&doc.PowerWords.Words)
	nonNil(&doc.NegativeTone.Phrases)
	nonNil(&doc.Strengths)
	nonNil(&doc.Improvements)

	return v.corrections
}

type validator struct {
	corrections []Correction
}

func (v *validator) record(field string, from, to any) {
	v.corrections = append(v.corrections, Correction{Field: field, From: from, To: to})
}

func (v *validator) category(spec CategorySpec, c *Category) {
	if clamped := ClampScore(int(c.Score)); clamped != int(c.Score) {
		v.record(spec.Key+".score", int(c.Score), clamped)
		c.Score = Score(clamped)
	}
	if want := spec.StatusFor(int(c.Score)); c.Status != want {
		v.record(spec.Key+".status", string(c.Status), string(want))
		c.Status = want
	}

	title := strings.ToLower(spec.Title)
	v.text(spec.Key+".summary", &c.Summary, fmt.Sprintf("No %s summary was provided.", title))
	v.text(spec.Key+".description", &c.Description, spec.FallbackDescription)
	v.text(spec.Key+".detailedAnalysis", &c.DetailedAnalysis, fmt.Sprintf("No detailed %s analysis was provided.", title))

	nonNil(&c.Examples)
	nonNil(&c.Tips)
}

func (v *validator) text(field string, s *string, placeholder string) {
	if strings.TrimSpace(*s) != "" {
		return
	}
	v.record(field, *s, placeholder)
	*s = placeholder
}

// count raises c to at least floor, then clamps it to [0, max].
func (v *validator) count(field string, c *Count, floor, max int) {
	n := int(*c)
	if n < floor {
		n = floor
	}
	if n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	if n != int(*c) {
		v.record(field, int(*c), n)
		*c = Count(n)
	}
}

func (v *validator) counted(key string, c *CountedCategory, total int) {
	v.count(key+".count", &c.Count, 0, total)
	if want := Per100Words(int(c.Count), total); c.Per100Words != want {
		v.record(key+".per100Words", c.Per100Words, want)
		c.Per100Words = want
	}
}

func nonNil(s *[]string) {
	if *s == nil {
		*s = []string{}
	}
}
