package feedback

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/jonathan/interview-coach/internal/schemas"
)

// SchemaVersion identifies the critique contract. Fallback, Merge, Validate and the
// outbound prompt all read ContractV1, so a bump here moves all of them together.
const SchemaVersion = "2024-06"

// Category keys as they appear in the JSON document.
const (
	KeyOverallPerformance = "overallPerformance"
	KeyAnswerRelevance    = "answerRelevance"
	KeyPaceOfSpeech       = "paceOfSpeech"
	KeyUmCounter          = "umCounter"
	KeyVocabulary         = "vocabulary"
	KeyPowerWords         = "powerWords"
	KeyFillerWords        = "fillerWords"
	KeyPauseCounter       = "pauseCounter"
	KeyNegativeTone       = "negativeTone"
	KeyLength             = "length"
	KeyAuthenticityScore  = "authenticityScore"
	KeyClarity            = "clarity"
)

// Polarity says which end of the score range is desirable.
type Polarity int

const (
	// HigherIsBetter maps score bands directly onto statuses.
	HigherIsBetter Polarity = iota
	// LowerIsBetter mirrors the bands: a score of 0 is excellent.
	LowerIsBetter
)

// CategorySpec is the contract entry for one category.
type CategorySpec struct {
	Key      string
	Title    string
	Polarity Polarity
	// Guidance tells the model what to assess.
	Guidance string

	FallbackSummary     string
	FallbackDescription string
	FallbackTips        []string
}

// Contract is the versioned list of categories a critique must produce.
type Contract struct {
	Version    string
	Categories []CategorySpec
}

const fallbackAnalysis = "No analysis is available because no spoken answer was recorded or the critique could not be read."

// ContractV1 is the contract currently sent to, and enforced on, the critique model.
var ContractV1 = Contract{
	Version: SchemaVersion,
	Categories: []CategorySpec{
		{
			Key:                 KeyOverallPerformance,
			Title:               "Overall Performance",
			Guidance:            "Holistic quality of the answer as an interviewer would judge it.",
			FallbackSummary:     "No response was available to evaluate.",
			FallbackDescription: "A holistic rating of how well the answer would land with an interviewer.",
			FallbackTips:        []string{"Record a complete answer of one to two minutes."},
		},
		{
			Key:                 KeyAnswerRelevance,
			Title:               "Answer Relevance",
			Guidance:            "How directly the answer addresses the question that was asked.",
			FallbackSummary:     "Relevance could not be assessed without a response.",
			FallbackDescription: "How directly the answer addresses the question.",
			FallbackTips:        []string{"Restate the question briefly, then answer it directly."},
		},
		{
			Key:                 KeyPaceOfSpeech,
			Title:               "Pace of Speech",
			Guidance:            "Speaking rate; 130 to 160 words per minute is conversational. Report wpm.",
			FallbackSummary:     "Speaking pace could not be measured.",
			FallbackDescription: "How quickly you speak, in words per minute.",
			FallbackTips:        []string{"Aim for a steady, conversational pace."},
		},
		{
			Key:                 KeyUmCounter,
			Title:               "Um Counter",
			Guidance:            "Occurrences of \"um\" and \"uh\". Report count and per100Words.",
			FallbackSummary:     "No hesitations could be counted.",
			FallbackDescription: "How often you say \"um\" or \"uh\".",
			FallbackTips:        []string{"Pause silently instead of saying \"um\"."},
		},
		{
			Key:                 KeyVocabulary,
			Title:               "Vocabulary",
			Guidance:            "Range and precision of word choice. Report level and gradeLevel.",
			FallbackSummary:     "Vocabulary could not be assessed.",
			FallbackDescription: "The range and precision of your word choice.",
			FallbackTips:        []string{"Use precise, role-specific terms where they fit."},
		},
		{
			Key:                 KeyPowerWords,
			Title:               "Power Words",
			Guidance:            "Strong action verbs such as led, delivered, built. Report count and words.",
			FallbackSummary:     "No power words could be identified.",
			FallbackDescription: "Strong action words that convey ownership and impact.",
			FallbackTips:        []string{"Describe your actions with verbs like led, built or delivered."},
		},
		{
			Key:                 KeyFillerWords,
			Title:               "Filler Words",
			Guidance:            "Fillers such as like, you know, basically. Report count, per100Words and commonWords.",
			FallbackSummary:     "No filler words could be counted.",
			FallbackDescription: "Words that add no meaning, such as \"like\" or \"you know\".",
			FallbackTips:        []string{"Replace filler words with a short pause."},
		},
		{
			Key:                 KeyPauseCounter,
			Title:               "Pause Counter",
			Guidance:            "Noticeable hesitations or broken-off sentences. Report count.",
			FallbackSummary:     "Pauses could not be assessed.",
			FallbackDescription: "How often the answer stalls or restarts.",
			FallbackTips:        []string{"Outline your answer before you start speaking."},
		},
		{
			Key:                 KeyNegativeTone,
			Title:               "Negative Tone",
			Polarity:            LowerIsBetter,
			Guidance:            "Amount of negative or self-deprecating language. 0 means none; higher scores mean more negativity. Report count and phrases.",
			FallbackSummary:     "No negative language was detected.",
			FallbackDescription: "Negative or self-deprecating phrasing that can undercut your answer.",
			FallbackTips:        []string{"Frame setbacks in terms of what you learned."},
		},
		{
			Key:                 KeyLength,
			Title:               "Length",
			Guidance:            "Duration of the answer; 60 to 120 seconds is optimal. Report duration, seconds and optimalRange.",
			FallbackSummary:     "No spoken answer was detected.",
			FallbackDescription: "How long the answer ran compared with the recommended one to two minutes.",
			FallbackTips:        []string{"Keep answers between one and two minutes."},
		},
		{
			Key:                 KeyAuthenticityScore,
			Title:               "Authenticity",
			Guidance:            "How natural and genuine the answer sounds rather than rehearsed. Report conversationalLevel.",
			FallbackSummary:     "Authenticity could not be assessed.",
			FallbackDescription: "How natural and genuine the answer sounds.",
			FallbackTips:        []string{"Speak from real experience rather than a memorized script."},
		},
		{
			Key:                 KeyClarity,
			Title:               "Clarity",
			Guidance:            "Structure and ease of following the answer, for example situation, task, action, result.",
			FallbackSummary:     "Clarity could not be assessed.",
			FallbackDescription: "How easy the answer is to follow from start to finish.",
			FallbackTips:        []string{"Structure stories as situation, task, action and result."},
		},
	},
}

// Spec returns the contract entry for key.
func (c Contract) Spec(key string) (CategorySpec, bool) {
	for _, spec := range c.Categories {
		if spec.Key == key {
			return spec, true
		}
	}
	return CategorySpec{}, false
}

// Keys returns the category keys in contract order.
func (c Contract) Keys() []string {
	keys := make([]string, len(c.Categories))
	for i, spec := range c.Categories {
		keys[i] = spec.Key
	}
	return keys
}

// reflectedSchemas holds the document schema and per-category schema text for one contract version.
type reflectedSchemas struct {
	document   *jsonschema.Schema
	categories map[string]string
	err        error
}

var (
	schemaMu    sync.Mutex
	schemaCache = make(map[string]*reflectedSchemas)
)

// reflected reflects Document once per contract version. Every category the contract
// lists must exist in the reflected document.
func (c Contract) reflected() *reflectedSchemas {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if cached, ok := schemaCache[c.Version]; ok {
		return cached
	}
	rs := c.build()
	schemaCache[c.Version] = rs
	return rs
}

func (c Contract) build() *reflectedSchemas {
	r := jsonschema.Reflector{
		Anonymous:                  true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&Document{})
	s.Version = "http://json-schema.org/draft-07/schema#"
	s.Title = "FeedbackDocument"
	s.Description = "Interview answer critique, contract version " + c.Version

	categories := make(map[string]string, len(c.Categories))
	for _, key := range c.Keys() {
		prop, ok := s.Properties.Get(key)
		if !ok {
			return &reflectedSchemas{err: fmt.Errorf("contract %s: category %q missing from reflected schema", c.Version, key)}
		}
		b, err := json.Marshal(prop)
		if err != nil {
			return &reflectedSchemas{err: fmt.Errorf("failed to marshal %s schema: %w", key, err)}
		}
		categories[key] = string(b)
	}
	return &reflectedSchemas{document: s, categories: categories}
}

// JSONSchema returns the JSON Schema of the full document.
func (c Contract) JSONSchema() (*jsonschema.Schema, error) {
	rs := c.reflected()
	return rs.document, rs.err
}

// PromptSchema returns the document schema as indented JSON, as embedded in the critique prompt.
func (c Contract) PromptSchema() (string, error) {
	s, err := c.JSONSchema()
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal document schema: %w", err)
	}
	return string(b), nil
}

// CategorySchema returns the JSON Schema text for one of the contract's categories.
func (c Contract) CategorySchema(key string) (string, error) {
	rs := c.reflected()
	if rs.err != nil {
		return "", rs.err
	}
	schema, ok := rs.categories[key]
	if !ok {
		return "", fmt.Errorf("unknown category %q in contract %s", key, c.Version)
	}
	return schema, nil
}

// ValidateCategory checks raw category JSON against that category's schema. It only
// checks presence and JSON types; range and consistency problems are left to Validate.
func (c Contract) ValidateCategory(key string, raw json.RawMessage) error {
	schema, err := c.CategorySchema(key)
	if err != nil {
		return err
	}
	return schemas.ValidateJSONString(schema, string(raw))
}
