package feedback

import (
	"strings"

	"github.com/jonathan/interview-coach/internal/logging"
)

// Report summarizes how a critique was turned into a document.
type Report struct {
	SchemaVersion   string       `json:"schemaVersion"`
	ParseFailed     bool         `json:"parseFailed"`
	ParseError      string       `json:"parseError,omitempty"`
	EmptyTranscript bool         `json:"emptyTranscript"`
	Provided        []string     `json:"provided"`
	Defaulted       []string     `json:"defaulted"`
	Issues          []Issue      `json:"issues,omitempty"`
	Corrections     []Correction `json:"corrections"`
}

// FallbackUsed is true when at least one category came from the fallback document.
func (r Report) FallbackUsed() bool {
	return r.ParseFailed || r.EmptyTranscript || len(r.Defaulted) > 0
}

// Result is a normalized document plus what it took to get there.
type Result struct {
	Document Document `json:"feedback"`
	Metrics  Metrics  `json:"metrics"`
	Report   Report   `json:"report"`
}

// Options tunes Normalize.
type Options struct {
	Logger *logging.Logger
}

// Normalize runs parse, merge, derive and validate over raw critique text. A blank transcript
// skips the critique entirely. The returned document is always complete.
func Normalize(raw, transcript string, opts Options) Result {
	log := logging.OrNop(opts.Logger)
	report := Report{SchemaVersion: SchemaVersion}

	var candidate Candidate
	if strings.TrimSpace(transcript) == "" {
		report.EmptyTranscript = true
	} else {
		c, err := ParseResponse(raw)
		if err != nil {
			report.ParseFailed = true
			report.ParseError = err.Error()
			log.Warn("critique parse failed, using fallback", "error", err, "raw_length", len(raw))
		} else {
			candidate = c
		}
	}

	doc, merged := Merge(candidate)
	report.Provided = merged.Provided
	report.Defaulted = merged.Defaulted
	report.Issues = merged.Issues
	if !report.ParseFailed && !report.EmptyTranscript && len(merged.Defaulted) > 0 {
		log.Warn("critique categories defaulted", "categories", merged.Defaulted)
	}

	metrics := Derive(&doc, transcript)
	report.Corrections = Validate(&doc, metrics)
	for _, c := range report.Corrections {
		log.Debug("feedback corrected", "field", c.Field, "from", c.From, "to", c.To)
	}

	return Result{Document: doc, Metrics: metrics, Report: report}
}
