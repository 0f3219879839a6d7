package feedback

import (
	"encoding/json"
	"errors"
	"strings"
)

// Candidate is a decoded but untrusted critique: top-level keys mapped to their raw JSON.
type Candidate map[string]json.RawMessage

// ParseResponse decodes raw model text as exactly one JSON object. There is no attempt to
// recover objects embedded in prose; anything else yields a *ParseError matching ErrParseFailed.
func ParseResponse(raw string) (Candidate, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Cause: errors.New("empty response")}
	}
	var c Candidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, &ParseError{Cause: err}
	}
	if c == nil {
		return nil, &ParseError{Cause: errors.New("top-level value is null")}
	}
	return c, nil
}
