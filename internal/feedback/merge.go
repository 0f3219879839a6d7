package feedback

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Issue explains why part of a candidate was not used.
type Issue struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// MergeReport records which categories came from the model and which were defaulted.
type MergeReport struct {
	Provided  []string `json:"provided"`
	Defaulted []string `json:"defaulted"`
	Issues    []Issue  `json:"issues,omitempty"`
}

// Merge overlays a candidate onto Fallback. A category is taken wholesale when its raw value
// passes the contract schema for that category and decodes cleanly; otherwise the fallback
// category is kept untouched. Fields are never merged inside a category.
func Merge(c Candidate) (Document, MergeReport) {
	doc := Fallback()
	report := MergeReport{Provided: []string{}, Defaulted: []string{}}

	for _, s := range doc.slots() {
		raw, ok := c[s.key]
		if !ok {
			report.Defaulted = append(report.Defaulted, s.key)
			report.Issues = append(report.Issues, Issue{Key: s.key, Reason: "missing"})
			continue
		}
		if err := mergeCategory(s, raw); err != nil {
			report.Defaulted = append(report.Defaulted, s.key)
			report.Issues = append(report.Issues, Issue{Key: s.key, Reason: err.Error()})
			continue
		}
		report.Provided = append(report.Provided, s.key)
	}

	if list, err := stringList(c, "strengths"); err != nil {
		report.Issues = append(report.Issues, Issue{Key: "strengths", Reason: err.Error()})
	} else if list != nil {
		doc.Strengths = list
	}
	if list, err := stringList(c, "improvements"); err != nil {
		report.Issues = append(report.Issues, Issue{Key: "improvements", Reason: err.Error()})
	} else if list != nil {
		doc.Improvements = list
	}

	return doc, report
}

func mergeCategory(s slot, raw json.RawMessage) error {
	if err := ContractV1.ValidateCategory(s.key, raw); err != nil {
		return err
	}
	dst := reflect.ValueOf(s.ptr).Elem()
	decoded := reflect.New(dst.Type())
	if err := json.Unmarshal(raw, decoded.Interface()); err != nil {
		return fmt.Errorf("decode %s: %w", s.key, err)
	}
	dst.Set(decoded.Elem())
	return nil
}

// stringList returns nil, nil when key is absent or null.
func stringList(c Candidate, key string) ([]string, error) {
	raw, ok := c[key]
	if !ok {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return list, nil
}
