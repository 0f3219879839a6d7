// Package critique builds the request sent to the critique model and runs it.
package critique

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/feedback"
	"github.com/jonathan/interview-coach/internal/prompts"
)

const (
	promptFile      = "critique.json"
	promptKey       = "critique-answer"
	categoryLineKey = "critique-category-line"

	noQuestion = "(no question was recorded)"
)

// BuildPrompt renders the critique prompt for one answer. The category list and JSON Schema
// come from feedback.ContractV1, so the model is asked for exactly what Merge accepts.
func BuildPrompt(question, transcript string) (string, error) {
	schema, err := feedback.ContractV1.PromptSchema()
	if err != nil {
		return "", fmt.Errorf("failed to build feedback schema: %w", err)
	}

	lineTemplate, err := prompts.Get(promptFile, categoryLineKey)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(feedback.ContractV1.Categories))
	for _, spec := range feedback.ContractV1.Categories {
		lines = append(lines, prompts.Format(lineTemplate, map[string]string{
			"Key":      spec.Key,
			"Title":    spec.Title,
			"Guidance": spec.Guidance,
		}))
	}

	question = strings.TrimSpace(question)
	if question == "" {
		question = noQuestion
	}

	return prompts.Render(promptFile, promptKey, map[string]string{
		"Question":   question,
		"Transcript": strings.TrimSpace(transcript),
		"Categories": strings.Join(lines, "\n"),
		"Schema":     schema,
		"Version":    feedback.ContractV1.Version,
	})
}
