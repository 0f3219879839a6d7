package critique

import (
	"context"
	"fmt"

	"github.com/jonathan/interview-coach/internal/llm"
)

// Generator produces raw critique text for an answer. The text is untrusted; callers pass
// it to feedback.Normalize.
type Generator interface {
	Generate(ctx context.Context, question, transcript string) (string, error)
}

// LLMGenerator implements Generator over an llm.Client.
type LLMGenerator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewGenerator creates a generator using the standard model tier.
func NewGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client, tier: llm.TierStandard}
}

// WithTier returns a copy of the generator that uses tier.
func (g *LLMGenerator) WithTier(tier llm.ModelTier) *LLMGenerator {
	return &LLMGenerator{client: g.client, tier: tier}
}

// Generate makes exactly one model call. Errors are transport failures; malformed
// output is returned as text.
func (g *LLMGenerator) Generate(ctx context.Context, question, transcript string) (string, error) {
	prompt, err := BuildPrompt(question, transcript)
	if err != nil {
		return "", err
	}
	text, err := g.client.GenerateJSON(ctx, prompt, g.tier)
	if err != nil {
		return "", fmt.Errorf("critique request to %s failed: %w", g.client.GetModel(g.tier), err)
	}
	return text, nil
}
