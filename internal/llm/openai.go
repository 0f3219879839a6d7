package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const jsonOnlyInstructions = "Respond with a single JSON object and nothing else."

// OpenAIClient implements Client over the OpenAI Responses API
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{client: &client, config: config}, nil
}

// GenerateJSON asks the tier's model for a single JSON object.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier)
	if err != nil {
		return "", err
	}
	return StripFence(text), nil
}

func (c *OpenAIClient) generate(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	params := responses.ResponseNewParams{
		Model:        modelName,
		Temperature:  openai.Float(0.1),
		Instructions: openai.String(jsonOnlyInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if c.config.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(c.config.MaxTokens)
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text in response")
	}
	return text, nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the OpenAI client holds no long-lived resources.
func (c *OpenAIClient) Close() error {
	return nil
}
