// Package llm provides provider-neutral access to the generative models that critique answers.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap calls such as question rephrasing
	TierLite ModelTier = "lite"
	// TierStandard is for structured critique output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long or difficult answers
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (Responses API)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic Messages API
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider maps a config string onto a Provider. An empty string means Gemini.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown llm provider %q", s)
	}
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// MaxTokens caps output length for providers that require it. Zero uses the provider default.
	MaxTokens int64
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4.1-mini",
			TierStandard: "gpt-4.1",
			TierAdvanced: "gpt-4.1",
		},
	}
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-sonnet-4-5",
			TierAdvanced: "claude-sonnet-4-5",
		},
		MaxTokens: 4096,
	}
}

// ConfigFor returns the default configuration for a provider.
func ConfigFor(p Provider) *Config {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	case ProviderAnthropic:
		return DefaultAnthropicConfig()
	default:
		return DefaultGeminiConfig()
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:  c.Provider,
		Models:    make(map[ModelTier]string),
		MaxTokens: c.MaxTokens,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
