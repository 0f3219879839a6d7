// Package config loads service and CLI configuration from a JSON or YAML file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreNone     = "none"
)

// Config represents the service configuration. Every field can come from the config file
// and be overridden by the environment variable named in Env.
type Config struct {
	Port    int    `json:"port,omitempty" yaml:"port" validate:"min=1,max=65535"`
	LogMode string `json:"log_mode,omitempty" yaml:"log_mode" validate:"omitempty,oneof=development dev production prod"`

	// Persistence
	Store       string `json:"store,omitempty" yaml:"store" validate:"oneof=postgres sqlite none"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url" validate:"required_if=Store postgres"`
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path" validate:"required_if=Store sqlite"`

	// Critique model
	LLMProvider     string `json:"llm_provider,omitempty" yaml:"llm_provider" validate:"oneof=gemini openai anthropic"`
	LLMModel        string `json:"llm_model,omitempty" yaml:"llm_model"`
	GeminiAPIKey    string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty" yaml:"openai_api_key"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key"`

	// Speech
	TranscriptionProvider string `json:"transcription_provider,omitempty" yaml:"transcription_provider" validate:"oneof=openai gcp"`
	TranscriptionModel    string `json:"transcription_model,omitempty" yaml:"transcription_model"`
	GCPCredentialsFile    string `json:"gcp_credentials_file,omitempty" yaml:"gcp_credentials_file"`
	LanguageCode          string `json:"language_code,omitempty" yaml:"language_code" validate:"omitempty,bcp47_language_tag"`
	TTSModel              string `json:"tts_model,omitempty" yaml:"tts_model"`
	TTSVoice              string `json:"tts_voice,omitempty" yaml:"tts_voice"`

	// HTTP
	CORSOrigin string `json:"cors_origin,omitempty" yaml:"cors_origin"`
	// MaxAudioBytes caps uploaded recordings.
	MaxAudioBytes int64 `json:"max_audio_bytes,omitempty" yaml:"max_audio_bytes" validate:"min=0"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:                  8080,
		LogMode:               "development",
		Store:                 StoreSQLite,
		SQLitePath:            "./interview_coach.db",
		LLMProvider:           "gemini",
		TranscriptionProvider: "openai",
		LanguageCode:          "en-US",
		CORSOrigin:            "*",
		MaxAudioBytes:         25 << 20,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path (if any),
// then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
func (c *Config) ApplyEnv() error {
	envOverride(&c.LogMode, "LOG_MODE")
	envOverride(&c.Store, "STORE")
	envOverride(&c.DatabaseURL, "DATABASE_URL")
	envOverride(&c.SQLitePath, "SQLITE_PATH")
	envOverride(&c.LLMProvider, "LLM_PROVIDER")
	envOverride(&c.LLMModel, "LLM_MODEL")
	envOverride(&c.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&c.TranscriptionProvider, "TRANSCRIPTION_PROVIDER")
	envOverride(&c.TranscriptionModel, "TRANSCRIPTION_MODEL")
	envOverride(&c.GCPCredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	envOverride(&c.LanguageCode, "LANGUAGE_CODE")
	envOverride(&c.TTSModel, "TTS_MODEL")
	envOverride(&c.TTSVoice, "TTS_VOICE")
	envOverride(&c.CORSOrigin, "CORS_ORIGIN")

	if err := envOverrideInt(&c.Port, "PORT"); err != nil {
		return err
	}
	if val := os.Getenv("MAX_AUDIO_BYTES"); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("config error: MAX_AUDIO_BYTES must be an integer: %w", err)
		}
		c.MaxAudioBytes = n
	}
	return nil
}

// Validate checks field values with struct tags, then the provider key for the critique model.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config error: %s failed %q validation", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LLMAPIKey returns the API key for the configured critique provider.
func (c *Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	fill(&result.LogMode, defaults.LogMode)
	fill(&result.Store, defaults.Store)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.SQLitePath, defaults.SQLitePath)
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.LLMModel, defaults.LLMModel)
	fill(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	fill(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	fill(&result.AnthropicAPIKey, defaults.AnthropicAPIKey)
	fill(&result.TranscriptionProvider, defaults.TranscriptionProvider)
	fill(&result.TranscriptionModel, defaults.TranscriptionModel)
	fill(&result.GCPCredentialsFile, defaults.GCPCredentialsFile)
	fill(&result.LanguageCode, defaults.LanguageCode)
	fill(&result.TTSModel, defaults.TTSModel)
	fill(&result.TTSVoice, defaults.TTSVoice)
	fill(&result.CORSOrigin, defaults.CORSOrigin)

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxAudioBytes == 0 {
		result.MaxAudioBytes = defaults.MaxAudioBytes
	}

	return result
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	val := os.Getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("config error: %s must be an integer: %w", envKey, err)
	}
	*field = parsed
	return nil
}
