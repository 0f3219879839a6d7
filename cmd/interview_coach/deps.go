package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/critique"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/speech"
)

// feedbackStore is what both storage backends provide.
type feedbackStore interface {
	interview.Store
	Ping(ctx context.Context) error
	Close() error
}

// loadConfig reads --config and the environment, then applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// openStore opens the configured backend. It returns nil for store "none".
func openStore(ctx context.Context, cfg *config.Config) (feedbackStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return database, nil
	case config.StoreSQLite:
		store, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// newGenerator builds the critique generator for the configured provider.
func newGenerator(ctx context.Context, cfg *config.Config) (*critique.LLMGenerator, llm.Client, error) {
	provider, err := llm.ParseProvider(cfg.LLMProvider)
	if err != nil {
		return nil, nil, err
	}
	apiKey := cfg.LLMAPIKey()
	if apiKey == "" {
		return nil, nil, fmt.Errorf("API key is required for llm provider %s (set %s_API_KEY)", provider, strings.ToUpper(string(provider)))
	}

	llmCfg := llm.ConfigFor(provider)
	if cfg.LLMModel != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, cfg.LLMModel)
	}
	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return critique.NewGenerator(client), client, nil
}

// newTranscriber builds the configured speech-to-text adapter. The returned close func is never nil.
func newTranscriber(ctx context.Context, cfg *config.Config, log *logging.Logger) (speech.Transcriber, func() error, error) {
	noop := func() error { return nil }
	switch cfg.TranscriptionProvider {
	case "gcp":
		t, err := speech.NewGCPTranscriber(ctx, speech.GCPConfig{
			LanguageCode:    cfg.LanguageCode,
			Model:           cfg.TranscriptionModel,
			CredentialsFile: cfg.GCPCredentialsFile,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return t, t.Close, nil
	case "openai", "":
		t, err := speech.NewWhisperTranscriber(openAISpeechConfig(cfg))
		if err != nil {
			return nil, noop, fmt.Errorf("openai transcription: %w", err)
		}
		return t, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown transcription provider %q", cfg.TranscriptionProvider)
	}
}

// newSynthesizer returns nil when no OpenAI key is configured.
func newSynthesizer(cfg *config.Config) (speech.Synthesizer, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, nil
	}
	synth, err := speech.NewOpenAISynthesizer(openAISpeechConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	return synth, nil
}

func openAISpeechConfig(cfg *config.Config) speech.OpenAIConfig {
	lang, _, _ := strings.Cut(cfg.LanguageCode, "-")
	return speech.OpenAIConfig{
		APIKey:             cfg.OpenAIAPIKey,
		TranscriptionModel: cfg.TranscriptionModel,
		Language:           strings.ToLower(lang),
		SpeechModel:        cfg.TTSModel,
		Voice:              cfg.TTSVoice,
	}
}
