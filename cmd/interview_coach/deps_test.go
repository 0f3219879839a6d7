package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/feedback"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store = config.StoreNone
		store, err := openStore(ctx, &cfg)
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Default()
		cfg.SQLitePath = filepath.Join(t.TempDir(), "coach.db")
		store, err := openStore(ctx, &cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		require.NoError(t, store.Ping(ctx))
		rec := db.NewFeedbackRecord("r-1", "Q?", answer, feedback.Fallback())
		require.NoError(t, store.SaveFeedback(ctx, "r-1", rec))
		got, err := store.GetFeedback(ctx, "r-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Q?", got.Question)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store = "mongo"
		_, err := openStore(ctx, &cfg)
		assert.Error(t, err)
	})
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	for _, provider := range []string{"gemini", "openai", "anthropic"} {
		t.Run(provider, func(t *testing.T) {
			cfg := config.Default()
			cfg.LLMProvider = provider
			_, _, err := newGenerator(context.Background(), &cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "API key is required")
		})
	}
}

func TestNewGenerator_ModelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.LLMProvider = "openai"
	cfg.OpenAIAPIKey = "sk-test"
	cfg.LLMModel = "gpt-4.1-nano"

	gen, client, err := newGenerator(context.Background(), &cfg)
	require.NoError(t, err)
	defer client.Close()
	assert.NotNil(t, gen)
	assert.Equal(t, "gpt-4.1-nano", client.GetModel("standard"))
}

func TestNewTranscriber(t *testing.T) {
	cfg := config.Default()
	cfg.TranscriptionProvider = "openai"
	cfg.OpenAIAPIKey = ""
	_, closeFn, err := newTranscriber(context.Background(), &cfg, nil)
	assert.Error(t, err)
	assert.NoError(t, closeFn())

	cfg.OpenAIAPIKey = "sk-test"
	tr, closeFn, err := newTranscriber(context.Background(), &cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, tr)
	assert.NoError(t, closeFn())
}

func TestNewSynthesizer(t *testing.T) {
	cfg := config.Default()
	synth, err := newSynthesizer(&cfg)
	require.NoError(t, err)
	assert.Nil(t, synth)

	cfg.OpenAIAPIKey = "sk-test"
	synth, err = newSynthesizer(&cfg)
	require.NoError(t, err)
	assert.NotNil(t, synth)
}

func TestOpenAISpeechConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LanguageCode = "en-GB"
	cfg.TTSVoice = "nova"
	sc := openAISpeechConfig(&cfg)
	assert.Equal(t, "en", sc.Language)
	assert.Equal(t, "nova", sc.Voice)
}
