package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jonathan/interview-coach/internal/prompts"
)

// OpenAIConfig configures the OpenAI audio endpoints.
type OpenAIConfig struct {
	APIKey             string
	TranscriptionModel string
	Language           string
	SpeechModel        string
	Voice              string
}

func (c OpenAIConfig) withDefaults() OpenAIConfig {
	if c.TranscriptionModel == "" {
		c.TranscriptionModel = string(openai.AudioModelWhisper1)
	}
	if c.SpeechModel == "" {
		c.SpeechModel = string(openai.SpeechModelTTS1)
	}
	if c.Voice == "" {
		c.Voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}
	return c
}

func newOpenAIClient(cfg OpenAIConfig, opts []option.RequestOption) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	return &client, nil
}

// WhisperTranscriber implements Transcriber over the OpenAI transcription endpoint.
type WhisperTranscriber struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewWhisperTranscriber creates a transcriber. opts are passed to the OpenAI client.
func NewWhisperTranscriber(cfg OpenAIConfig, opts ...option.RequestOption) (*WhisperTranscriber, error) {
	cfg = cfg.withDefaults()
	client, err := newOpenAIClient(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &WhisperTranscriber{client: client, cfg: cfg}, nil
}

// Transcribe uploads the recording and returns the recognized text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrEmptyAudio
	}
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio.Data), audio.FilenameFor(), audio.ContentType()),
		Model: openai.AudioModel(t.cfg.TranscriptionModel),
	}
	if t.cfg.Language != "" {
		params.Language = openai.String(t.cfg.Language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// OpenAISynthesizer implements Synthesizer over the OpenAI speech endpoint.
type OpenAISynthesizer struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAISynthesizer creates a synthesizer. opts are passed to the OpenAI client.
func NewOpenAISynthesizer(cfg OpenAIConfig, opts ...option.RequestOption) (*OpenAISynthesizer, error) {
	cfg = cfg.withDefaults()
	client, err := newOpenAIClient(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &OpenAISynthesizer{client: client, cfg: cfg}, nil
}

// Synthesize returns MP3 audio for text.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("text is required")
	}
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.cfg.SpeechModel),
		Voice:          openai.AudioSpeechNewParamsVoice(s.cfg.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, "", fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read speech audio: %w", err)
	}
	return data, "audio/mpeg", nil
}

// QuestionText is the script read aloud when a question is played to the candidate.
func QuestionText(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is required")
	}
	return prompts.Render("speech.json", "question-readout", map[string]string{"Question": question})
}
