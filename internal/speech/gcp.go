package speech

import (
	"context"
	"fmt"
	"strings"
	"time"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/jonathan/interview-coach/internal/logging"
)

const gcpTimeout = 3 * time.Minute

// GCPConfig configures Cloud Speech-to-Text.
type GCPConfig struct {
	LanguageCode    string
	Model           string
	CredentialsFile string
	// SampleRateHertz is sent for Opus encodings, which require it. Defaults to 48000.
	SampleRateHertz int
}

type recognizeFunc func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)

// GCPTranscriber implements Transcriber over Google Cloud Speech-to-Text.
type GCPTranscriber struct {
	log       *logging.Logger
	cfg       GCPConfig
	client    *speechapi.Client
	recognize recognizeFunc
}

// NewGCPTranscriber dials Cloud Speech. Credentials come from CredentialsFile when set,
// otherwise from application default credentials.
func NewGCPTranscriber(ctx context.Context, cfg GCPConfig, log *logging.Logger) (*GCPTranscriber, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	c, err := speechapi.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	t := newGCPTranscriber(cfg, log, func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := c.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	t.client = c
	return t, nil
}

func newGCPTranscriber(cfg GCPConfig, log *logging.Logger, fn recognizeFunc) *GCPTranscriber {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.SampleRateHertz <= 0 {
		cfg.SampleRateHertz = 48000
	}
	return &GCPTranscriber{
		log:       logging.OrNop(log).With("service", "gcp.Speech"),
		cfg:       cfg,
		recognize: fn,
	}
}

// Transcribe sends the recording in one request and joins the top alternative of every result.
func (t *GCPTranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrEmptyAudio
	}
	ctx, cancel := context.WithTimeout(ctx, gcpTimeout)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: t.recognitionConfig(audio),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.Data}},
	}
	start := time.Now()
	resp, err := t.recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}

	text := joinResults(resp)
	t.log.Debug("transcribed audio", "bytes", len(audio.Data), "encoding", req.Config.Encoding.String(), "chars", len(text), "duration_ms", time.Since(start).Milliseconds())
	return text, nil
}

// Close releases the gRPC connection.
func (t *GCPTranscriber) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

func (t *GCPTranscriber) recognitionConfig(audio Audio) *speechpb.RecognitionConfig {
	enc := inferEncoding(audio.ContentType(), audio.Filename)
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               t.cfg.LanguageCode,
		Model:                      t.cfg.Model,
		EnableAutomaticPunctuation: true,
		Encoding:                   enc,
	}
	if enc == speechpb.RecognitionConfig_OGG_OPUS || enc == speechpb.RecognitionConfig_WEBM_OPUS {
		rc.SampleRateHertz = int32(t.cfg.SampleRateHertz)
	}
	return rc
}

func inferEncoding(mimeType, filename string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(m, "wav") || strings.HasSuffix(name, ".wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac") || strings.HasSuffix(name, ".flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mpeg") || strings.Contains(m, "mp3") || strings.HasSuffix(name, ".mp3"):
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "webm") || strings.HasSuffix(name, ".webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(m, "ogg") || strings.HasSuffix(name, ".ogg") || strings.HasSuffix(name, ".opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func joinResults(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	var full strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		text := strings.TrimSpace(r.Alternatives[0].Transcript)
		if text == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(text)
	}
	return full.String()
}
