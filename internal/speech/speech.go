// Package speech adapts external speech services: transcription of recorded answers and
// synthesis of question audio.
package speech

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrEmptyAudio is returned when a transcription is requested for zero bytes.
var ErrEmptyAudio = errors.New("audio is empty")

// Audio is one recorded answer.
type Audio struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Transcriber turns recorded speech into text. An empty transcript with a nil error means
// the recording contained no recognizable speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// Synthesizer turns text into playable audio and reports its content type.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// ContentType resolves the audio MIME type from the declared type, the file extension,
// then content sniffing, in that order. Parameters such as codecs are stripped.
func (a Audio) ContentType() string {
	if mt, _, err := mime.ParseMediaType(a.MIMEType); err == nil && mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(a.Filename))]; ok {
		return mt
	}
	if len(a.Data) > 0 {
		if mt, _, err := mime.ParseMediaType(http.DetectContentType(a.Data)); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}

var extensionTypes = map[string]string{
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".webm": "audio/webm",
}

// FilenameFor returns a.Filename, or a name with an extension matching the content type.
func (a Audio) FilenameFor() string {
	if a.Filename != "" {
		return a.Filename
	}
	ct := a.ContentType()
	for ext, mt := range extensionTypes {
		if mt == ct && ext != ".opus" && ext != ".mp4" {
			return "answer" + ext
		}
	}
	return "answer.webm"
}
