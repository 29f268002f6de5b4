// Package speech is the boundary to the Transcription Service.
package speech

import (
	"context"
	"log/slog"
	"strings"
)

// Audio is one recorded answer. SampleRate is taken from the WAV header when
// the client does not send one.
type Audio struct {
	Data        []byte
	SampleRate  int
	Filename    string
	ContentType string
}

// Empty reports whether no audio was captured.
func (a Audio) Empty() bool { return len(a.Data) == 0 }

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// TranscribeOrEmpty never fails: missing audio or a recognition error yields
// an empty transcript, which is still a valid answer.
func TranscribeOrEmpty(ctx context.Context, t Transcriber, audio Audio) string {
	if t == nil || audio.Empty() {
		return ""
	}
	text, err := t.Transcribe(ctx, audio)
	if err != nil {
		slog.WarnContext(ctx, "transcription failed", "err", err, "bytes", len(audio.Data))
		return ""
	}
	return strings.TrimSpace(text)
}
