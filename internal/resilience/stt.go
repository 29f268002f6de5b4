package resilience

import (
	"context"
	"time"

	"evalia/internal/speech"
)

// STT implements speech.Transcriber over an ordered set of transcribers.
// Transcription is not retried: audio uploads are large and failures tend to
// be permanent for a given clip.
type STT struct {
	group    *FallbackGroup[speech.Transcriber]
	timeout  time.Duration
	observer CallObserver
}

var _ speech.Transcriber = (*STT)(nil)

func NewSTT(primaryName string, primary speech.Transcriber, policy Policy, observer CallObserver) *STT {
	return &STT{
		group:    NewFallbackGroup(primaryName, primary, policy.Breaker),
		timeout:  policy.Timeout,
		observer: observer,
	}
}

func (s *STT) AddFallback(name string, t speech.Transcriber) { s.group.Add(name, t) }

// Transcribe implements speech.Transcriber.
func (s *STT) Transcribe(ctx context.Context, audio speech.Audio) (string, error) {
	return Do(s.group, func(name string, t speech.Transcriber) (string, error) {
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		start := time.Now()
		text, err := t.Transcribe(callCtx, audio)
		if s.observer != nil {
			s.observer.ObserveCall(ctx, name, "stt", time.Since(start), err)
		}
		return text, err
	})
}
