// Package speech turns resolved button text into audio. A slow or failing
// provider never holds the caller past the configured deadline; the caller
// simply gets no audio.
package speech

import (
	"context"
	"errors"
	"strings"
	"time"

	"assistive.app/buttons/internal/metrics"
	"go.uber.org/zap"
)

// DefaultTimeout bounds how long a trigger waits for audio.
const DefaultTimeout = 5 * time.Second

// Synthesizer produces encoded audio (MP3) for text in a language.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Speaker plays text on the host. It is a side effect only; its result is
// never returned to a trigger caller.
type Speaker interface {
	Speak(ctx context.Context, text, language string) error
}

var ErrNoProvider = errors.New("no speech provider configured")

// Unavailable is the provider used when no speech service is configured.
type Unavailable struct{}

func (Unavailable) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, ErrNoProvider
}

// Bounded runs a Synthesizer under a hard deadline.
type Bounded struct {
	provider Synthesizer
	fallback Speaker
	timeout  time.Duration
	logger   *zap.Logger
}

// NewBounded wraps provider. fallback may be nil.
func NewBounded(provider Synthesizer, fallback Speaker, timeout time.Duration, logger *zap.Logger) *Bounded {
	if provider == nil {
		provider = Unavailable{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bounded{provider: provider, fallback: fallback, timeout: timeout, logger: logger}
}

type synthResult struct {
	audio []byte
	err   error
}

// Audio returns synthesized audio, or nil when the text is blank, the
// provider fails, or the deadline passes first. The provider call runs on
// its own goroutine; on timeout it is cancelled and left to finish on its
// own while Audio returns.
func (b *Bounded) Audio(ctx context.Context, text, language string) []byte {
	if strings.TrimSpace(text) == "" {
		metrics.RecordSynthesis(metrics.OutcomeSkipped, 0)
		return nil
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)

	done := make(chan synthResult, 1)
	go func() {
		defer cancel()
		audio, err := b.provider.Synthesize(callCtx, text, language)
		done <- synthResult{audio: audio, err: err}
	}()

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		elapsed := time.Since(start).Seconds()
		if res.err != nil || len(res.audio) == 0 {
			metrics.RecordSynthesis(metrics.OutcomeError, elapsed)
			b.logger.Warn("Speech synthesis failed, continuing without audio",
				zap.String("language", language), zap.Error(res.err))
			b.speakLocally(text, language)
			return nil
		}
		metrics.RecordSynthesis(metrics.OutcomeOK, elapsed)
		return res.audio
	case <-timer.C:
		cancel()
		metrics.RecordSynthesis(metrics.OutcomeTimeout, time.Since(start).Seconds())
		b.logger.Warn("Audio generation timed out, continuing without audio",
			zap.String("language", language), zap.Duration("timeout", b.timeout))
		b.speakLocally(text, language)
		return nil
	}
}

// speakLocally fires the host fallback without waiting for it.
func (b *Bounded) speakLocally(text, language string) {
	if b.fallback == nil {
		return
	}
	go func() {
		if err := b.fallback.Speak(context.Background(), text, language); err != nil {
			b.logger.Warn("Local speech fallback failed", zap.Error(err))
		}
	}()
}
