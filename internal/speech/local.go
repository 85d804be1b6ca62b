package speech

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// macOS voices per language.
var voices = map[string]string{
	"en": "Samantha",
	"hi": "Lekha",
	"es": "Mónica",
	"fr": "Thomas",
	"de": "Anna",
	"it": "Alice",
}

// LocalSpeaker speaks through the host's `say` command on macOS and only logs
// the text elsewhere.
type LocalSpeaker struct {
	logger *zap.Logger
	goos   string
	run    func(ctx context.Context, name string, args ...string) error
}

func NewLocalSpeaker(logger *zap.Logger) *LocalSpeaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalSpeaker{
		logger: logger,
		goos:   runtime.GOOS,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (s *LocalSpeaker) Speak(ctx context.Context, text, language string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if s.goos != "darwin" {
		s.logger.Info("Local TTS not supported on this platform", zap.String("platform", s.goos), zap.String("text", text))
		return nil
	}

	voice, ok := voices[language]
	if !ok {
		voice = voices["en"]
	}
	return s.run(ctx, "say", "-v", voice, text)
}
