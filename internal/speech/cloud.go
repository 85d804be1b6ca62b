package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

var locales = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"it": "it-IT",
}

// CloudTTS calls the Google Cloud Text-to-Speech REST API.
type CloudTTS struct {
	service *texttospeech.Service
	logger  *zap.Logger
}

func NewCloudTTS(ctx context.Context, apiKey string, logger *zap.Logger, opts ...option.ClientOption) (*CloudTTS, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudTTS{service: svc, logger: logger}, nil
}

func (c *CloudTTS) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{LanguageCode: Locale(language)},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
		},
	}

	resp, err := c.service.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("text-to-speech request failed: %w", err)
	}
	if resp == nil || resp.AudioContent == "" {
		return nil, fmt.Errorf("no audio content received from text-to-speech")
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	c.logger.Debug("Synthesized speech", zap.String("language", language), zap.Int("bytes", len(audio)))
	return audio, nil
}

// Locale maps a catalog language code to the BCP-47 tag the API expects.
// Unknown codes are reduced to their first two letters.
func Locale(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if len(lang) > 2 {
		lang = lang[:2]
	}
	if loc, ok := locales[lang]; ok {
		return loc
	}
	if lang == "" {
		return locales["en"]
	}
	return lang
}
