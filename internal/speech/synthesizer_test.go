package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeSynth struct {
	delay time.Duration
	audio []byte
	err   error
	calls atomic.Int32
}

func (f *fakeSynth) Synthesize(ctx context.Context, _, _ string) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.audio, f.err
}

type fakeSpeaker struct {
	spoken chan string
}

func (f *fakeSpeaker) Speak(_ context.Context, text, _ string) error {
	f.spoken <- text
	return nil
}

func TestAudioReturnsProviderResult(t *testing.T) {
	synth := &fakeSynth{audio: []byte("mp3")}
	b := NewBounded(synth, nil, time.Second, nil)

	assert.Equal(t, []byte("mp3"), b.Audio(context.Background(), "I need help", "en"))
	assert.EqualValues(t, 1, synth.calls.Load())
}

func TestAudioSkipsBlankText(t *testing.T) {
	synth := &fakeSynth{audio: []byte("mp3")}
	b := NewBounded(synth, nil, time.Second, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		start := time.Now()
		assert.Nil(t, b.Audio(context.Background(), text, "en"))
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	}
	assert.EqualValues(t, 0, synth.calls.Load())
}

func TestAudioIsBoundedByTimeout(t *testing.T) {
	const timeout = 100 * time.Millisecond
	synth := &fakeSynth{delay: 5 * time.Second, audio: []byte("late")}
	b := NewBounded(synth, nil, timeout, nil)

	start := time.Now()
	audio := b.Audio(context.Background(), "Emergency", "en")
	elapsed := time.Since(start)

	assert.Nil(t, audio)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+500*time.Millisecond)
}

func TestAudioErrorTriggersFallback(t *testing.T) {
	synth := &fakeSynth{err: errors.New("service unreachable")}
	speaker := &fakeSpeaker{spoken: make(chan string, 1)}
	b := NewBounded(synth, speaker, time.Second, nil)

	assert.Nil(t, b.Audio(context.Background(), "I want water", "en"))

	select {
	case text := <-speaker.spoken:
		assert.Equal(t, "I want water", text)
	case <-time.After(time.Second):
		t.Fatal("fallback speaker was not invoked")
	}
}

func TestAudioEmptyResultIsAbsent(t *testing.T) {
	b := NewBounded(&fakeSynth{audio: nil}, nil, time.Second, nil)
	assert.Nil(t, b.Audio(context.Background(), "Rest", "en"))
}

func TestAudioConcurrentCallsDoNotBlockEachOther(t *testing.T) {
	const timeout = 150 * time.Millisecond
	slow := NewBounded(&fakeSynth{delay: time.Minute}, nil, timeout, nil)

	start := time.Now()
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			slow.Audio(context.Background(), "Help", "en")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}
	assert.Less(t, time.Since(start), timeout+500*time.Millisecond)
}

func TestUnavailableAlwaysFails(t *testing.T) {
	b := NewBounded(nil, nil, time.Second, nil)
	assert.Nil(t, b.Audio(context.Background(), "Help", "en"))
}

func TestLocale(t *testing.T) {
	tests := map[string]string{
		"en":    "en-US",
		"FR":    "fr-FR",
		"hi":    "hi-IN",
		"pt-BR": "pt",
		"":      "en-US",
		"de_DE": "de-DE",
	}
	for in, want := range tests {
		assert.Equal(t, want, Locale(in), in)
	}
}

func TestLocalSpeakerUsesSayOnDarwin(t *testing.T) {
	var gotName string
	var gotArgs []string
	s := NewLocalSpeaker(nil)
	s.goos = "darwin"
	s.run = func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	require.NoError(t, s.Speak(context.Background(), "Urgence", "fr"))
	assert.Equal(t, "say", gotName)
	assert.Equal(t, []string{"-v", "Thomas", "Urgence"}, gotArgs)

	require.NoError(t, s.Speak(context.Background(), "Olá", "pt"))
	assert.Equal(t, "Samantha", gotArgs[1])
}

func TestLocalSpeakerElsewhereOnlyLogs(t *testing.T) {
	s := NewLocalSpeaker(nil)
	s.goos = "linux"
	s.run = func(context.Context, string, ...string) error {
		t.Fatal("no command should run off darwin")
		return nil
	}
	require.NoError(t, s.Speak(context.Background(), "Help", "en"))
}

func TestCloudTTSSynthesize(t *testing.T) {
	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Voice struct {
				LanguageCode string `json:"languageCode"`
			} `json:"voice"`
		}
		_ = json.Unmarshal(body, &req)
		gotLanguage = req.Voice.LanguageCode

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("ID3-mp3")),
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	c, err := NewCloudTTS(ctx, "", nil, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	audio, err := c.Synthesize(ctx, "Urgence", "fr")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-mp3"), audio)
	assert.Equal(t, "fr-FR", gotLanguage)
}

func TestCloudTTSServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx := context.Background()
	c, err := NewCloudTTS(ctx, "", nil, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Synthesize(ctx, "Help", "en")
	require.Error(t, err)
}
