package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTelegram(t *testing.T, status int) (*Telegram, <-chan sendMessageRequest, <-chan string) {
	t.Helper()
	bodies := make(chan sendMessageRequest, 1)
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		bodies <- req
		paths <- r.URL.Path
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	tg := NewTelegram(srv.URL+"/", "TOKEN", "42", nil)
	tg.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return tg, bodies, paths
}

func TestNotifyButtonPressFormatsDetails(t *testing.T) {
	tg, bodies, paths := newTestTelegram(t, http.StatusOK)

	ok := NotifyButtonPress(context.Background(), tg, ButtonPress{
		Button:   "BTN3",
		Text:     "I want water",
		Language: "en",
		UserID:   "default",
		DeviceID: "esp32_hackathon_1",
		Source:   "DEVICE",
	})
	require.True(t, ok)

	req := <-bodies
	assert.Equal(t, "/botTOKEN/sendMessage", <-paths)
	assert.Equal(t, "42", req.ChatID)
	assert.Equal(t, "HTML", req.ParseMode)
	assert.True(t, strings.HasPrefix(req.Text, "<b>📱 Button Press Alert</b>"))
	assert.Contains(t, req.Text, "Action: 💧 Water")
	assert.Contains(t, req.Text, "Device: esp32_hackathon_1")
	assert.Contains(t, req.Text, "Source: DEVICE")
	assert.NotContains(t, req.Text, "User: default")
	assert.Contains(t, req.Text, "<i>Time: 2026-03-04 05:06:07</i>")
}

func TestSendNon200IsFalse(t *testing.T) {
	tg, bodies, _ := newTestTelegram(t, http.StatusUnauthorized)

	assert.False(t, NotifyEmergency(context.Background(), tg, "a@x.com", "esp32"))
	req := <-bodies
	assert.Contains(t, req.Text, "IMMEDIATE ACTION REQUIRED")
	assert.Contains(t, req.Text, "Device: esp32")
}

func TestSendNetworkErrorIsFalse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tg := NewTelegram(url, "TOKEN", "42", nil)
	assert.False(t, NotifySecurityReset(context.Background(), tg, "a@x.com"))
}

func TestSignupAndHelpMessages(t *testing.T) {
	tg, bodies, _ := newTestTelegram(t, http.StatusOK)
	require.True(t, NotifyAccountSignup(context.Background(), tg, "a@x.com", "primary"))
	assert.Contains(t, (<-bodies).Text, "Type: 👴 Primary (Disabled/Elderly)")

	tg2, bodies2, _ := newTestTelegram(t, http.StatusOK)
	require.True(t, NotifyHelpRequest(context.Background(), tg2, "a@x.com", "getting out of bed", ""))
	text := (<-bodies2).Text
	assert.Contains(t, text, "Message: getting out of bed")
	assert.NotContains(t, text, "Device:")
}

func TestNoopNeverDelivers(t *testing.T) {
	assert.False(t, Noop{}.Send(context.Background(), Message{Body: "x"}))
}
