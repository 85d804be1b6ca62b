package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"assistive.app/buttons/internal/catalog"
	"assistive.app/buttons/internal/config"
	"assistive.app/buttons/internal/core"
	"assistive.app/buttons/internal/notify"
	"assistive.app/buttons/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAudio struct {
	audio []byte
}

func (s stubAudio) Audio(context.Context, string, string) []byte { return s.audio }

type recordingNotifier struct {
	sent chan notify.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) bool {
	n.sent <- msg
	return true
}

type testEnv struct {
	router   http.Handler
	notifier *recordingNotifier
	events   *store.JSONEventLog
}

func newTestEnv(t *testing.T, audio []byte) *testEnv {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"

	dir := t.TempDir()
	cat := catalog.New(nil)
	events := store.NewJSONEventLog(dir, nil)
	notifier := &recordingNotifier{sent: make(chan notify.Message, 10)}

	h := NewAPIHandler(
		core.NewTriggerService(cat, stubAudio{audio: audio}, core.NewHistory(0), events, nil),
		core.NewAccountService(store.NewAccountStore(dir, nil), nil),
		core.NewDeviceService(store.NewDeviceStore(dir, nil), nil),
		cat,
		notifier,
		nil,
	)
	return &testEnv{router: NewRouter(h), notifier: notifier, events: events}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestTriggerReturnsEventAndAudio(t *testing.T) {
	env := newTestEnv(t, []byte("mp3"))

	rec := env.do(t, http.MethodPost, "/trigger", map[string]string{
		"button":    "BTN6",
		"language":  "fr",
		"device_id": "esp32_hackathon_1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TriggerResponse](t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "Urgence", resp.Event.Text)
	assert.Equal(t, store.SourceDevice, resp.Event.Source)
	assert.Equal(t, "default", resp.Event.UserID)
	require.NotNil(t, resp.AudioBase64)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3")), *resp.AudioBase64)

	titles := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-env.notifier.sent:
			titles[msg.Title] = true
		case <-time.After(time.Second):
			t.Fatal("expected two notifications for an emergency")
		}
	}
	assert.True(t, titles["📱 Button Press Alert"])
	assert.True(t, titles["🚨 CRITICAL - EMERGENCY"])

	history := decode[[]store.Event](t, env.do(t, http.MethodGet, "/history", nil, ""))
	require.Len(t, history, 1)
	assert.Equal(t, resp.Event, history[0])
}

func TestTriggerHelpSendsHelpRequest(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/trigger", map[string]string{"button": "BTN1", "device_id": "box1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := map[string]notify.Message{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-env.notifier.sent:
			msgs[msg.Title] = msg
		case <-time.After(time.Second):
			t.Fatal("expected two notifications for a help request")
		}
	}
	require.Contains(t, msgs, "🆘 URGENT - Help Request")
	assert.Contains(t, msgs["🆘 URGENT - Help Request"].Body, "Message: I need help")
	assert.Contains(t, msgs["🆘 URGENT - Help Request"].Body, "Device: box1")
	assert.Contains(t, msgs, "📱 Button Press Alert")
}

func TestTriggerWithoutAudioIsNull(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/trigger", map[string]string{"button": "BTNX"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["audio_base64"]))

	resp := decode[TriggerResponse](t, rec)
	assert.Equal(t, catalog.Placeholder, resp.Event.Text)
}

func TestTriggerRejectsMissingButton(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/trigger", map[string]string{"language": "en"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerAutoRegistersNamedDevice(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodPost, "/trigger", map[string]string{
		"button":      "BTN1",
		"device_id":   "box1",
		"device_name": "Bedroom",
		"user_id":     "a@x.com",
	}, "")

	devices := decode[map[string]store.Device](t, env.do(t, http.MethodGet, "/api/devices?user_id=a@x.com", nil, ""))
	require.Contains(t, devices, "box1")
	assert.Equal(t, "Bedroom", devices["box1"].DeviceName)

	events := decode[[]store.Event](t, env.do(t, http.MethodGet, "/api/events?user_id=a@x.com", nil, ""))
	require.Len(t, events, 1)
	assert.Equal(t, "box1", events[0].DeviceID)
}

func TestEventsEmptyIsArray(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/events", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestConfigEdits(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signupAndLogin(t, env, "a@x.com", true)

	cfg := decode[map[string]catalog.Button](t, env.do(t, http.MethodGet, "/config", nil, ""))
	assert.Equal(t, "Help", cfg["BTN1"].Label)

	rec := env.do(t, http.MethodPut, "/config/btn3/texts/EN", map[string]string{"text": "Water please"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg = decode[map[string]catalog.Button](t, rec)
	assert.Equal(t, "Water please", cfg["BTN3"].Texts["en"])

	rec = env.do(t, http.MethodPut, "/config/BTN1/label", map[string]string{"label": "SOS"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/config/BTN9/label", map[string]string{"label": "x"}, token).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/config/BTN1/texts/xx", map[string]string{"text": "x"}, token).Code)

	resp := decode[TriggerResponse](t, env.do(t, http.MethodPost, "/trigger", map[string]string{"button": "BTN3"}, ""))
	assert.Equal(t, "Water please", resp.Event.Text)
}

func TestConfigEditsRequireLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPut, "/config/BTN6/texts/en", map[string]string{"text": "All good, ignore me"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, http.MethodPut, "/config/BTN6/label", map[string]string{"label": "Fine"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decode[TriggerResponse](t, env.do(t, http.MethodPost, "/trigger", map[string]string{"button": "BTN6"}, ""))
	assert.Equal(t, "Emergency", resp.Event.Text)
}

func TestRegisterDevice(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/register_device", map[string]any{
		"device_id":   "esp32_hackathon_1",
		"device_name": "Living room",
		"user_id":     "a@x.com",
		"pin_mapping": map[string]int{"BTN1": 14},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[RegisterDeviceResponse](t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "Device 'Living room' registered successfully", resp.Message)

	rec = env.do(t, http.MethodPost, "/register_device", map[string]string{"device_name": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode[RegisterDeviceResponse](t, rec).OK)
}

func signupAndLogin(t *testing.T, env *testEnv, email string, primary bool) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/signup", map[string]any{
		"email":             email,
		"password":          "pw",
		"primary_account":   primary,
		"full_name":         "Name " + email,
		"security_question": core.SecurityQuestions[1],
		"security_answer":   "Paris",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": "pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LoginResponse](t, rec)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupLoginFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signupAndLogin(t, env, "A@x.com", true)

	dup := env.do(t, http.MethodPost, "/api/signup", map[string]any{"email": "a@X.com", "password": "other"}, "")
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.False(t, decode[core.Result](t, dup).Success)

	bad := env.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@x.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "Incorrect password", decode[LoginResponse](t, bad).Message)

	profile := decode[core.Profile](t, env.do(t, http.MethodGet, "/api/me/profile", nil, token))
	assert.Equal(t, "primary", profile.AccountType)
	assert.Equal(t, "light", profile.Theme)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/me/profile", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/me/profile", nil, "garbage").Code)
}

func TestPasswordRecovery(t *testing.T) {
	env := newTestEnv(t, nil)
	signupAndLogin(t, env, "a@x.com", true)

	q := decode[map[string]string](t, env.do(t, http.MethodGet, "/api/password/question?email=a@x.com", nil, ""))
	assert.Equal(t, core.SecurityQuestions[1], q["security_question"])
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/password/question?email=ghost@x.com", nil, "").Code)

	ok := decode[core.Result](t, env.do(t, http.MethodPost, "/api/password/verify", map[string]string{"email": "a@x.com", "answer": " paris "}, ""))
	assert.True(t, ok.Success)

	rec := env.do(t, http.MethodPost, "/api/password/reset", map[string]string{"email": "a@x.com", "answer": "Rome", "new_password": "n"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/password/reset", map[string]string{"email": "a@x.com", "answer": "PARIS", "new_password": "fresh"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	login := env.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@x.com", "password": "fresh"}, "")
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestMeEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signupAndLogin(t, env, "grandma@x.com", true)
	nurseToken := signupAndLogin(t, env, "nurse@x.com", false)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/me/theme", map[string]string{"theme": "dark"}, token).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/me/theme", map[string]string{"theme": "pink"}, token).Code)
	theme := decode[ThemeRequest](t, env.do(t, http.MethodGet, "/api/me/theme", nil, token))
	assert.Equal(t, "dark", theme.Theme)

	meds := decode[[]store.Medicine](t, env.do(t, http.MethodGet, "/api/me/medicines", nil, token))
	assert.Equal(t, core.DefaultMedicines, meds)

	mine := []store.Medicine{{Name: "Metformin", Dosage: "850mg"}}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/me/medicines", mine, token).Code)
	assert.Equal(t, mine, decode[[]store.Medicine](t, env.do(t, http.MethodGet, "/api/me/medicines", nil, token)))

	rec := env.do(t, http.MethodPost, "/api/me/caretakers", map[string]string{"caretaker_email": "nurse@x.com"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/me/caretakers", map[string]string{"caretaker_email": "ghost@x.com"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	accessible := decode[[]core.AccessibleAccount](t, env.do(t, http.MethodGet, "/api/me/accessible", nil, nurseToken))
	require.Len(t, accessible, 1)
	assert.Equal(t, "grandma@x.com", accessible[0].Email)
}

func TestSecurityQuestionsList(t *testing.T) {
	env := newTestEnv(t, nil)
	qs := decode[[]string](t, env.do(t, http.MethodGet, "/api/security-questions", nil, ""))
	assert.Equal(t, core.SecurityQuestions, qs)
}
