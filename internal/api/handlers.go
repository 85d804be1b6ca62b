package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"assistive.app/buttons/internal/catalog"
	"assistive.app/buttons/internal/core"
	"assistive.app/buttons/internal/notify"
	"assistive.app/buttons/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

type APIHandler struct {
	triggers *core.TriggerService
	accounts *core.AccountService
	devices  *core.DeviceService
	catalog  *catalog.Catalog
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewAPIHandler(triggers *core.TriggerService, accounts *core.AccountService, devices *core.DeviceService,
	cat *catalog.Catalog, notifier notify.Notifier, logger *zap.Logger) *APIHandler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		triggers: triggers,
		accounts: accounts,
		devices:  devices,
		catalog:  cat,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type TriggerRequest struct {
	Button     string `json:"button"`
	Language   string `json:"language"`
	CustomText string `json:"custom_text"`
	DeviceID   string `json:"device_id"`
	UserID     string `json:"user_id"`
	DeviceName string `json:"device_name"`
}

type TriggerResponse struct {
	OK          bool        `json:"ok"`
	Event       store.Event `json:"event"`
	AudioBase64 *string     `json:"audio_base64"`
}

// TriggerHandler serves remote devices, so every trigger is tagged DEVICE.
func (h *APIHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Button) == "" {
		writeError(w, http.StatusBadRequest, "button is required")
		return
	}

	h.devices.AutoRegister(req.UserID, req.DeviceID, req.DeviceName)

	res := h.triggers.Trigger(r.Context(), core.TriggerRequest{
		Button:     req.Button,
		Language:   req.Language,
		CustomText: req.CustomText,
		DeviceID:   req.DeviceID,
		UserID:     req.UserID,
		Source:     store.SourceDevice,
	})

	h.background(func(ctx context.Context) {
		h.notifyTrigger(ctx, res.Event, req.DeviceName)
	})

	resp := TriggerResponse{OK: true, Event: res.Event}
	if len(res.Audio) > 0 {
		encoded := base64.StdEncoding.EncodeToString(res.Audio)
		resp.AudioBase64 = &encoded
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) notifyTrigger(ctx context.Context, evt store.Event, deviceName string) {
	notify.NotifyButtonPress(ctx, h.notifier, notify.ButtonPress{
		Button:     evt.Button,
		Text:       evt.Text,
		Language:   evt.Language,
		UserID:     evt.UserID,
		DeviceID:   evt.DeviceID,
		DeviceName: deviceName,
		Source:     evt.Source,
	})
	switch {
	case strings.EqualFold(evt.Button, catalog.ButtonEmergency):
		notify.NotifyEmergency(ctx, h.notifier, evt.UserID, evt.DeviceID)
	case strings.EqualFold(evt.Button, catalog.ButtonHelp):
		notify.NotifyHelpRequest(ctx, h.notifier, evt.UserID, evt.Text, evt.DeviceID)
	}
}

func (h *APIHandler) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

type UpdateLabelRequest struct {
	Label string `json:"label"`
}

func (h *APIHandler) UpdateLabelHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	buttonID := chi.URLParam(r, "buttonID")
	if err := h.catalog.SetLabel(buttonID, req.Label); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

type UpdateTextRequest struct {
	Text string `json:"text"`
}

func (h *APIHandler) UpdateTextHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	buttonID := chi.URLParam(r, "buttonID")
	lang := chi.URLParam(r, "lang")
	if err := h.catalog.SetText(buttonID, lang, req.Text); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

func (h *APIHandler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownButton):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrUnsupportedLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Failed to save catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save catalog")
	}
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.triggers.History())
}

func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := h.triggers.Events(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.logger.Error("Failed to list events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// RegisterDeviceRequest carries PinMapping for clients that send it; it is
// accepted but not stored.
type RegisterDeviceRequest struct {
	DeviceID   string          `json:"device_id"`
	DeviceName string          `json:"device_name"`
	UserID     string          `json:"user_id"`
	DeviceType string          `json:"device_type"`
	PinMapping json.RawMessage `json:"pin_mapping,omitempty"`
}

type RegisterDeviceResponse struct {
	OK         bool   `json:"ok"`
	DeviceID   string `json:"device_id,omitempty"`
	DeviceName string `json:"device_name,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (h *APIHandler) RegisterDeviceHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, RegisterDeviceResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if req.DeviceType == "" {
		req.DeviceType = "esp32"
	}

	d, err := h.devices.Register(req.UserID, req.DeviceID, req.DeviceName, req.DeviceType)
	if errors.Is(err, core.ErrDeviceIDRequired) {
		writeJSON(w, http.StatusBadRequest, RegisterDeviceResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("Failed to register device", zap.String("device_id", req.DeviceID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, RegisterDeviceResponse{Error: "Failed to register device"})
		return
	}

	writeJSON(w, http.StatusOK, RegisterDeviceResponse{
		OK:         true,
		DeviceID:   d.DeviceID,
		DeviceName: d.DeviceName,
		Message:    "Device '" + d.DeviceName + "' registered successfully",
	})
}

func (h *APIHandler) ListDevicesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.devices.List(r.URL.Query().Get("user_id")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
