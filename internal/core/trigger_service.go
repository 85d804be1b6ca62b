package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"assistive.app/buttons/internal/catalog"
	"assistive.app/buttons/internal/metrics"
	"assistive.app/buttons/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDeviceID = "unknown"
	DefaultUserID   = "default"
)

// AudioSource turns text into audio, returning nil when none is available
// within its own deadline.
type AudioSource interface {
	Audio(ctx context.Context, text, language string) []byte
}

type TriggerRequest struct {
	Button     string
	Language   string
	CustomText string
	DeviceID   string
	UserID     string
	Source     string
}

// Normalize fills in the defaults for omitted fields.
func (r TriggerRequest) Normalize() TriggerRequest {
	r.Button = strings.TrimSpace(r.Button)
	if strings.TrimSpace(r.Language) == "" {
		r.Language = catalog.DefaultLanguage
	}
	if r.DeviceID == "" {
		r.DeviceID = DefaultDeviceID
	}
	if r.UserID == "" {
		r.UserID = DefaultUserID
	}
	if r.Source != store.SourceDevice {
		r.Source = store.SourceUI
	}
	return r
}

type TriggerResult struct {
	Event store.Event
	Audio []byte
}

type TriggerService struct {
	catalog *catalog.Catalog
	audio   AudioSource
	history *History
	events  store.EventLog
	logger  *zap.Logger

	clockMu sync.Mutex
	last    time.Time
	now     func() time.Time
}

func NewTriggerService(cat *catalog.Catalog, audio AudioSource, history *History, events store.EventLog, logger *zap.Logger) *TriggerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriggerService{
		catalog: cat,
		audio:   audio,
		history: history,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// Trigger resolves, voices and records one button press. It never fails:
// missing audio and persistence errors are logged and absorbed.
func (s *TriggerService) Trigger(ctx context.Context, req TriggerRequest) TriggerResult {
	req = req.Normalize()

	text := s.catalog.Resolve(req.Button, req.Language, req.CustomText)
	audio := s.audio.Audio(ctx, text, req.Language)

	evt := store.Event{
		ID:        uuid.NewString(),
		Button:    req.Button,
		Language:  req.Language,
		Text:      text,
		Source:    req.Source,
		DeviceID:  req.DeviceID,
		UserID:    req.UserID,
		Timestamp: s.timestamp().Format(time.RFC3339Nano),
	}

	s.history.Append(evt)
	// A caller hanging up must not cost the durable record.
	if err := s.events.Append(context.WithoutCancel(ctx), evt); err != nil {
		metrics.EventPersistFailures.Inc()
		s.logger.Error("Failed to persist event",
			zap.String("event_id", evt.ID),
			zap.String("button", evt.Button),
			zap.Error(err),
		)
	}
	metrics.TriggersTotal.WithLabelValues(evt.Source, buttonLabel(evt.Button)).Inc()

	s.logger.Info("Button triggered",
		zap.String("button", evt.Button),
		zap.String("language", evt.Language),
		zap.String("source", evt.Source),
		zap.String("device_id", evt.DeviceID),
		zap.String("user_id", evt.UserID),
		zap.Bool("audio", audio != nil),
	)

	return TriggerResult{Event: evt, Audio: audio}
}

func (s *TriggerService) History() []store.Event {
	return s.history.Snapshot()
}

// Events returns the durable log, optionally narrowed to one user.
func (s *TriggerService) Events(ctx context.Context, userID string) ([]store.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return events, nil
	}
	return store.FilterByUser(events, userID), nil
}

// timestamp is the wall clock, held so it never runs backwards.
func (s *TriggerService) timestamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	t := s.now().Round(0)
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

// buttonLabel keeps the metric label set to the known buttons.
func buttonLabel(button string) string {
	for _, id := range catalog.ButtonIDs {
		if strings.EqualFold(id, button) {
			return id
		}
	}
	return "other"
}
