package store

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
)

// EventLog is the durable, append-only history of triggers.
type EventLog interface {
	Append(ctx context.Context, evt Event) error
	List(ctx context.Context) ([]Event, error)
	Close() error
}

// JSONEventLog keeps the full history in events.json, rewritten on every
// append.
type JSONEventLog struct {
	file *jsonFile[[]Event]
}

func NewJSONEventLog(dataDir string, logger *zap.Logger) *JSONEventLog {
	return &JSONEventLog{
		file: newJSONFile(filepath.Join(dataDir, "events.json"), func() []Event {
			return []Event{}
		}, logger),
	}
}

func (l *JSONEventLog) Append(_ context.Context, evt Event) error {
	return l.file.update(func(events []Event) ([]Event, error) {
		return append(events, evt), nil
	})
}

func (l *JSONEventLog) List(_ context.Context) ([]Event, error) {
	var out []Event
	l.file.view(func(events []Event) {
		out = events
	})
	return out, nil
}

func (l *JSONEventLog) Close() error { return nil }

// FilterByUser keeps the events of one user, preserving order.
func FilterByUser(events []Event, userID string) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
