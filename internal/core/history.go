package core

import (
	"sync"

	"assistive.app/buttons/internal/store"
)

// History is the in-process view of recent events. It starts empty on every
// restart; the durable record lives in the event log.
type History struct {
	mu     sync.Mutex
	limit  int
	events []store.Event
}

// NewHistory keeps at most limit events. limit <= 0 keeps everything.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) Append(evt store.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, evt)
	if h.limit > 0 && len(h.events) > h.limit {
		drop := len(h.events) - h.limit
		h.events = append(h.events[:0:0], h.events[drop:]...)
	}
}

// Snapshot returns the cached events oldest first.
func (h *History) Snapshot() []store.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]store.Event, len(h.events))
	copy(out, h.events)
	return out
}
