// Package hooks is an in-process event bus for session, loading,
// language and auth lifecycle changes.
package hooks

import (
	"context"
	"sort"
	"sync"

	"github.com/mindcareai/mindcare/internal/logging"
)

// Event names a lifecycle change.
type Event string

const (
	EventSessionCreated  Event = "session_created"
	EventSessionSelected Event = "session_selected"
	EventSessionDeleted  Event = "session_deleted"
	EventSessionRenamed  Event = "session_renamed"
	EventMessageAdded    Event = "message_added"
	EventReplyFailed     Event = "reply_failed"
	EventLoadingChanged  Event = "loading_changed"
	EventLanguageChanged Event = "language_changed"
	EventAuthChanged     Event = "auth_changed"
)

// AllEvents lists all known hook event names.
var AllEvents = []Event{
	EventSessionCreated,
	EventSessionSelected,
	EventSessionDeleted,
	EventSessionRenamed,
	EventMessageAdded,
	EventReplyFailed,
	EventLoadingChanged,
	EventLanguageChanged,
	EventAuthChanged,
}

// Any subscribes a handler to every event.
const Any Event = "*"

// Payload carries event data to hook handlers.
type Payload struct {
	Event     Event          `json:"event"`
	SessionID string         `json:"sessionId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Handler handles a hook event. A returned error is logged and does not
// stop the remaining handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager dispatches events to registered handlers. A nil *Manager drops
// every event.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Event][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[Event][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event, or for every event with Any.
// The name identifies the handler for Off and for logging.
func (m *Manager) On(event Event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", string(event)).Str("handler", name).Msg("hook registered")
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event Event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlers := m.handlers[event]
	kept := handlers[:0:0]
	for _, h := range handlers {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(m.handlers, event)
		return
	}
	m.handlers[event] = kept
}

// snapshot returns the handlers for event followed by the Any handlers.
func (m *Manager) snapshot(event Event) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]namedHandler, 0, len(m.handlers[event])+len(m.handlers[Any]))
	out = append(out, m.handlers[event]...)
	out = append(out, m.handlers[Any]...)
	return out
}

// Emit dispatches p to its handlers synchronously, in registration order.
func (m *Manager) Emit(ctx context.Context, p Payload) {
	if m == nil {
		return
	}
	for _, h := range m.snapshot(p.Event) {
		m.call(ctx, h, p)
	}
}

// EmitAsync dispatches p to each handler on its own goroutine and returns
// immediately.
func (m *Manager) EmitAsync(ctx context.Context, p Payload) {
	if m == nil {
		return
	}
	for _, h := range m.snapshot(p.Event) {
		go m.call(ctx, h, p)
	}
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) {
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", string(p.Event)).
			Str("handler", h.name).
			Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event Event) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the events that have at least one handler, sorted.
func (m *Manager) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]Event, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	return events
}
