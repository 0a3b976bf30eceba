// Package hooks provides an event-driven hook system for kiosk lifecycle events.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/soyeahso/boothbot/internal/logging"
)

// Event names for the hook system.
const (
	EventSessionStart = "session_start"
	EventSessionEnd   = "session_end"
	EventToolCalled   = "tool_called"
	EventLeadCaptured = "lead_captured"
	EventDelivery     = "delivery"
	EventGatewayStart = "gateway_start"
	EventGatewayStop  = "gateway_stop"
)

// AllEvents lists every event the kiosk emits.
var AllEvents = []string{
	EventSessionStart,
	EventSessionEnd,
	EventToolCalled,
	EventLeadCaptured,
	EventDelivery,
	EventGatewayStart,
	EventGatewayStop,
}

// Data keys carried by kiosk events.
const (
	KeyParticipant = "participant"
	KeySession     = "session"
	KeyTool        = "tool"
	KeySink        = "sink"
	KeyOK          = "ok"
	KeyLanguage    = "language"
)

// Delivery sinks reported with EventDelivery.
const (
	SinkArchive = "archive"
	SinkLead    = "lead"
	SinkNotify  = "notify"
	SinkWebhook = "webhook"
)

// Bool reads a boolean data field, false when absent.
func (p Payload) Bool(key string) bool {
	v, _ := p.Data[key].(bool)
	return v
}

// Str reads a string data field, empty when absent.
func (p Payload) Str(key string) string {
	v, _ := p.Data[key].(string)
	return v
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles one event. Returning an error logs the failure but does
// not stop the remaining handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager dispatches kiosk events to registered handlers. Emit runs
// handlers on the caller's goroutine, so handlers must not block.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event. Registering for an event
// outside AllEvents is allowed but logged, since nothing will emit it.
func (m *Manager) On(event, name string, handler Handler) {
	if !slices.Contains(AllEvents, event) {
		m.log.Warn().Str("event", event).Str("handler", name).Msg("hook registered for unknown event")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Emit dispatches an event to all registered handlers in registration
// order. A failing or panicking handler is logged and skipped.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	m.mu.RLock()
	handlers := slices.Clone(m.handlers[event])
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	payload := Payload{Event: event, Data: data}
	for _, h := range handlers {
		if err := m.call(ctx, h, payload); err != nil {
			m.log.Warn().
				Err(err).
				Str("event", event).
				Str("handler", h.name).
				Msg("hook handler error")
		}
	}
}

func (m *Manager) call(ctx context.Context, h namedHandler, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.handler(ctx, p)
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}
