package kiosk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soyeahso/boothbot/internal/agent"
	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/soyeahso/boothbot/internal/presence"
)

var (
	// ErrUnknownSession is returned for events and tool calls addressed to
	// a participant without an open session.
	ErrUnknownSession = errors.New("kiosk: unknown session")

	// ErrUnknownEvent is returned for unsupported event types.
	ErrUnknownEvent = errors.New("kiosk: unknown event type")

	// ErrMissingParticipant is returned when an event names no participant.
	ErrMissingParticipant = errors.New("kiosk: missing participant")
)

// Manager routes runtime events and tool calls to per-participant
// controllers. Sessions share no state with each other.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	cfg      config.KioskConfig
	deps     Deps
	presence *presence.Registry
	log      *logging.Logger
}

// NewManager creates a Manager. presence may be nil.
func NewManager(cfg config.KioskConfig, deps Deps, reg *presence.Registry) *Manager {
	if deps.Log == nil {
		deps.Log = logging.New(nil, "silent")
	}
	if deps.Tasks == nil {
		deps.Tasks = NewTasks(deps.Log)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Controller),
		cfg:      cfg,
		deps:     deps,
		presence: reg,
		log:      deps.Log.Sub("kiosk"),
	}
}

// Get returns the controller for a participant.
func (m *Manager) Get(participant string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[participant]
	return c, ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Participants lists participants with open sessions in sorted order.
func (m *Manager) Participants() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToolDefinitions describes the tool surface.
func (m *Manager) ToolDefinitions() []agent.ToolDef {
	return ToolDefinitions()
}

// HandleEvent applies one runtime event.
func (m *Manager) HandleEvent(ctx context.Context, ev domain.Event) error {
	if ev.Participant == "" {
		return ErrMissingParticipant
	}

	switch ev.Type {
	case domain.EventParticipantJoined:
		m.join(ctx, ev)
		return nil
	case domain.EventShutdown:
		return m.end(ctx, ev.Participant)
	}

	c, ok := m.Get(ev.Participant)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, ev.Participant)
	}

	switch ev.Type {
	case domain.EventAttributesChanged:
		lang, ok := ev.Attributes[domain.AttrLanguage]
		if !ok {
			return nil
		}
		if c.SetLanguage(ctx, lang) {
			if err := m.presence.SetLanguage(ctx, ev.Participant, normalizeLang(lang)); err != nil {
				m.log.Warn().Err(err).Str("participant", ev.Participant).Msg("presence update failed")
			}
		}
	case domain.EventVisitorSaid:
		c.RecordTurn(domain.RoleVisitor, ev.Text)
	case domain.EventAgentSaid:
		c.RecordTurn(domain.RoleAgent, ev.Text)
	case domain.EventSessionFailed:
		c.Fail(ctx, ev.Text)
		return m.end(ctx, ev.Participant)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// CallTool runs a tool for a participant's current conversation.
func (m *Manager) CallTool(ctx context.Context, participant, name, input string) (string, error) {
	c, ok := m.Get(participant)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSession, participant)
	}
	return c.Call(ctx, name, input)
}

func (m *Manager) join(ctx context.Context, ev domain.Event) {
	m.mu.Lock()
	if _, exists := m.sessions[ev.Participant]; exists {
		m.mu.Unlock()
		m.log.Warn().Str("participant", ev.Participant).Msg("participant already has a session")
		return
	}
	lang := ev.Attributes[domain.AttrLanguage]
	if lang != "" && !Supported(lang) {
		m.log.Warn().Str("participant", ev.Participant).Str("language", lang).Msg("unsupported language, using default")
	}
	c := NewController(ev.Participant, lang, ev.Attributes[domain.AttrCampaignSource], m.cfg, m.deps)
	m.sessions[ev.Participant] = c
	m.mu.Unlock()

	st := c.State()
	m.log.Info().
		Str("participant", ev.Participant).
		Str("language", st.Language).
		Str("source", st.CampaignSource).
		Msg("participant joined")

	err := m.presence.Register(ctx, presence.Entry{
		SessionID:      ev.Participant,
		Participant:    ev.Participant,
		Language:       st.Language,
		CampaignSource: st.CampaignSource,
		StartedAt:      st.StartedAt,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("participant", ev.Participant).Msg("presence registration failed")
	}

	c.Start(ctx)
}

// end runs the shutdown safety net within the configured window, even if
// the caller's context is already gone.
func (m *Manager) end(ctx context.Context, participant string) error {
	m.mu.Lock()
	c, ok := m.sessions[participant]
	delete(m.sessions, participant)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, participant)
	}

	sctx, cancel := m.shutdownContext(context.WithoutCancel(ctx))
	defer cancel()
	c.Shutdown(sctx)

	if err := m.presence.Remove(sctx, participant); err != nil {
		m.log.Warn().Err(err).Str("participant", participant).Msg("presence removal failed")
	}
	m.log.Info().Str("participant", participant).Msg("session ended")
	return nil
}

func (m *Manager) shutdownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.ShutdownTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.cfg.ShutdownTimeout)
}

// ShutdownAll ends every open session and waits for background deliveries
// within the shutdown window.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	for _, p := range m.Participants() {
		if err := m.end(ctx, p); err != nil && !errors.Is(err, ErrUnknownSession) {
			m.log.Warn().Err(err).Str("participant", p).Msg("session shutdown failed")
		}
	}

	dctx, cancel := m.shutdownContext(context.WithoutCancel(ctx))
	defer cancel()
	err := m.deps.Tasks.Drain(dctx)
	m.deps.Tasks.Stop()
	return err
}
