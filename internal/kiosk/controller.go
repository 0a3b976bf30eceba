// Package kiosk drives one visitor conversation at a time per participant:
// the consent state machine, the presentation flags and the delivery of
// the conversation to the lead store, the transcript archive, the sales
// mailbox and the webhook.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/boothbot/internal/agent"
	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/contact"
	"github.com/soyeahso/boothbot/internal/display"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/hooks"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/soyeahso/boothbot/internal/reply"
)

// Speaker produces visitor-facing speech outside the runtime's own turn.
type Speaker interface {
	Say(ctx context.Context, participant, language, instructions string) (string, bool)
	Show(ctx context.Context, participant, text string)
}

// LeadSaver persists consented leads.
type LeadSaver interface {
	Save(lead domain.Lead) (string, error)
}

// TranscriptArchiver writes the conversation record. It returns the
// location written, or "" when nothing was written.
type TranscriptArchiver interface {
	Archive(tr domain.Transcript, s domain.SessionState) string
}

// WebhookSender posts the session summary to the external endpoint.
type WebhookSender interface {
	Send(ctx context.Context, sessionID string, tr domain.Transcript, s domain.SessionState) bool
}

// Notifier tells the sales team about a new lead.
type Notifier interface {
	Send(ctx context.Context, lead domain.Lead) bool
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Speaker Speaker
	Display display.Publisher
	Leads   LeadSaver
	Archive TranscriptArchiver
	Webhook WebhookSender
	Notify  Notifier
	Hooks   *hooks.Manager
	Tasks   *Tasks
	Log     *logging.Logger
	Now     func() time.Time
}

// Controller owns the state of one participant's conversations. All
// methods are serialized, so tool calls and events for one participant
// are applied strictly in arrival order.
type Controller struct {
	mu sync.Mutex

	identity     string
	conversation int
	state        *domain.SessionState
	transcript   domain.Transcript
	ended        bool

	cfg   config.KioskConfig
	deps  Deps
	log   *logging.Logger
	tools *agent.ToolRegistry
}

// NewController creates the controller for a participant that just
// joined. Unsupported languages fall back to the configured default.
func NewController(identity, language, campaignSource string, cfg config.KioskConfig, deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logging.New(nil, "silent")
	}
	if deps.Tasks == nil {
		deps.Tasks = NewTasks(deps.Log)
	}
	language = normalizeLang(language)
	if !Supported(language) {
		language = cfg.DefaultLanguage
	}
	if campaignSource == "" {
		campaignSource = cfg.DefaultCampaignSource
	}

	c := &Controller{
		identity:     identity,
		conversation: 1,
		state:        domain.NewSessionState(identity, language, campaignSource, deps.Now()),
		cfg:          cfg,
		deps:         deps,
		log:          deps.Log.Sub("kiosk"),
	}
	c.tools = c.registry()
	return c
}

// Identity returns the participant identity.
func (c *Controller) Identity() string { return c.identity }

// State returns a copy of the current session state.
func (c *Controller) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Transcript returns a copy of the current conversation's turns.
func (c *Controller) Transcript() domain.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.transcript)
}

// Start greets the visitor and opens the conversation.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended || c.state.Stage != domain.StageGreeting {
		return
	}
	c.emit(ctx, hooks.EventSessionStart, map[string]any{
		hooks.KeySession:  c.state.SessionID,
		hooks.KeyLanguage: c.state.Language,
	})
	c.greet(ctx)
}

func (c *Controller) greet(ctx context.Context) {
	c.log.Info().
		Str("session", c.state.SessionID).
		Str("language", c.state.Language).
		Str("source", c.state.CampaignSource).
		Msg("greeting visitor")
	if text, ok := c.say(ctx, GreetingInstruction(c.state.Language)); ok {
		c.appendTurn(domain.RoleAgent, text)
	}
	c.state.Stage = domain.StageExploring
}

// RecordTurn appends an utterance to the transcript.
func (c *Controller) RecordTurn(role domain.Role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return
	}
	c.appendTurn(role, text)
}

func (c *Controller) appendTurn(role domain.Role, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.transcript = append(c.transcript, domain.Turn{Role: role, Text: text, At: c.deps.Now()})
}

// SetLanguage switches the conversation language and has the agent confirm
// the switch. It reports whether the language changed.
func (c *Controller) SetLanguage(ctx context.Context, code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	code = normalizeLang(code)
	if !Supported(code) {
		c.log.Warn().Str("session", c.state.SessionID).Str("language", code).Msg("unsupported language ignored")
		return false
	}
	if c.ended || code == c.state.Language {
		return false
	}

	c.log.Info().Str("session", c.state.SessionID).Str("from", c.state.Language).Str("to", code).Msg("language switched")
	c.state.Language = code
	if text, ok := c.say(ctx, LanguageSwitchInstruction(code)); ok {
		c.appendTurn(domain.RoleAgent, text)
	}
	return true
}

// Fail reports that the live session could not be established. The
// visitor sees the fixed technical-error message and the conversation is
// closed.
func (c *Controller) Fail(ctx context.Context, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Error().Str("session", c.state.SessionID).Str("reason", reason).Msg("session start failed")
	if c.deps.Speaker != nil {
		c.deps.Speaker.Show(ctx, c.identity, reply.TechnicalError(c.state.Language))
	}
	c.state.Stage = domain.StageClosed
}

// Call runs a tool against this participant's conversation.
func (c *Controller) Call(ctx context.Context, name, input string) (string, error) {
	out, err := c.tools.Execute(ctx, name, input)
	if err != nil {
		if errors.Is(err, agent.ErrUnknownTool) {
			c.log.Warn().Str("participant", c.identity).Str("tool", name).Msg("unknown tool called")
		}
		return "", err
	}
	c.emit(ctx, hooks.EventToolCalled, map[string]any{
		hooks.KeyParticipant: c.identity,
		hooks.KeyTool:        name,
	})
	return out, nil
}

// Shutdown runs the end-of-session safety net. If no terminal event has
// saved the conversation yet, it recovers an email address spoken but
// never stored, then archives the transcript and sends the webhook. It is
// safe to call more than once.
func (c *Controller) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return
	}
	c.ended = true

	if !c.state.HistorySaved {
		if c.state.AnyEmail() == "" {
			if email := contact.ExtractEmail(c.transcript.VisitorTexts()); email != "" {
				c.state.Partial.Email = email
				c.log.Info().Str("session", c.state.SessionID).Str("email", email).Msg("extracted email from transcript on shutdown")
			}
		}

		c.persistOnce(ctx, "shutdown")

		if !c.state.LeadCaptured && (c.state.Partial.Name != "" || c.state.Partial.Email != "") {
			c.log.Warn().
				Str("session", c.state.SessionID).
				Str("name", c.state.Partial.Name).
				Str("email", c.state.Partial.Email).
				Msg("session ended with partial contact info (no consent)")
		}
	}

	c.state.Stage = domain.StageClosed
	c.emit(ctx, hooks.EventSessionEnd, map[string]any{hooks.KeySession: c.state.SessionID})
}

// persistOnce archives the transcript and sends the webhook unless an
// earlier terminal event already did. Callers hold c.mu.
func (c *Controller) persistOnce(ctx context.Context, reason string) bool {
	if c.state.HistorySaved {
		c.log.Debug().Str("session", c.state.SessionID).Str("reason", reason).Msg("history already saved")
		return false
	}
	c.state.HistorySaved = true

	if c.transcript.IsEmpty() {
		c.log.Info().Str("session", c.state.SessionID).Str("reason", reason).Msg("empty session, nothing to save")
		return true
	}

	snap := c.state.Clone()
	tr := slices.Clone(c.transcript)
	if c.deps.Archive != nil {
		path := c.deps.Archive.Archive(tr, snap)
		c.emitDelivery(ctx, hooks.SinkArchive, path != "")
	}
	c.sendWebhook(ctx, reason)
	return true
}

// sendWebhook posts the current state. The post outlives a cancelled
// caller, bounded by the shutdown window, since the state it reports may
// be cleared right after. Callers hold c.mu.
func (c *Controller) sendWebhook(ctx context.Context, reason string) bool {
	if c.deps.Webhook == nil {
		return false
	}
	dctx, cancel := c.deliveryContext(ctx)
	defer cancel()

	snap := c.state.Clone()
	ok := c.deps.Webhook.Send(dctx, snap.SessionID, slices.Clone(c.transcript), snap)
	c.emitDelivery(ctx, hooks.SinkWebhook, ok)
	if !ok {
		c.log.Error().Str("session", snap.SessionID).Str("reason", reason).Msg("webhook delivery failed")
	}
	return ok
}

func (c *Controller) deliveryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.cfg.ShutdownTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.ShutdownTimeout)
}

// restart archives the finished conversation if needed and opens a fresh
// one for the same participant. Callers hold c.mu.
func (c *Controller) restart(ctx context.Context) {
	c.publish(ctx, display.TopicClean, display.Clean())
	c.persistOnce(ctx, "restart")
	c.emit(ctx, hooks.EventSessionEnd, map[string]any{hooks.KeySession: c.state.SessionID})

	c.conversation++
	id := fmt.Sprintf("%s/%d", c.identity, c.conversation)
	c.state = domain.NewSessionState(id, c.state.Language, c.state.CampaignSource, c.deps.Now())
	c.transcript = nil

	c.log.Info().Str("session", id).Msg("conversation restarted")
	c.emit(ctx, hooks.EventSessionStart, map[string]any{
		hooks.KeySession:  id,
		hooks.KeyLanguage: c.state.Language,
	})
	c.greet(ctx)
}

func (c *Controller) say(ctx context.Context, instructions string) (string, bool) {
	if c.deps.Speaker == nil {
		return "", false
	}
	return c.deps.Speaker.Say(ctx, c.identity, c.state.Language, instructions)
}

func (c *Controller) publish(ctx context.Context, topic string, payload any) {
	if c.deps.Display == nil {
		return
	}
	if err := c.deps.Display.Publish(ctx, c.identity, topic, payload); err != nil {
		if errors.Is(err, display.ErrNoScreen) {
			c.log.Debug().Str("topic", topic).Msg("no screen attached")
			return
		}
		c.log.Error().Err(err).Str("topic", topic).Msg("failed to publish to screen")
	}
}

func (c *Controller) emit(ctx context.Context, event string, data map[string]any) {
	if c.deps.Hooks == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data[hooks.KeyParticipant] = c.identity
	c.deps.Hooks.Emit(ctx, event, data)
}

func (c *Controller) emitDelivery(ctx context.Context, sink string, ok bool) {
	c.emit(ctx, hooks.EventDelivery, map[string]any{hooks.KeySink: sink, hooks.KeyOK: ok})
}
