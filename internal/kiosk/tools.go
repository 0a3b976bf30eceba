package kiosk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soyeahso/boothbot/internal/agent"
	"github.com/soyeahso/boothbot/internal/contact"
	"github.com/soyeahso/boothbot/internal/display"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/hooks"
)

// Tool names exposed to the voice runtime.
const (
	ToolDetectRole       = "detect_role"
	ToolPresentProduct   = "present_product"
	ToolShowClientMedia  = "show_client_media"
	ToolCollectChallenge = "collect_challenge"
	ToolCheckEngagement  = "check_engagement_and_proceed"
	ToolOfferContact     = "offer_contact"
	ToolConfirmConsent   = "confirm_consent"
	ToolSaveSummary      = "save_summary"
	ToolRestartSession   = "restart_session"
	ToolDeclineContact   = "decline_contact"
)

// Instructions returned to the runtime. Each is followed by a language hint.
const (
	instrContinue         = "(INTERNAL) Continue the conversation naturally."
	instrRoleRejected     = "(INTERNAL) That is not a professional role. Do NOT store it. Wait until the visitor mentions an actual job title."
	instrAlreadyPresented = "(INTERNAL) You already presented EngageIQ. Do NOT present again. Continue by asking about their challenge or checking engagement."
	instrPresent          = "(INTERNAL) Present EngageIQ briefly. The images on screen show real deployments (%s).%s Key value: %q 1-2 sentences."
	instrContinueClient   = "(INTERNAL) Continue discussing the client naturally."
	instrAskChallenge     = "(INTERNAL) Ask the visitor about their biggest challenge, for example: %q"
	instrOfferContact     = "(INTERNAL) Good signal. Offer to connect them with the team and ask for their name and email address."
	instrKeepExploring    = "(INTERNAL) Not yet. Keep the conversation going and learn more about their challenge, for example: %q"
	instrInvalidEmail     = "(INTERNAL) That email doesn't seem right. Ask the visitor to double-check it."
	instrAskConsent       = "(INTERNAL) Now ask: 'May we use your contact information to follow up?'"
	instrConsentGiven     = "(INTERNAL) Thank them warmly and say goodbye. Mention the team will follow up."
	instrConsentDeclined  = "(INTERNAL) Respect their choice. Say a warm goodbye, no pressure."
	instrNeedContact      = "(INTERNAL) No contact details are stored yet. Ask for their name and email address first."
	instrFinished         = "(INTERNAL) This conversation is finished. Offer to start a new conversation."
	instrDeclineContact   = "(INTERNAL) Say a warm goodbye. Wish them a great time at EuroShop."
	instrSummarySaved     = "(INTERNAL) Continue the conversation."
	instrRestarted        = "(INTERNAL) A new conversation has started and the visitor has been greeted. Wait for them to respond."
)

// Generic placeholders that are not job titles.
var invalidRoles = map[string]bool{
	"user": true, "visitor": true, "person": true, "customer": true,
	"guest": true, "attendee": true, "participant": true, "man": true,
	"woman": true, "someone": true, "nobody": true, "human": true,
}

// Intent signals recorded with each score increase.
const (
	signalPresentation      = "viewed_presentation"
	signalVagueChallenge    = "vague_challenge"
	signalSpecificChallenge = "specific_challenge"
	signalContactShared     = "shared_contact"
)

func (c *Controller) withHint(instr string) string {
	return instr + " " + LangHint(c.state.Language)
}

// DetectRole stores the visitor's job title unless it is a generic
// placeholder.
func (c *Controller) DetectRole(role string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleaned := strings.ToLower(strings.TrimSpace(role))
	if cleaned == "" || invalidRoles[cleaned] {
		c.log.Info().Str("session", c.state.SessionID).Str("role", role).Msg("rejected invalid role")
		return c.withHint(instrRoleRejected)
	}
	c.state.VisitorRole = strings.TrimSpace(role)
	c.log.Info().Str("session", c.state.SessionID).Str("role", c.state.VisitorRole).Msg("detected visitor role")
	return c.withHint(instrContinue)
}

// PresentProduct shows the product and its reference clients once per
// conversation.
func (c *Controller) PresentProduct(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.ProductPresented {
		c.log.Info().Str("session", c.state.SessionID).Msg("product already presented, skipping")
		return c.withHint(instrAlreadyPresented)
	}
	c.state.ProductPresented = true
	for _, cl := range Catalog.Clients {
		c.state.ClientsShown[cl.Key] = true
	}
	c.state.AddIntent(c.cfg.Deltas.Presentation, signalPresentation)
	c.log.Info().
		Str("session", c.state.SessionID).
		Str("role", c.state.VisitorRole).
		Int("intent", c.state.IntentScore).
		Msg("presenting product")

	var cards []display.ProductCard
	if len(Catalog.Images) > 0 {
		cards = append(cards, display.ProductCard{ProductName: Catalog.Name, Image: Catalog.Images, URL: Catalog.URL})
	}
	for _, cl := range Catalog.Clients {
		cards = append(cards, display.ProductCard{ProductName: cl.Name, Image: cl.Images, URL: cl.URL})
	}
	c.publish(ctx, display.TopicProducts, cards)

	hook := HookFor(c.state.VisitorRole)
	connect := ""
	if c.state.VisitorRole != "" {
		connect = fmt.Sprintf(" Connect to their %s context.", c.state.VisitorRole)
	}
	return c.withHint(fmt.Sprintf(instrPresent, Catalog.ClientNames(), connect, hook.ValueHook))
}

// ShowClientMedia shows one reference client's media unless it is unknown
// or already on screen.
func (c *Controller) ShowClientMedia(ctx context.Context, key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl, ok := Catalog.FindClient(key)
	if !ok {
		c.log.Warn().Str("session", c.state.SessionID).Str("client", key).Msg("unknown client")
		return c.withHint(instrContinueClient)
	}
	if c.state.ClientsShown[cl.Key] {
		return c.withHint(instrContinueClient)
	}
	c.state.ClientsShown[cl.Key] = true
	c.publish(ctx, display.TopicProducts, []display.ProductCard{
		{ProductName: cl.Name, Image: cl.Images, URL: cl.URL},
	})
	c.log.Info().Str("session", c.state.SessionID).Str("client", cl.Name).Msg("client media shown")
	return c.withHint(instrContinueClient)
}

// CollectChallenge stores the visitor's biggest challenge. Vague answers
// raise the intent score less than specific ones.
func (c *Controller) CollectChallenge(challenge string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	challenge = strings.TrimSpace(challenge)
	if challenge == "" {
		return c.withHint(fmt.Sprintf(instrAskChallenge, HookFor(c.state.VisitorRole).ChallengeExample))
	}
	c.state.BiggestChallenge = challenge
	if c.isVague(challenge) {
		c.state.AddIntent(c.cfg.Deltas.VagueChallenge, signalVagueChallenge)
	} else {
		c.state.AddIntent(c.cfg.Deltas.SpecificChallenge, signalSpecificChallenge)
	}
	c.log.Info().
		Str("session", c.state.SessionID).
		Str("challenge", challenge).
		Int("intent", c.state.IntentScore).
		Msg("challenge collected")
	return c.withHint(instrContinue)
}

func (c *Controller) isVague(challenge string) bool {
	lower := strings.ToLower(challenge)
	for _, m := range c.cfg.VagueMarkers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// CheckEngagement tells the runtime whether to offer contact capture.
func (c *Controller) CheckEngagement() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IntentScore >= c.cfg.EngagementThreshold {
		c.state.QualificationStarted = true
		c.log.Info().Str("session", c.state.SessionID).Int("intent", c.state.IntentScore).Msg("engagement threshold reached")
		return c.withHint(instrOfferContact)
	}
	return c.withHint(fmt.Sprintf(instrKeepExploring, HookFor(c.state.VisitorRole).ChallengeExample))
}

// ContactOffer is the contact information volunteered by the visitor.
type ContactOffer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// OfferContact validates and stores contact details pending consent, sends
// the warm webhook and shows the consent buttons.
func (c *Controller) OfferContact(ctx context.Context, offer ContactOffer) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Stage == domain.StageClosed {
		return c.withHint(instrFinished)
	}
	email := strings.TrimSpace(offer.Email)
	if !contact.ValidEmail(email) {
		c.log.Info().Str("session", c.state.SessionID).Str("email", offer.Email).Msg("invalid email")
		return c.withHint(instrInvalidEmail)
	}

	c.state.Partial = domain.Contact{
		Name:      strings.TrimSpace(offer.Name),
		Email:     contact.Normalize(email),
		Company:   strings.TrimSpace(offer.Company),
		RoleTitle: strings.TrimSpace(offer.Role),
		Phone:     strings.TrimSpace(offer.Phone),
	}
	if c.state.Stage != domain.StageAwaitingConsent {
		c.state.AddIntent(c.cfg.Deltas.ContactOffered, signalContactShared)
		c.state.Stage = domain.StageAwaitingConsent
	}
	c.log.Info().
		Str("session", c.state.SessionID).
		Str("name", c.state.Partial.Name).
		Str("email", c.state.Partial.Email).
		Int("intent", c.state.IntentScore).
		Msg("partial contact stored")

	labels := Labels(c.state.Language)
	c.publish(ctx, display.TopicTrigger, display.Buttons(labels.ConsentYes, labels.ConsentNo))
	c.sendWebhook(ctx, "contact offered")

	return c.withHint(instrAskConsent)
}

// ConfirmConsent records the visitor's answer to the follow-up question.
// On yes the lead is stored, the team is notified in the background and
// the hot webhook is sent. On no the declined webhook is sent before the
// pending contact is discarded.
func (c *Controller) ConfirmConsent(ctx context.Context, consent bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Stage == domain.StageClosed {
		return c.withHint(instrFinished)
	}
	if c.state.Partial.IsZero() {
		return c.withHint(instrNeedContact)
	}

	labels := Labels(c.state.Language)
	if consent {
		c.state.Consent = domain.ConsentGiven
		c.state.Contact = c.state.Partial
		c.state.LeadCaptured = true
		c.captureLead(ctx)
		c.sendWebhook(ctx, "consent given")
		c.state.HistorySaved = true
		c.state.Stage = domain.StageClosed
		c.publish(ctx, display.TopicTrigger, display.Buttons(labels.NewConversation))
		return c.withHint(instrConsentGiven)
	}

	c.state.Consent = domain.ConsentDeclined
	c.sendWebhook(ctx, "consent declined")
	c.state.Partial = domain.Contact{}
	c.state.HistorySaved = true
	c.state.Stage = domain.StageClosed
	c.log.Info().Str("session", c.state.SessionID).Msg("partial contact discarded (visitor declined consent)")
	c.publish(ctx, display.TopicTrigger, display.Buttons(labels.NewConversation))
	return c.withHint(instrConsentDeclined)
}

// captureLead writes the lead record and then dispatches the notification.
// Callers hold c.mu.
func (c *Controller) captureLead(ctx context.Context) {
	lead := domain.NewLead(c.state.Clone(), c.deps.Now())

	if c.deps.Leads != nil {
		path, err := c.deps.Leads.Save(lead)
		if err != nil {
			c.log.Error().Err(err).
				Str("session", c.state.SessionID).
				Str("name", lead.Contact.Name).
				Str("email", lead.Contact.Email).
				Str("company", lead.Contact.Company).
				Int("intent", lead.Intent.Score).
				Msg("LEAD NOT SAVED")
		} else {
			c.log.Info().Str("session", c.state.SessionID).Str("path", path).Msg("lead saved")
		}
		c.emitDelivery(ctx, hooks.SinkLead, err == nil)
	}
	c.emit(ctx, hooks.EventLeadCaptured, map[string]any{hooks.KeySession: c.state.SessionID})

	if c.deps.Notify == nil {
		return
	}
	notify := c.deps.Notify
	c.deps.Tasks.Go("notify "+c.state.SessionID, func(taskCtx context.Context) {
		ok := notify.Send(taskCtx, lead)
		c.emitDelivery(taskCtx, hooks.SinkNotify, ok)
	})
}

// SaveSummary stores the runtime's summary of the conversation.
func (c *Controller) SaveSummary(summary string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.ConversationSummary = strings.TrimSpace(summary)
	c.log.Info().Str("session", c.state.SessionID).Str("summary", c.state.ConversationSummary).Msg("conversation summary saved")
	return c.withHint(instrSummarySaved)
}

// DeclineContact closes a conversation where the visitor did not want to
// share contact details. Nothing is persisted until shutdown or restart.
func (c *Controller) DeclineContact(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Info().Str("session", c.state.SessionID).Msg("visitor declined contact")
	c.state.Stage = domain.StageClosed
	c.publish(ctx, display.TopicTrigger, display.Buttons(Labels(c.state.Language).NewConversation))
	return c.withHint(instrDeclineContact)
}

// Restart saves the current conversation unless already saved and greets
// a new visitor with the same language and campaign source.
func (c *Controller) Restart(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ended {
		return c.withHint(instrFinished)
	}
	c.restart(ctx)
	return c.withHint(instrRestarted)
}

type roleInput struct {
	Role string `json:"role"`
}

type clientInput struct {
	ClientKey string `json:"client_key"`
}

type challengeInput struct {
	Challenge string `json:"challenge"`
}

type consentInput struct {
	Consent *bool `json:"consent"`
}

type summaryInput struct {
	Summary string `json:"summary"`
}

func decode(input string, v any) error {
	if err := json.Unmarshal([]byte(input), v); err != nil {
		return fmt.Errorf("%w: %v", agent.ErrInvalidInput, err)
	}
	return nil
}

// registry binds the tool surface to this controller.
func (c *Controller) registry() *agent.ToolRegistry {
	reg := agent.NewToolRegistry()

	reg.Register(&agent.FuncTool{
		ToolName: ToolDetectRole,
		Desc: "Store the visitor's professional job title. Only call this when the visitor mentions an actual " +
			"job title such as \"Marketing Director\" or \"CEO\", never with a person's name or a word like \"visitor\".",
		Schema: `{"type":"object","properties":{"role":{"type":"string","description":"Professional job title"}},"required":["role"]}`,
		ExecuteFn: func(_ context.Context, input string) (string, error) {
			var in roleInput
			if err := decode(input, &in); err != nil {
				return "", err
			}
			return c.DetectRole(in.Role), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolPresentProduct,
		Desc:     "Present EngageIQ with client examples on screen, personalized to the visitor's role.",
		ExecuteFn: func(ctx context.Context, input string) (string, error) {
			return c.PresentProduct(ctx), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolShowClientMedia,
		Desc:     "Show a reference client's images on the visitor's screen when you discuss that client.",
		Schema:   `{"type":"object","properties":{"client_key":{"type":"string","description":"\"core\" or \"dfki\""}},"required":["client_key"]}`,
		ExecuteFn: func(ctx context.Context, input string) (string, error) {
			var in clientInput
			if err := decode(input, &in); err != nil {
				return "", err
			}
			return c.ShowClientMedia(ctx, in.ClientKey), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolCollectChallenge,
		Desc:     "Store the visitor's biggest challenge with customer demand or engagement.",
		Schema:   `{"type":"object","properties":{"challenge":{"type":"string","description":"Brief summary of the stated challenge"}},"required":["challenge"]}`,
		ExecuteFn: func(_ context.Context, input string) (string, error) {
			var in challengeInput
			if err := decode(input, &in); err != nil {
				return "", err
			}
			return c.CollectChallenge(in.Challenge), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolCheckEngagement,
		Desc:     "Check whether the visitor is engaged enough to offer a follow-up from the team.",
		ExecuteFn: func(context.Context, string) (string, error) {
			return c.CheckEngagement(), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolOfferContact,
		Desc: "Store the contact information the visitor provided, before asking for consent. " +
			"Name and email are required.",
		Schema: `{"type":"object","properties":{` +
			`"name":{"type":"string"},"email":{"type":"string"},"company":{"type":"string"},` +
			`"role":{"type":"string"},"phone":{"type":"string"}},"required":["name","email"]}`,
		ExecuteFn: func(ctx context.Context, input string) (string, error) {
			var in ContactOffer
			if err := decode(input, &in); err != nil {
				return "", err
			}
			return c.OfferContact(ctx, in), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolConfirmConsent,
		Desc:     "Record whether the visitor agrees that the team may use their contact information to follow up.",
		Schema:   `{"type":"object","properties":{"consent":{"type":"boolean"}},"required":["consent"]}`,
		ExecuteFn: func(ctx context.Context, input string) (string, error) {
			var in consentInput
			if err := decode(input, &in); err != nil {
				return "", err
			}
			if in.Consent == nil {
				return "", fmt.Errorf("%w: consent is required", agent.ErrInvalidInput)
			}
			return c.ConfirmConsent(ctx, *in.Consent), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolSaveSummary,
		Desc:     "Save a 1-2 sentence summary of what the visitor is looking for and how interested they are.",
		Schema:   `{"type":"object","properties":{"summary":{"type":"string"}},"required":["summary"]}`,
		ExecuteFn: func(_ context.Context, input string) (string, error) {
			var in summaryInput
			if err := decode(input, &in); err != nil {
				return "", err
			}
			return c.SaveSummary(in.Summary), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolRestartSession,
		Desc:     "Start a fresh conversation when the visitor asks for a new conversation.",
		ExecuteFn: func(ctx context.Context, _ string) (string, error) {
			return c.Restart(ctx), nil
		},
	})

	reg.Register(&agent.FuncTool{
		ToolName: ToolDeclineContact,
		Desc:     "Call this when the visitor declines to share their contact information.",
		ExecuteFn: func(ctx context.Context, _ string) (string, error) {
			return c.DeclineContact(ctx), nil
		},
	})

	return reg
}

// ToolDefinitions describes the tool surface without a live session.
func ToolDefinitions() []agent.ToolDef {
	return (&Controller{}).registry().Definitions()
}
