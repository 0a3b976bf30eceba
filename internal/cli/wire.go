package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/display"
	"github.com/soyeahso/boothbot/internal/gateway"
	"github.com/soyeahso/boothbot/internal/history"
	"github.com/soyeahso/boothbot/internal/hooks"
	"github.com/soyeahso/boothbot/internal/kiosk"
	"github.com/soyeahso/boothbot/internal/leads"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/soyeahso/boothbot/internal/metrics"
	"github.com/soyeahso/boothbot/internal/notify"
	"github.com/soyeahso/boothbot/internal/presence"
	"github.com/soyeahso/boothbot/internal/reply"
	"github.com/soyeahso/boothbot/internal/webhook"
)

const webhookBackoff = time.Second

// kioskApp is the fully wired kiosk backend.
type kioskApp struct {
	server   *gateway.Server
	sessions *kiosk.Manager
	presence *presence.Registry
	log      *logging.Logger
}

// newKioskApp builds every sink and the session manager from cfg.
func newKioskApp(ctx context.Context, cfg config.Config, p config.Paths, log *logging.Logger) (*kioskApp, error) {
	hookMgr := hooks.NewManager(log)
	m := metrics.New()
	m.Subscribe(hookMgr)

	hub := display.NewHub(log)

	gen, err := newGenerator(ctx, cfg.Reply, log)
	if err != nil {
		return nil, err
	}
	speaker := reply.NewGateway(gen, hub, cfg.Reply.Attempts, cfg.Reply.Backoff, log)

	deps := kiosk.Deps{
		Speaker: speaker,
		Display: hub,
		Leads:   leads.NewStore(p.Leads, log),
		Archive: history.NewArchiver(p.History, log),
		Webhook: webhook.New(webhook.Config{
			URL:           cfg.Webhook.URL,
			APIKey:        cfg.Webhook.APIKey,
			CompanyName:   cfg.Webhook.CompanyName,
			BoothLocation: cfg.Webhook.BoothLocation,
			Timeout:       cfg.Webhook.Timeout,
			Retries:       cfg.Webhook.Retries,
			Backoff:       webhookBackoff,
			WarmThreshold: cfg.Kiosk.WarmThreshold,
			ScoreScale:    cfg.Kiosk.ScoreScale,
		}, log),
		Hooks: hookMgr,
		Tasks: kiosk.NewTasks(log),
		Log:   log,
	}
	if sender := newNotifier(cfg.Notify, log); sender != nil {
		deps.Notify = sender
	}

	reg := presence.Open(ctx, cfg.Presence.RedisURL, cfg.Presence.RedisPassword, cfg.Presence.TTL, log)
	sessions := kiosk.NewManager(cfg.Kiosk, deps, reg)

	srv := gateway.New(cfg.Gateway, sessions, log,
		gateway.WithHooks(hookMgr),
		gateway.WithScreens(hub),
		gateway.WithMetrics(m.Handler()),
	)

	return &kioskApp{server: srv, sessions: sessions, presence: reg, log: log}, nil
}

// run serves until ctx ends, then runs the end-of-session safety net for
// every open conversation.
func (a *kioskApp) run(ctx context.Context) error {
	serveErr := a.server.Start(ctx)

	a.log.Info().Int("sessions", a.sessions.Count()).Msg("closing open sessions")
	if err := a.sessions.ShutdownAll(context.Background()); err != nil {
		a.log.Warn().Err(err).Msg("background deliveries still pending at exit")
	}
	if err := a.presence.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing presence registry")
	}
	return serveErr
}

// newGenerator returns the reply generator for the configured provider, or
// nil when replies always use the fallback phrase.
func newGenerator(ctx context.Context, cfg config.ReplyConfig, log *logging.Logger) (reply.Generator, error) {
	switch cfg.Provider {
	case "none":
		log.Info().Msg("reply generation disabled, fallback phrases only")
		return nil, nil
	case "gemini":
		if cfg.APIKey == "" {
			log.Warn().Msg("no Gemini API key, fallback phrases only")
			return nil, nil
		}
		gen, err := reply.NewGenAIGenerator(ctx, cfg.APIKey, cfg.Model, kiosk.Persona)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini client unavailable, fallback phrases only")
			return nil, nil
		}
		log.Info().Str("model", cfg.Model).Msg("reply generation via Gemini")
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown reply provider %q", cfg.Provider)
	}
}

// newNotifier returns the lead mail sender, or nil when notifications are
// switched off.
func newNotifier(cfg config.NotifyConfig, log *logging.Logger) *notify.Sender {
	var t notify.Transport
	switch cfg.Transport {
	case "smtp":
		t = &notify.SMTPTransport{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			Timeout:  cfg.Timeout,
		}
	case "resend":
		t = notify.NewResendTransport(cfg.Resend.APIKey)
	default:
		log.Info().Str("transport", cfg.Transport).Msg("lead notifications disabled")
		return nil
	}
	from := cfg.From
	if from == "" {
		from = cfg.SMTP.Username
	}
	return notify.NewSender(t, from, cfg.Recipients, cfg.Retries, log)
}
