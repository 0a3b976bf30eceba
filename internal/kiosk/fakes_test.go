package kiosk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/hooks"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/soyeahso/boothbot/internal/webhook"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

var clock = time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return clock }

type fakeSpeaker struct {
	mu    sync.Mutex
	said  []string
	shown []string
	fail  bool
}

func (f *fakeSpeaker) Say(_ context.Context, _, _, instructions string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said = append(f.said, instructions)
	if f.fail {
		return "One moment please, I'll be right with you.", false
	}
	return "spoken reply", true
}

func (f *fakeSpeaker) Show(_ context.Context, _, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, text)
}

type publication struct {
	participant string
	topic       string
	payload     any
}

type fakeDisplay struct {
	mu   sync.Mutex
	sent []publication
}

func (f *fakeDisplay) Publish(_ context.Context, participant, topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, publication{participant, topic, payload})
	return nil
}

func (f *fakeDisplay) topic(topic string) []publication {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publication
	for _, p := range f.sent {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

type webhookCall struct {
	sessionID  string
	transcript domain.Transcript
	state      domain.SessionState
	status     string
	ctxErr     error
}

type fakeWebhook struct {
	mu    sync.Mutex
	calls []webhookCall
	ok    bool
}

func (f *fakeWebhook) Send(ctx context.Context, sessionID string, tr domain.Transcript, s domain.SessionState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, webhookCall{sessionID, tr, s, webhook.Status(s, 3), ctx.Err()})
	return f.ok
}

func (f *fakeWebhook) statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.status
	}
	return out
}

type fakeArchive struct {
	mu       sync.Mutex
	archived []domain.SessionState
}

func (f *fakeArchive) Archive(tr domain.Transcript, s domain.SessionState) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tr.IsEmpty() {
		return ""
	}
	f.archived = append(f.archived, s)
	return "/tmp/conversation.txt"
}

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.archived)
}

type fakeLeads struct {
	mu    sync.Mutex
	saved []domain.Lead
	err   error
}

func (f *fakeLeads) Save(lead domain.Lead) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, lead)
	return "/tmp/lead.json", nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []domain.Lead
	leads *fakeLeads
	// savedBefore records how many leads were stored when each send started.
	savedBefore []int
	release     chan struct{}
}

func (f *fakeNotifier) Send(ctx context.Context, lead domain.Lead) bool {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return false
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.leads != nil {
		f.leads.mu.Lock()
		f.savedBefore = append(f.savedBefore, len(f.leads.saved))
		f.leads.mu.Unlock()
	}
	f.sent = append(f.sent, lead)
	return true
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type harness struct {
	speaker *fakeSpeaker
	display *fakeDisplay
	webhook *fakeWebhook
	archive *fakeArchive
	leads   *fakeLeads
	notify  *fakeNotifier
	hooks   *hooks.Manager
	tasks   *Tasks
	cfg     config.KioskConfig
}

func newHarness() *harness {
	leads := &fakeLeads{}
	return &harness{
		speaker: &fakeSpeaker{},
		display: &fakeDisplay{},
		webhook: &fakeWebhook{ok: true},
		archive: &fakeArchive{},
		leads:   leads,
		notify:  &fakeNotifier{leads: leads},
		hooks:   hooks.NewManager(silentLog()),
		tasks:   NewTasks(silentLog()),
		cfg:     config.Defaults().Kiosk,
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Speaker: h.speaker,
		Display: h.display,
		Leads:   h.leads,
		Archive: h.archive,
		Webhook: h.webhook,
		Notify:  h.notify,
		Hooks:   h.hooks,
		Tasks:   h.tasks,
		Log:     silentLog(),
		Now:     fixedNow,
	}
}

func (h *harness) controller(lang string) *Controller {
	c := NewController("visitor-1", lang, "", h.cfg, h.deps())
	c.Start(context.Background())
	return c
}

func (h *harness) drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return h.tasks.Drain(ctx)
}

var errDisk = errors.New("disk full")
