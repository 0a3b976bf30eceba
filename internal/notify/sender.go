// Package notify e-mails new leads to the sales team.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/logging"
)

// ErrNotConfigured is returned by a transport that lacks credentials.
// It is never retried.
var ErrNotConfigured = errors.New("notify: transport not configured")

// Transport delivers a single message.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Sender formats lead notifications and delivers them with retries.
type Sender struct {
	transport  Transport
	from       string
	recipients []string
	retries    int
	backoff    time.Duration
	log        *logging.Logger
	sleep      func(context.Context, time.Duration) error
}

// NewSender creates a Sender. Retries below one are treated as one.
func NewSender(t Transport, from string, recipients []string, retries int, log *logging.Logger) *Sender {
	return &Sender{
		transport:  t,
		from:       from,
		recipients: recipients,
		retries:    max(retries, 1),
		backoff:    time.Second,
		log:        log.Sub("notify"),
		sleep:      sleepCtx,
	}
}

// Send notifies the recipients about lead. It blocks for the duration of
// all attempts, so callers on a live conversation should run it in the
// background. Failures are logged and reported as false.
func (s *Sender) Send(ctx context.Context, lead domain.Lead) bool {
	msg := Message{
		From:    s.from,
		To:      s.recipients,
		Subject: Subject(lead),
		Body:    Body(lead),
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		err := s.transport.Deliver(ctx, msg)
		if err == nil {
			s.log.Info().
				Str("transport", s.transport.Name()).
				Strs("to", s.recipients).
				Str("lead", lead.Contact.Email).
				Msg("lead notification sent")
			return true
		}
		if errors.Is(err, ErrNotConfigured) {
			s.log.Warn().Err(err).Str("transport", s.transport.Name()).Msg("lead notification skipped")
			return false
		}
		s.log.Warn().Err(err).
			Str("transport", s.transport.Name()).
			Int("attempt", attempt).
			Int("of", s.retries).
			Msg("lead notification attempt failed")
		if attempt < s.retries {
			if err := s.sleep(ctx, s.backoff*time.Duration(attempt)); err != nil {
				break
			}
		}
	}

	s.log.Error().
		Str("transport", s.transport.Name()).
		Str("lead", lead.Contact.Email).
		Msg("lead notification failed")
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
