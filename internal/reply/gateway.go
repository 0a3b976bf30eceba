// Package reply asks the language model to speak and falls back to a fixed
// phrase when it cannot.
package reply

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/soyeahso/boothbot/internal/display"
	"github.com/soyeahso/boothbot/internal/logging"
)

// ErrEmptyReply is returned by a generator that produced no text.
var ErrEmptyReply = errors.New("reply: empty response")

// Generator turns speaking instructions into the agent's next utterance.
type Generator interface {
	Generate(ctx context.Context, instructions string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, instructions string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, instructions string) (string, error) {
	return f(ctx, instructions)
}

var fallbacks = map[string]string{
	"en": "One moment please, I'll be right with you.",
	"de": "Einen kleinen Moment bitte, ich bin gleich wieder fuer Sie da.",
}

var technicalErrors = map[string]string{
	"en": "I'm having a small technical issue right now. Let me try again. " +
		"If it persists, our team at the booth can help you directly.",
	"de": "Ich habe gerade ein kleines technisches Problem. Ich versuche es nochmal. " +
		"Falls es bestehen bleibt, kann unser Team am Stand Ihnen direkt weiterhelfen.",
}

// FallbackPhrase is the patience phrase shown when generation fails.
// Languages without a translation get English.
func FallbackPhrase(lang string) string {
	if s, ok := fallbacks[strings.ToLower(lang)]; ok {
		return s
	}
	return fallbacks["en"]
}

// TechnicalError is the phrase shown when a session cannot start.
func TechnicalError(lang string) string {
	if s, ok := technicalErrors[strings.ToLower(lang)]; ok {
		return s
	}
	return technicalErrors["en"]
}

// Gateway wraps a Generator with bounded retries and a visible fallback.
type Gateway struct {
	gen      Generator
	pub      display.Publisher
	attempts int
	backoff  time.Duration
	log      *logging.Logger
	sleep    func(context.Context, time.Duration) error
}

// NewGateway creates a Gateway. A nil generator always falls back.
func NewGateway(gen Generator, pub display.Publisher, attempts int, backoff time.Duration, log *logging.Logger) *Gateway {
	return &Gateway{
		gen:      gen,
		pub:      pub,
		attempts: max(attempts, 1),
		backoff:  backoff,
		log:      log.Sub("reply"),
		sleep:    sleepCtx,
	}
}

// Say generates a reply for instructions and publishes it to the
// participant's screen. When every attempt fails it publishes the fallback
// phrase for language instead and reports false. Say never returns an error.
func (g *Gateway) Say(ctx context.Context, participant, language, instructions string) (string, bool) {
	if g.gen != nil {
		for attempt := 1; attempt <= g.attempts; attempt++ {
			text, err := g.gen.Generate(ctx, instructions)
			if err == nil && strings.TrimSpace(text) == "" {
				err = ErrEmptyReply
			}
			if err == nil {
				g.publish(ctx, participant, text)
				return text, true
			}
			g.log.Warn().Err(err).
				Str("participant", participant).
				Int("attempt", attempt).
				Int("of", g.attempts).
				Msg("reply generation failed")
			if attempt < g.attempts {
				if err := g.sleep(ctx, g.backoff*time.Duration(attempt)); err != nil {
					break
				}
			}
		}
	}

	text := FallbackPhrase(language)
	g.log.Error().Str("participant", participant).Msg("reply failed, sending fallback")
	g.publish(ctx, participant, text)
	return text, false
}

// Show publishes fixed text without calling the generator.
func (g *Gateway) Show(ctx context.Context, participant, text string) {
	g.publish(ctx, participant, text)
}

func (g *Gateway) publish(ctx context.Context, participant, text string) {
	if g.pub == nil {
		return
	}
	err := g.pub.Publish(ctx, participant, display.TopicMessage, display.AgentResponse{AgentResponse: text})
	if err != nil {
		g.log.Debug().Err(err).Str("participant", participant).Msg("reply not displayed")
	}
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
