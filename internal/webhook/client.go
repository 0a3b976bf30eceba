// Package webhook delivers session summaries to the CRM ingest endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/soyeahso/boothbot/internal/version"
)

// ErrNonRetryable marks a response that retrying will not fix.
var ErrNonRetryable = errors.New("webhook: non-retryable response")

// Config configures a Client.
type Config struct {
	URL           string
	APIKey        string
	CompanyName   string
	BoothLocation string
	Timeout       time.Duration
	Retries       int
	Backoff       time.Duration
	WarmThreshold int
	ScoreScale    int
}

// Client posts session payloads with bounded retries.
type Client struct {
	cfg   Config
	http  *http.Client
	log   *logging.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New creates a webhook client.
func New(cfg Config, log *logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.ScoreScale == 0 {
		cfg.ScoreScale = 20
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		log:   log.Sub("webhook"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Send delivers the session. It returns true on success and when there
// is nothing to send; false after all retries failed or the endpoint
// rejected the request.
func (c *Client) Send(ctx context.Context, sessionID string, tr domain.Transcript, s domain.SessionState) bool {
	if tr.IsEmpty() {
		c.log.Info().Str("session", sessionID).Msg("no transcript to send (empty session)")
		return true
	}
	if c.cfg.URL == "" {
		c.log.Warn().Str("session", sessionID).Msg("webhook url not configured, skipping")
		return false
	}

	payload := Payload{
		APIKey:      c.cfg.APIKey,
		CompanyName: CompanyName(c.cfg.CompanyName, c.cfg.BoothLocation),
		Sessions:    []Session{buildSession(sessionID, tr, s, c.now(), c.cfg.WarmThreshold, c.cfg.ScoreScale)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error().Err(err).Str("session", sessionID).Msg("encoding webhook payload")
		return false
	}

	status := payload.Sessions[0].ContactInfo.Status
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		err := c.post(ctx, body)
		if err == nil {
			c.log.Info().Str("session", sessionID).Str("status", status).Msg("webhook sent")
			return true
		}
		if errors.Is(err, ErrNonRetryable) {
			c.log.Warn().Err(err).Str("session", sessionID).Msg("webhook rejected")
			return false
		}
		if ctx.Err() != nil {
			break
		}
		c.log.Warn().Err(err).
			Str("session", sessionID).
			Int("attempt", attempt).
			Int("of", c.cfg.Retries).
			Msg("webhook attempt failed")
		if attempt < c.cfg.Retries && c.cfg.Backoff > 0 {
			if err := c.sleep(ctx, c.cfg.Backoff*time.Duration(attempt)); err != nil {
				break
			}
		}
	}

	c.log.Error().Str("session", sessionID).Int("attempts", c.cfg.Retries).Msg("webhook failed")
	return false
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNonRetryable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return fmt.Errorf("%w: status %d: %s", ErrNonRetryable, resp.StatusCode, snippet)
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
