// Package presence mirrors active kiosk sessions into Redis so booth staff
// tooling can see who is talking to the kiosk. It is optional: without a
// Redis URL every method is a no-op.
package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soyeahso/boothbot/internal/logging"
)

const activeKey = "active_sessions"

// Entry describes one active session.
type Entry struct {
	SessionID      string
	Participant    string
	Language       string
	CampaignSource string
	StartedAt      time.Time
}

// Registry records active sessions in Redis.
type Registry struct {
	redis *redis.Client
	ttl   time.Duration
	log   *logging.Logger
}

// Open connects to Redis at addr, given as host:port or a redis:// URL.
// When addr is empty or unusable, or the server does not answer a ping, the
// returned Registry is disabled.
func Open(ctx context.Context, addr, password string, ttl time.Duration, log *logging.Logger) *Registry {
	r := &Registry{ttl: ttl, log: log.Sub("presence")}
	if addr == "" {
		return r
	}

	opts := &redis.Options{Addr: addr, Password: password, DB: 0}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			r.log.Warn().Err(err).Msg("invalid redis url, presence disabled")
			return r
		}
		if password != "" {
			parsed.Password = password
		}
		opts = parsed
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		r.log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable, presence disabled")
		_ = client.Close()
		return r
	}

	r.log.Info().Str("addr", opts.Addr).Msg("presence registry connected")
	r.redis = client
	return r
}

// Enabled reports whether Redis is connected.
func (r *Registry) Enabled() bool {
	return r != nil && r.redis != nil
}

func sessionKey(id string) string { return "session:" + id }

// Register records e as active.
func (r *Registry) Register(ctx context.Context, e Entry) error {
	if !r.Enabled() {
		return nil
	}
	key := sessionKey(e.SessionID)
	pipe := r.redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"participant":     e.Participant,
		"language":        e.Language,
		"campaign_source": e.CampaignSource,
		"started_at":      e.StartedAt.UTC().Format(time.RFC3339),
		"status":          "active",
	})
	pipe.SAdd(ctx, activeKey, e.SessionID)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("registering session %s: %w", e.SessionID, err)
	}
	return nil
}

// SetLanguage updates the language field of an active session.
func (r *Registry) SetLanguage(ctx context.Context, sessionID, lang string) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.redis.HSet(ctx, sessionKey(sessionID), "language", lang).Err(); err != nil {
		return fmt.Errorf("updating session %s: %w", sessionID, err)
	}
	return nil
}

// Remove deletes a session from the registry.
func (r *Registry) Remove(ctx context.Context, sessionID string) error {
	if !r.Enabled() {
		return nil
	}
	pipe := r.redis.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, activeKey, sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("removing session %s: %w", sessionID, err)
	}
	return nil
}

// Active lists the registered session ids.
func (r *Registry) Active(ctx context.Context) ([]string, error) {
	if !r.Enabled() {
		return nil, nil
	}
	ids, err := r.redis.SMembers(ctx, activeKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return ids, nil
}

// Close releases the Redis connection.
func (r *Registry) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.redis.Close()
}
