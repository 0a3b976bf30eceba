// Package gateway is the HTTP and WebSocket front door of the kiosk. The
// voice runtime posts participant events and tool calls to it, and the
// booth screen subscribes to display topics over a socket.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/boothbot/internal/agent"
	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/hooks"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/soyeahso/boothbot/internal/version"
)

const maxBodyBytes = 1 << 20

// Sessions is the conversation side the gateway forwards to.
type Sessions interface {
	HandleEvent(ctx context.Context, ev domain.Event) error
	CallTool(ctx context.Context, participant, name, input string) (string, error)
	ToolDefinitions() []agent.ToolDef
	Count() int
}

// Screens accepts booth screen sockets.
type Screens interface {
	Serve(participant string, conn *websocket.Conn)
	CloseAll()
}

// Server is the boothbot gateway HTTP + WebSocket server.
type Server struct {
	cfg      config.GatewayConfig
	log      *logging.Logger
	sessions Sessions
	screens  Screens
	hooks    *hooks.Manager
	metrics  http.Handler
	token    string
	version  string

	startedAt   time.Time
	httpServer  *http.Server
	upgrader    websocket.Upgrader
	authLimiter *authRateLimiter
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// WithScreens enables the display socket on /ws.
func WithScreens(sc Screens) ServerOption {
	return func(s *Server) {
		s.screens = sc
	}
}

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// New creates a new gateway server.
func New(cfg config.GatewayConfig, sessions Sessions, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:         cfg,
		log:         log.Sub("gateway"),
		sessions:    sessions,
		token:       ResolveToken(cfg.Token),
		version:     version.Version,
		authLimiter: newAuthRateLimiter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin headers.
// If no origins are configured, only same-origin (no Origin header) or non-browser
// clients are allowed. If origins are configured, the Origin must match one of them.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Same-origin or non-browser clients
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan", "auto":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.AllowedOrigins)
}

// Start begins listening for HTTP and WebSocket connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.token == "" && s.cfg.Bind != "loopback" {
		s.log.Warn().Msg("no gateway token configured, runtime endpoints are open on the network")
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Bool("auth", s.token != "").
		Bool("screens", s.screens != nil).
		Msg("gateway server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventGatewayStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventGatewayStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if s.screens != nil {
			s.screens.CloseAll()
		}
		s.authLimiter.close()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

// handleWebSocket upgrades a booth screen connection and hands it to the
// display hub until it closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.screens == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "display channel not configured")
		return
	}
	participant := r.URL.Query().Get("participant")
	if participant == "" {
		writeError(w, http.StatusBadRequest, "invalid_params", "participant is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(64 * 1024)

	s.log.Debug().Str("remote", r.RemoteAddr).Str("participant", participant).Msg("screen socket opened")
	s.screens.Serve(participant, conn)
}
