package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/soyeahso/boothbot/internal/agent"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/kiosk"
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	mux.Handle("GET /v1/status", s.requireToken(http.HandlerFunc(s.handleStatus)))
	mux.Handle("GET /v1/tools", s.requireToken(http.HandlerFunc(s.handleTools)))
	mux.Handle("POST /v1/sessions/{participant}/events", s.requireToken(http.HandlerFunc(s.handleEvent)))
	mux.Handle("POST /v1/sessions/{participant}/tools/{name}", s.requireToken(http.HandlerFunc(s.handleToolCall)))

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// requireToken rejects runtime requests without the configured token and
// rate-limits repeated failures per address.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.allow(r.RemoteAddr) {
			s.log.Warn().Str("remote", r.RemoteAddr).Msg("rate limited, too many failed auth attempts")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		res := Authorize(s.token, r)
		if !res.OK {
			s.authLimiter.recordFailure(r.RemoteAddr)
			s.log.Warn().Str("remote", r.RemoteAddr).Str("reason", res.Reason).Msg("unauthorized runtime request")
			writeError(w, http.StatusUnauthorized, "unauthorized", res.Reason)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ToolsResponse lists the tool surface in both the generic form and as
// Gemini function declarations.
type ToolsResponse struct {
	Tools                []agent.ToolDef `json:"tools"`
	FunctionDeclarations any             `json:"functionDeclarations"`
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	defs := s.sessions.ToolDefinitions()
	writeJSON(w, http.StatusOK, ToolsResponse{
		Tools:                defs,
		FunctionDeclarations: agent.FunctionDeclarations(defs),
	})
}

type eventBody struct {
	Type       domain.EventType  `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Text       string            `json:"text,omitempty"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var body eventBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", "invalid event body: "+err.Error())
		return
	}
	if body.Type == "" {
		writeError(w, http.StatusBadRequest, "invalid_params", "type is required")
		return
	}

	ev := domain.Event{
		Type:        body.Type,
		Participant: r.PathValue("participant"),
		Attributes:  body.Attributes,
		Text:        body.Text,
	}
	if err := s.sessions.HandleEvent(r.Context(), ev); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ToolCallResponse carries the instruction text returned by a tool.
type ToolCallResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_params", "reading tool input: "+err.Error())
		return
	}
	out, err := s.sessions.CallTool(r.Context(), r.PathValue("participant"), r.PathValue("name"), string(raw))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToolCallResponse{Output: out})
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kiosk.ErrUnknownSession):
		writeError(w, http.StatusNotFound, "unknown_session", err.Error())
	case errors.Is(err, agent.ErrUnknownTool):
		writeError(w, http.StatusNotFound, "unknown_tool", err.Error())
	case errors.Is(err, kiosk.ErrUnknownEvent),
		errors.Is(err, kiosk.ErrMissingParticipant),
		errors.Is(err, agent.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
	default:
		s.log.Error().Err(err).Msg("session request failed")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
