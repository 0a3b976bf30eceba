package display

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/boothbot/internal/logging"
)

// ErrNoScreen is returned when a participant has no connected screen.
var ErrNoScreen = errors.New("display: no screen connected")

const writeTimeout = 5 * time.Second

// Frame is the envelope written to screen sockets.
type Frame struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// screen is one connected browser socket.
type screen struct {
	id          string
	participant string
	conn        *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func (s *screen) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNoScreen
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *screen) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.conn.Close()
}

// Hub tracks screen sockets per participant and implements Publisher.
type Hub struct {
	mu      sync.RWMutex
	screens map[string]map[string]*screen // participant → screen id → screen
	log     *logging.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		screens: make(map[string]map[string]*screen),
		log:     log.Sub("display"),
	}
}

// Serve registers conn for participant and blocks until the socket closes.
func (h *Hub) Serve(participant string, conn *websocket.Conn) {
	sc := &screen{id: uuid.New().String(), participant: participant, conn: conn}
	h.add(sc)
	defer func() {
		h.remove(sc)
		sc.close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug().Err(err).Str("participant", participant).Msg("screen read error")
			}
			return
		}
	}
}

// Publish implements Publisher.
func (h *Hub) Publish(_ context.Context, participant, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", topic, err)
	}
	data, err := json.Marshal(Frame{Topic: topic, Payload: raw})
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*screen, 0, len(h.screens[participant]))
	for _, sc := range h.screens[participant] {
		targets = append(targets, sc)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return ErrNoScreen
	}
	var errs []error
	for _, sc := range targets {
		if err := sc.write(data); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(targets) {
		return errors.Join(errs...)
	}
	return nil
}

// Count returns the number of connected screens for participant.
func (h *Hub) Count(participant string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.screens[participant])
}

// CloseAll disconnects every screen.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p, set := range h.screens {
		for _, sc := range set {
			sc.close()
		}
		delete(h.screens, p)
	}
}

func (h *Hub) add(sc *screen) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.screens[sc.participant]
	if !ok {
		set = make(map[string]*screen)
		h.screens[sc.participant] = set
	}
	set[sc.id] = sc
	h.log.Info().Str("participant", sc.participant).Str("screen", sc.id).Msg("screen connected")
}

func (h *Hub) remove(sc *screen) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.screens[sc.participant]; ok {
		delete(set, sc.id)
		if len(set) == 0 {
			delete(h.screens, sc.participant)
		}
	}
	h.log.Info().Str("participant", sc.participant).Str("screen", sc.id).Msg("screen disconnected")
}
