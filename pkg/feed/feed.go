// Package feed exposes a running session to presentation clients: a JSON
// snapshot endpoint for polling and a websocket stream of phase transitions.
package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fretcoach/fretcoach/pkg/core/session"
)

// Source is the session surface the feed reads. *session.Controller
// implements it.
type Source interface {
	Snapshot() session.Snapshot
	Events() <-chan session.Snapshot
}

const (
	writeTimeout = 5 * time.Second

	// subBuffer bounds each subscriber's queue; a stalled client drops
	// intermediate snapshots instead of blocking the broadcast.
	subBuffer = 16
)

// Hub fans the session's single event stream out to any number of
// subscribers.
type Hub struct {
	source Source
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[chan session.Snapshot]struct{}
	closed bool
}

// NewHub creates a hub over the given session.
func NewHub(source Source, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		source: source,
		logger: logger,
		subs:   make(map[chan session.Snapshot]struct{}),
	}
}

// Run consumes the session's events until the stream closes, broadcasting
// each snapshot. Call in its own goroutine; it returns when the session's
// engine exits.
func (h *Hub) Run() {
	for snap := range h.source.Events() {
		h.mu.Lock()
		for sub := range h.subs {
			select {
			case sub <- snap:
			default:
			}
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	h.closed = true
	for sub := range h.subs {
		close(sub)
	}
	h.subs = make(map[chan session.Snapshot]struct{})
	h.mu.Unlock()
}

// Subscribe registers a snapshot stream. The cancel func must be called when
// the subscriber is done. The channel closes when the session ends.
func (h *Hub) Subscribe() (<-chan session.Snapshot, func()) {
	ch := make(chan session.Snapshot, subBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// StateHandler serves the current snapshot as JSON.
func (h *Hub) StateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.source.Snapshot()); err != nil {
			h.logger.Warn("encode snapshot", "error", err)
		}
	})
}

// WSHandler upgrades to a websocket and streams snapshots: the current state
// first, then every phase transition until the session ends or the client
// disconnects.
func (h *Hub) WSHandler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		sub, cancel := h.Subscribe()
		defer cancel()

		// Drain client frames so close messages are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		if err := h.writeSnapshot(conn, h.source.Snapshot()); err != nil {
			return
		}
		for snap := range sub {
			if err := h.writeSnapshot(conn, snap); err != nil {
				return
			}
		}

		deadline := time.Now().Add(writeTimeout)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"), deadline)
	})
}

func (h *Hub) writeSnapshot(conn *websocket.Conn, snap session.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(snap); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}
