// Package notify pushes curriculum lifecycle events to connected browser
// sessions over WebSocket, so open tabs refresh their lists without
// polling.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Event types published by the API handlers.
const (
	EventGenerated       = "curriculum.generated"
	EventDeleted         = "curriculum.deleted"
	EventProgressUpdated = "curriculum.progress_updated"
	EventCatalogReloaded = "catalog.reloaded"
)

// Event is one lifecycle notification.
type Event struct {
	Type         string    `json:"type"`
	UserID       string    `json:"user_id,omitempty"`
	CurriculumID string    `json:"curriculum_id,omitempty"`
	At           time.Time `json:"at"`
}

const (
	subscriberBuffer = 16
	writeTimeout     = 5 * time.Second
)

// Hub fans events out to all connected subscribers. Slow subscribers
// lose events rather than stall the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Publish delivers the event to every subscriber. Never blocks.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping event for slow subscriber", "type", event.Type)
		}
	}
}

// Subscribers returns the number of connected sessions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request to a WebSocket and streams events until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ch := h.subscribe()
	defer h.unsubscribe(ch)
	slog.Info("event subscriber connected", "subscribers", h.Subscribers())

	ctx := r.Context()

	// The client sends nothing; reading surfaces the close frame. The
	// request context does not cancel on peer close once the connection is
	// hijacked, so the read loop is the only disconnect signal.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case <-readClosed:
			return
		case event := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
