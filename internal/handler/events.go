package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/clarity-ai/clarity/internal/domain"
)

// Event is a single server-push notification. Chat change events carry the
// chat id so clients can refresh the affected conversation; view events
// carry the full capability payload for the opening panel.
type Event struct {
	Type   string             `json:"type"`
	ChatID string             `json:"chatId,omitempty"`
	UserID string             `json:"userId,omitempty"`
	View   *domain.ViewSignal `json:"view,omitempty"`
}

const (
	EventChatChanged = "chat_changed"
	EventViewSwitch  = "view_switch"
)

// Hub fans events out to connected SSE clients. Slow clients drop events
// rather than block the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// ChatChanged publishes a chat change notification.
func (h *Hub) ChatChanged(chatID string) {
	h.Publish(Event{Type: EventChatChanged, ChatID: chatID})
}

// ViewSwitch publishes a capability view-switch signal for one user.
func (h *Hub) ViewSwitch(userID string, sig domain.ViewSignal) {
	s := sig
	h.Publish(Event{Type: EventViewSwitch, UserID: userID, View: &s})
}

func (h *Hub) subscribe() (chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// handleEvents streams events over SSE. An optional user_id query parameter
// filters view-switch signals addressed to other users; chat change events
// always pass through.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	userID := r.URL.Query().Get("user_id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.hub.subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			if e.Type == EventViewSwitch && userID != "" && e.UserID != userID {
				continue
			}
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, payload)
			flusher.Flush()
		}
	}
}
