package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clarity-ai/clarity/internal/alert"
	"github.com/clarity-ai/clarity/internal/middleware"
	"github.com/clarity-ai/clarity/internal/service"
)

// Handler holds all dependencies needed by the API endpoints.
type Handler struct {
	history      *service.HistoryService
	settings     *service.SettingsService
	orchestrator *service.Orchestrator
	capabilities *service.CapabilityService
	dispatcher   *service.Dispatcher
	alerts       *alert.Notifier
	hub          *Hub
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	History      *service.HistoryService
	Settings     *service.SettingsService
	Orchestrator *service.Orchestrator
	Capabilities *service.CapabilityService
	Dispatcher   *service.Dispatcher
	Alerts       *alert.Notifier
	Hub          *Hub
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		history:      deps.History,
		settings:     deps.Settings,
		orchestrator: deps.Orchestrator,
		capabilities: deps.Capabilities,
		dispatcher:   deps.Dispatcher,
		alerts:       deps.Alerts,
		hub:          deps.Hub,
	}
}

// Routes registers all endpoints and wraps them with the middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chats", h.handleCreateChat)
	mux.HandleFunc("GET /api/chats", h.handleListChats)
	mux.HandleFunc("GET /api/chats/{id}", h.handleGetChat)
	mux.HandleFunc("DELETE /api/chats/{id}", h.handleDeleteChat)
	mux.HandleFunc("POST /api/chats/{id}/turns", h.handleTurn)

	mux.HandleFunc("GET /api/settings/{userID}", h.handleGetSettings)
	mux.HandleFunc("PUT /api/settings/{userID}", h.handleUpdateSettings)
	mux.HandleFunc("GET /api/languages", h.handleLanguages)

	mux.HandleFunc("GET /api/events", h.handleEvents)

	var handler http.Handler = mux
	handler = middleware.Logging()(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recover()(handler)
	return handler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
