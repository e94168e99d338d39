package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clarity-ai/clarity/internal/domain"
)

type createChatRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	chat, err := h.history.NewChat(r.Context(), req.UserID)
	if err != nil {
		h.serverError(w, "create chat", err)
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	chats, err := h.history.ListChats(r.Context(), userID)
	if err != nil {
		h.serverError(w, "list chats", err)
		return
	}
	if chats == nil {
		chats = []domain.ChatSummary{}
	}
	writeJSON(w, http.StatusOK, chats)
}

func (h *Handler) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.history.LoadChat(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		h.serverError(w, "get chat", err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (h *Handler) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.history.DeleteChat(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		h.serverError(w, "delete chat", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// serverError logs, alerts ops, and answers 500 without leaking internals.
func (h *Handler) serverError(w http.ResponseWriter, errCtx string, err error) {
	h.alerts.Error(errCtx, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
