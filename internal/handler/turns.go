package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/media"
	"github.com/clarity-ai/clarity/internal/service"
)

type turnRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"` // inline media reference
	Audio  string `json:"audio,omitempty"` // inline media reference
	Speak  bool   `json:"speak,omitempty"`
}

type turnResponse struct {
	Chat               *domain.Chat `json:"chat"`
	UserMessageID      string       `json:"userMessageId"`
	AssistantMessageID string       `json:"assistantMessageId"`
	Transcript         string       `json:"transcript,omitempty"`
}

// handleTurn runs one full request turn: the user message and a pending
// placeholder are appended first so the UI can render immediately, then the
// routed model call fills the placeholder. On failure the placeholder is
// rolled back and the user message stays, so the input is not lost.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("id")

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	for _, ref := range []string{req.Image, req.Audio} {
		if ref == "" {
			continue
		}
		if _, _, err := media.Decode(ref); err != nil {
			writeError(w, http.StatusUnsupportedMediaType, "invalid media reference")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.RequestTimeout)
	defer cancel()

	chat, err := h.history.LoadChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		h.serverError(w, "load chat", err)
		return
	}
	history := priorTurns(chat)

	userMsgID, err := h.history.AppendUserTurn(ctx, chatID, req.Text, req.Image, req.Audio)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "a message needs text or an attachment")
			return
		}
		h.serverError(w, "append user turn", err)
		return
	}

	pendingID, err := h.history.AppendPendingAssistantTurn(ctx, chatID)
	if err != nil {
		h.serverError(w, "append pending turn", err)
		return
	}

	transcript, err := h.runTurn(ctx, req, chatID, pendingID, history)
	if err != nil {
		// The placeholder goes, the user message stays.
		if rmErr := h.history.RemoveTurn(ctx, chatID, pendingID); rmErr != nil {
			slog.Error("rollback failed", "chat_id", chatID, "error", rmErr)
		}
		h.alerts.Error("run turn", err)
		writeError(w, turnStatus(err), config.ErrorReplyText)
		return
	}

	updated, err := h.history.LoadChat(ctx, chatID)
	if err != nil {
		h.serverError(w, "reload chat", err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{
		Chat:               updated,
		UserMessageID:      userMsgID,
		AssistantMessageID: pendingID,
		Transcript:         transcript,
	})
}

// runTurn routes the input and drives either the freeform orchestrator or a
// capability, dispatching the result into the pending placeholder.
func (h *Handler) runTurn(ctx context.Context, req turnRequest, chatID, pendingID string, history []domain.Message) (string, error) {
	route := service.RouteInput(req.Text)

	if route.Kind == service.RouteCommand {
		result, usage, err := h.capabilities.Run(ctx, route.Capability, route.Argument)
		if err != nil {
			return "", err
		}
		return "", h.dispatcher.DispatchCapability(ctx, req.UserID, chatID, pendingID, result, usage)
	}

	settings, err := h.settings.Get(ctx, req.UserID)
	if err != nil {
		slog.Warn("settings lookup failed, using defaults", "user_id", req.UserID, "error", err)
		settings = domain.Settings{}
	}

	res, err := h.orchestrator.Respond(ctx, service.FreeformInput{
		Text:     route.Text,
		History:  history,
		Settings: settings,
		Image:    req.Image,
		Audio:    req.Audio,
	})
	if err != nil {
		return "", err
	}
	return res.Transcript, h.dispatcher.DispatchFreeform(ctx, chatID, pendingID, res, req.Speak)
}

// priorTurns is the history handed to the model: everything already in the
// chat except the synthetic greeting.
func priorTurns(chat *domain.Chat) []domain.Message {
	msgs := chat.Messages
	if len(msgs) > 0 && msgs[0].Role == domain.RoleAssistant && msgs[0].Text == config.GreetingText {
		msgs = msgs[1:]
	}
	return msgs
}

func turnStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrGeneration), errors.Is(err, domain.ErrEmptyResponse):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSchemaValidation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
