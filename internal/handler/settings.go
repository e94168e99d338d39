package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clarity-ai/clarity/internal/domain"
)

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.serverError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(settings.Language) == "" && strings.TrimSpace(settings.Persona) == "" {
		writeError(w, http.StatusBadRequest, "language or persona is required")
		return
	}

	if err := h.settings.Update(r.Context(), r.PathValue("userID"), settings); err != nil {
		h.serverError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Languages())
}
