package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/snake-arena/internal/domain"
)

// GetLeaderboard returns top entries, optionally filtered by mode
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	var mode domain.Mode
	if modeStr := r.URL.Query().Get("mode"); modeStr != "" {
		parsed, err := domain.ParseMode(modeStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		mode = parsed
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 100 {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		limit = l
	}

	entries, err := h.service.Leaderboard(r.Context(), mode, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, entries)
}

// SubmitScore records a scored play for the authenticated user
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	user := currentUser(r)
	if _, err := h.service.SubmitScore(r.Context(), user.ID, req.Score, mode); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeMessage(w, "Score submitted successfully")
}
