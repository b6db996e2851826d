package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/snake-arena/internal/domain"
)

// GetActiveSessions returns all in-progress sessions
func (h *Handler) GetActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ActiveSessions(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sessions)
}

// CreateSession starts a session for the authenticated user
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSessionRequest
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
	session, err := h.service.CreateSession(r.Context(), user.ID, mode)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// GetSession returns a session by id, active or not
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// UpdateSession overwrites a session's current score
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.UpdateSessionScore(r.Context(), chi.URLParam(r, "sessionID"), req.Score); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeMessage(w, "Session updated successfully")
}

// EndSession soft-closes a session
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeMessage(w, "Session ended successfully")
}
