package handler

import (
	"encoding/json"
	"net/http"

	"github.com/snake-arena/internal/domain"
)

// Signup handles account registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Login handles credential verification
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Logout acknowledges a logout. Tokens are stateless, so the client
// dropping its copy is the whole operation; the endpoint exists so the
// front end gets a definite answer.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.writeMessage(w, "Logout successful")
}

// Me returns the authenticated user's account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, currentUser(r))
}
