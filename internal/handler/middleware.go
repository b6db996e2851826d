package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/snake-arena/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// requireAuth resolves the Authorization header to a user and puts it
// on the request context. Missing, malformed, expired and forged
// tokens all fail the same way.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken)
			return
		}

		userID, err := h.tokens.Decode(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken)
			return
		}

		user, err := h.service.User(r.Context(), userID)
		if err != nil {
			// A valid token for a vanished account is still unauthorized
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user placed on the context by
// requireAuth.
func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}
