package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/snake-arena/internal/auth"
	"github.com/snake-arena/internal/domain"
	"github.com/snake-arena/internal/service"
	"github.com/snake-arena/internal/websocket"
)

// Handler provides the HTTP endpoints of the game API
type Handler struct {
	service   *service.Service
	tokens    *auth.TokenManager
	hub       *websocket.Hub
	staticDir string
	logger    *slog.Logger
}

// NewHandler creates a new HTTP handler. staticDir may be empty, in
// which case no front end is served.
func NewHandler(svc *service.Service, tokens *auth.TokenManager, hub *websocket.Hub, staticDir string, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		tokens:    tokens,
		hub:       hub,
		staticDir: staticDir,
		logger:    logger,
	}
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.StripSlashes)
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint for the spectate view
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/", h.GetLeaderboard)
		r.With(h.requireAuth).Post("/", h.SubmitScore)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.GetActiveSessions)
		r.With(h.requireAuth).Post("/", h.CreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.With(h.requireAuth).Put("/", h.UpdateSession)
			r.With(h.requireAuth).Delete("/", h.EndSession)
		})
	})

	// Everything else falls through to the single-page front end
	r.NotFound(h.serveSPA)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeMessage writes a {"message": ...} response
func (h *Handler) writeMessage(w http.ResponseWriter, message string) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// writeError writes an {"error": ...} response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps a domain error to its HTTP status
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsConflictError(err),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidMode):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		h.writeError(w, http.StatusUnauthorized, err)
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// serveSPA serves the single-page front end: the requested file when
// it exists, index.html otherwise so client-side routes deep-link.
func (h *Handler) serveSPA(w http.ResponseWriter, r *http.Request) {
	if h.staticDir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		h.writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}

	path := filepath.Join(h.staticDir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}
