package service

import (
	"log/slog"

	"github.com/snake-arena/internal/auth"
	"github.com/snake-arena/internal/config"
	"github.com/snake-arena/internal/redis"
	"github.com/snake-arena/internal/store"
	"github.com/snake-arena/internal/websocket"
)

// Service provides the business rules of the game backend: signup
// uniqueness, credential verification, the raise-high-score rule and
// session transitions. It holds no entity state of its own; every
// operation goes back to the store.
type Service struct {
	store  store.Store
	tokens *auth.TokenManager
	cfg    *config.LeaderboardConfig
	cache  *redis.Cache
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewService creates the domain service
func NewService(st store.Store, tokens *auth.TokenManager, cfg *config.LeaderboardConfig, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

// SetCache attaches an optional leaderboard read cache
func (s *Service) SetCache(cache *redis.Cache) {
	s.cache = cache
}

// SetHub attaches an optional WebSocket hub for event broadcasting
func (s *Service) SetHub(hub *websocket.Hub) {
	s.hub = hub
}
