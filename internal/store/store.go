package store

import (
	"context"
	"time"

	"github.com/snake-arena/internal/domain"
)

// Store is the persistence boundary for users, leaderboard entries and
// game sessions. The store is the sole source of truth: the service
// layer keeps no state across requests, so implementations only need
// to be safe for concurrent use, not coordinated with anything
// in-process.
//
// Not-found conditions come back as the matching domain sentinel
// (domain.ErrUserNotFound, domain.ErrSessionNotFound); uniqueness
// violations on user creation as domain.ErrEmailTaken or
// domain.ErrUsernameTaken.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	UserByID(ctx context.Context, id string) (*domain.User, error)
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)

	// SubmitScore inserts the entry and raises the owning user's high
	// score when the submitted score is strictly greater, atomically.
	// It reports whether the high score was raised.
	SubmitScore(ctx context.Context, entry *domain.LeaderboardEntry) (bool, error)

	// Leaderboard returns entries ordered by score descending,
	// ties broken by insertion order. mode == "" means all modes.
	Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]domain.LeaderboardEntry, error)

	// Sessions
	CreateSession(ctx context.Context, session *domain.GameSession) error
	Session(ctx context.Context, id string) (*domain.GameSession, error)
	UpdateSessionScore(ctx context.Context, id string, score int64) error
	EndSession(ctx context.Context, id string) error
	ActiveSessions(ctx context.Context) ([]domain.GameSession, error)

	// EndIdleSessions ends every active session not updated since the
	// cutoff and returns how many were ended.
	EndIdleSessions(ctx context.Context, cutoff time.Time) (int64, error)

	Close()
}
