package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/snake-arena/internal/domain"
)

// MemoryStore is an in-process Store for lightweight runs and tests.
// It is handed to the service like any other store; nothing in the
// package is global, so tests isolate state by constructing their own.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	entries  []domain.LeaderboardEntry
	sessions map[string]*domain.GameSession
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*domain.User),
		sessions: make(map[string]*domain.GameSession),
	}
}

// CreateUser inserts a user, enforcing email and username uniqueness
func (s *MemoryStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// UserByID returns a user by id
func (s *MemoryStore) UserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UserByEmail returns a user by email
func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// UserByUsername returns a user by username
func (s *MemoryStore) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// SubmitScore appends the entry and raises the user's high score when
// the new score is strictly greater. Both happen under one lock, so
// the memory store has the same atomicity as the Postgres transaction.
func (s *MemoryStore) SubmitScore(ctx context.Context, entry *domain.LeaderboardEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[entry.UserID]
	if !ok {
		return false, domain.ErrUserNotFound
	}

	s.entries = append(s.entries, *entry)

	if entry.Score > u.HighScore {
		u.HighScore = entry.Score
		return true, nil
	}
	return false, nil
}

// Leaderboard returns entries sorted by score descending; equal scores
// keep insertion order.
func (s *MemoryStore) Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]domain.LeaderboardEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if mode == "" || e.Mode == mode {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// CreateSession inserts a session
func (s *MemoryStore) CreateSession(ctx context.Context, session *domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

// Session returns a session by id
func (s *MemoryStore) Session(ctx context.Context, id string) (*domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// UpdateSessionScore overwrites a session's score
func (s *MemoryStore) UpdateSessionScore(ctx context.Context, id string, score int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.Score = score
	sess.UpdatedAt = time.Now()
	return nil
}

// EndSession flips a session to inactive. Ending an already ended
// session is a no-op, keeping the transition one-way.
func (s *MemoryStore) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.Active = false
	sess.UpdatedAt = time.Now()
	return nil
}

// ActiveSessions returns all sessions with the active flag set
func (s *MemoryStore) ActiveSessions(ctx context.Context) ([]domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]domain.GameSession, 0)
	for _, sess := range s.sessions {
		if sess.Active {
			active = append(active, *sess)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// EndIdleSessions ends active sessions not updated since cutoff
func (s *MemoryStore) EndIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ended int64
	for _, sess := range s.sessions {
		if sess.Active && sess.UpdatedAt.Before(cutoff) {
			sess.Active = false
			ended++
		}
	}
	return ended, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() {}
