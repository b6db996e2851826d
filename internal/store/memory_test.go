package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snake-arena/internal/domain"
)

func newUser(id, username, email string) *domain.User {
	return &domain.User{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

func newEntry(userID, username string, score int64, mode domain.Mode) *domain.LeaderboardEntry {
	return &domain.LeaderboardEntry{
		ID:        fmt.Sprintf("entry-%s-%d", userID, score),
		UserID:    userID,
		Username:  username,
		Score:     score,
		Mode:      mode,
		Timestamp: time.Now().UTC(),
	}
}

func TestMemoryStore_CreateUser_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateUser(ctx, newUser("u1", "alice", "alice@example.com")))

	err := s.CreateUser(ctx, newUser("u2", "bob", "alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	err = s.CreateUser(ctx, newUser("u3", "alice", "other@example.com"))
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestMemoryStore_UserLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "alice", "alice@example.com")))

	byID, err := s.UserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := s.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byName, err := s.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	_, err = s.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = s.UserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryStore_SubmitScore_HighScoreMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "alice", "alice@example.com")))

	raised, err := s.SubmitScore(ctx, newEntry("u1", "alice", 100, domain.ModeWalls))
	require.NoError(t, err)
	assert.True(t, raised)

	// A lower score still records an entry but leaves the high score
	raised, err = s.SubmitScore(ctx, newEntry("u1", "alice", 50, domain.ModeWalls))
	require.NoError(t, err)
	assert.False(t, raised)

	// An equal score does not raise either
	raised, err = s.SubmitScore(ctx, newEntry("u1", "alice", 100, domain.ModePassThrough))
	require.NoError(t, err)
	assert.False(t, raised)

	u, err := s.UserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.HighScore)

	entries, err := s.Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMemoryStore_SubmitScore_UnknownUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.SubmitScore(ctx, newEntry("ghost", "ghost", 10, domain.ModeWalls))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryStore_Leaderboard_OrderFilterLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "alice", "alice@example.com")))
	require.NoError(t, s.CreateUser(ctx, newUser("u2", "bob", "bob@example.com")))

	submit := func(userID, username string, score int64, mode domain.Mode) {
		t.Helper()
		_, err := s.SubmitScore(ctx, newEntry(userID, username, score, mode))
		require.NoError(t, err)
	}

	submit("u1", "alice", 300, domain.ModeWalls)
	submit("u2", "bob", 500, domain.ModeWalls)
	submit("u1", "alice", 500, domain.ModePassThrough)
	submit("u2", "bob", 100, domain.ModePassThrough)

	// All modes, sorted by score descending; the tie keeps insertion order
	all, err := s.Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, int64(500), all[0].Score)
	assert.Equal(t, "bob", all[0].Username)
	assert.Equal(t, int64(500), all[1].Score)
	assert.Equal(t, "alice", all[1].Username)
	assert.Equal(t, int64(300), all[2].Score)
	assert.Equal(t, int64(100), all[3].Score)

	// Mode filter
	walls, err := s.Leaderboard(ctx, domain.ModeWalls, 0)
	require.NoError(t, err)
	require.Len(t, walls, 2)
	assert.Equal(t, "bob", walls[0].Username)
	assert.Equal(t, "alice", walls[1].Username)

	// Limit truncates after sorting
	top, err := s.Leaderboard(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(500), top[0].Score)
	assert.Equal(t, int64(500), top[1].Score)
}

func TestMemoryStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now().UTC()
	sess := &domain.GameSession{
		ID:        "sess-1",
		UserID:    "u1",
		Username:  "alice",
		Mode:      domain.ModeWalls,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateSession(ctx, sess))

	got, err := s.Session(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, int64(0), got.Score)

	require.NoError(t, s.UpdateSessionScore(ctx, "sess-1", 42))
	got, err = s.Session(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Score)

	active, err := s.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, s.EndSession(ctx, "sess-1"))
	got, err = s.Session(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, got.Active)

	// Ended sessions stay readable but drop off the active list
	active, err = s.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Ending again is a no-op, not an error
	require.NoError(t, s.EndSession(ctx, "sess-1"))
}

func TestMemoryStore_SessionNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Session(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, s.UpdateSessionScore(ctx, "missing", 1), domain.ErrSessionNotFound)
	assert.ErrorIs(t, s.EndSession(ctx, "missing"), domain.ErrSessionNotFound)
}

func TestMemoryStore_ActiveSessions_Ordering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now().UTC()
	for i, id := range []string{"s-b", "s-a", "s-c"} {
		require.NoError(t, s.CreateSession(ctx, &domain.GameSession{
			ID:        id,
			UserID:    "u1",
			Mode:      domain.ModeWalls,
			Active:    true,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			UpdatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	active, err := s.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "s-b", active[0].ID)
	assert.Equal(t, "s-a", active[1].ID)
	assert.Equal(t, "s-c", active[2].ID)
}

func TestMemoryStore_EndIdleSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now().UTC()
	stale := &domain.GameSession{
		ID: "stale", UserID: "u1", Mode: domain.ModeWalls, Active: true,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
	}
	fresh := &domain.GameSession{
		ID: "fresh", UserID: "u1", Mode: domain.ModeWalls, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateSession(ctx, stale))
	require.NoError(t, s.CreateSession(ctx, fresh))

	ended, err := s.EndIdleSessions(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ended)

	got, err := s.Session(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, got.Active)

	got, err = s.Session(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, got.Active)

	// Second sweep finds nothing left to end
	ended, err = s.EndIdleSessions(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), ended)
}
