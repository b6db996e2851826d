package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snake-arena/internal/auth"
	"github.com/snake-arena/internal/config"
	"github.com/snake-arena/internal/domain"
	"github.com/snake-arena/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	cfg := &config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100}
	return NewService(store.NewMemoryStore(), tokens, cfg, logger)
}

func signup(t *testing.T, svc *Service, username, email string) *domain.AuthResponse {
	t.Helper()
	resp, err := svc.Signup(context.Background(), domain.SignupRequest{
		Username: username,
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	svc := newTestService(t)

	resp := signup(t, svc, "alice", "alice@example.com")
	assert.NotEmpty(t, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, int64(0), resp.User.HighScore)
	assert.NotEqual(t, "hunter22", resp.User.PasswordHash)
}

func TestSignup_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.SignupRequest
	}{
		{"missing username", domain.SignupRequest{Email: "a@example.com", Password: "hunter22"}},
		{"bad email", domain.SignupRequest{Username: "a", Email: "not-an-email", Password: "hunter22"}},
		{"short password", domain.SignupRequest{Username: "a", Email: "a@example.com", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestSignup_Conflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "alice", "alice@example.com")

	_, err := svc.Signup(ctx, domain.SignupRequest{
		Username: "bob", Email: "alice@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = svc.Signup(ctx, domain.SignupRequest{
		Username: "alice", Email: "fresh@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	// Both taken at once: the email check wins
	_, err = svc.Signup(ctx, domain.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := signup(t, svc, "alice", "alice@example.com")

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_BadCredentialsUniform(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "alice", "alice@example.com")

	// Unknown email and wrong password come back indistinguishable
	_, err := svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSubmitScore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := signup(t, svc, "alice", "alice@example.com").User

	entry, err := svc.SubmitScore(ctx, user.ID, 250, domain.ModeWalls)
	require.NoError(t, err)
	assert.Equal(t, "alice", entry.Username)
	assert.Equal(t, int64(250), entry.Score)
	assert.NotEmpty(t, entry.ID)

	updated, err := svc.User(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.HighScore)

	// Lower follow-up leaves the high score alone
	_, err = svc.SubmitScore(ctx, user.ID, 100, domain.ModeWalls)
	require.NoError(t, err)
	updated, err = svc.User(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.HighScore)
}

func TestSubmitScore_InvalidMode(t *testing.T) {
	svc := newTestService(t)
	user := signup(t, svc, "alice", "alice@example.com").User

	_, err := svc.SubmitScore(context.Background(), user.ID, 10, domain.Mode("diagonal"))
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestLeaderboard_LimitClamping(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	cfg := &config.LeaderboardConfig{DefaultLimit: 2, MaxLimit: 3}
	svc := NewService(store.NewMemoryStore(), tokens, cfg, logger)
	ctx := context.Background()

	user := signup(t, svc, "alice", "alice@example.com").User
	for _, score := range []int64{10, 20, 30, 40, 50} {
		_, err := svc.SubmitScore(ctx, user.ID, score, domain.ModeWalls)
		require.NoError(t, err)
	}

	// Zero limit falls back to the default
	entries, err := svc.Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Oversized limit is clamped to the max
	entries, err = svc.Leaderboard(ctx, "", 50)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, int64(50), entries[0].Score)
}

func TestLeaderboard_InvalidMode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Leaderboard(context.Background(), domain.Mode("diagonal"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := signup(t, svc, "alice", "alice@example.com").User

	session, err := svc.CreateSession(ctx, user.ID, domain.ModePassThrough)
	require.NoError(t, err)
	assert.True(t, session.Active)
	assert.Equal(t, int64(0), session.Score)
	assert.Equal(t, "alice", session.Username)

	require.NoError(t, svc.UpdateSessionScore(ctx, session.ID, 75))

	got, err := svc.Session(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), got.Score)

	active, err := svc.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, svc.EndSession(ctx, session.ID))

	got, err = svc.Session(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err = svc.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCreateSession_InvalidMode(t *testing.T) {
	svc := newTestService(t)
	user := signup(t, svc, "alice", "alice@example.com").User

	_, err := svc.CreateSession(context.Background(), user.ID, domain.Mode(""))
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}
