package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snake-arena/internal/config"
	"github.com/snake-arena/internal/domain"
	"github.com/snake-arena/internal/store"
)

func newTestReaper(t *testing.T, maxIdle time.Duration) (*SessionReaper, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.SessionsConfig{
		ReapEnabled:  true,
		ReapInterval: 10 * time.Millisecond,
		MaxIdle:      maxIdle,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionReaper(st, cfg, logger), st
}

func TestSessionReaper_RunOnce(t *testing.T) {
	reaper, st := newTestReaper(t, 10*time.Minute)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, st.CreateSession(ctx, &domain.GameSession{
		ID: "stale", UserID: "u1", Mode: domain.ModeWalls, Active: true,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, st.CreateSession(ctx, &domain.GameSession{
		ID: "fresh", UserID: "u1", Mode: domain.ModeWalls, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}))

	reaper.RunOnce(ctx)

	stale, err := st.Session(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, stale.Active)

	fresh, err := st.Session(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, fresh.Active)
}

func TestSessionReaper_StartStop(t *testing.T) {
	reaper, st := newTestReaper(t, time.Millisecond)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, st.CreateSession(ctx, &domain.GameSession{
		ID: "idle", UserID: "u1", Mode: domain.ModeWalls, Active: true,
		CreatedAt: past, UpdatedAt: past,
	}))

	require.NoError(t, reaper.Start(ctx))
	assert.True(t, reaper.IsRunning())

	// The loop should sweep the idle session within a few ticks
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		sess, err := st.Session(ctx, "idle")
		require.NoError(t, err)
		if !sess.Active {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	sess, err := st.Session(ctx, "idle")
	require.NoError(t, err)
	assert.False(t, sess.Active)

	require.NoError(t, reaper.Stop())
	assert.False(t, reaper.IsRunning())
}
