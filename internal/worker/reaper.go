package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/snake-arena/internal/config"
	"github.com/snake-arena/internal/store"
)

// SessionReaper periodically ends active sessions that have not been
// updated for longer than the configured idle cutoff. Clients that
// crash mid-game never send the end-session call, so without the
// reaper their sessions would sit in the spectate list forever.
type SessionReaper struct {
	store   store.Store
	config  *config.SessionsConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(st store.Store, cfg *config.SessionsConfig, logger *slog.Logger) *SessionReaper {
	return &SessionReaper{
		store:  st,
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background reap loop
func (w *SessionReaper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("session reaper started",
		"interval", w.config.ReapInterval,
		"max_idle", w.config.MaxIdle,
	)

	go w.run(ctx)
	return nil
}

// Stop stops the background reap loop
func (w *SessionReaper) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("session reaper stopped")
	return nil
}

// run is the main worker loop
func (w *SessionReaper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reap cycle (useful for manual triggers)
func (w *SessionReaper) RunOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.MaxIdle)
	ended, err := w.store.EndIdleSessions(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to end idle sessions", "error", err)
		return
	}
	if ended > 0 {
		w.logger.Info("ended idle sessions", "count", ended, "cutoff", cutoff)
	}
}

// IsRunning returns whether the worker is currently running
func (w *SessionReaper) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
