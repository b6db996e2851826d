package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/snake-arena/internal/domain"
)

// SubmitScore records a scored play. The entry is always inserted, and
// the user's cached high score rises only when the new score beats it;
// the store does both in one atomic step. The caller's user id is
// re-read so the denormalized username reflects the account at
// submission time.
func (s *Service) SubmitScore(ctx context.Context, userID string, score int64, mode domain.Mode) (*domain.LeaderboardEntry, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &domain.LeaderboardEntry{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Score:     score,
		Mode:      mode,
		Timestamp: time.Now().UTC(),
	}

	raised, err := s.store.SubmitScore(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("submitting score: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, mode)
	}
	if s.hub != nil {
		s.hub.BroadcastScore(*entry)
	}

	s.logger.Info("score submitted",
		"user_id", user.ID,
		"score", score,
		"mode", mode,
		"high_score_raised", raised,
	)
	return entry, nil
}

// Leaderboard returns the top entries, optionally filtered by mode.
// The limit is clamped to the configured bounds; zero means the
// default. Reads go through the cache when one is attached.
func (s *Service) Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]domain.LeaderboardEntry, error) {
	if mode != "" && !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}

	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, mode); ok {
			if len(entries) > limit {
				entries = entries[:limit]
			}
			return entries, nil
		}

		// Miss: fetch the widest slice once so every smaller limit is
		// served from the same cached value until it expires.
		entries, err := s.store.Leaderboard(ctx, mode, s.cfg.MaxLimit)
		if err != nil {
			return nil, fmt.Errorf("querying leaderboard: %w", err)
		}
		s.cache.Set(ctx, mode, entries)
		if len(entries) > limit {
			entries = entries[:limit]
		}
		return entries, nil
	}

	entries, err := s.store.Leaderboard(ctx, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	return entries, nil
}
