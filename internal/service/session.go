package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/snake-arena/internal/domain"
	"github.com/snake-arena/internal/websocket"
)

// CreateSession starts tracking a play attempt for the user. The
// session begins at score 0 and active.
func (s *Service) CreateSession(ctx context.Context, userID string, mode domain.Mode) (*domain.GameSession, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.GameSession{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Score:     0,
		Mode:      mode,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastSession(websocket.MessageTypeSessionStarted, *session)
	}

	s.logger.Info("session started", "session_id", session.ID, "user_id", user.ID, "mode", mode)
	return session, nil
}

// UpdateSessionScore overwrites the session's current score
func (s *Service) UpdateSessionScore(ctx context.Context, sessionID string, score int64) error {
	if err := s.store.UpdateSessionScore(ctx, sessionID, score); err != nil {
		return err
	}

	if s.hub != nil {
		if session, err := s.store.Session(ctx, sessionID); err == nil {
			s.hub.BroadcastSession(websocket.MessageTypeSessionUpdated, *session)
		}
	}
	return nil
}

// EndSession soft-closes a session; the row stays for history
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	if err := s.store.EndSession(ctx, sessionID); err != nil {
		return err
	}

	if s.hub != nil {
		if session, err := s.store.Session(ctx, sessionID); err == nil {
			s.hub.BroadcastSession(websocket.MessageTypeSessionEnded, *session)
		}
	}

	s.logger.Info("session ended", "session_id", sessionID)
	return nil
}

// Session returns a session by id whether it is still active or not
func (s *Service) Session(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	return s.store.Session(ctx, sessionID)
}

// ActiveSessions returns all in-progress sessions for the spectate view
func (s *Service) ActiveSessions(ctx context.Context) ([]domain.GameSession, error) {
	sessions, err := s.store.ActiveSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}
	return sessions, nil
}
