package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/snake-arena/internal/auth"
	"github.com/snake-arena/internal/domain"
)

const minPasswordLength = 6

// Signup registers a new account and returns the user with a fresh
// bearer token. The email is checked before the username so the error
// message for a doubly conflicting request is deterministic.
func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResponse, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidRequest)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrInvalidRequest)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidRequest, minPasswordLength)
	}

	if _, err := s.store.UserByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if _, err := s.store.UserByUsername(ctx, req.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		HighScore:    0,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// The store repeats the uniqueness check under its own
		// constraint, which also covers two signups racing past the
		// lookups above.
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return &domain.AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with a fresh bearer
// token. An unknown email and a wrong password produce the same error
// so responses don't reveal which accounts exist.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &domain.AuthResponse{User: user, Token: token}, nil
}

// User resolves a user id to the current user record. The auth
// middleware uses this to turn a decoded token into an identity.
func (s *Service) User(ctx context.Context, id string) (*domain.User, error) {
	return s.store.UserByID(ctx, id)
}
