package domain

import "time"

// GameSession is a mutable record of one in-progress play. Score is
// overwritten, not accumulated. Active only ever transitions
// true -> false; ended rows persist as a soft delete.
type GameSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	Mode      Mode      `json:"mode"`
	Active    bool      `json:"isActive"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CreateSessionRequest represents a request to start a session
type CreateSessionRequest struct {
	Mode string `json:"mode"`
}

// UpdateSessionRequest represents a session score update
type UpdateSessionRequest struct {
	Score int64 `json:"score"`
}
