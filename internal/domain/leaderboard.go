package domain

import "time"

// Mode represents a game variant. It partitions leaderboard queries.
type Mode string

const (
	ModeWalls       Mode = "walls"
	ModePassThrough Mode = "pass-through"
)

// ParseMode validates a mode string. The empty string is not a valid
// mode; callers that treat "" as "all modes" check for it themselves.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWalls, ModePassThrough:
		return Mode(s), nil
	}
	return "", ErrInvalidMode
}

// Valid reports whether m is one of the two known game modes
func (m Mode) Valid() bool {
	return m == ModeWalls || m == ModePassThrough
}

// LeaderboardEntry is an immutable record of one scored play. The
// username is captured at submission time and deliberately not kept in
// sync with later renames. The owning user id is stored but never
// serialized.
type LeaderboardEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// SubmitScoreRequest represents a score submission
type SubmitScoreRequest struct {
	Score int64  `json:"score"`
	Mode  string `json:"mode"`
}

// ScoreEvent is the wire format for score submissions arriving over
// Kafka instead of HTTP.
type ScoreEvent struct {
	UserID string `json:"user_id"`
	Score  int64  `json:"score"`
	Mode   string `json:"mode"`
}
