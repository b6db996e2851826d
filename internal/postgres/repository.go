package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/snake-arena/internal/config"
	"github.com/snake-arena/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			high_score BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username VARCHAR(64) NOT NULL,
			score BIGINT NOT NULL,
			mode VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_sessions (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username VARCHAR(64) NOT NULL,
			score BIGINT NOT NULL DEFAULT 0,
			mode VARCHAR(20) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_mode_score ON leaderboard_entries(mode, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_score ON leaderboard_entries(score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_active ON game_sessions(active)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// CreateUser inserts a user row. Unique-constraint violations map to
// the matching domain error so the service can report which field
// conflicted even when its own pre-checks raced another signup.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, high_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.HighScore,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return domain.ErrEmailTaken
			}
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.HighScore,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

const userColumns = `id, username, email, password_hash, high_score, created_at`

// UserByID retrieves a user by id
func (r *Repository) UserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// UserByEmail retrieves a user by email
func (r *Repository) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// UserByUsername retrieves a user by username
func (r *Repository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

// SubmitScore inserts the leaderboard entry and conditionally raises
// the user's high score in a single transaction. The conditional
// UPDATE is the whole comparison: no read-then-write, so concurrent
// submissions for the same user cannot lose the maximum.
func (r *Repository) SubmitScore(ctx context.Context, entry *domain.LeaderboardEntry) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO leaderboard_entries (id, user_id, username, score, mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insert,
		entry.ID,
		entry.UserID,
		entry.Username,
		entry.Score,
		string(entry.Mode),
		entry.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("inserting entry: %w", err)
	}

	raise := `UPDATE users SET high_score = $2 WHERE id = $1 AND high_score < $2`
	tag, err := tx.Exec(ctx, raise, entry.UserID, entry.Score)
	if err != nil {
		return false, fmt.Errorf("raising high score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing score submission: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Leaderboard retrieves entries ordered by score descending, ties
// broken by insertion time.
func (r *Repository) Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]domain.LeaderboardEntry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if mode != "" {
		query := `
			SELECT id, user_id, username, score, mode, created_at
			FROM leaderboard_entries
			WHERE mode = $1
			ORDER BY score DESC, created_at ASC
			LIMIT $2
		`
		rows, err = r.pool.Query(ctx, query, string(mode), limit)
	} else {
		query := `
			SELECT id, user_id, username, score, mode, created_at
			FROM leaderboard_entries
			ORDER BY score DESC, created_at ASC
			LIMIT $1
		`
		rows, err = r.pool.Query(ctx, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Username,
			&entry.Score,
			&entry.Mode,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CreateSession inserts a game session row
func (r *Repository) CreateSession(ctx context.Context, session *domain.GameSession) error {
	query := `
		INSERT INTO game_sessions (id, user_id, username, score, mode, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Username,
		session.Score,
		string(session.Mode),
		session.Active,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Session retrieves a session by id
func (r *Repository) Session(ctx context.Context, id string) (*domain.GameSession, error) {
	query := `
		SELECT id, user_id, username, score, mode, active, created_at, updated_at
		FROM game_sessions
		WHERE id = $1
	`
	var session domain.GameSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.Username,
		&session.Score,
		&session.Mode,
		&session.Active,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &session, nil
}

// UpdateSessionScore overwrites a session's current score
func (r *Repository) UpdateSessionScore(ctx context.Context, id string, score int64) error {
	query := `UPDATE game_sessions SET score = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, score, time.Now())
	if err != nil {
		return fmt.Errorf("updating session score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// EndSession flips a session's active flag to false
func (r *Repository) EndSession(ctx context.Context, id string) error {
	query := `UPDATE game_sessions SET active = FALSE, updated_at = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// ActiveSessions retrieves all sessions whose active flag is set
func (r *Repository) ActiveSessions(ctx context.Context) ([]domain.GameSession, error) {
	query := `
		SELECT id, user_id, username, score, mode, active, created_at, updated_at
		FROM game_sessions
		WHERE active = TRUE
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.GameSession
	for rows.Next() {
		var session domain.GameSession
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Username,
			&session.Score,
			&session.Mode,
			&session.Active,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// EndIdleSessions ends active sessions not updated since the cutoff
func (r *Repository) EndIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE game_sessions
		SET active = FALSE, updated_at = $2
		WHERE active = TRUE AND updated_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, cutoff, time.Now())
	if err != nil {
		return 0, fmt.Errorf("ending idle sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
