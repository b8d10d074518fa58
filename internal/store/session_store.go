package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/catsiege/arena-server/internal/guess"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrSessionNotFound = errors.New("guess session not found")

// SessionStore persists guessing-game sessions so a settled session stays
// settled across restarts and abandoned ones can be swept after their TTL.
type SessionStore struct {
	db *sqlx.DB
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session guess.Session) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO guess_sessions (id, player_id, secret, min_range, max_range, turns, player_turns, is_cpu_turn, multiplier, difficulty, is_active, settled, turn_deadline, expires_at, created_at)
		VALUES (:id, :player_id, :secret, :min_range, :max_range, :turns, :player_turns, :is_cpu_turn, :multiplier, :difficulty, :is_active, :settled, :turn_deadline, :expires_at, :created_at)`, session)
	return err
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*guess.Session, error) {
	var session guess.Session
	err := s.db.GetContext(ctx, &session, "SELECT * FROM guess_sessions WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return &session, err
}

func (s *SessionStore) Update(ctx context.Context, session guess.Session) error {
	_, err := s.db.NamedExecContext(ctx, `UPDATE guess_sessions SET
		min_range = :min_range,
		max_range = :max_range,
		turns = :turns,
		player_turns = :player_turns,
		is_cpu_turn = :is_cpu_turn,
		multiplier = :multiplier,
		is_active = :is_active,
		settled = :settled,
		turn_deadline = :turn_deadline
		WHERE id = :id`, session)
	return err
}

// ActiveForPlayer returns the player's in-flight session, or nil when the
// player has none. At most one session per player is active at a time.
func (s *SessionStore) ActiveForPlayer(ctx context.Context, playerID uuid.UUID) (*guess.Session, error) {
	var session guess.Session
	err := s.db.GetContext(ctx, &session, "SELECT * FROM guess_sessions WHERE player_id = ? AND is_active = 1 ORDER BY created_at DESC LIMIT 1", playerID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ExpireStale deactivates sessions past their TTL. Expired sessions settle
// nothing; they are simply closed.
func (s *SessionStore) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE guess_sessions SET is_active = 0 WHERE is_active = 1 AND expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
