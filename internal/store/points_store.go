package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PointsStore is the points ledger. The game engines never touch player
// records directly; everything goes through UpdatePoints and RecordGameStats.
type PointsStore struct {
	db *sqlx.DB
}

func NewPointsStore(db *sqlx.DB) *PointsStore {
	return &PointsStore{db: db}
}

// UpdatePoints applies a delta to the player's balance, creating the row on
// first touch, and returns the new balance.
func (s *PointsStore) UpdatePoints(ctx context.Context, playerID uuid.UUID, delta float64) (float64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO points (player_id, balance, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			balance = balance + excluded.balance,
			updated_at = excluded.updated_at`,
		playerID.String(), delta, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	var balance float64
	if err := tx.GetContext(ctx, &balance, "SELECT balance FROM points WHERE player_id = ?", playerID.String()); err != nil {
		return 0, err
	}

	return balance, tx.Commit()
}

// GetBalance returns 0 for players who have never earned or lost points.
func (s *PointsStore) GetBalance(ctx context.Context, playerID uuid.UUID) (float64, error) {
	var balance float64
	err := s.db.GetContext(ctx, &balance, "SELECT balance FROM points WHERE player_id = ?", playerID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

type GameStats struct {
	ID               uuid.UUID `db:"id"`
	PlayerID         uuid.UUID `db:"player_id"`
	TurnsToWin       int       `db:"turns_to_win"`
	EndingMultiplier float64   `db:"ending_multiplier"`
	Difficulty       int       `db:"difficulty"`
	EntryPrice       float64   `db:"entry_price"`
	Won              bool      `db:"won"`
	CreatedAt        time.Time `db:"created_at"`
}

func (s *PointsStore) RecordGameStats(ctx context.Context, stats GameStats) error {
	if stats.ID == uuid.Nil {
		stats.ID = uuid.New()
	}
	if stats.CreatedAt.IsZero() {
		stats.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO game_stats (id, player_id, turns_to_win, ending_multiplier, difficulty, entry_price, won, created_at)
		VALUES (:id, :player_id, :turns_to_win, :ending_multiplier, :difficulty, :entry_price, :won, :created_at)`, stats)
	return err
}
