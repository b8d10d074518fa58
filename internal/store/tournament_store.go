package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/catsiege/arena-server/internal/arena"
	"github.com/jmoiron/sqlx"
)

var ErrNoTournament = errors.New("no tournament record found")

// TournamentStore keeps one durable document per tournament run. The full
// TournamentState is serialized into the state column; is_running and
// current_round are mirrored into their own columns for querying.
type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

type tournamentRecord struct {
	ID           string    `db:"id"`
	IsRunning    bool      `db:"is_running"`
	CurrentRound int       `db:"current_round"`
	State        string    `db:"state"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (s *TournamentStore) Save(ctx context.Context, runID string, state *arena.TournamentState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal tournament state: %w", err)
	}

	rec := tournamentRecord{
		ID:           runID,
		IsRunning:    state.IsRunning,
		CurrentRound: state.CurrentRound,
		State:        string(doc),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO tournaments (id, is_running, current_round, state, created_at, updated_at)
		VALUES (:id, :is_running, :current_round, :state, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			is_running = excluded.is_running,
			current_round = excluded.current_round,
			state = excluded.state,
			updated_at = excluded.updated_at`, rec)
	return err
}

// Latest returns the most recently updated run, running or not. Used on
// process start to detect and resume an in-progress tournament.
func (s *TournamentStore) Latest(ctx context.Context) (string, *arena.TournamentState, error) {
	var rec tournamentRecord
	err := s.db.GetContext(ctx, &rec, "SELECT * FROM tournaments ORDER BY updated_at DESC, rowid DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoTournament
	}
	if err != nil {
		return "", nil, err
	}

	var state arena.TournamentState
	if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
		return "", nil, fmt.Errorf("unmarshal tournament state: %w", err)
	}
	return rec.ID, &state, nil
}

// LatestWinner returns the champion of the most recent completed run.
func (s *TournamentStore) LatestWinner(ctx context.Context) (*arena.Entrant, error) {
	var rec tournamentRecord
	err := s.db.GetContext(ctx, &rec, "SELECT * FROM tournaments WHERE is_running = 0 ORDER BY updated_at DESC, rowid DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoTournament
	}
	if err != nil {
		return nil, err
	}

	var state arena.TournamentState
	if err := json.Unmarshal([]byte(rec.State), &state); err != nil {
		return nil, fmt.Errorf("unmarshal tournament state: %w", err)
	}
	if len(state.Winners) == 0 {
		return nil, ErrNoTournament
	}
	return &state.Winners[0], nil
}
