package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/catsiege/arena-server/internal/guess"
	"github.com/catsiege/arena-server/internal/store"
	"github.com/catsiege/arena-server/internal/utils"
	"github.com/google/uuid"
)

var ErrActiveSessionExists = errors.New("player already has an active session")
var ErrNotSessionOwner = errors.New("session belongs to another player")

// SessionStore is the durable boundary for guess sessions.
type SessionStore interface {
	Create(ctx context.Context, session guess.Session) error
	Get(ctx context.Context, id uuid.UUID) (*guess.Session, error)
	Update(ctx context.Context, session guess.Session) error
	ActiveForPlayer(ctx context.Context, playerID uuid.UUID) (*guess.Session, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// PointsLedger is the points boundary; the service never touches player
// records except through it.
type PointsLedger interface {
	UpdatePoints(ctx context.Context, playerID uuid.UUID, delta float64) (float64, error)
	GetBalance(ctx context.Context, playerID uuid.UUID) (float64, error)
	RecordGameStats(ctx context.Context, stats store.GameStats) error
}

// GuessService drives guessing-game sessions end to end: command application
// through the engine, persistence, and exactly-once settlement against the
// points ledger.
type GuessService struct {
	engine     *guess.Engine
	sessions   SessionStore
	points     PointsLedger
	entryPrice float64
	now        func() time.Time
}

func NewGuessService(engine *guess.Engine, sessions SessionStore, points PointsLedger, entryPrice float64) *GuessService {
	return &GuessService{
		engine:     engine,
		sessions:   sessions,
		points:     points,
		entryPrice: entryPrice,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetNow overrides the clock; used in tests.
func (s *GuessService) SetNow(now func() time.Time) {
	s.now = now
}

func (s *GuessService) StartGame(ctx context.Context, playerID uuid.UUID, difficulty int) (*guess.Session, error) {
	now := s.now()

	if _, err := s.sessions.ExpireStale(ctx, now); err != nil {
		slog.Warn("failed to sweep stale sessions", "error", err)
	}

	active, err := s.sessions.ActiveForPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveSessionExists
	}

	session, err := s.engine.NewSession(playerID, difficulty, now)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GuessResult is everything one command application produced: the updated
// session, the engine events, and the settlement when the game just ended.
type GuessResult struct {
	Session    guess.Session     `json:"session"`
	Events     []guess.Event     `json:"events"`
	Settlement *guess.Settlement `json:"settlement,omitempty"`
	NewBalance *float64          `json:"newBalance,omitempty"`
}

// Guess applies the player's guess. A turn whose countdown already ran out is
// resolved first with an auto-submitted random guess; the late submission is
// discarded for that turn.
func (s *GuessService) Guess(ctx context.Context, playerID, sessionID uuid.UUID, g int) (*GuessResult, error) {
	session, err := s.loadOwned(ctx, playerID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if session.Expired(now) {
		session.Active = false
		if err := s.sessions.Update(ctx, *session); err != nil {
			return nil, err
		}
		return nil, guess.ErrSessionInactive
	}

	cmd := guess.Command{Type: guess.CmdPlayerGuess, Guess: g}
	if session.TurnExpired(now) {
		cmd = guess.Command{Type: guess.CmdTimeoutGuess}
	}

	return s.apply(ctx, session, cmd, now)
}

// Forfeit ends the session immediately and settles it as a CPU win.
func (s *GuessService) Forfeit(ctx context.Context, playerID, sessionID uuid.UUID) (*GuessResult, error) {
	session, err := s.loadOwned(ctx, playerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, session, guess.Command{Type: guess.CmdForfeit}, s.now())
}

func (s *GuessService) loadOwned(ctx context.Context, playerID, sessionID uuid.UUID) (*guess.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PlayerID != playerID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

func (s *GuessService) apply(ctx context.Context, session *guess.Session, cmd guess.Command, now time.Time) (*GuessResult, error) {
	events, next, err := s.engine.Apply(*session, cmd, now)
	if err != nil {
		return nil, err
	}

	// The terminal session state is persisted before the ledger is touched:
	// a failed persist returns an error with no credit applied, so a retry
	// replays the guess without ever double-crediting.
	finished := !next.Active && !session.Settled
	if finished {
		next.Settled = true
	}
	if err := s.sessions.Update(ctx, next); err != nil {
		return nil, err
	}

	result := &GuessResult{Session: next, Events: events}
	if finished {
		hasWon := containsEvent(events, guess.EvtPlayerWon)
		settlement, balance := s.settle(ctx, next, hasWon)
		result.Settlement = settlement
		result.NewBalance = balance
	}
	return result, nil
}

// settle applies the ledger delta for a session already persisted as
// settled. When the ledger write fails, earned reports 0 and the
// pre-settlement balance is returned; the settled flag stands, so the player
// is never silently credited or debited on a failed write and a retry storm
// cannot replay the payout.
func (s *GuessService) settle(ctx context.Context, session guess.Session, hasWon bool) (*guess.Settlement, *float64) {
	settlement := guess.Settle(hasWon, session.Multiplier, s.entryPrice)

	balance, err := s.points.UpdatePoints(ctx, session.PlayerID, settlement.Earned)
	if err != nil {
		slog.Error("ledger update failed during settlement", "session", session.ID, "error", err)
		settlement.Earned = 0
		prior, balErr := s.points.GetBalance(ctx, session.PlayerID)
		if balErr != nil {
			slog.Warn("failed to read pre-settlement balance", "error", balErr)
		}
		balance = prior
	}

	if err := s.points.RecordGameStats(ctx, store.GameStats{
		PlayerID:         session.PlayerID,
		TurnsToWin:       session.PlayerTurns,
		EndingMultiplier: settlement.DisplayMultiplier,
		Difficulty:       session.Difficulty,
		EntryPrice:       s.entryPrice,
		Won:              hasWon,
	}); err != nil {
		slog.Warn("failed to record game stats", "session", session.ID, "error", err)
	}

	return utils.Ptr(settlement), utils.Ptr(balance)
}

func containsEvent(events []guess.Event, t guess.EventType) bool {
	for _, evt := range events {
		if evt.Type == t {
			return true
		}
	}
	return false
}
