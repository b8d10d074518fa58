package guess

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record of one guessing game. The invariant
// minRange <= secret <= maxRange holds while the session is active.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PlayerID     uuid.UUID `db:"player_id" json:"-"`
	Secret       int       `db:"secret" json:"-"`
	MinRange     int       `db:"min_range" json:"minRange"`
	MaxRange     int       `db:"max_range" json:"maxRange"`
	Turns        int       `db:"turns" json:"turns"`
	PlayerTurns  int       `db:"player_turns" json:"playerTurns"`
	IsCPUTurn    bool      `db:"is_cpu_turn" json:"isCpuTurn"`
	Multiplier   float64   `db:"multiplier" json:"currentMultiplier"`
	Difficulty   int       `db:"difficulty" json:"difficulty"`
	Active       bool      `db:"is_active" json:"isActive"`
	Settled      bool      `db:"settled" json:"-"`
	TurnDeadline time.Time `db:"turn_deadline" json:"turnDeadline"`
	ExpiresAt    time.Time `db:"expires_at" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// TurnExpired reports whether the player's countdown has run out. Expiry is
// never an error: the caller auto-submits a random in-range guess so the
// game always progresses.
func (s Session) TurnExpired(now time.Time) bool {
	return s.Active && !s.IsCPUTurn && now.After(s.TurnDeadline)
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
