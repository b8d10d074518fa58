package guess

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSessionInactive = errors.New("session is not active")
var ErrUnknownDifficulty = errors.New("unknown difficulty tier")
var ErrGuessOutOfRange = errors.New("guess outside the live range")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Roller is the randomness source for secrets and timed-out auto-guesses.
type Roller interface {
	Intn(n int) int
}

type CommandType string

const (
	CmdPlayerGuess  CommandType = "PlayerGuess"
	CmdTimeoutGuess CommandType = "TimeoutGuess"
	CmdForfeit      CommandType = "Forfeit"
)

type Command struct {
	Type  CommandType
	Guess int
}

type EventType string

const (
	EvtPlayerGuessed EventType = "PlayerGuessed"
	EvtRangeNarrowed EventType = "RangeNarrowed"
	EvtCPUGuessed    EventType = "CPUGuessed"
	EvtPlayerWon     EventType = "PlayerWon"
	EvtCPUWon        EventType = "CPUWon"
	EvtForfeited     EventType = "Forfeited"
)

type Event struct {
	Type  EventType `json:"type"`
	Guess int       `json:"guess,omitempty"`
	Min   int       `json:"min,omitempty"`
	Max   int       `json:"max,omitempty"`
	Auto  bool      `json:"auto,omitempty"`
}

// Engine drives guessing sessions: player and CPU strictly alternate, the
// turn clock is the only asynchronous element and is resolved by the caller
// checking TurnExpired before applying a command.
type Engine struct {
	schedule    Schedule
	maxTurns    int
	turnTimeout time.Duration
	ttl         time.Duration
	rng         Roller
}

func NewEngine(schedule Schedule, maxTurns, turnSeconds, ttlMinutes int, rng Roller) *Engine {
	return &Engine{
		schedule:    schedule,
		maxTurns:    maxTurns,
		turnTimeout: time.Duration(turnSeconds) * time.Second,
		ttl:         time.Duration(ttlMinutes) * time.Minute,
		rng:         rng,
	}
}

// NewSession starts a game at the given difficulty tier, drawing the secret
// uniformly from [1, difficulty].
func (e *Engine) NewSession(playerID uuid.UUID, difficulty int, now time.Time) (Session, error) {
	if !e.schedule.HasTier(difficulty) {
		return Session{}, ErrUnknownDifficulty
	}

	return Session{
		ID:           uuid.New(),
		PlayerID:     playerID,
		Secret:       e.rng.Intn(difficulty) + 1,
		MinRange:     1,
		MaxRange:     difficulty,
		Multiplier:   e.schedule.MultiplierFor(difficulty, 1),
		Difficulty:   difficulty,
		Active:       true,
		TurnDeadline: now.Add(e.turnTimeout),
		ExpiresAt:    now.Add(e.ttl),
		CreatedAt:    now,
	}, nil
}

// Apply runs one command against a session and returns the produced events
// and the successor state. A player guess that misses triggers the CPU's
// reply within the same application, so the session handed back is always
// waiting on the player (or finished).
func (e *Engine) Apply(s Session, cmd Command, now time.Time) ([]Event, Session, error) {
	if !s.Active {
		return nil, s, ErrSessionInactive
	}

	switch cmd.Type {
	case CmdPlayerGuess:
		if cmd.Guess < s.MinRange || cmd.Guess > s.MaxRange {
			return nil, s, ErrGuessOutOfRange
		}
		return e.playerGuess(s, cmd.Guess, false, now)

	case CmdTimeoutGuess:
		g := e.rng.Intn(s.MaxRange-s.MinRange+1) + s.MinRange
		return e.playerGuess(s, g, true, now)

	case CmdForfeit:
		s.Active = false
		return []Event{{Type: EvtForfeited}}, s, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func (e *Engine) playerGuess(s Session, g int, auto bool, now time.Time) ([]Event, Session, error) {
	s.Turns++
	s.PlayerTurns++
	s.Multiplier = e.schedule.MultiplierFor(s.Difficulty, s.PlayerTurns)

	events := []Event{{Type: EvtPlayerGuessed, Guess: g, Auto: auto}}

	if g == s.Secret {
		s.Active = false
		events = append(events, Event{Type: EvtPlayerWon, Guess: g})
		return events, s, nil
	}

	s.MinRange, s.MaxRange = NarrowRange(s.MinRange, s.MaxRange, g, s.Secret)
	events = append(events, Event{Type: EvtRangeNarrowed, Min: s.MinRange, Max: s.MaxRange})

	if s.PlayerTurns >= e.maxTurns {
		s.Active = false
		events = append(events, Event{Type: EvtCPUWon})
		return events, s, nil
	}

	// CPU replies immediately with its midpoint guess.
	s.IsCPUTurn = true
	s.Turns++
	cpu := CPUGuess(s.MinRange, s.MaxRange)
	events = append(events, Event{Type: EvtCPUGuessed, Guess: cpu})

	if cpu == s.Secret {
		s.Active = false
		s.IsCPUTurn = false
		events = append(events, Event{Type: EvtCPUWon, Guess: cpu})
		return events, s, nil
	}

	s.MinRange, s.MaxRange = NarrowRange(s.MinRange, s.MaxRange, cpu, s.Secret)
	events = append(events, Event{Type: EvtRangeNarrowed, Min: s.MinRange, Max: s.MaxRange})

	// Back to the player; the countdown restarts.
	s.IsCPUTurn = false
	s.TurnDeadline = now.Add(e.turnTimeout)
	return events, s, nil
}
