package guess

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRoller struct {
	values []int
	pos    int
}

func (r *fixedRoller) Intn(n int) int {
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v % n
}

func newTestEngine(rng Roller) *Engine {
	schedule, _ := NewSchedule(map[int][]float64{
		256: {10.0, 8.0, 5.0, 3.0, 2.0, 1.5, 1.2, 1.0, 0.8, 0.5},
	})
	if rng == nil {
		rng = &fixedRoller{values: []int{0}}
	}
	return NewEngine(schedule, 10, 15, 30, rng)
}

func activeSession(secret, difficulty int) Session {
	now := time.Now().UTC()
	return Session{
		ID:           uuid.New(),
		PlayerID:     uuid.New(),
		Secret:       secret,
		MinRange:     1,
		MaxRange:     difficulty,
		Multiplier:   10.0,
		Difficulty:   difficulty,
		Active:       true,
		TurnDeadline: now.Add(15 * time.Second),
		ExpiresAt:    now.Add(30 * time.Minute),
	}
}

func TestNewSession_SecretInRange(t *testing.T) {
	e := newTestEngine(&fixedRoller{values: []int{136}})
	now := time.Now().UTC()

	s, err := e.NewSession(uuid.New(), 256, now)
	require.NoError(t, err)

	assert.Equal(t, 137, s.Secret)
	assert.Equal(t, 1, s.MinRange)
	assert.Equal(t, 256, s.MaxRange)
	assert.True(t, s.Active)
	assert.Equal(t, 10.0, s.Multiplier)
	assert.Equal(t, now.Add(15*time.Second), s.TurnDeadline)
}

func TestNewSession_UnknownTier(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.NewSession(uuid.New(), 1000, time.Now())
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestApply_PlayerWinsOnExactGuess(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(137, 256)

	events, next, err := e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 137}, time.Now())
	require.NoError(t, err)

	assert.False(t, next.Active)
	assert.Equal(t, 1, next.PlayerTurns)
	require.Len(t, events, 2)
	assert.Equal(t, EvtPlayerGuessed, events[0].Type)
	assert.Equal(t, EvtPlayerWon, events[1].Type)
}

func TestApply_MissTriggersCPUReply(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(137, 256)

	events, next, err := e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 128}, time.Now())
	require.NoError(t, err)

	// Player miss narrows to [129,256]; the CPU's midpoint reply is 192,
	// which also misses and narrows to [129,191].
	require.True(t, next.Active)
	assert.Equal(t, 129, next.MinRange)
	assert.Equal(t, 191, next.MaxRange)
	assert.False(t, next.IsCPUTurn, "play returns to the player")
	assert.Equal(t, 2, next.Turns)
	assert.Equal(t, 1, next.PlayerTurns)

	var cpuGuess int
	for _, evt := range events {
		if evt.Type == EvtCPUGuessed {
			cpuGuess = evt.Guess
		}
	}
	assert.Equal(t, 192, cpuGuess)
}

func TestApply_CPUWinsOnItsExactGuess(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(192, 256)

	// Player misses with 128 -> [129,256]; CPU midpoint 192 hits.
	events, next, err := e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 128}, time.Now())
	require.NoError(t, err)

	assert.False(t, next.Active)
	found := false
	for _, evt := range events {
		if evt.Type == EvtCPUWon {
			found = true
			assert.Equal(t, 192, evt.Guess)
		}
	}
	assert.True(t, found, "expected EvtCPUWon")
}

func TestApply_GuessOutOfRange(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(137, 256)
	s.MinRange = 100

	_, _, err := e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 50}, time.Now())
	assert.ErrorIs(t, err, ErrGuessOutOfRange)

	_, _, err = e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 257}, time.Now())
	assert.ErrorIs(t, err, ErrGuessOutOfRange)
}

func TestApply_InactiveSession(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(137, 256)
	s.Active = false

	_, _, err := e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 137}, time.Now())
	assert.ErrorIs(t, err, ErrSessionInactive)
}

func TestApply_TimeoutSubmitsRandomInRangeGuess(t *testing.T) {
	// Roller yields 36 for the auto-guess draw: guess = 36 + min.
	e := newTestEngine(&fixedRoller{values: []int{36}})
	s := activeSession(137, 256)
	s.MinRange, s.MaxRange = 100, 200

	events, next, err := e.Apply(s, Command{Type: CmdTimeoutGuess}, time.Now())
	require.NoError(t, err)

	require.NotEmpty(t, events)
	assert.Equal(t, EvtPlayerGuessed, events[0].Type)
	assert.True(t, events[0].Auto)
	g := events[0].Guess
	assert.Equal(t, 136, g)
	assert.GreaterOrEqual(t, g, 100)
	assert.LessOrEqual(t, g, 200)
	assert.True(t, next.Active)
}

func TestApply_MaxTurnsEndsGame(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(137, 256)
	s.PlayerTurns = 9 // next miss is the 10th and final player turn

	events, next, err := e.Apply(s, Command{Type: CmdPlayerGuess, Guess: 10}, time.Now())
	require.NoError(t, err)

	assert.False(t, next.Active)
	assert.Contains(t, eventTypes(events), EvtCPUWon)
	assert.NotContains(t, eventTypes(events), EvtCPUGuessed, "no CPU reply after the final miss")
}

func TestApply_Forfeit(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(137, 256)

	events, next, err := e.Apply(s, Command{Type: CmdForfeit}, time.Now())
	require.NoError(t, err)

	assert.False(t, next.Active)
	require.Len(t, events, 1)
	assert.Equal(t, EvtForfeited, events[0].Type)
}

func TestApply_MultiplierDecaysWithPlayerTurns(t *testing.T) {
	e := newTestEngine(nil)
	s := activeSession(1, 256) // secret at the bottom so high guesses keep missing

	now := time.Now()
	guesses := []int{200, 150, 100}
	want := []float64{10.0, 8.0, 5.0}

	for i, g := range guesses {
		if g < s.MinRange || g > s.MaxRange {
			g = s.MaxRange
		}
		var err error
		_, s, err = e.Apply(s, Command{Type: CmdPlayerGuess, Guess: g}, now)
		require.NoError(t, err)
		assert.Equal(t, want[i], s.Multiplier, "after player turn %d", i+1)
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
