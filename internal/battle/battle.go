package battle

import (
	"errors"

	"github.com/catsiege/arena-server/internal/arena"
)

var ErrEntrantEliminated = errors.New("battle started with an eliminated entrant")

// Roller is the randomness source for a battle. *math/rand.Rand satisfies it,
// tests pass a scripted sequence.
type Roller interface {
	Intn(n int) int
}

type Stage string

const (
	StageCoinFlip Stage = "coinFlip"
	StageVolley   Stage = "openingVolley"
	StageExchange Stage = "alternatingExchange"
	StageDone     Stage = "done"
)

// Hit-roll thresholds for the alternating exchange. A roll in [0,100) maps to
// miss, light, medium or critical damage.
const (
	missBelow   = 10
	lightBelow  = 31
	mediumBelow = 71

	lightDamage  = 1
	mediumDamage = 2
	critDamage   = 3
)

// State is one battle's progress between steps. Attacker and Defender carry
// the live health values; the entrants inside Match keep their round-entry
// snapshots for event payloads.
type State struct {
	Match    arena.Match
	Stage    Stage
	Attacker arena.Entrant
	Defender arena.Entrant
	Winner   *arena.Entrant
	Loser    *arena.Entrant
}

// Start validates the pairing and positions the battle before the coin flip.
func Start(m arena.Match) (State, error) {
	if m.NFT1.Eliminated() || m.NFT2.Eliminated() {
		return State{}, ErrEntrantEliminated
	}
	return State{Match: m, Stage: StageCoinFlip}, nil
}

// Step advances the battle by exactly one stage (or one exchange tick) and
// returns the events that stage produced. It is pure apart from the injected
// roller, so tests can walk a whole battle without any clock.
func Step(s State, rng Roller) (State, []arena.Event) {
	switch s.Stage {
	case StageCoinFlip:
		return stepCoinFlip(s, rng)
	case StageVolley:
		return stepVolley(s, rng)
	case StageExchange:
		return stepExchange(s, rng)
	default:
		return s, nil
	}
}

func stepCoinFlip(s State, rng Roller) (State, []arena.Event) {
	if rng.Intn(2) == 0 {
		s.Attacker, s.Defender = s.Match.NFT1, s.Match.NFT2
	} else {
		s.Attacker, s.Defender = s.Match.NFT2, s.Match.NFT1
	}
	s.Stage = StageVolley

	return s, []arena.Event{{
		Type: arena.EvtCoinFlip,
		Data: arena.CoinFlipPayload{MatchKey: s.Match.Key(), Winner: s.Attacker, Loser: s.Defender},
	}}
}

func stepVolley(s State, rng Roller) (State, []arena.Event) {
	die1 := rng.Intn(6) + 1
	die2 := rng.Intn(6) + 1
	damage := die1 + die2
	s.Defender.Health -= damage

	events := []arena.Event{
		{
			Type: arena.EvtDiceRoll,
			Data: arena.DiceRollPayload{MatchKey: s.Match.Key(), Attacker: s.Attacker, Die1: die1, Die2: die2, Damage: damage},
		},
		{
			Type: arena.EvtNFTHit,
			Data: arena.NFTHitPayload{MatchKey: s.Match.Key(), Target: s.Defender, Damage: damage, NewHealth: s.Defender.Health},
		},
	}

	if s.Defender.Eliminated() {
		return finish(s, events)
	}
	s.Stage = StageExchange
	return s, events
}

func stepExchange(s State, rng Roller) (State, []arena.Event) {
	// Roles swap every tick, so the opening volley's defender strikes first.
	s.Attacker, s.Defender = s.Defender, s.Attacker

	roll := rng.Intn(100)
	var damage int
	switch {
	case roll < missBelow:
		damage = 0
	case roll < lightBelow:
		damage = lightDamage
	case roll < mediumBelow:
		damage = mediumDamage
	default:
		damage = critDamage
	}
	s.Defender.Health -= damage

	events := []arena.Event{
		{
			Type: arena.EvtHitRoll,
			Data: arena.HitRollPayload{
				MatchKey:   s.Match.Key(),
				Attacker:   s.Attacker,
				Roll:       roll,
				Damage:     damage,
				IsCritical: damage == critDamage,
				IsMiss:     damage == 0,
			},
		},
	}
	if damage > 0 {
		events = append(events, arena.Event{
			Type: arena.EvtNFTHit,
			Data: arena.NFTHitPayload{MatchKey: s.Match.Key(), Target: s.Defender, Damage: damage, NewHealth: s.Defender.Health},
		})
	}

	if s.Defender.Eliminated() {
		return finish(s, events)
	}
	return s, events
}

func finish(s State, events []arena.Event) (State, []arena.Event) {
	s.Stage = StageDone
	winner, loser := s.Attacker, s.Defender
	winner.Wins++
	loser.Losses++
	s.Winner, s.Loser = &winner, &loser

	events = append(events, arena.Event{
		Type: arena.EvtBattleResult,
		Data: arena.BattleResultPayload{MatchKey: s.Match.Key(), Winner: winner, Loser: loser},
	})
	return s, events
}
