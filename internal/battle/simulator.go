package battle

import (
	"context"
	"time"

	"github.com/catsiege/arena-server/internal/arena"
)

// Broadcaster receives the stage events of a featured match.
type Broadcaster interface {
	Publish(evt arena.Event)
}

// Simulator resolves matches stage by stage on a shared clock. Featured
// matches publish every stage event; the rest resolve silently so a whole
// round can run concurrently without flooding the channel.
type Simulator struct {
	rng        Roller
	clock      Clock
	stageDelay time.Duration
	tickDelay  time.Duration
}

func NewSimulator(rng Roller, clock Clock, stageDelay, tickDelay time.Duration) *Simulator {
	return &Simulator{rng: rng, clock: clock, stageDelay: stageDelay, tickDelay: tickDelay}
}

// Run resolves one match to completion and returns the winner and loser.
func (sim *Simulator) Run(ctx context.Context, m arena.Match, featured bool, b Broadcaster) (arena.Entrant, arena.Entrant, error) {
	s, err := Start(m)
	if err != nil {
		return arena.Entrant{}, arena.Entrant{}, err
	}

	for s.Stage != StageDone {
		delay := sim.stageDelay
		if s.Stage == StageExchange {
			delay = sim.tickDelay
		}

		var events []arena.Event
		s, events = Step(s, sim.rng)

		if featured && b != nil {
			for _, evt := range events {
				b.Publish(evt)
			}
			b.Publish(arena.Event{
				Type: arena.EvtBattleUpdate,
				Data: battleUpdate(s),
			})
		}

		if s.Stage == StageDone {
			break
		}
		if err := sim.clock.Sleep(ctx, delay); err != nil {
			return arena.Entrant{}, arena.Entrant{}, err
		}
	}

	return *s.Winner, *s.Loser, nil
}

// battleUpdate snapshots both entrants' current health for spectators.
func battleUpdate(s State) arena.Match {
	m := s.Match
	for _, live := range []arena.Entrant{s.Attacker, s.Defender} {
		if live.ID == m.NFT1.ID {
			m.NFT1.Health = live.Health
		}
		if live.ID == m.NFT2.ID {
			m.NFT2.Health = live.Health
		}
	}
	if s.Winner != nil {
		for _, final := range []arena.Entrant{*s.Winner, *s.Loser} {
			if final.ID == m.NFT1.ID {
				m.NFT1 = final
			}
			if final.ID == m.NFT2.ID {
				m.NFT2 = final
			}
		}
	}
	return m
}
