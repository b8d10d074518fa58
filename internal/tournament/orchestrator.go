package tournament

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/catsiege/arena-server/internal/arena"
	"github.com/catsiege/arena-server/internal/battle"
	"github.com/catsiege/arena-server/internal/store"
	"github.com/catsiege/arena-server/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrTournamentRunning = errors.New("a tournament is already running")

// StateStore is the durable boundary for tournament runs. By the time a
// round starts, everything the orchestrator knows is already persisted, so a
// restart or reconnect can reconstruct full state from the store alone.
type StateStore interface {
	Save(ctx context.Context, runID string, state *arena.TournamentState) error
	Latest(ctx context.Context) (string, *arena.TournamentState, error)
}

// EntrantSource lists the competing NFTs, typically the external listing API.
type EntrantSource interface {
	FetchAll(ctx context.Context, maxHealth int) ([]arena.Entrant, error)
}

type Config struct {
	MaxHealth  int
	StageDelay time.Duration
	TickDelay  time.Duration
	RoundPause time.Duration
}

// Orchestrator drives a tournament round by round: pair, fan out the round's
// battles, wait for all of them, persist, pause, advance. It owns the
// TournamentState instance; the transport layer only ever sees snapshots.
type Orchestrator struct {
	cfg         Config
	store       StateStore
	source      EntrantSource
	broadcaster battle.Broadcaster
	clock       battle.Clock
	newRoller   func() battle.Roller

	mu      sync.Mutex
	running bool
	runID   string
}

func NewOrchestrator(cfg Config, store StateStore, source EntrantSource, b battle.Broadcaster, clock battle.Clock) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		store:       store,
		source:      source,
		broadcaster: b,
		clock:       clock,
		newRoller: func() battle.Roller {
			return rand.New(rand.NewSource(rand.Int63()))
		},
	}
}

// SetRoller overrides the per-match randomness source; used in tests.
func (o *Orchestrator) SetRoller(f func() battle.Roller) {
	o.newRoller = f
}

// Start initializes a fresh tournament and runs it in the background. A
// request while one is in flight is rejected, not queued.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrTournamentRunning
	}
	o.running = true
	o.mu.Unlock()

	entrants, err := o.source.FetchAll(ctx, o.cfg.MaxHealth)
	if err != nil {
		o.setIdle()
		return err
	}

	roundSizes, err := arena.ComputeRoundSizes(len(entrants))
	if err != nil {
		o.setIdle()
		return err
	}

	runID := uuid.NewString()
	state := arena.NewTournamentState(entrants, roundSizes)
	if err := o.store.Save(ctx, runID, state); err != nil {
		o.setIdle()
		return fmt.Errorf("persist initial state: %w", err)
	}

	o.mu.Lock()
	o.runID = runID
	o.mu.Unlock()

	// The run outlives the request that triggered it: only a completed
	// bracket or process exit stops a tournament.
	go o.run(context.WithoutCancel(ctx), runID, state)
	return nil
}

// Resume picks up the latest persisted run if it was still in progress when
// the process stopped. The interrupted round restarts from its bracket;
// round-level progress is never lost.
func (o *Orchestrator) Resume(ctx context.Context) (bool, error) {
	runID, state, err := o.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoTournament) {
			return false, nil
		}
		return false, err
	}
	if !state.IsRunning {
		return false, nil
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return false, ErrTournamentRunning
	}
	o.running = true
	o.runID = runID
	o.mu.Unlock()

	slog.Info("resuming tournament", "run", runID, "round", state.CurrentRound)
	go o.run(context.WithoutCancel(ctx), runID, state)
	return true, nil
}

func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) setIdle() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

func (o *Orchestrator) run(ctx context.Context, runID string, state *arena.TournamentState) {
	defer o.setIdle()

	for {
		bracket := state.CurrentBracket()
		if len(bracket) == 0 {
			slog.Error("tournament has an empty bracket", "run", runID, "round", state.CurrentRound)
			return
		}
		if len(bracket) == 1 {
			o.complete(ctx, runID, state)
			return
		}

		if err := o.runRound(ctx, runID, state); err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("tournament round failed", "run", runID, "round", state.CurrentRound, "error", err)
			}
			return
		}

		if len(state.CurrentBracket()) > 1 {
			if err := o.clock.Sleep(ctx, o.cfg.RoundPause); err != nil {
				return
			}
		}
	}
}

func (o *Orchestrator) runRound(ctx context.Context, runID string, state *arena.TournamentState) error {
	bracket := state.CurrentBracket()
	matches, byes := arena.PairRound(bracket, o.cfg.MaxHealth)

	state.CurrentMatches = matches
	state.FeaturedMatch = nil
	if len(matches) > 0 {
		state.FeaturedMatch = utils.Ptr(matches[0])
	}
	state.LastUpdate = time.Now().UTC()

	// Checkpoint before anything animates: a reconnecting observer (or a
	// restarted process) must see the round exactly as it begins.
	if err := o.store.Save(ctx, runID, state); err != nil {
		return fmt.Errorf("persist round start: %w", err)
	}
	o.broadcastSnapshot(state)
	if state.FeaturedMatch != nil {
		o.broadcaster.Publish(arena.Event{
			Type: arena.EvtFeaturedBattle,
			Data: arena.FeaturedBattlePayload{Round: state.CurrentRound, Match: *state.FeaturedMatch},
		})
	}

	winners := make([]*arena.Entrant, len(matches))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range matches {
		i, m := i, m
		featured := i == 0
		g.Go(func() error {
			sim := battle.NewSimulator(o.newRoller(), o.clock, o.cfg.StageDelay, o.cfg.TickDelay)
			winner, _, err := sim.Run(gctx, m, featured, o.broadcaster)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if !state.MarkCompleted(m.Key()) {
				// Pair already recorded; the slot stays empty and is
				// skipped below rather than advancing a blank entrant.
				return nil
			}
			winners[i] = utils.Ptr(winner.Advanced(o.cfg.MaxHealth))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	next := make([]arena.Entrant, 0, len(winners)+len(byes))
	for _, w := range winners {
		if w != nil {
			next = append(next, *w)
		}
	}
	for _, bye := range byes {
		next = append(next, bye.Advanced(o.cfg.MaxHealth))
	}

	state.Brackets = append(state.Brackets, next)
	state.CurrentRound++
	state.CurrentMatches = nil
	state.FeaturedMatch = nil
	state.LastUpdate = time.Now().UTC()

	if err := o.store.Save(ctx, runID, state); err != nil {
		return fmt.Errorf("persist round end: %w", err)
	}
	o.broadcastSnapshot(state)
	return nil
}

func (o *Orchestrator) complete(ctx context.Context, runID string, state *arena.TournamentState) {
	state.Winners = state.CurrentBracket()
	state.IsRunning = false
	state.LastUpdate = time.Now().UTC()

	if err := o.store.Save(ctx, runID, state); err != nil {
		slog.Error("failed to persist completed tournament", "run", runID, "error", err)
	}
	o.broadcastSnapshot(state)
	slog.Info("tournament completed", "run", runID, "winner", state.Winners[0].Name)
}

// broadcastSnapshot publishes a deep copy: ws writer goroutines marshal the
// payload while the next round's match goroutines mutate the live state.
func (o *Orchestrator) broadcastSnapshot(state *arena.TournamentState) {
	o.broadcaster.Publish(arena.Event{Type: arena.EvtTournamentState, Data: state.Clone()})
}
