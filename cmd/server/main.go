package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/catsiege/arena-server/internal/arena"
	"github.com/catsiege/arena-server/internal/battle"
	"github.com/catsiege/arena-server/internal/config"
	"github.com/catsiege/arena-server/internal/db"
	"github.com/catsiege/arena-server/internal/entrants"
	"github.com/catsiege/arena-server/internal/guess"
	"github.com/catsiege/arena-server/internal/httpapi"
	"github.com/catsiege/arena-server/internal/hub"
	"github.com/catsiege/arena-server/internal/service"
	"github.com/catsiege/arena-server/internal/store"
	"github.com/catsiege/arena-server/internal/tournament"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, "file://migrations"); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Store = sqlite3store.New(database.DB)

	tournamentStore := store.NewTournamentStore(database)
	pointsStore := store.NewPointsStore(database)
	sessionStore := store.NewSessionStore(database)

	ctx := context.Background()

	broadcastHub := hub.NewHub(ctx, func(ctx context.Context) (*arena.TournamentState, error) {
		_, state, err := tournamentStore.Latest(ctx)
		return state, err
	})

	fetcher := entrants.NewFetcher(
		cfg.Entrants.BaseURL,
		cfg.Entrants.PageSize,
		cfg.Entrants.MaxPages,
		cfg.Entrants.TimeoutSeconds,
	)

	orchestrator := tournament.NewOrchestrator(tournament.Config{
		MaxHealth:  cfg.Tournament.MaxHealth,
		StageDelay: time.Duration(cfg.Tournament.StageDelayMS) * time.Millisecond,
		TickDelay:  time.Duration(cfg.Tournament.ExchangeTickMS) * time.Millisecond,
		RoundPause: time.Duration(cfg.Tournament.RoundPauseMS) * time.Millisecond,
	}, tournamentStore, fetcher, broadcastHub, battle.RealClock{})

	if resumed, err := orchestrator.Resume(ctx); err != nil {
		log.Println("Could not resume tournament:", err)
	} else if resumed {
		log.Println("Resumed in-progress tournament")
	}

	schedule, err := guess.NewSchedule(cfg.Guess.Multipliers)
	if err != nil {
		log.Fatal("Invalid multiplier tables:", err)
	}
	guessEngine := guess.NewEngine(
		schedule,
		cfg.Guess.MaxPlayerTurns,
		cfg.Guess.TurnSeconds,
		cfg.Guess.SessionTTLMinutes,
		guess.SystemRoller{},
	)
	guessService := service.NewGuessService(guessEngine, sessionStore, pointsStore, cfg.Guess.EntryPrice)

	router := httpapi.SetupRoutes(httpapi.Deps{
		SessionManager: sessionManager,
		Hub:            broadcastHub,
		Orchestrator:   orchestrator,
		Tournaments:    tournamentStore,
		Points:         pointsStore,
		Guess:          guessService,
	})

	log.Println("Server starting on", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, router); err != nil {
		log.Fatal(err)
	}
}
