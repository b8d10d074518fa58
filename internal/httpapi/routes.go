package httpapi

import (
	"net/http"

	"github.com/catsiege/arena-server/internal/hub"
	"github.com/catsiege/arena-server/internal/middleware"
	"github.com/catsiege/arena-server/internal/service"
	"github.com/catsiege/arena-server/internal/store"
	"github.com/catsiege/arena-server/internal/tournament"
	"github.com/catsiege/arena-server/internal/ws"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	SessionManager *scs.SessionManager
	Hub            *hub.Hub
	Orchestrator   *tournament.Orchestrator
	Tournaments    *store.TournamentStore
	Points         *store.PointsStore
	Guess          *service.GuessService
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub))

	r.Group(func(r chi.Router) {
		r.Use(d.SessionManager.LoadAndSave)
		r.Use(middleware.LoadPlayer(d.SessionManager))

		r.Post("/tournament/start", StartTournament(d.Orchestrator))
		r.Get("/tournament/state", TournamentState(d.Tournaments))
		r.Get("/tournament/winner", TournamentWinner(d.Tournaments))

		r.Post("/guess/start", StartGuess(d.Guess))
		r.Post("/guess/{id}/guess", SubmitGuess(d.Guess))
		r.Post("/guess/{id}/forfeit", ForfeitGuess(d.Guess))

		r.Get("/points", Points(d.Points))
	})

	return r
}
