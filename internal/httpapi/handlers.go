package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/catsiege/arena-server/internal/arena"
	"github.com/catsiege/arena-server/internal/entrants"
	"github.com/catsiege/arena-server/internal/guess"
	"github.com/catsiege/arena-server/internal/httputil"
	"github.com/catsiege/arena-server/internal/middleware"
	"github.com/catsiege/arena-server/internal/service"
	"github.com/catsiege/arena-server/internal/store"
	"github.com/catsiege/arena-server/internal/tournament"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func StartTournament(o *tournament.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := o.Start(r.Context())
		switch {
		case err == nil:
			httputil.JSON(w, http.StatusAccepted, map[string]string{"status": "started"})
		case errors.Is(err, tournament.ErrTournamentRunning):
			httputil.Conflict(w, "A tournament is already running")
		case errors.Is(err, entrants.ErrInsufficientEntrants), errors.Is(err, arena.ErrInvalidEntrantCount):
			httputil.BadRequest(w, "Not enough entrants to start a tournament", err)
		default:
			httputil.InternalServerError(w, "Failed to start tournament", err)
		}
	}
}

func TournamentState(tournaments *store.TournamentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, state, err := tournaments.Latest(r.Context())
		if errors.Is(err, store.ErrNoTournament) {
			httputil.NotFound(w, "No tournament has been run", nil)
			return
		}
		if err != nil {
			httputil.InternalServerError(w, "Failed to load tournament state", err)
			return
		}
		httputil.JSON(w, http.StatusOK, state)
	}
}

func TournamentWinner(tournaments *store.TournamentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		winner, err := tournaments.LatestWinner(r.Context())
		if errors.Is(err, store.ErrNoTournament) {
			httputil.NotFound(w, "No completed tournament yet", nil)
			return
		}
		if err != nil {
			httputil.InternalServerError(w, "Failed to load winner", err)
			return
		}
		httputil.JSON(w, http.StatusOK, winner)
	}
}

type startGuessRequest struct {
	Difficulty int `json:"difficulty"`
}

func StartGuess(svc *service.GuessService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
		if !ok {
			httputil.InternalServerError(w, "Missing player identity", nil)
			return
		}

		var req startGuessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		session, err := svc.StartGame(r.Context(), playerID, req.Difficulty)
		switch {
		case err == nil:
			httputil.JSON(w, http.StatusCreated, session)
		case errors.Is(err, service.ErrActiveSessionExists):
			httputil.Conflict(w, "You already have a game in progress")
		case errors.Is(err, guess.ErrUnknownDifficulty):
			httputil.BadRequest(w, "Unknown difficulty tier", err)
		default:
			httputil.InternalServerError(w, "Failed to start game", err)
		}
	}
}

type guessRequest struct {
	Guess int `json:"guess"`
}

func SubmitGuess(svc *service.GuessService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, sessionID, ok := sessionParams(w, r)
		if !ok {
			return
		}

		var req guessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		result, err := svc.Guess(r.Context(), playerID, sessionID, req.Guess)
		writeGuessResult(w, result, err)
	}
}

func ForfeitGuess(svc *service.GuessService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, sessionID, ok := sessionParams(w, r)
		if !ok {
			return
		}

		result, err := svc.Forfeit(r.Context(), playerID, sessionID)
		writeGuessResult(w, result, err)
	}
}

func Points(points *store.PointsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
		if !ok {
			httputil.InternalServerError(w, "Missing player identity", nil)
			return
		}

		balance, err := points.GetBalance(r.Context(), playerID)
		if err != nil {
			httputil.InternalServerError(w, "Failed to load balance", err)
			return
		}
		httputil.JSON(w, http.StatusOK, map[string]float64{"balance": balance})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func sessionParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	playerID, ok := middleware.GetPlayerIDFromContext(r.Context())
	if !ok {
		httputil.InternalServerError(w, "Missing player identity", nil)
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid session id", err)
		return uuid.Nil, uuid.Nil, false
	}
	return playerID, sessionID, true
}

func writeGuessResult(w http.ResponseWriter, result *service.GuessResult, err error) {
	switch {
	case err == nil:
		httputil.JSON(w, http.StatusOK, result)
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, service.ErrNotSessionOwner):
		httputil.NotFound(w, "Game session not found", nil)
	case errors.Is(err, guess.ErrSessionInactive):
		httputil.BadRequest(w, "Game session is no longer active", nil)
	case errors.Is(err, guess.ErrGuessOutOfRange):
		httputil.BadRequest(w, "Guess is outside the current range", nil)
	default:
		httputil.InternalServerError(w, "Failed to apply guess", err)
	}
}
