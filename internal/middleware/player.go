package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

type ContextKey string

const PlayerIDKey ContextKey = "playerID"

// LoadPlayer assigns every visitor an anonymous player id kept in the scs
// session, so the points ledger has a stable key without a login flow.
func LoadPlayer(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			playerIDStr := sessionManager.GetString(r.Context(), "playerID")

			playerID, err := uuid.Parse(playerIDStr)
			if playerIDStr == "" || err != nil {
				playerID = uuid.New()
				sessionManager.Put(r.Context(), "playerID", playerID.String())
			}

			ctx := context.WithValue(r.Context(), PlayerIDKey, playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPlayerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(PlayerIDKey).(uuid.UUID)
	return id, ok
}
