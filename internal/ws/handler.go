package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/catsiege/arena-server/internal/arena"
	"github.com/catsiege/arena-server/internal/hub"
	"github.com/coder/websocket"
)

type clientMessage struct {
	Type string `json:"type"`
}

// Handler upgrades observers onto the broadcast channel. Each connection
// gets the latest snapshot on join and may ask for a resend with
// {"type":"requestState"}; there is no event-history replay.
func Handler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan arena.Event, 32)
		clientID := randID(8)

		h.Inbox() <- hub.Join{ClientID: clientID, Outbox: out}
		defer func() { h.Inbox() <- hub.Leave{ClientID: clientID} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for evt := range out {
				payload, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var msg clientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","data":{"message":"bad json"}}`))
				continue
			}

			if msg.Type == "requestState" {
				h.Inbox() <- hub.RequestState{ClientID: clientID}
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
