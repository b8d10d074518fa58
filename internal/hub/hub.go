package hub

import (
	"context"
	"log/slog"

	"github.com/catsiege/arena-server/internal/arena"
)

type Msg interface{ isHubMsg() }

type Join struct {
	ClientID string
	Outbox   chan arena.Event
}

type Leave struct{ ClientID string }

type Publish struct{ Evt arena.Event }

// RequestState asks for a resend of the latest snapshot to one client, used
// by observers on (re)connect. No event history is replayed.
type RequestState struct{ ClientID string }

type GetClientCount struct{ Reply chan int }

type Shutdown struct{}

func (Join) isHubMsg()           {}
func (Leave) isHubMsg()          {}
func (Publish) isHubMsg()        {}
func (RequestState) isHubMsg()   {}
func (GetClientCount) isHubMsg() {}
func (Shutdown) isHubMsg()       {}

// SnapshotFunc supplies the current tournament state from the durable store;
// the hub itself holds no tournament state.
type SnapshotFunc func(ctx context.Context) (*arena.TournamentState, error)

type Hub struct {
	inbox    chan Msg
	clients  map[string]chan arena.Event
	snapshot SnapshotFunc
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, snapshot SnapshotFunc) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan Msg, 256),
		clients:  make(map[string]chan arena.Event),
		snapshot: snapshot,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Publish satisfies the simulator's Broadcaster interface.
func (h *Hub) Publish(evt arena.Event) {
	select {
	case h.inbox <- Publish{Evt: evt}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				h.clients[msg.ClientID] = msg.Outbox
				h.sendSnapshot(msg.ClientID)

			case Leave:
				if ch, ok := h.clients[msg.ClientID]; ok {
					close(ch)
					delete(h.clients, msg.ClientID)
				}

			case Publish:
				h.broadcast(msg.Evt)

			case RequestState:
				h.sendSnapshot(msg.ClientID)

			case GetClientCount:
				msg.Reply <- len(h.clients)

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) sendSnapshot(clientID string) {
	ch, ok := h.clients[clientID]
	if !ok {
		return
	}

	state, err := h.snapshot(h.ctx)
	if err != nil {
		h.send(clientID, ch, arena.Event{Type: arena.EvtError, Data: arena.ErrorPayload{Message: "no tournament state available"}})
		return
	}

	h.send(clientID, ch, arena.Event{Type: arena.EvtTournamentState, Data: state})
	if state.FeaturedMatch != nil {
		h.send(clientID, ch, arena.Event{
			Type: arena.EvtFeaturedBattle,
			Data: arena.FeaturedBattlePayload{Round: state.CurrentRound, Match: *state.FeaturedMatch},
		})
	}
}

func (h *Hub) broadcast(evt arena.Event) {
	for id, ch := range h.clients {
		h.send(id, ch, evt)
	}
}

// send drops clients whose outbox is full rather than blocking the loop.
func (h *Hub) send(id string, ch chan arena.Event, evt arena.Event) {
	select {
	case ch <- evt:
	default:
		slog.Warn("dropping slow observer", "client", id)
		close(ch)
		delete(h.clients, id)
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.cancel()
}
