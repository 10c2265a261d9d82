package broadcast

import (
	"context"

	"github.com/google/uuid"
)

type Msg interface{ isHubMsg() }

type Subscribe struct {
	ClientID  string
	AuctionID string
	Wake      chan struct{} // buffered(1); a pending wake is never doubled
}

func (Subscribe) isHubMsg() {}

type Unsubscribe struct{ ClientID string }

func (Unsubscribe) isHubMsg() {}

type Notify struct{ AuctionID string }

func (Notify) isHubMsg() {}

type Shutdown struct{}

func (Shutdown) isHubMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isHubMsg() {}

type View struct {
	NumSubscribers int
	ByAuction      map[string]int
}

type subscriber struct {
	auctionID string
	wake      chan struct{}
}

// Hub tells poll loops that their auction was just mutated so they can
// read without waiting for the next tick. It owns its subscriber table and
// is only touched from its own goroutine.
type Hub struct {
	inbox  chan Msg
	subs   map[string]subscriber
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		subs:   make(map[string]subscriber),
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				h.subs[msg.ClientID] = subscriber{auctionID: msg.AuctionID, wake: msg.Wake}

			case Unsubscribe:
				delete(h.subs, msg.ClientID)

			case Notify:
				for _, s := range h.subs {
					if s.auctionID != msg.AuctionID {
						continue
					}
					select {
					case s.wake <- struct{}{}:
					default:
						// already has a wake pending
					}
				}

			case GetView:
				v := View{NumSubscribers: len(h.subs), ByAuction: map[string]int{}}
				for _, s := range h.subs {
					v.ByAuction[s.auctionID]++
				}
				msg.Reply <- v

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, s := range h.subs {
		close(s.wake) // no more wakes
		delete(h.subs, id)
	}
	h.cancel()
}

func (h *Hub) send(m Msg) {
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
	}
}

// Notify implements auction.Notifier.
func (h *Hub) Notify(auctionID string) { h.send(Notify{AuctionID: auctionID}) }

// Subscribe registers a wake channel for auctionID. The returned func
// removes it again.
func (h *Hub) Subscribe(auctionID string) (<-chan struct{}, func()) {
	id := uuid.NewString()
	wake := make(chan struct{}, 1)
	h.send(Subscribe{ClientID: id, AuctionID: auctionID, Wake: wake})
	return wake, func() { h.send(Unsubscribe{ClientID: id}) }
}

// Close stops the hub and closes every subscriber's wake channel.
func (h *Hub) Close() { h.send(Shutdown{}) }
