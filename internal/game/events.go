package game

import (
	"sync"
	"time"

	"github.com/haveebot/agentpoker/internal/deck"
)

// EventKind tags the closed set of table event variants.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventHandStarted    EventKind = "hand_started"
	EventCardsDealt     EventKind = "cards_dealt"
	EventAction         EventKind = "action"
	EventStreetComplete EventKind = "street_complete"
	EventShowdown       EventKind = "showdown"
	EventPotAwarded     EventKind = "pot_awarded"
	EventError          EventKind = "error"
)

// Event is a state-change notification from one table. Payload is always the
// variant matching Kind.
type Event struct {
	Kind      EventKind `json:"kind"`
	TableID   string    `json:"tableId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}

// Payload is implemented only by the event variants below; the set is closed.
type Payload interface {
	EventKind() EventKind
}

type PlayerJoined struct {
	AgentID   string `json:"agentId"`
	SeatIndex int    `json:"seatIndex"`
	Stack     int    `json:"stack"`
}

type PlayerLeft struct {
	AgentID   string `json:"agentId"`
	SeatIndex int    `json:"seatIndex"`
	Stack     int    `json:"stack"`
}

type HandStarted struct {
	HandNumber  uint64   `json:"handNumber"`
	DealerIndex int      `json:"dealerIndex"`
	SmallBlind  int      `json:"smallBlind"`
	BigBlind    int      `json:"bigBlind"`
	Players     []string `json:"players"`
}

// CardsDealt is private to its recipient: the transport layer must deliver
// it only to the owning seat, never to spectators or other seats.
type CardsDealt struct {
	AgentID string      `json:"agentId"`
	Cards   []deck.Card `json:"cards"`
	Private bool        `json:"private"`
}

type ActionTaken struct {
	AgentID    string `json:"agentId"`
	Action     Action `json:"action"`
	Amount     int    `json:"amount"`
	Street     Street `json:"street"`
	Pot        int    `json:"pot"`
	CurrentBet int    `json:"currentBet"`
}

type StreetComplete struct {
	Street    Street      `json:"street"`
	Community []deck.Card `json:"community"`
	Pot       int         `json:"pot"`
}

type ShowdownHand struct {
	AgentID   string      `json:"agentId"`
	HoleCards []deck.Card `json:"holeCards"`
	Category  string      `json:"category"`
	Score     int         `json:"score"`
}

type ShowdownResult struct {
	Community []deck.Card    `json:"community"`
	Hands     []ShowdownHand `json:"hands"`
}

type PotAwarded struct {
	Winners  []string `json:"winners"`
	Pot      int      `json:"pot"`
	Rake     int      `json:"rake"`
	Share    int      `json:"share"`
	Showdown bool     `json:"showdown"`
}

type ErrorOccurred struct {
	AgentID string `json:"agentId,omitempty"`
	Message string `json:"message"`
}

func (PlayerJoined) EventKind() EventKind   { return EventPlayerJoined }
func (PlayerLeft) EventKind() EventKind     { return EventPlayerLeft }
func (HandStarted) EventKind() EventKind    { return EventHandStarted }
func (CardsDealt) EventKind() EventKind     { return EventCardsDealt }
func (ActionTaken) EventKind() EventKind    { return EventAction }
func (StreetComplete) EventKind() EventKind { return EventStreetComplete }
func (ShowdownResult) EventKind() EventKind { return EventShowdown }
func (PotAwarded) EventKind() EventKind     { return EventPotAwarded }
func (ErrorOccurred) EventKind() EventKind  { return EventError }

// broadcaster fans table events out to subscribers. Delivery is synchronous
// and isolated: a panicking subscriber is recovered so the rest still receive
// the event.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// subscribe registers fn and returns its unsubscribe handle.
func (b *broadcaster) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// publish delivers events in order to every current subscriber.
func (b *broadcaster) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			deliver(fn, ev)
		}
	}
}

func deliver(fn func(Event), ev Event) {
	defer func() {
		_ = recover() // one bad subscriber must not break the rest
	}()
	fn(ev)
}
