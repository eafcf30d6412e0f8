package game

import (
	"fmt"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/haveebot/agentpoker/internal/deck"
)

// Config holds the blind, buy-in and settlement parameters of a table.
type Config struct {
	SmallBlind int           `json:"smallBlind"`
	BigBlind   int           `json:"bigBlind"`
	MinBuyIn   int           `json:"minBuyIn"`
	MaxBuyIn   int           `json:"maxBuyIn"`
	MaxPlayers int           `json:"maxPlayers"`
	RakeMicros int           `json:"rakeMicros"` // rake as millionths of the pot, truncated
	HandDelay  time.Duration `json:"handDelay"`  // pause between pot award and the next deal
}

// Validate checks the configuration before a table is created.
func (c Config) Validate() error {
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind < c.SmallBlind {
		return fmt.Errorf("big blind %d below small blind %d", c.BigBlind, c.SmallBlind)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10, got %d", c.MaxPlayers)
	}
	if c.MinBuyIn <= 0 || c.MaxBuyIn < c.MinBuyIn {
		return fmt.Errorf("buy-in range %d..%d invalid", c.MinBuyIn, c.MaxBuyIn)
	}
	if c.RakeMicros < 0 || c.RakeMicros >= 1_000_000 {
		return fmt.Errorf("rake micros must be in [0, 1000000), got %d", c.RakeMicros)
	}
	if c.HandDelay < 0 {
		return fmt.Errorf("hand delay must not be negative")
	}
	return nil
}

// ActionRecord is the most recent action, kept for display.
type ActionRecord struct {
	AgentID string `json:"agentId"`
	Action  Action `json:"action"`
	Amount  int    `json:"amount"`
	Street  Street `json:"street"`
}

// Table is the authoritative betting state machine for one poker table.
// All mutations are serialized by the table mutex; tables share nothing, so
// independent tables never contend. Events raised during a mutation are
// buffered and published after the lock is released, so subscribers may call
// back into the table.
type Table struct {
	id     string
	cfg    Config
	logger *log.Logger
	clock  quartz.Clock
	bus    broadcaster

	mu          sync.Mutex
	rng         *rand.Rand
	seats       map[string]*Seat
	order       []*Seat // seats dealt into the current hand, by seat index
	deck        *deck.Deck
	community   []deck.Card
	pot         int
	currentBet  int
	dealerIndex int
	actionIndex int // index into order; -1 outside betting streets
	street      Street
	handNumber  uint64
	lastAction  *ActionRecord
	accRake     int
	handTimer   *quartz.Timer
	closed      bool
	pending     []Event
}

// NewTable creates an empty table in the waiting state. The RNG drives every
// shuffle on this table; the clock drives the between-hands delay.
func NewTable(id string, cfg Config, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Table {
	return &Table{
		id:          id,
		cfg:         cfg,
		logger:      logger.WithPrefix("table").With("id", id),
		clock:       clock,
		rng:         rng,
		seats:       make(map[string]*Seat),
		actionIndex: -1,
		street:      Waiting,
	}
}

// ID returns the table identifier.
func (t *Table) ID() string { return t.id }

// Config returns the table configuration.
func (t *Table) Config() Config { return t.cfg }

// Info is the listing summary for a table.
type Info struct {
	ID         string `json:"id"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
	Occupancy  int    `json:"occupancy"`
	MaxPlayers int    `json:"maxPlayers"`
	Street     Street `json:"street"`
}

// Info returns the current listing summary.
func (t *Table) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Info{
		ID:         t.id,
		SmallBlind: t.cfg.SmallBlind,
		BigBlind:   t.cfg.BigBlind,
		Occupancy:  len(t.seats),
		MaxPlayers: t.cfg.MaxPlayers,
		Street:     t.street,
	}
}

// Subscribe registers fn for every event this table emits and returns an
// unsubscribe handle.
func (t *Table) Subscribe(fn func(Event)) func() {
	return t.bus.subscribe(fn)
}

// Join seats an agent with the given buy-in. The first hand starts as soon as
// a second seat is occupied. Agents joining mid-hand are dealt in from the
// next hand.
func (t *Table) Join(agentID, agentKey, humanKey string, buyIn int) error {
	t.mu.Lock()
	err := t.joinLocked(agentID, agentKey, humanKey, buyIn)
	events := t.drainLocked()
	t.mu.Unlock()
	t.bus.publish(events)
	return err
}

func (t *Table) joinLocked(agentID, agentKey, humanKey string, buyIn int) error {
	if t.closed {
		return ErrTableClosed
	}
	if _, ok := t.seats[agentID]; ok {
		return ErrDuplicateSeat
	}
	if len(t.seats) >= t.cfg.MaxPlayers {
		return ErrTableFull
	}
	if buyIn < t.cfg.MinBuyIn || buyIn > t.cfg.MaxBuyIn {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidBuyIn, buyIn, t.cfg.MinBuyIn, t.cfg.MaxBuyIn)
	}

	seat := &Seat{
		AgentID:  agentID,
		AgentKey: agentKey,
		HumanKey: humanKey,
		Index:    t.lowestFreeIndexLocked(),
		Stack:    buyIn,
	}
	t.seats[agentID] = seat

	t.logger.Info("player joined", "agent", agentID, "seat", seat.Index, "buyIn", buyIn, "seated", len(t.seats))
	t.emitLocked(PlayerJoined{AgentID: agentID, SeatIndex: seat.Index, Stack: buyIn})

	if t.street == Waiting && len(t.readySeatsLocked()) >= 2 {
		t.startHandLocked()
	}
	return nil
}

func (t *Table) lowestFreeIndexLocked() int {
	used := make(map[int]bool, len(t.seats))
	for _, s := range t.seats {
		used[s.Index] = true
	}
	for i := 0; ; i++ {
		if !used[i] {
			return i
		}
	}
}

// readySeatsLocked returns seats with chips to play, ordered by seat index.
// Busted seats sit out until they leave or rebuy by rejoining.
func (t *Table) readySeatsLocked() []*Seat {
	ready := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		if s.Stack > 0 {
			ready = append(ready, s)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Index < ready[j].Index })
	return ready
}

// Leave removes a seat and returns its remaining stack for off-core
// settlement. A seat leaving mid-hand is folded first: chips it already
// committed stay in the pot, and the hand continues without it.
func (t *Table) Leave(agentID string) (int, error) {
	t.mu.Lock()
	stack, err := t.leaveLocked(agentID)
	events := t.drainLocked()
	t.mu.Unlock()
	t.bus.publish(events)
	return stack, err
}

func (t *Table) leaveLocked(agentID string) (int, error) {
	seat, ok := t.seats[agentID]
	if !ok {
		return 0, ErrNotSeated
	}

	if t.street.betting() && t.inHandLocked(seat) && !seat.Folded {
		t.forceFoldLocked(seat)
	}

	stack := seat.Stack
	delete(t.seats, agentID)
	// The seat stays in the current hand's order as a folded entry until the
	// hand resolves; it can no longer win or act.

	t.logger.Info("player left", "agent", agentID, "seat", seat.Index, "stack", stack, "seated", len(t.seats))
	t.emitLocked(PlayerLeft{AgentID: agentID, SeatIndex: seat.Index, Stack: stack})
	return stack, nil
}

func (t *Table) inHandLocked(seat *Seat) bool {
	for _, s := range t.order {
		if s == seat {
			return true
		}
	}
	return false
}

// CollectRake returns the rake accumulated since the last collection and
// resets the accumulator.
func (t *Table) CollectRake() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.accRake
	t.accRake = 0
	return r
}

// Close stops the between-hands timer and rejects further joins. In-flight
// subscribers keep their registrations; the table simply goes quiet.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.handTimer != nil {
		t.handTimer.Stop()
		t.handTimer = nil
	}
}

// emitLocked buffers an event for publication once the table lock drops.
func (t *Table) emitLocked(p Payload) {
	t.pending = append(t.pending, Event{
		Kind:      p.EventKind(),
		TableID:   t.id,
		Timestamp: t.clock.Now(),
		Payload:   p,
	})
}

func (t *Table) drainLocked() []Event {
	events := t.pending
	t.pending = nil
	return events
}
