package game

import "github.com/haveebot/agentpoker/internal/deck"

// Seat is one agent's position at a table. The agent and human keys are
// opaque identity material supplied at join time; the engine stores and
// echoes them but never verifies them.
type Seat struct {
	AgentID  string
	AgentKey string
	HumanKey string

	// Index is the lowest seat index free at join time. It is stable for
	// the life of the seat and orders seats around the table.
	Index int

	Stack      int
	HoleCards  []deck.Card
	CurrentBet int
	Folded     bool
	AllIn      bool
	Acted      bool
}

// canAct reports whether the seat may still take betting actions this hand.
func (s *Seat) canAct() bool {
	return !s.Folded && !s.AllIn
}

// resetForHand clears the per-hand transient state.
func (s *Seat) resetForHand() {
	s.HoleCards = nil
	s.CurrentBet = 0
	s.Folded = false
	s.AllIn = false
	s.Acted = false
}

// resetForStreet clears the per-street betting state.
func (s *Seat) resetForStreet() {
	s.CurrentBet = 0
	s.Acted = false
}
