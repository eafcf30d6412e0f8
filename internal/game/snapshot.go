package game

import (
	"sort"

	"github.com/haveebot/agentpoker/internal/deck"
)

// SeatSnapshot is one seat's public view. HoleCards is populated only in the
// owner's snapshot, or for non-folded seats once the hand reaches showdown.
type SeatSnapshot struct {
	AgentID    string      `json:"agentId"`
	SeatIndex  int         `json:"seatIndex"`
	Stack      int         `json:"stack"`
	CurrentBet int         `json:"currentBet"`
	Folded     bool        `json:"folded"`
	AllIn      bool        `json:"allIn"`
	InHand     bool        `json:"inHand"`
	HoleCards  []deck.Card `json:"holeCards,omitempty"`
}

// TableSnapshot is a point-in-time view of a table, filtered for one viewer.
type TableSnapshot struct {
	TableID     string         `json:"tableId"`
	Street      Street         `json:"street"`
	HandNumber  uint64         `json:"handNumber"`
	Pot         int            `json:"pot"`
	CurrentBet  int            `json:"currentBet"`
	Community   []deck.Card    `json:"community"`
	DealerIndex int            `json:"dealerIndex"`
	ActionOn    string         `json:"actionOn,omitempty"`
	LastAction  *ActionRecord  `json:"lastAction,omitempty"`
	Seats       []SeatSnapshot `json:"seats"`
}

// Snapshot returns the table state as visible to forAgentID. Pass an empty
// string for a spectator view. Hole cards other than the viewer's own are
// withheld until showdown.
func (t *Table) Snapshot(forAgentID string) TableSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := TableSnapshot{
		TableID:     t.id,
		Street:      t.street,
		HandNumber:  t.handNumber,
		Pot:         t.pot,
		CurrentBet:  t.currentBet,
		Community:   t.communityCopyLocked(),
		DealerIndex: t.dealerIndex,
	}
	if t.actionIndex >= 0 {
		snap.ActionOn = t.order[t.actionIndex].AgentID
	}
	if t.lastAction != nil {
		rec := *t.lastAction
		snap.LastAction = &rec
	}

	for _, s := range t.readyOrAllSeatsLocked() {
		ss := SeatSnapshot{
			AgentID:    s.AgentID,
			SeatIndex:  s.Index,
			Stack:      s.Stack,
			CurrentBet: s.CurrentBet,
			Folded:     s.Folded,
			AllIn:      s.AllIn,
			InHand:     t.inHandLocked(s),
		}
		reveal := s.AgentID == forAgentID ||
			(t.street == Showdown && !s.Folded && t.inHandLocked(s))
		if reveal && len(s.HoleCards) > 0 {
			ss.HoleCards = append([]deck.Card(nil), s.HoleCards...)
		}
		snap.Seats = append(snap.Seats, ss)
	}
	return snap
}

// readyOrAllSeatsLocked lists every seated agent by seat index, busted or not.
func (t *Table) readyOrAllSeatsLocked() []*Seat {
	all := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	return all
}
