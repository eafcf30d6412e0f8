package game

import (
	"github.com/haveebot/agentpoker/internal/deck"
	"github.com/haveebot/agentpoker/internal/evaluator"
)

// startHandLocked begins a new hand: fresh deck, rotated dealer, hole cards,
// blinds. Callers must hold the table lock and have checked that at least two
// funded seats exist.
func (t *Table) startHandLocked() {
	order := t.readySeatsLocked()
	if len(order) < 2 {
		return
	}

	t.handNumber++
	t.order = order
	t.pot = 0
	t.currentBet = 0
	t.community = nil
	t.lastAction = nil
	t.deck = deck.New(t.rng)
	for _, s := range t.order {
		s.resetForHand()
	}

	n := len(t.order)
	t.dealerIndex = (t.dealerIndex + 1) % n
	t.street = Preflop

	players := make([]string, n)
	for i, s := range t.order {
		s.HoleCards = t.deck.DrawN(2)
		players[i] = s.AgentID
	}

	// Blinds are capped at the poster's stack; a short post is an immediate
	// all-in. The table bet stays the nominal big blind either way.
	sb := t.order[(t.dealerIndex+1)%n]
	bb := t.order[(t.dealerIndex+2)%n]
	t.postBlindLocked(sb, t.cfg.SmallBlind)
	t.postBlindLocked(bb, t.cfg.BigBlind)
	t.currentBet = t.cfg.BigBlind

	t.actionIndex = t.nextActorLocked((t.dealerIndex + 3) % n)

	t.logger.Info("hand started",
		"hand", t.handNumber, "players", n, "dealer", t.dealerIndex,
		"sb", sb.AgentID, "bb", bb.AgentID)

	t.emitLocked(HandStarted{
		HandNumber:  t.handNumber,
		DealerIndex: t.dealerIndex,
		SmallBlind:  t.cfg.SmallBlind,
		BigBlind:    t.cfg.BigBlind,
		Players:     players,
	})
	for _, s := range t.order {
		t.emitLocked(CardsDealt{AgentID: s.AgentID, Cards: s.HoleCards, Private: true})
	}

	// Everyone may already be all-in from the blinds; run the board out.
	if t.actionIndex == -1 {
		t.advanceStreetLocked()
	}
}

func (t *Table) postBlindLocked(seat *Seat, blind int) {
	amount := min(blind, seat.Stack)
	t.commitLocked(seat, amount)
}

// commitLocked moves chips from a seat's stack into the pot, tracking the
// seat's street commitment. CurrentBet is a per-street marker: the chips it
// counts are already inside the pot.
func (t *Table) commitLocked(seat *Seat, chips int) {
	seat.Stack -= chips
	seat.CurrentBet += chips
	t.pot += chips
	if seat.Stack == 0 {
		seat.AllIn = true
	}
}

// HandleAction validates and applies a betting action for the seat whose turn
// it is. Rejected actions leave the table unchanged.
func (t *Table) HandleAction(agentID string, action Action, amount int) error {
	t.mu.Lock()
	err := t.handleActionLocked(agentID, action, amount)
	if err != nil {
		t.emitLocked(ErrorOccurred{AgentID: agentID, Message: err.Error()})
	}
	events := t.drainLocked()
	t.mu.Unlock()
	t.bus.publish(events)
	return err
}

func (t *Table) handleActionLocked(agentID string, action Action, amount int) error {
	seat, ok := t.seats[agentID]
	if !ok {
		return ErrNotSeated
	}
	if !t.street.betting() || t.actionIndex < 0 {
		return ErrNotYourTurn
	}
	acting := t.order[t.actionIndex]
	if acting != seat {
		return ErrNotYourTurn
	}
	if !seat.canAct() {
		return ErrSeatCannotAct
	}

	switch action {
	case Fold:
		seat.Folded = true

	case Check:
		if seat.CurrentBet != t.currentBet {
			return ErrIllegalCheck
		}

	case Call:
		toCall := t.currentBet - seat.CurrentBet
		t.commitLocked(seat, min(toCall, seat.Stack))

	case Raise:
		if amount <= t.currentBet {
			return ErrIllegalRaise
		}
		needed := amount - seat.CurrentBet
		if needed > seat.Stack {
			return ErrInsufficientStack
		}
		t.commitLocked(seat, needed)
		t.currentBet = amount
		t.reopenActionLocked(seat)

	case AllIn:
		t.commitLocked(seat, seat.Stack)
		if seat.CurrentBet > t.currentBet {
			// A short all-in is a capped call; a covering one is a raise.
			t.currentBet = seat.CurrentBet
			t.reopenActionLocked(seat)
		}

	default:
		return ErrInvalidAction
	}

	seat.Acted = true
	t.lastAction = &ActionRecord{AgentID: agentID, Action: action, Amount: seat.CurrentBet, Street: t.street}
	t.emitLocked(ActionTaken{
		AgentID:    agentID,
		Action:     action,
		Amount:     seat.CurrentBet,
		Street:     t.street,
		Pot:        t.pot,
		CurrentBet: t.currentBet,
	})

	t.afterActionLocked()
	return nil
}

// reopenActionLocked clears the acted flag of every other live seat after a
// raise, so each must act again before the round can close.
func (t *Table) reopenActionLocked(raiser *Seat) {
	for _, s := range t.order {
		if s != raiser && s.canAct() {
			s.Acted = false
		}
	}
}

// forceFoldLocked folds a seat out of turn (used when a seat leaves
// mid-hand) and keeps the hand moving.
func (t *Table) forceFoldLocked(seat *Seat) {
	seat.Folded = true
	seat.Acted = true
	t.emitLocked(ActionTaken{
		AgentID:    seat.AgentID,
		Action:     Fold,
		Street:     t.street,
		Pot:        t.pot,
		CurrentBet: t.currentBet,
	})

	if t.actionIndex >= 0 && t.order[t.actionIndex] == seat {
		t.afterActionLocked()
		return
	}
	// Folding out of rotation can itself finish the hand or the round.
	if t.countNonFoldedLocked() == 1 {
		t.awardToLastLocked()
		return
	}
	if t.roundCompleteLocked() {
		t.advanceStreetLocked()
	}
}

// afterActionLocked decides what follows a completed action: end of hand,
// end of street, or passing the action along.
func (t *Table) afterActionLocked() {
	if t.countNonFoldedLocked() == 1 {
		t.awardToLastLocked()
		return
	}
	if t.roundCompleteLocked() {
		t.advanceStreetLocked()
		return
	}
	t.actionIndex = t.nextActorLocked(t.actionIndex + 1)
}

func (t *Table) countNonFoldedLocked() int {
	n := 0
	for _, s := range t.order {
		if !s.Folded {
			n++
		}
	}
	return n
}

// roundCompleteLocked reports whether the betting round is settled: every
// non-folded seat is either all-in or has acted and matched the table bet.
func (t *Table) roundCompleteLocked() bool {
	for _, s := range t.order {
		if s.Folded || s.AllIn {
			continue
		}
		if !s.Acted || s.CurrentBet != t.currentBet {
			return false
		}
	}
	return true
}

// nextActorLocked finds the next seat that can act, scanning from position
// `from` around the table. Returns -1 when nobody can act.
func (t *Table) nextActorLocked(from int) int {
	n := len(t.order)
	for i := 0; i < n; i++ {
		pos := ((from + i) % n + n) % n
		if t.order[pos].canAct() {
			return pos
		}
	}
	return -1
}

// advanceStreetLocked moves the hand to the next street, dealing community
// cards and resetting street betting state. When no seat can act (everyone
// all-in) it keeps advancing until showdown.
func (t *Table) advanceStreetLocked() {
	for _, s := range t.order {
		s.resetForStreet()
	}
	t.currentBet = 0
	t.actionIndex = -1

	switch t.street {
	case Preflop:
		t.street = Flop
		t.community = append(t.community, t.deck.DrawN(3)...)
	case Flop:
		t.street = Turn
		t.community = append(t.community, t.deck.Draw())
	case Turn:
		t.street = River
		t.community = append(t.community, t.deck.Draw())
	case River:
		t.showdownLocked()
		return
	default:
		return
	}

	t.emitLocked(StreetComplete{Street: t.street, Community: t.communityCopyLocked(), Pot: t.pot})

	t.actionIndex = t.nextActorLocked((t.dealerIndex + 1) % len(t.order))
	if t.actionIndex == -1 {
		t.advanceStreetLocked()
	}
}

// showdownLocked evaluates every non-folded seat's best 7-card hand and
// settles the pot among the top scores.
func (t *Table) showdownLocked() {
	t.street = Showdown
	t.actionIndex = -1

	var contenders []*Seat
	for _, s := range t.order {
		if !s.Folded {
			contenders = append(contenders, s)
		}
	}

	hands := make([]evaluator.Evaluated, len(contenders))
	shown := make([]ShowdownHand, len(contenders))
	for i, s := range contenders {
		cards := make([]deck.Card, 0, 7)
		cards = append(cards, s.HoleCards...)
		cards = append(cards, t.community...)
		hands[i] = evaluator.Evaluate(cards)
		shown[i] = ShowdownHand{
			AgentID:   s.AgentID,
			HoleCards: s.HoleCards,
			Category:  hands[i].Category.String(),
			Score:     hands[i].Score,
		}
	}
	t.emitLocked(ShowdownResult{Community: t.communityCopyLocked(), Hands: shown})

	var winners []*Seat
	for _, idx := range evaluator.DetermineWinners(hands) {
		winners = append(winners, contenders[idx])
	}
	t.awardPotLocked(winners, true)
}

func (t *Table) awardToLastLocked() {
	for _, s := range t.order {
		if !s.Folded {
			t.awardPotLocked([]*Seat{s}, false)
			return
		}
	}
}

// awardPotLocked settles the hand: rake is truncated off the pre-split pot
// exactly once, the remainder splits into equal integer shares, and the
// division leftover joins the rake accumulator so no chip is created or
// destroyed. Then the table returns to waiting and the next hand is
// scheduled.
func (t *Table) awardPotLocked(winners []*Seat, showdown bool) {
	pot := t.pot
	rake := 0
	if t.cfg.RakeMicros > 0 {
		rake = pot * t.cfg.RakeMicros / 1_000_000
	}
	share := (pot - rake) / len(winners)
	leftover := (pot - rake) - share*len(winners)
	t.accRake += rake + leftover

	ids := make([]string, len(winners))
	for i, s := range winners {
		s.Stack += share
		ids[i] = s.AgentID
	}

	t.logger.Info("pot awarded",
		"hand", t.handNumber, "pot", pot, "rake", rake, "winners", ids, "showdown", showdown)
	t.emitLocked(PotAwarded{Winners: ids, Pot: pot, Rake: rake, Share: share, Showdown: showdown})

	t.pot = 0
	t.currentBet = 0
	t.street = Waiting
	t.actionIndex = -1
	t.order = nil

	t.scheduleNextHandLocked()
}

// scheduleNextHandLocked arms the between-hands timer. The timer fires once;
// if the table emptied in the meantime it does nothing and the next join
// restarts play.
func (t *Table) scheduleNextHandLocked() {
	if t.closed || len(t.readySeatsLocked()) < 2 {
		return
	}
	if t.handTimer != nil {
		t.handTimer.Stop()
	}
	t.handTimer = t.clock.AfterFunc(t.cfg.HandDelay, func() {
		t.mu.Lock()
		if !t.closed && t.street == Waiting && len(t.readySeatsLocked()) >= 2 {
			t.startHandLocked()
		}
		events := t.drainLocked()
		t.mu.Unlock()
		t.bus.publish(events)
	})
}

func (t *Table) communityCopyLocked() []deck.Card {
	out := make([]deck.Card, len(t.community))
	copy(out, t.community)
	return out
}
