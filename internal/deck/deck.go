package deck

import rand "math/rand/v2"

// Deck is an ordered set of undealt cards for a single hand. A fresh deck is
// a uniform permutation of all 52 card values; dealing consumes from the end.
type Deck struct {
	cards []Card
}

// New returns a full shuffled deck. The permutation is a Fisher-Yates shuffle
// driven entirely by the caller's RNG, so a seeded RNG yields a deterministic
// deal order.
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, NumCards)}
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	return d
}

// Draw removes and returns one card. Drawing from an empty deck means the
// state machine asked for more cards than a hand can use, which is a defect
// upstream, so it panics rather than degrade.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		panic("deck: draw from empty deck")
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

// DrawN draws n cards.
func (d *Deck) DrawN(n int) []Card {
	out := make([]Card, n)
	for i := range out {
		out[i] = d.Draw()
	}
	return out
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int { return len(d.cards) }
