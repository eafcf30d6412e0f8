package deck

import "fmt"

// Card identifies one of the 52 playing cards as a single integer in [0, 52).
// The rank is card % 13 (0=Two .. 12=Ace) and the suit is card / 13.
type Card int

// NumCards is the size of the deck universe.
const NumCards = 52

// Rank indices within a suit.
const (
	Two = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit indices.
const (
	Clubs = iota
	Diamonds
	Hearts
	Spades
)

const (
	rankNames = "23456789TJQKA"
	suitNames = "cdhs"
)

// Make builds a card from a suit (0-3) and rank (0-12).
func Make(suit, rank int) Card {
	return Card(suit*13 + rank)
}

// Rank returns the card's rank index, 0=Two through 12=Ace.
func (c Card) Rank() int { return int(c) % 13 }

// Suit returns the card's suit index.
func (c Card) Suit() int { return int(c) / 13 }

// RankValue returns the card's comparable rank value, 2 for a deuce through
// 14 for an ace. Aces are high; the evaluator handles the wheel separately.
func (c Card) RankValue() int { return c.Rank() + 2 }

// Valid reports whether the card value is inside the 52-card universe.
func (c Card) Valid() bool { return c >= 0 && c < NumCards }

// String renders the card in compact notation, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("?%d", int(c))
	}
	return string(rankNames[c.Rank()]) + string(suitNames[c.Suit()])
}

// Parse converts compact notation ("As", "td") back into a Card.
func Parse(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("card %q: want rank and suit characters", s)
	}
	rank := -1
	for i := 0; i < len(rankNames); i++ {
		if rankNames[i] == upper(s[0]) {
			rank = i
			break
		}
	}
	suit := -1
	for i := 0; i < len(suitNames); i++ {
		if suitNames[i] == lower(s[1]) {
			suit = i
			break
		}
	}
	if rank < 0 || suit < 0 {
		return 0, fmt.Errorf("card %q: unknown rank or suit", s)
	}
	return Make(suit, rank), nil
}

// MustParse is Parse for test fixtures and static tables; it panics on error.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
