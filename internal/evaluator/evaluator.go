package evaluator

import (
	"fmt"
	"sort"

	"github.com/haveebot/agentpoker/internal/deck"
)

// Category is the hand class, ordered weakest to strongest so categories
// compare directly.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the readable name of the category.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Evaluated is the result of ranking a hand. Tiebreaks holds the rank values
// (2-14) that order hands within the same category, most significant first.
// Score is a single integer: any hand in a higher category scores above any
// hand in a lower one, and within a category the tiebreak sequence compares
// lexicographically. Equal scores are exact ties for split-pot purposes.
type Evaluated struct {
	Category  Category
	Tiebreaks []int
	Score     int
}

// Score layout: category in the high bits, then up to five tiebreak ranks
// packed as nibbles, most significant first. Rank values never exceed 14 so
// each fits a nibble.
func encodeScore(cat Category, tiebreaks []int) int {
	score := int(cat) << 20
	for i, t := range tiebreaks {
		score |= t << (16 - 4*i)
	}
	return score
}

// Evaluate ranks a 5 to 7 card hand. With more than 5 cards it scores every
// 5-card subset and keeps the best. Fewer than 5 cards is a programmer error
// and panics.
func Evaluate(cards []deck.Card) Evaluated {
	switch len(cards) {
	case 5:
		return evaluate5(cards)
	case 6, 7:
	default:
		panic(fmt.Sprintf("evaluator: need 5-7 cards, got %d", len(cards)))
	}

	n := len(cards)
	subset := make([]deck.Card, 0, 5)
	var best Evaluated
	first := true
	consider := func(skip1, skip2 int) {
		subset = subset[:0]
		for i, c := range cards {
			if i == skip1 || i == skip2 {
				continue
			}
			subset = append(subset, c)
		}
		ev := evaluate5(subset)
		if first || ev.Score > best.Score {
			best = ev
			first = false
		}
	}
	// Enumerate subsets by choosing the n-5 cards to leave out.
	if n == 6 {
		for skip := 0; skip < n; skip++ {
			consider(skip, -1)
		}
	} else {
		for skip1 := 0; skip1 < n; skip1++ {
			for skip2 := skip1 + 1; skip2 < n; skip2++ {
				consider(skip1, skip2)
			}
		}
	}
	return best
}

// evaluate5 classifies exactly five cards.
func evaluate5(cards []deck.Card) Evaluated {
	ranks := make([]int, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = c.RankValue()
		if c.Suit() != cards[0].Suit() {
			flush = false
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	straightHigh := straightHighCard(ranks)

	if flush && straightHigh > 0 {
		if straightHigh == 14 {
			return finish(RoyalFlush, nil)
		}
		return finish(StraightFlush, []int{straightHigh})
	}

	// Group ranks by multiplicity: count descending, then rank descending.
	type group struct{ count, rank int }
	var groups []group
	for i := 0; i < len(ranks); {
		j := i
		for j < len(ranks) && ranks[j] == ranks[i] {
			j++
		}
		groups = append(groups, group{count: j - i, rank: ranks[i]})
		i = j
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		return finish(FourOfAKind, []int{groups[0].rank, groups[1].rank})
	case groups[0].count == 3 && groups[1].count == 2:
		return finish(FullHouse, []int{groups[0].rank, groups[1].rank})
	case flush:
		return finish(Flush, ranks)
	case straightHigh > 0:
		return finish(Straight, []int{straightHigh})
	case groups[0].count == 3:
		return finish(ThreeOfAKind, []int{groups[0].rank, groups[1].rank, groups[2].rank})
	case groups[0].count == 2 && groups[1].count == 2:
		return finish(TwoPair, []int{groups[0].rank, groups[1].rank, groups[2].rank})
	case groups[0].count == 2:
		return finish(OnePair, []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank})
	default:
		return finish(HighCard, ranks)
	}
}

func finish(cat Category, tiebreaks []int) Evaluated {
	return Evaluated{
		Category:  cat,
		Tiebreaks: tiebreaks,
		Score:     encodeScore(cat, tiebreaks),
	}
}

// straightHighCard returns the high card of a straight formed by the five
// descending ranks, or 0 when they are not a straight. The wheel (A-5-4-3-2)
// counts as a 5-high straight: the only place an ace plays low.
func straightHighCard(desc []int) int {
	run := true
	for i := 1; i < len(desc); i++ {
		if desc[i] != desc[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		return desc[0]
	}
	if desc[0] == 14 && desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2 {
		return 5
	}
	return 0
}

// DetermineWinners returns the index of every hand whose score ties the
// maximum, preserving input order. Split pots fall out naturally: equal
// scores are all returned.
func DetermineWinners(hands []Evaluated) []int {
	if len(hands) == 0 {
		return nil
	}
	best := hands[0].Score
	for _, h := range hands[1:] {
		if h.Score > best {
			best = h.Score
		}
	}
	var winners []int
	for i, h := range hands {
		if h.Score == best {
			winners = append(winners, i)
		}
	}
	return winners
}
