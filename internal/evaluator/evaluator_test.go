package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haveebot/agentpoker/internal/deck"
)

func hand(names ...string) []deck.Card {
	cards := make([]deck.Card, len(names))
	for i, n := range names {
		cards[i] = deck.MustParse(n)
	}
	return cards
}

func TestCategoryClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards []string
		want  Category
	}{
		{"royal flush", []string{"As", "Ks", "Qs", "Js", "Ts"}, RoyalFlush},
		{"straight flush", []string{"9h", "8h", "7h", "6h", "5h"}, StraightFlush},
		{"wheel straight flush", []string{"Ac", "2c", "3c", "4c", "5c"}, StraightFlush},
		{"four of a kind", []string{"Ah", "Ad", "As", "Ac", "2d"}, FourOfAKind},
		{"full house", []string{"Kh", "Kd", "Ks", "2c", "2d"}, FullHouse},
		{"flush", []string{"Ah", "Jh", "8h", "6h", "2h"}, Flush},
		{"straight", []string{"9h", "8c", "7d", "6s", "5h"}, Straight},
		{"wheel", []string{"As", "2c", "3d", "4s", "5h"}, Straight},
		{"three of a kind", []string{"7h", "7d", "7s", "Kc", "2d"}, ThreeOfAKind},
		{"two pair", []string{"Jh", "Jd", "4s", "4c", "Ad"}, TwoPair},
		{"one pair", []string{"Th", "Td", "8s", "5c", "2d"}, OnePair},
		{"high card", []string{"Ah", "Jd", "8s", "5c", "2d"}, HighCard},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(hand(tc.cards...)).Category)
		})
	}
}

// Any hand in a higher category must outrank any hand in a lower one,
// whatever the tiebreak values.
func TestCategoryOrdering(t *testing.T) {
	t.Parallel()

	ladder := [][]string{
		{"Ah", "Jd", "8s", "5c", "2d"}, // high card
		{"2h", "2d", "3s", "4c", "5d"}, // weakest pair
		{"3h", "3d", "2s", "2c", "4d"}, // weak two pair
		{"2h", "2d", "2s", "3c", "4d"}, // weakest trips
		{"As", "2c", "3d", "4s", "5h"}, // wheel, weakest straight
		{"7h", "5h", "4h", "3h", "2h"}, // weakest flush
		{"2h", "2d", "2s", "3c", "3d"}, // weakest full house
		{"2h", "2d", "2s", "2c", "3d"}, // weakest quads
		{"Ac", "2c", "3c", "4c", "5c"}, // weakest straight flush
		{"As", "Ks", "Qs", "Js", "Ts"}, // royal flush
	}
	prev := Evaluate(hand(ladder[0]...))
	for _, cards := range ladder[1:] {
		cur := Evaluate(hand(cards...))
		assert.Greater(t, cur.Score, prev.Score,
			"%s should beat %s", cur.Category, prev.Category)
		prev = cur
	}
}

func TestWheelRanksBelowSixHighStraight(t *testing.T) {
	t.Parallel()

	wheel := Evaluate(hand("As", "2c", "3d", "4s", "5h"))
	sixHigh := Evaluate(hand("6s", "5c", "4d", "3s", "2h"))
	sevenHigh := Evaluate(hand("7s", "6c", "5d", "4s", "3h"))

	assert.Equal(t, Straight, wheel.Category)
	assert.Equal(t, []int{5}, wheel.Tiebreaks)
	assert.Less(t, wheel.Score, sixHigh.Score)
	assert.Less(t, sixHigh.Score, sevenHigh.Score)
}

func TestTiebreakOrdering(t *testing.T) {
	t.Parallel()

	t.Run("quads by quad rank then kicker", func(t *testing.T) {
		hi := Evaluate(hand("Ah", "Ad", "As", "Ac", "2d"))
		lo := Evaluate(hand("Kh", "Kd", "Ks", "Kc", "Ad"))
		assert.Greater(t, hi.Score, lo.Score)

		kick := Evaluate(hand("Ah", "Ad", "As", "Ac", "Kd"))
		assert.Greater(t, kick.Score, Evaluate(hand("Ah", "Ad", "As", "Ac", "Qd")).Score)
	})

	t.Run("full house by trips then pair", func(t *testing.T) {
		hi := Evaluate(hand("3h", "3d", "3s", "2c", "2d"))
		lo := Evaluate(hand("2h", "2d", "2s", "Ac", "Ad"))
		assert.Greater(t, hi.Score, lo.Score)
	})

	t.Run("flush by descending ranks", func(t *testing.T) {
		hi := Evaluate(hand("Ah", "Jh", "8h", "6h", "3h"))
		lo := Evaluate(hand("Ad", "Jd", "8d", "6d", "2d"))
		assert.Greater(t, hi.Score, lo.Score)
	})

	t.Run("two pair by high pair, low pair, kicker", func(t *testing.T) {
		a := Evaluate(hand("Jh", "Jd", "4s", "4c", "Ad"))
		b := Evaluate(hand("Jh", "Jd", "4s", "4c", "Kd"))
		c := Evaluate(hand("Jh", "Jd", "3s", "3c", "Ad"))
		d := Evaluate(hand("Th", "Td", "9s", "9c", "Ad"))
		assert.Greater(t, a.Score, b.Score)
		assert.Greater(t, b.Score, c.Score)
		assert.Greater(t, c.Score, d.Score)
	})

	t.Run("pair kickers descend", func(t *testing.T) {
		a := Evaluate(hand("Th", "Td", "As", "8c", "2d"))
		b := Evaluate(hand("Th", "Td", "As", "7c", "3d"))
		assert.Greater(t, a.Score, b.Score)
	})
}

func TestIdenticalHandsTie(t *testing.T) {
	t.Parallel()

	a := Evaluate(hand("Ah", "Kd", "Qs", "Jc", "9d"))
	b := Evaluate(hand("Ad", "Kc", "Qh", "Js", "9c"))
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Tiebreaks, b.Tiebreaks)
}

func TestEvaluateSevenPicksBestFive(t *testing.T) {
	t.Parallel()

	// Hole cards complete a flush that hides a lower straight.
	ev := Evaluate(hand("Ah", "Kh", "Qh", "Jh", "Th", "9c", "8d"))
	assert.Equal(t, RoyalFlush, ev.Category)

	// Board pair plus hole pair makes two pair, best kicker chosen.
	ev = Evaluate(hand("Ah", "Ad", "Ks", "Kc", "Qd", "7s", "2c"))
	assert.Equal(t, TwoPair, ev.Category)
	assert.Equal(t, []int{14, 13, 12}, ev.Tiebreaks)

	// Six cards as well.
	ev = Evaluate(hand("9h", "8h", "7h", "6h", "5h", "Ad"))
	assert.Equal(t, StraightFlush, ev.Category)
}

func TestEvaluateRejectsShortHands(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Evaluate(hand("Ah", "Kd", "Qs", "Jc")) })
	assert.Panics(t, func() { Evaluate(nil) })
}

func TestDetermineWinners(t *testing.T) {
	t.Parallel()

	straight := Evaluate(hand("9h", "8c", "7d", "6s", "5h"))
	sameStraight := Evaluate(hand("9d", "8s", "7c", "6h", "5d"))
	pair := Evaluate(hand("Th", "Td", "8s", "5c", "2d"))

	t.Run("singleton winner", func(t *testing.T) {
		assert.Equal(t, []int{0}, DetermineWinners([]Evaluated{straight, pair}))
		assert.Equal(t, []int{1}, DetermineWinners([]Evaluated{pair, straight}))
	})

	t.Run("split pot", func(t *testing.T) {
		require.Equal(t, straight.Score, sameStraight.Score)
		assert.Equal(t, []int{0, 2}, DetermineWinners([]Evaluated{straight, pair, sameStraight}))
	})

	t.Run("all tie", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2}, DetermineWinners([]Evaluated{straight, sameStraight, straight}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, DetermineWinners(nil))
	})
}
