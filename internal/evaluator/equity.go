package evaluator

import (
	"fmt"
	rand "math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/haveebot/agentpoker/internal/deck"
	"github.com/haveebot/agentpoker/internal/randutil"
)

// Trials below this run on a single worker; goroutine overhead isn't worth it.
const parallelThreshold = 512

// EstimateEquity estimates the probability that the hero's hand wins against
// numOpponents players holding random cards, given 0-5 known community cards.
//
// Each trial independently completes the board to 5 cards and deals 2 cards
// to every opponent from the remaining deck, without replacement within the
// trial. A trial counts as a win only when the hero's score strictly exceeds
// every opponent's: ties count as losses, so the estimate is deliberately
// pessimistic rather than a win-or-split calculation.
func EstimateEquity(hole []deck.Card, board []deck.Card, numOpponents, trials int, rng *rand.Rand) float64 {
	if len(hole) != 2 {
		panic(fmt.Sprintf("equity: hero must hold 2 cards, got %d", len(hole)))
	}
	if len(board) > 5 {
		panic(fmt.Sprintf("equity: board has %d cards", len(board)))
	}
	if numOpponents < 1 {
		panic("equity: need at least one opponent")
	}
	// Every trial must be able to deal the runout plus two cards per opponent.
	if (5-len(board))+2*numOpponents > deck.NumCards-len(hole)-len(board) {
		panic(fmt.Sprintf("equity: %d opponents cannot be dealt from the remaining deck", numOpponents))
	}
	if trials <= 0 {
		return 0
	}

	// Remaining deck: the 52-card universe minus every known card.
	var known uint64
	for _, c := range hole {
		known |= 1 << uint(c)
	}
	for _, c := range board {
		known |= 1 << uint(c)
	}
	remaining := make([]deck.Card, 0, deck.NumCards-len(hole)-len(board))
	for v := 0; v < deck.NumCards; v++ {
		if known&(1<<uint(v)) == 0 {
			remaining = append(remaining, deck.Card(v))
		}
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if trials < parallelThreshold || workers < 2 {
		return float64(runTrials(hole, board, remaining, numOpponents, trials, rng)) / float64(trials)
	}

	perWorker := trials / workers
	remainder := trials % workers

	var g errgroup.Group
	wins := make([]int, workers)
	for w := 0; w < workers; w++ {
		n := perWorker
		if w < remainder {
			n++
		}
		workerRNG := randutil.Child(rng)
		g.Go(func() error {
			wins[w] = runTrials(hole, board, remaining, numOpponents, n, workerRNG)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	total := 0
	for _, w := range wins {
		total += w
	}
	return float64(total) / float64(trials)
}

// runTrials executes n independent trials and returns the strict-win count.
func runTrials(hole, board, remaining []deck.Card, numOpponents, n int, rng *rand.Rand) int {
	need := (5 - len(board)) + 2*numOpponents
	pool := make([]deck.Card, len(remaining))
	hero := make([]deck.Card, 0, 7)
	opp := make([]deck.Card, 0, 7)

	wins := 0
	for t := 0; t < n; t++ {
		copy(pool, remaining)
		// Partial Fisher-Yates: the first `need` slots become a uniform draw
		// without replacement.
		for k := 0; k < need; k++ {
			j := k + rng.IntN(len(pool)-k)
			pool[k], pool[j] = pool[j], pool[k]
		}
		runout := pool[:5-len(board)]

		hero = hero[:0]
		hero = append(hero, hole...)
		hero = append(hero, board...)
		hero = append(hero, runout...)
		heroScore := Evaluate(hero).Score

		next := 5 - len(board)
		won := true
		for o := 0; o < numOpponents; o++ {
			opp = opp[:0]
			opp = append(opp, pool[next], pool[next+1])
			next += 2
			opp = append(opp, board...)
			opp = append(opp, runout...)
			if Evaluate(opp).Score >= heroScore {
				won = false
				break
			}
		}
		if won {
			wins++
		}
	}
	return wins
}
