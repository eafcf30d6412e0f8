package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/haveebot/agentpoker/internal/deck"
	"github.com/haveebot/agentpoker/internal/evaluator"
	"github.com/haveebot/agentpoker/internal/randutil"
)

type EquityCmd struct {
	Hole      string `arg:"" help:"Hole cards, e.g. 'AsKd'"`
	Board     string `short:"b" help:"Community cards dealt so far, e.g. 'Td7s8h'"`
	Opponents int    `short:"o" default:"1" help:"Number of opponents"`
	Trials    int    `short:"t" default:"100000" help:"Number of Monte Carlo trials"`
	Seed      *int64 `help:"Random seed for reproducible results"`
}

var (
	equityHandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	equityWinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

func (cmd *EquityCmd) Run() error {
	hole, err := parseCards(cmd.Hole)
	if err != nil {
		return fmt.Errorf("hole cards: %w", err)
	}
	if len(hole) != 2 {
		return fmt.Errorf("expected 2 hole cards, got %d", len(hole))
	}

	var board []deck.Card
	if cmd.Board != "" {
		board, err = parseCards(cmd.Board)
		if err != nil {
			return fmt.Errorf("board: %w", err)
		}
		if len(board) > 5 {
			return fmt.Errorf("board cannot have more than 5 cards")
		}
	}

	seed := time.Now().UnixNano()
	if cmd.Seed != nil {
		seed = *cmd.Seed
	}

	equity := evaluator.EstimateEquity(hole, board, cmd.Opponents, cmd.Trials, randutil.New(seed))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Hand:\t%s\n", equityHandStyle.Render(formatCardList(hole)))
	if len(board) > 0 {
		fmt.Fprintf(w, "Board:\t%s\n", formatCardList(board))
	}
	fmt.Fprintf(w, "Opponents:\t%d\n", cmd.Opponents)
	fmt.Fprintf(w, "Trials:\t%d\n", cmd.Trials)
	fmt.Fprintf(w, "Equity:\t%s\n", equityWinStyle.Render(fmt.Sprintf("%.2f%%", equity*100)))
	return w.Flush()
}

// parseCards reads a run of two-character cards, e.g. "AsKd" or "Td 7s 8h".
func parseCards(s string) ([]deck.Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length card string %q", s)
	}
	cards := make([]deck.Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := deck.Parse(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func formatCardList(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
