package server

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haveebot/agentpoker/internal/deck"
	"github.com/haveebot/agentpoker/internal/game"
)

var (
	monitorHandStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7D56F4")).
				Bold(true)

	monitorActionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFD700"))

	monitorWinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	monitorBoardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Bold(true)

	monitorErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B"))

	monitorDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// ConsoleMonitor writes a styled one-line account of table events to the
// operator console. It is a plain table subscriber: attach it with
// Table.Subscribe or Registry.Subscribe.
type ConsoleMonitor struct {
	writer io.Writer
}

// NewConsoleMonitor creates a monitor writing to w, or stdout when w is nil.
func NewConsoleMonitor(w io.Writer) *ConsoleMonitor {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleMonitor{writer: w}
}

// HandleEvent renders one table event.
func (m *ConsoleMonitor) HandleEvent(ev game.Event) {
	short := ev.TableID
	if len(short) > 8 {
		short = short[:8]
	}
	prefix := monitorDimStyle.Render(fmt.Sprintf("[%s]", short))

	switch p := ev.Payload.(type) {
	case game.PlayerJoined:
		fmt.Fprintf(m.writer, "%s %s joined seat %d with %d\n", prefix, p.AgentID, p.SeatIndex, p.Stack)

	case game.PlayerLeft:
		fmt.Fprintf(m.writer, "%s %s left with %d\n", prefix, p.AgentID, p.Stack)

	case game.HandStarted:
		fmt.Fprintf(m.writer, "%s %s\n", prefix,
			monitorHandStyle.Render(fmt.Sprintf("=== hand #%d === %s", p.HandNumber, strings.Join(p.Players, " vs "))))

	case game.ActionTaken:
		line := fmt.Sprintf("%s %s", p.AgentID, p.Action)
		if p.Amount > 0 && p.Action != game.Fold && p.Action != game.Check {
			line = fmt.Sprintf("%s to %d", line, p.Amount)
		}
		fmt.Fprintf(m.writer, "%s %s %s\n", prefix,
			monitorActionStyle.Render(line),
			monitorDimStyle.Render(fmt.Sprintf("(pot %d)", p.Pot)))

	case game.StreetComplete:
		fmt.Fprintf(m.writer, "%s %s %s\n", prefix, p.Street,
			monitorBoardStyle.Render(formatCards(p.Community)))

	case game.ShowdownResult:
		for _, h := range p.Hands {
			fmt.Fprintf(m.writer, "%s %s shows %s %s\n", prefix, h.AgentID,
				monitorBoardStyle.Render(formatCards(h.HoleCards)),
				monitorDimStyle.Render(h.Category))
		}

	case game.PotAwarded:
		line := fmt.Sprintf("%s wins %d", strings.Join(p.Winners, ", "), p.Share)
		if p.Rake > 0 {
			line = fmt.Sprintf("%s (rake %d)", line, p.Rake)
		}
		fmt.Fprintf(m.writer, "%s %s\n", prefix, monitorWinStyle.Render(line))

	case game.ErrorOccurred:
		fmt.Fprintf(m.writer, "%s %s\n", prefix,
			monitorErrorStyle.Render(fmt.Sprintf("%s: %s", p.AgentID, p.Message)))
	}
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
