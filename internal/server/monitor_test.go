package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haveebot/agentpoker/internal/deck"
	"github.com/haveebot/agentpoker/internal/game"
)

func TestConsoleMonitorRendersHand(t *testing.T) {
	var buf strings.Builder
	mon := NewConsoleMonitor(&buf)

	mon.HandleEvent(tableEvent(game.HandStarted{HandNumber: 3, Players: []string{"alice", "bob"}}))
	mon.HandleEvent(tableEvent(game.ActionTaken{AgentID: "alice", Action: game.Raise, Amount: 10, Pot: 13}))
	mon.HandleEvent(tableEvent(game.StreetComplete{
		Street:    game.Flop,
		Community: []deck.Card{deck.MustParse("As"), deck.MustParse("Kd"), deck.MustParse("7c")},
	}))
	mon.HandleEvent(tableEvent(game.PotAwarded{Winners: []string{"bob"}, Pot: 20, Rake: 1, Share: 19}))

	out := buf.String()
	assert.Contains(t, out, "hand #3")
	assert.Contains(t, out, "alice raise to 10")
	assert.Contains(t, out, "As Kd 7c")
	assert.Contains(t, out, "bob wins 19")
	assert.Contains(t, out, "rake 1")
}

func TestConsoleMonitorShortensTableID(t *testing.T) {
	var buf strings.Builder
	mon := NewConsoleMonitor(&buf)

	ev := tableEvent(game.PlayerJoined{AgentID: "alice", SeatIndex: 0, Stack: 100})
	ev.TableID = "0b1f1a6e-8f63-4a5e-9f51-1234567890ab"
	mon.HandleEvent(ev)

	assert.Contains(t, buf.String(), "[0b1f1a6e]")
	assert.NotContains(t, buf.String(), "1234567890ab")
}
