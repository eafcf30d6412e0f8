package registry

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haveebot/agentpoker/internal/game"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(log.New(io.Discard), quartz.NewMock(t), 7)
}

func testTableConfig() game.Config {
	return game.Config{
		SmallBlind: 1,
		BigBlind:   2,
		MinBuyIn:   40,
		MaxBuyIn:   200,
		MaxPlayers: 6,
		HandDelay:  time.Second,
	}
}

func TestCreateAndList(t *testing.T) {
	reg := testRegistry(t)

	tbl, err := reg.CreateTable(testTableConfig())
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(tbl.ID()))

	_, err = reg.CreateTable(game.Config{})
	require.Error(t, err, "invalid config must be rejected")

	infos := reg.ListTables()
	require.Len(t, infos, 1)
	assert.Equal(t, tbl.ID(), infos[0].ID)
	assert.Equal(t, 0, infos[0].Occupancy)
	assert.Equal(t, game.Waiting, infos[0].Street)
}

func TestListOrderedByID(t *testing.T) {
	reg := testRegistry(t)
	for i := 0; i < 5; i++ {
		_, err := reg.CreateTable(testTableConfig())
		require.NoError(t, err)
	}
	infos := reg.ListTables()
	require.Len(t, infos, 5)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].ID, infos[i].ID)
	}
}

func TestRoutingToUnknownTable(t *testing.T) {
	reg := testRegistry(t)

	require.ErrorIs(t, reg.JoinTable("nope", "alice", "", "", 100), ErrTableNotFound)
	_, err := reg.LeaveTable("nope", "alice")
	require.ErrorIs(t, err, ErrTableNotFound)
	require.ErrorIs(t, reg.HandleAction("nope", "alice", game.Fold, 0), ErrTableNotFound)
	_, err = reg.Snapshot("nope", "")
	require.ErrorIs(t, err, ErrTableNotFound)
	_, err = reg.Subscribe("nope", func(game.Event) {})
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestJoinPlayLeave(t *testing.T) {
	reg := testRegistry(t)
	tbl, err := reg.CreateTable(testTableConfig())
	require.NoError(t, err)
	id := tbl.ID()

	var kinds []game.EventKind
	unsub, err := reg.Subscribe(id, func(ev game.Event) { kinds = append(kinds, ev.Kind) })
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, reg.JoinTable(id, "alice", "ak", "hk", 100))
	require.NoError(t, reg.JoinTable(id, "bob", "ak", "hk", 100))

	snap, err := reg.Snapshot(id, "alice")
	require.NoError(t, err)
	assert.Equal(t, game.Preflop, snap.Street)
	require.NoError(t, reg.HandleAction(id, snap.ActionOn, game.Fold, 0))

	stack, err := reg.LeaveTable(id, "bob")
	require.NoError(t, err)
	assert.Positive(t, stack)

	assert.Contains(t, kinds, game.EventHandStarted)
	assert.Contains(t, kinds, game.EventPotAwarded)
	assert.Contains(t, kinds, game.EventPlayerLeft)
}

func TestTablesAreIndependent(t *testing.T) {
	reg := testRegistry(t)
	t1, err := reg.CreateTable(testTableConfig())
	require.NoError(t, err)
	t2, err := reg.CreateTable(testTableConfig())
	require.NoError(t, err)

	// The same agent ID may sit at two tables at once.
	require.NoError(t, reg.JoinTable(t1.ID(), "alice", "", "", 100))
	require.NoError(t, reg.JoinTable(t2.ID(), "alice", "", "", 100))
	require.NoError(t, reg.JoinTable(t1.ID(), "bob", "", "", 100))

	s1, err := reg.Snapshot(t1.ID(), "")
	require.NoError(t, err)
	s2, err := reg.Snapshot(t2.ID(), "")
	require.NoError(t, err)
	assert.Equal(t, game.Preflop, s1.Street)
	assert.Equal(t, game.Waiting, s2.Street)
}

func TestRakeCollectedAcrossTables(t *testing.T) {
	reg := testRegistry(t)
	cfg := testTableConfig()
	cfg.RakeMicros = 100_000 // 10%

	for i := 0; i < 2; i++ {
		tbl, err := reg.CreateTable(cfg)
		require.NoError(t, err)
		id := tbl.ID()
		require.NoError(t, reg.JoinTable(id, "alice", "", "", 100))
		require.NoError(t, reg.JoinTable(id, "bob", "", "", 100))

		snap, err := reg.Snapshot(id, "")
		require.NoError(t, err)
		require.NoError(t, reg.HandleAction(id, snap.ActionOn, game.Raise, 50))
		snap, err = reg.Snapshot(id, "")
		require.NoError(t, err)
		require.NoError(t, reg.HandleAction(id, snap.ActionOn, game.Fold, 0))
	}

	// Each table raked 10% of its 52-chip fold pot, truncated.
	assert.Equal(t, 10, reg.CollectRake())
	assert.Equal(t, 0, reg.CollectRake())
}

func TestCloseRejectsNewTables(t *testing.T) {
	reg := testRegistry(t)
	tbl, err := reg.CreateTable(testTableConfig())
	require.NoError(t, err)

	reg.Close()
	_, err = reg.CreateTable(testTableConfig())
	require.ErrorIs(t, err, game.ErrTableClosed)
	require.ErrorIs(t, reg.JoinTable(tbl.ID(), "alice", "", "", 100), game.ErrTableClosed)
}
