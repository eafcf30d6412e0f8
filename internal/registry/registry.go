// Package registry manages the set of live tables. Tables are fully
// independent: the registry only routes operations to them by ID, so one
// busy table never blocks another.
package registry

import (
	"errors"
	rand "math/rand/v2"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/haveebot/agentpoker/internal/game"
	"github.com/haveebot/agentpoker/internal/randutil"
)

// ErrTableNotFound is returned for any operation naming an unknown table ID.
var ErrTableNotFound = errors.New("table not found")

// Registry owns every table in the process.
type Registry struct {
	logger *log.Logger
	clock  quartz.Clock

	mu     sync.RWMutex
	rng    *rand.Rand // root RNG; each table gets an independent child
	tables map[string]*game.Table
	closed bool
}

// New creates an empty registry. The seed determines every shuffle in the
// process: two registries with the same seed and the same operation sequence
// deal identical cards.
func New(logger *log.Logger, clock quartz.Clock, seed int64) *Registry {
	return &Registry{
		logger: logger.WithPrefix("registry"),
		clock:  clock,
		rng:    randutil.New(seed),
		tables: make(map[string]*game.Table),
	}
}

// CreateTable validates cfg and opens a new table with a fresh UUID.
func (r *Registry) CreateTable(cfg game.Config) (*game.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, game.ErrTableClosed
	}

	id := uuid.NewString()
	tbl := game.NewTable(id, cfg, r.logger, r.clock, randutil.Child(r.rng))
	r.tables[id] = tbl

	r.logger.Info("table created",
		"id", id, "blinds", cfg.SmallBlind, "bigBlind", cfg.BigBlind, "maxPlayers", cfg.MaxPlayers)
	return tbl, nil
}

// Lookup returns the table with the given ID.
func (r *Registry) Lookup(tableID string) (*game.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tbl, ok := r.tables[tableID]
	if !ok {
		return nil, ErrTableNotFound
	}
	return tbl, nil
}

// ListTables returns a summary of every table, ordered by ID.
func (r *Registry) ListTables() []game.Info {
	r.mu.RLock()
	tables := make([]*game.Table, 0, len(r.tables))
	for _, tbl := range r.tables {
		tables = append(tables, tbl)
	}
	r.mu.RUnlock()

	infos := make([]game.Info, len(tables))
	for i, tbl := range tables {
		infos[i] = tbl.Info()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// JoinTable seats an agent at the named table.
func (r *Registry) JoinTable(tableID, agentID, agentKey, humanKey string, buyIn int) error {
	tbl, err := r.Lookup(tableID)
	if err != nil {
		return err
	}
	return tbl.Join(agentID, agentKey, humanKey, buyIn)
}

// LeaveTable removes an agent from the named table and returns the stack it
// walks away with.
func (r *Registry) LeaveTable(tableID, agentID string) (int, error) {
	tbl, err := r.Lookup(tableID)
	if err != nil {
		return 0, err
	}
	return tbl.Leave(agentID)
}

// HandleAction routes a betting action to the named table.
func (r *Registry) HandleAction(tableID, agentID string, action game.Action, amount int) error {
	tbl, err := r.Lookup(tableID)
	if err != nil {
		return err
	}
	return tbl.HandleAction(agentID, action, amount)
}

// Snapshot returns the named table's state as visible to forAgentID.
func (r *Registry) Snapshot(tableID, forAgentID string) (game.TableSnapshot, error) {
	tbl, err := r.Lookup(tableID)
	if err != nil {
		return game.TableSnapshot{}, err
	}
	return tbl.Snapshot(forAgentID), nil
}

// Subscribe registers fn for the named table's events and returns the
// unsubscribe handle.
func (r *Registry) Subscribe(tableID string, fn func(game.Event)) (func(), error) {
	tbl, err := r.Lookup(tableID)
	if err != nil {
		return nil, err
	}
	return tbl.Subscribe(fn), nil
}

// CollectRake drains the rake accumulator of every table and returns the
// total.
func (r *Registry) CollectRake() int {
	r.mu.RLock()
	tables := make([]*game.Table, 0, len(r.tables))
	for _, tbl := range r.tables {
		tables = append(tables, tbl)
	}
	r.mu.RUnlock()

	total := 0
	for _, tbl := range tables {
		total += tbl.CollectRake()
	}
	return total
}

// Close shuts every table and rejects further creations.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	tables := make([]*game.Table, 0, len(r.tables))
	for _, tbl := range r.tables {
		tables = append(tables, tbl)
	}
	r.mu.Unlock()

	for _, tbl := range tables {
		tbl.Close()
	}
	r.logger.Info("registry closed", "tables", len(tables))
}
