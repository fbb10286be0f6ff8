package engine

import (
	"sync"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/formula"
)

// Cell is one stored cell: the raw text the user typed, the last
// computed value, and the cached AST for formula cells. The AST is
// derived state, rebuilt only when Raw changes.
type Cell struct {
	Raw   string
	Value cell.Value
	AST   formula.Node
}

// IsFormula reports whether the raw text is a formula.
func (c Cell) IsFormula() bool {
	return len(c.Raw) > 0 && c.Raw[0] == '='
}

// Store is the cell persistence boundary. Implementations that also
// implement sync.Locker are locked for the span of each engine
// operation, so concurrent owners see edits atomically.
type Store interface {
	Get(addr cell.Address) (Cell, bool)
	Put(addr cell.Address, c Cell)
	Delete(addr cell.Address)
	// All returns a snapshot of every stored cell.
	All() map[cell.Address]Cell
}

// MemStore is the map-backed Store. Its RWMutex makes it a sync.Locker,
// so the engine holds it exclusively during edits.
type MemStore struct {
	mu    sync.RWMutex
	cells map[cell.Address]Cell
}

func NewMemStore() *MemStore {
	return &MemStore{cells: map[cell.Address]Cell{}}
}

func (s *MemStore) Lock() { s.mu.Lock() }
func (s *MemStore) Unlock() { s.mu.Unlock() }

func (s *MemStore) Get(addr cell.Address) (Cell, bool) {
	c, ok := s.cells[addr]
	return c, ok
}

func (s *MemStore) Put(addr cell.Address, c Cell) {
	s.cells[addr] = c
}

func (s *MemStore) Delete(addr cell.Address) {
	delete(s.cells, addr)
}

func (s *MemStore) All() map[cell.Address]Cell {
	out := make(map[cell.Address]Cell, len(s.cells))
	for a, c := range s.cells {
		out[a] = c
	}
	return out
}
