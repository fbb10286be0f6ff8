// Package engine owns recalculation: it keeps raw text, cached ASTs,
// computed values, and the dependency graph consistent across edits.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/config"
	"github.com/gregoriobaldi/tesi/internal/formula"
	"github.com/gregoriobaldi/tesi/internal/graph"
)

// Engine applies edits and recalculates exactly the cells an edit can
// affect. All operations are synchronous; when the store implements
// sync.Locker it is held exclusively for the span of one operation.
type Engine struct {
	store      Store
	graph      *graph.Graph
	cfg        config.Config
	log        *slog.Logger
	onEvaluate func(cell.Address)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The engine logs edits and
// recalculation sizes at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithConfig overrides the default limits.
func WithConfig(c config.Config) Option {
	return func(e *Engine) { e.cfg = c }
}

// WithOnEvaluate installs an instrumentation hook fired once per cell
// evaluation during recalculation. Cycle assignments do not fire it.
func WithOnEvaluate(fn func(cell.Address)) Option {
	return func(e *Engine) { e.onEvaluate = fn }
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		graph: graph.New(),
		cfg:   config.Default(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lock() func() {
	if l, ok := e.store.(sync.Locker); ok {
		l.Lock()
		return l.Unlock
	}
	return func() {}
}

func (e *Engine) checkBounds(addr cell.Address) error {
	if addr.Col < 0 || addr.Row < 0 || addr.Col >= e.cfg.MaxCols || addr.Row >= e.cfg.MaxRows {
		return fmt.Errorf("cell %s outside sheet bounds %dx%d", addr, e.cfg.MaxRows, e.cfg.MaxCols)
	}
	return nil
}

// SetCell stores new raw text for a cell and recalculates the cell and
// everything that transitively depends on it. Out-of-bounds addresses
// are rejected with the store untouched.
func (e *Engine) SetCell(addr cell.Address, raw string) error {
	if err := e.checkBounds(addr); err != nil {
		return err
	}
	defer e.lock()()

	e.log.Debug("set cell", "addr", addr.String(), "raw", raw)
	e.applyRaw(addr, raw)
	e.recalculate(addr)
	return nil
}

// applyRaw updates store and edges for one cell without recalculating.
func (e *Engine) applyRaw(addr cell.Address, raw string) {
	if raw == "" {
		e.store.Delete(addr)
		e.graph.Remove(addr)
		return
	}
	if strings.HasPrefix(raw, "=") {
		node, err := formula.ParseDepth(raw[1:], e.cfg.MaxDepth)
		if err != nil {
			// the bad text stays visible and editable; dependents see
			// the error value
			e.log.Debug("formula rejected", "addr", addr.String(), "err", err)
			e.store.Put(addr, Cell{Raw: raw, Value: cell.Error(cell.ErrorGeneric)})
			e.graph.Remove(addr)
			return
		}
		e.store.Put(addr, Cell{Raw: raw, AST: node})
		e.graph.SetEdges(addr, formula.References(node))
		return
	}
	e.store.Put(addr, Cell{Raw: raw, Value: literalValue(raw)})
	e.graph.Remove(addr)
}

// literalValue interprets non-formula text: numbers and booleans
// become typed values, everything else stays text.
func literalValue(raw string) cell.Value {
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return cell.Number(n)
	}
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE":
		return cell.Boolean(true)
	case "FALSE":
		return cell.Boolean(false)
	}
	return cell.Text(raw)
}

// recalculate reevaluates the seed cell and its transitive dependents
// in topological order, writing each result back before the next cell
// reads it. Cells that cannot be ordered sit on a cycle or downstream
// of one and all get the cycle error.
func (e *Engine) recalculate(seed cell.Address) {
	affected := append(e.graph.TransitiveDependents(seed), seed)
	ordered, unordered := e.graph.TopologicalOrder(affected)
	e.log.Debug("recalculate", "seed", seed.String(), "affected", len(affected), "cyclic", len(unordered))

	for _, addr := range ordered {
		e.evaluateCell(addr)
	}
	for _, addr := range unordered {
		c, ok := e.store.Get(addr)
		if !ok {
			continue
		}
		c.Value = cell.Error(cell.ErrorCycle)
		e.store.Put(addr, c)
	}
}

func (e *Engine) evaluateCell(addr cell.Address) {
	c, ok := e.store.Get(addr)
	if !ok || c.AST == nil {
		// literals and parse failures already carry their value
		return
	}
	if e.onEvaluate != nil {
		e.onEvaluate(addr)
	}
	c.Value = formula.Evaluate(c.AST, e.lookup)
	e.store.Put(addr, c)
}

func (e *Engine) lookup(addr cell.Address) cell.Value {
	// a formula may name a cell the sheet cannot hold; that resolves
	// to a reference error, not an empty cell
	if e.checkBounds(addr) != nil {
		return cell.Error(cell.ErrorBadReference)
	}
	c, ok := e.store.Get(addr)
	if !ok {
		return cell.Empty
	}
	return c.Value
}

// LoadAll applies a batch of raw texts, equivalent to setting each
// cell in turn with one recalculation at the end. Cells not named in
// the batch keep their content; dependents of loaded cells
// recalculate whether or not they were loaded themselves.
func (e *Engine) LoadAll(raws map[cell.Address]string) error {
	for addr := range raws {
		if err := e.checkBounds(addr); err != nil {
			return err
		}
	}
	defer e.lock()()

	loaded := make([]cell.Address, 0, len(raws))
	for addr := range raws {
		loaded = append(loaded, addr)
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Less(loaded[j]) })

	for _, addr := range loaded {
		e.applyRaw(addr, raws[addr])
	}

	affected := map[cell.Address]struct{}{}
	for _, addr := range loaded {
		affected[addr] = struct{}{}
		for _, dep := range e.graph.TransitiveDependents(addr) {
			affected[dep] = struct{}{}
		}
	}
	set := make([]cell.Address, 0, len(affected))
	for addr := range affected {
		set = append(set, addr)
	}
	ordered, unordered := e.graph.TopologicalOrder(set)
	e.log.Debug("load", "cells", len(raws), "affected", len(set), "cyclic", len(unordered))

	for _, addr := range ordered {
		e.evaluateCell(addr)
	}
	for _, addr := range unordered {
		if c, ok := e.store.Get(addr); ok {
			c.Value = cell.Error(cell.ErrorCycle)
			e.store.Put(addr, c)
		}
	}
	return nil
}

// GetValue returns the computed value, Empty for absent cells.
func (e *Engine) GetValue(addr cell.Address) cell.Value {
	c, ok := e.store.Get(addr)
	if !ok {
		return cell.Empty
	}
	return c.Value
}

// GetRawText returns the text the user typed, "" for absent cells.
func (e *Engine) GetRawText(addr cell.Address) string {
	c, ok := e.store.Get(addr)
	if !ok {
		return ""
	}
	return c.Raw
}

// GetError reports the error kind of a cell whose value is an error.
func (e *Engine) GetError(addr cell.Address) (cell.ErrorKind, bool) {
	v := e.GetValue(addr)
	if !v.IsError() {
		return cell.ErrorNone, false
	}
	return v.ErrKind, true
}

// GetDependencies returns the cells addr's formula reads directly.
func (e *Engine) GetDependencies(addr cell.Address) []cell.Address {
	return e.graph.Precedents(addr)
}

// GetDependents returns the cells that read addr directly.
func (e *Engine) GetDependents(addr cell.Address) []cell.Address {
	return e.graph.Dependents(addr)
}

// Snapshot returns every stored cell, keyed by address.
func (e *Engine) Snapshot() map[cell.Address]Cell {
	return e.store.All()
}

// Config returns the limits the engine runs with.
func (e *Engine) Config() config.Config {
	return e.cfg
}
