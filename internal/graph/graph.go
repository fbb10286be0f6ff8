// Package graph tracks which cells read which. Edges point from a
// formula cell to the cells it references; the reverse index answers
// "who must recalculate when this cell changes".
package graph

import (
	"sort"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// Graph holds the dependency edges between cells. Not safe for
// concurrent use; the engine serializes access.
type Graph struct {
	// precedents[a] is the set of cells a's formula reads
	precedents map[cell.Address]map[cell.Address]struct{}
	// dependents[a] is the set of cells whose formulas read a
	dependents map[cell.Address]map[cell.Address]struct{}
}

func New() *Graph {
	return &Graph{
		precedents: map[cell.Address]map[cell.Address]struct{}{},
		dependents: map[cell.Address]map[cell.Address]struct{}{},
	}
}

// SetEdges replaces from's outgoing edge set in one step, keeping the
// reverse index consistent. An empty or nil list clears the edges.
func (g *Graph) SetEdges(from cell.Address, to []cell.Address) {
	for old := range g.precedents[from] {
		delete(g.dependents[old], from)
		if len(g.dependents[old]) == 0 {
			delete(g.dependents, old)
		}
	}
	delete(g.precedents, from)

	if len(to) == 0 {
		return
	}
	outs := make(map[cell.Address]struct{}, len(to))
	for _, t := range to {
		outs[t] = struct{}{}
		ins := g.dependents[t]
		if ins == nil {
			ins = map[cell.Address]struct{}{}
			g.dependents[t] = ins
		}
		ins[from] = struct{}{}
	}
	g.precedents[from] = outs
}

// Remove clears the outgoing edges of addr. Incoming edges remain:
// other formulas still reference the cell even when it is deleted.
func (g *Graph) Remove(addr cell.Address) {
	g.SetEdges(addr, nil)
}

// Precedents returns the cells addr's formula reads, sorted.
func (g *Graph) Precedents(addr cell.Address) []cell.Address {
	return sortedKeys(g.precedents[addr])
}

// Dependents returns the cells whose formulas read addr, sorted.
func (g *Graph) Dependents(addr cell.Address) []cell.Address {
	return sortedKeys(g.dependents[addr])
}

// TransitiveDependents walks the reverse edges from addr and returns
// every cell that directly or indirectly reads it. addr itself is not
// included even when it sits on a cycle through itself.
func (g *Graph) TransitiveDependents(addr cell.Address) []cell.Address {
	visited := map[cell.Address]struct{}{}
	queue := []cell.Address{addr}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range g.dependents[cur] {
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}
	delete(visited, addr)
	return sortedKeys(visited)
}

// TopologicalOrder orders the given cells so every cell comes after the
// cells it reads, considering only edges inside the set. Kahn's
// algorithm with a sorted ready queue keeps the order deterministic.
// Cells that cannot be ordered sit on a cycle or downstream of one;
// they come back in unordered.
func (g *Graph) TopologicalOrder(set []cell.Address) (ordered, unordered []cell.Address) {
	members := make(map[cell.Address]struct{}, len(set))
	for _, a := range set {
		members[a] = struct{}{}
	}

	inDegree := make(map[cell.Address]int, len(set))
	for a := range members {
		n := 0
		for p := range g.precedents[a] {
			if _, ok := members[p]; ok {
				n++
			}
		}
		inDegree[a] = n
	}

	var ready []cell.Address
	for a, n := range inDegree {
		if n == 0 {
			ready = append(ready, a)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })

	ordered = make([]cell.Address, 0, len(set))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		ordered = append(ordered, cur)

		var released []cell.Address
		for dep := range g.dependents[cur] {
			if _, ok := members[dep]; !ok {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				released = append(released, dep)
			}
		}
		if len(released) > 0 {
			sort.Slice(released, func(i, j int) bool { return released[i].Less(released[j]) })
			ready = append(ready, released...)
			sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })
		}
	}

	if len(ordered) < len(members) {
		seen := make(map[cell.Address]struct{}, len(ordered))
		for _, a := range ordered {
			seen[a] = struct{}{}
		}
		for a := range members {
			if _, ok := seen[a]; !ok {
				unordered = append(unordered, a)
			}
		}
		sort.Slice(unordered, func(i, j int) bool { return unordered[i].Less(unordered[j]) })
	}
	return ordered, unordered
}

// Len reports how many cells have outgoing edges.
func (g *Graph) Len() int {
	return len(g.precedents)
}

func sortedKeys(set map[cell.Address]struct{}) []cell.Address {
	if len(set) == 0 {
		return nil
	}
	out := make([]cell.Address, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
