package formula

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// Node is a parsed formula expression.
type Node interface {
	// String renders a canonical text form of the expression.
	String() string
	astNode()
}

type NumberNode struct {
	Value float64
}

type StringNode struct {
	Value string
}

type BooleanNode struct {
	Value bool
}

type CellRefNode struct {
	Addr cell.Address
}

// NameNode is an identifier that is neither a cell reference nor a
// function call. It parses fine and fails at evaluation, so typing
// half a reference never destroys the formula text.
type NameNode struct {
	Name string
}

type RangeRefNode struct {
	Rng cell.Range
}

type UnaryOpNode struct {
	Op      string
	Operand Node
}

type BinaryOpNode struct {
	Op    string
	Left  Node
	Right Node
}

type FunctionCallNode struct {
	Name string
	Args []Node
}

func (*NumberNode) astNode() {}
func (*StringNode) astNode() {}
func (*BooleanNode) astNode() {}
func (*CellRefNode) astNode() {}
func (*NameNode) astNode() {}
func (*RangeRefNode) astNode() {}
func (*UnaryOpNode) astNode() {}
func (*BinaryOpNode) astNode() {}
func (*FunctionCallNode) astNode() {}

func (n *NumberNode) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n *StringNode) String() string {
	return `"` + strings.ReplaceAll(n.Value, `"`, `""`) + `"`
}

func (n *BooleanNode) String() string {
	if n.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (n *CellRefNode) String() string {
	return n.Addr.String()
}

func (n *NameNode) String() string {
	return n.Name
}

func (n *RangeRefNode) String() string {
	return n.Rng.String()
}

func (n *UnaryOpNode) String() string {
	return n.Op + n.Operand.String()
}

func (n *BinaryOpNode) String() string {
	return "(" + n.Left.String() + n.Op + n.Right.String() + ")"
}

func (n *FunctionCallNode) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "(" + strings.Join(parts, ",") + ")"
}

// References collects every cell address the expression reads, with
// ranges expanded to their member cells. The result is sorted and
// deduplicated.
func References(n Node) []cell.Address {
	seen := map[cell.Address]struct{}{}
	collectRefs(n, seen)
	out := make([]cell.Address, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func collectRefs(n Node, seen map[cell.Address]struct{}) {
	switch t := n.(type) {
	case *CellRefNode:
		seen[t.Addr] = struct{}{}
	case *RangeRefNode:
		for _, a := range t.Rng.Addresses() {
			seen[a] = struct{}{}
		}
	case *UnaryOpNode:
		collectRefs(t.Operand, seen)
	case *BinaryOpNode:
		collectRefs(t.Left, seen)
		collectRefs(t.Right, seen)
	case *FunctionCallNode:
		for _, a := range t.Args {
			collectRefs(a, seen)
		}
	}
}
