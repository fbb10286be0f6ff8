package formula

import (
	"math"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// Lookup resolves a cell reference to its current value. Cells that
// hold nothing resolve to cell.Empty.
type Lookup func(cell.Address) cell.Value

// Evaluate computes the value of a parsed expression. Failures surface
// as error values, never as Go errors, so they can be stored and flow
// through dependent cells.
func Evaluate(n Node, lookup Lookup) cell.Value {
	switch t := n.(type) {
	case *NumberNode:
		return cell.Number(t.Value)
	case *StringNode:
		return cell.Text(t.Value)
	case *BooleanNode:
		return cell.Boolean(t.Value)
	case *CellRefNode:
		return lookup(t.Addr)
	case *NameNode:
		return cell.Errorf(cell.ErrorUnknownName, "unknown name %s", t.Name)
	case *RangeRefNode:
		// a range is not a scalar; only function arguments accept one
		return cell.Errorf(cell.ErrorBadValue, "range used as a value")
	case *UnaryOpNode:
		return evalUnary(t, lookup)
	case *BinaryOpNode:
		return evalBinary(t, lookup)
	case *FunctionCallNode:
		return evalCall(t, lookup)
	default:
		return cell.Error(cell.ErrorGeneric)
	}
}

func evalUnary(n *UnaryOpNode, lookup Lookup) cell.Value {
	v := Evaluate(n.Operand, lookup)
	if v.IsError() {
		return v
	}
	num, ok := v.ToNumber()
	if !ok {
		return cell.Errorf(cell.ErrorBadValue, "unary %s needs a number", n.Op)
	}
	if n.Op == "-" {
		num = -num
	}
	return finite(num)
}

func evalBinary(n *BinaryOpNode, lookup Lookup) cell.Value {
	left := Evaluate(n.Left, lookup)
	if left.IsError() {
		return left
	}
	right := Evaluate(n.Right, lookup)
	if right.IsError() {
		return right
	}

	switch n.Op {
	case "=":
		return cell.Boolean(compareValues(left, right) == 0)
	case "<>":
		return cell.Boolean(compareValues(left, right) != 0)
	case "<":
		return cell.Boolean(compareValues(left, right) < 0)
	case "<=":
		return cell.Boolean(compareValues(left, right) <= 0)
	case ">":
		return cell.Boolean(compareValues(left, right) > 0)
	case ">=":
		return cell.Boolean(compareValues(left, right) >= 0)
	}

	a, ok := left.ToNumber()
	if !ok {
		return cell.Errorf(cell.ErrorBadValue, "%q is not a number", left.String())
	}
	b, ok := right.ToNumber()
	if !ok {
		return cell.Errorf(cell.ErrorBadValue, "%q is not a number", right.String())
	}

	switch n.Op {
	case "+":
		return finite(a + b)
	case "-":
		return finite(a - b)
	case "*":
		return finite(a * b)
	case "/":
		if b == 0 {
			return cell.Error(cell.ErrorDivByZero)
		}
		return finite(a / b)
	case "^":
		return finite(math.Pow(a, b))
	default:
		return cell.Errorf(cell.ErrorGeneric, "unknown operator %q", n.Op)
	}
}

func evalCall(n *FunctionCallNode, lookup Lookup) cell.Value {
	// IF short-circuits: the untaken branch is never evaluated, so
	// =IF(1>0,"yes",1/0) is "yes" with no division performed.
	if n.Name == "IF" {
		return evalIf(n, lookup)
	}
	fn, ok := builtins[n.Name]
	if !ok {
		return cell.Errorf(cell.ErrorUnknownName, "unknown function %s", n.Name)
	}
	args := make([]argValue, len(n.Args))
	for i, argNode := range n.Args {
		if rng, ok := argNode.(*RangeRefNode); ok {
			members := rng.Rng.Addresses()
			list := make([]cell.Value, len(members))
			for j, addr := range members {
				list[j] = lookup(addr)
			}
			args[i] = argValue{list: list, isList: true}
			continue
		}
		args[i] = argValue{scalar: Evaluate(argNode, lookup)}
	}
	return fn(args)
}

func evalIf(n *FunctionCallNode, lookup Lookup) cell.Value {
	if len(n.Args) < 2 || len(n.Args) > 3 {
		return cell.Errorf(cell.ErrorBadValue, "IF takes 2 or 3 arguments")
	}
	cond := Evaluate(n.Args[0], lookup)
	if cond.IsError() {
		return cond
	}
	truthy, ok := truthiness(cond)
	if !ok {
		return cell.Errorf(cell.ErrorBadValue, "IF condition %q is not boolean or numeric", cond.String())
	}
	if truthy {
		return Evaluate(n.Args[1], lookup)
	}
	if len(n.Args) == 3 {
		return Evaluate(n.Args[2], lookup)
	}
	return cell.Empty
}

// truthiness accepts booleans and numbers: nonzero is true. Text is not
// a condition.
func truthiness(v cell.Value) (bool, bool) {
	switch v.Kind {
	case cell.KindBoolean:
		return v.Bool, true
	case cell.KindNumber:
		return v.Num != 0, true
	case cell.KindEmpty:
		return false, true
	default:
		return false, false
	}
}

// compareValues is the comparison operators' order. Numeric text
// compares as a number against numbers, matching how literals coerce
// elsewhere.
func compareValues(a, b cell.Value) int {
	if a.Kind != b.Kind {
		an, aok := a.ToNumber()
		bn, bok := b.ToNumber()
		if aok && bok && (a.IsNumber() || b.IsNumber()) {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return cell.Compare(a, b)
}

// finite guards arithmetic results: NaN and infinities never become
// cell values.
func finite(n float64) cell.Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return cell.Errorf(cell.ErrorBadValue, "result is not a finite number")
	}
	return cell.Number(n)
}
