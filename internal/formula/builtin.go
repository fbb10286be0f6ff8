package formula

import (
	"math"
	"strings"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// argValue is one evaluated function argument: either a scalar or the
// flattened member values of a range.
type argValue struct {
	scalar cell.Value
	list   []cell.Value
	isList bool
}

// values returns the argument as a flat slice.
func (a argValue) values() []cell.Value {
	if a.isList {
		return a.list
	}
	return []cell.Value{a.scalar}
}

type builtinFunc func(args []argValue) cell.Value

// builtins is the fixed function table. It is never mutated after
// initialization; unknown names resolve to the name error. IF is
// dispatched in the evaluator so its branches can short-circuit.
var builtins = map[string]builtinFunc{
	"SUM":     fnSum,
	"AVERAGE": fnAverage,
	"MIN":     fnMin,
	"MAX":     fnMax,
	"COUNT":   fnCount,
	"ABS":     fnAbs,
	"ROUND":   fnRound,
	"CONCAT":  fnConcat,
}

// IsBuiltin reports whether name (upper-cased) is a known function.
func IsBuiltin(name string) bool {
	if name == "IF" {
		return true
	}
	_, ok := builtins[strings.ToUpper(name)]
	return ok
}

// collectNumbers flattens arguments into their numeric members.
// Empty cells and non-numeric text inside ranges are skipped rather
// than failing the whole aggregate; error values contaminate.
func collectNumbers(args []argValue) ([]float64, cell.Value) {
	var nums []float64
	for _, arg := range args {
		for _, v := range arg.values() {
			if v.IsError() {
				return nil, v
			}
			if v.IsEmpty() {
				continue
			}
			n, ok := v.ToNumber()
			if !ok {
				continue
			}
			nums = append(nums, n)
		}
	}
	return nums, cell.Empty
}

func fnSum(args []argValue) cell.Value {
	nums, errv := collectNumbers(args)
	if errv.IsError() {
		return errv
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return finite(total)
}

func fnAverage(args []argValue) cell.Value {
	nums, errv := collectNumbers(args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return cell.Error(cell.ErrorDivByZero)
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return finite(total / float64(len(nums)))
}

func fnMin(args []argValue) cell.Value {
	nums, errv := collectNumbers(args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return cell.Number(0)
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return cell.Number(min)
}

func fnMax(args []argValue) cell.Value {
	nums, errv := collectNumbers(args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return cell.Number(0)
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return cell.Number(max)
}

func fnCount(args []argValue) cell.Value {
	count := 0
	for _, arg := range args {
		for _, v := range arg.values() {
			if v.IsError() {
				return v
			}
			if v.IsEmpty() {
				continue
			}
			if _, ok := v.ToNumber(); ok {
				count++
			}
		}
	}
	return cell.Number(float64(count))
}

func fnAbs(args []argValue) cell.Value {
	if len(args) != 1 || args[0].isList {
		return cell.Errorf(cell.ErrorBadValue, "ABS takes one number")
	}
	v := args[0].scalar
	if v.IsError() {
		return v
	}
	n, ok := v.ToNumber()
	if !ok {
		return cell.Errorf(cell.ErrorBadValue, "%q is not a number", v.String())
	}
	return cell.Number(math.Abs(n))
}

// fnRound rounds half away from zero. The optional second argument is
// the number of decimal digits, default 0.
func fnRound(args []argValue) cell.Value {
	if len(args) < 1 || len(args) > 2 || args[0].isList {
		return cell.Errorf(cell.ErrorBadValue, "ROUND takes a number and optional digits")
	}
	v := args[0].scalar
	if v.IsError() {
		return v
	}
	n, ok := v.ToNumber()
	if !ok {
		return cell.Errorf(cell.ErrorBadValue, "%q is not a number", v.String())
	}
	digits := 0.0
	if len(args) == 2 {
		dv := args[1].scalar
		if dv.IsError() {
			return dv
		}
		d, ok := dv.ToNumber()
		if !ok || args[1].isList {
			return cell.Errorf(cell.ErrorBadValue, "ROUND digits must be a number")
		}
		digits = math.Trunc(d)
	}
	scale := math.Pow(10, digits)
	return finite(math.Round(n*scale) / scale)
}

func fnConcat(args []argValue) cell.Value {
	var b strings.Builder
	for _, arg := range args {
		for _, v := range arg.values() {
			if v.IsError() {
				return v
			}
			b.WriteString(v.String())
		}
	}
	return cell.Text(b.String())
}
