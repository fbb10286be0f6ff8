package cell

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies evaluation failures that surface as cell values.
type ErrorKind uint8

const (
	ErrorNone ErrorKind = iota
	ErrorDivByZero
	ErrorBadValue
	ErrorBadReference
	ErrorUnknownName
	ErrorCycle
	ErrorGeneric
)

var errorDisplay = map[ErrorKind]string{
	ErrorDivByZero:    "#DIV/0!",
	ErrorBadValue:     "#VALUE!",
	ErrorBadReference: "#REF!",
	ErrorUnknownName:  "#NAME?",
	ErrorCycle:        "#CYCLE!",
	ErrorGeneric:      "#ERROR!",
}

func (k ErrorKind) String() string {
	if s, ok := errorDisplay[k]; ok {
		return s
	}
	return "#ERROR!"
}

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBoolean
	KindError
)

// Value is the result of evaluating a cell. Exactly one variant is
// meaningful, selected by Kind. Errors are ordinary values so they can
// flow through dependent formulas.
type Value struct {
	Kind    Kind
	Num     float64
	Str     string
	Bool    bool
	ErrKind ErrorKind
	ErrMsg  string
}

// Empty is the value of a cell that holds nothing.
var Empty = Value{Kind: KindEmpty}

func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func Text(s string) Value { return Value{Kind: KindText, Str: s} }
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }
func Error(k ErrorKind) Value { return Value{Kind: KindError, ErrKind: k} }
func Errorf(k ErrorKind, format string, args ...any) Value {
	return Value{Kind: KindError, ErrKind: k, ErrMsg: fmt.Sprintf(format, args...)}
}

func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsText() bool { return v.Kind == KindText }
func (v Value) IsBool() bool { return v.Kind == KindBoolean }
func (v Value) IsError() bool { return v.Kind == KindError }

// Equal compares two values for identity of kind and payload. Error
// values compare by kind only.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Str == o.Str
	case KindBoolean:
		return v.Bool == o.Bool
	case KindError:
		return v.ErrKind == o.ErrKind
	default:
		return true
	}
}

// String renders the display form: numbers without trailing zeros,
// booleans as TRUE/FALSE, errors as their code string.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	case KindBoolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.ErrKind.String()
	default:
		return ""
	}
}

// ToNumber coerces a value to a number: numbers pass through, booleans
// become 1 or 0, empty becomes 0, and text parses if numeric. The bool
// result reports whether coercion succeeded. Error values never coerce.
func (v Value) ToNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindEmpty:
		return 0, true
	case KindText:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// kindRank gives the cross-type comparison order. Numbers sort before
// text, then booleans, with empty cells last.
func kindRank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindText:
		return 1
	case KindBoolean:
		return 2
	default:
		return 3
	}
}

// Compare returns -1, 0, or 1 under a total order over non-error
// values. Within a kind the natural order applies; FALSE sorts before
// TRUE. Callers must propagate errors before comparing.
func Compare(a, b Value) int {
	ra, rb := kindRank(a.Kind), kindRank(b.Kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
	case KindText:
		return strings.Compare(a.Str, b.Str)
	case KindBoolean:
		if a.Bool != b.Bool {
			if !a.Bool {
				return -1
			}
			return 1
		}
	}
	return 0
}
