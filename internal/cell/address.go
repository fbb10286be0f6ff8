// Package cell defines the value types shared across the engine:
// addresses, rectangular ranges, and the tagged cell value.
package cell

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadAddress is returned when text cannot be parsed as an A1-style
// cell reference.
var ErrBadAddress = errors.New("bad cell address")

// Address identifies a cell by zero-based column and row. A1 is {0, 0}.
type Address struct {
	Col int
	Row int
}

// ColToLetters converts a zero-based column index to its letter form.
// 0 is "A", 25 is "Z", 26 is "AA".
func ColToLetters(col int) string {
	if col < 0 {
		return ""
	}
	var b [8]byte
	i := len(b)
	for {
		i--
		b[i] = byte('A' + col%26)
		col = col/26 - 1
		if col < 0 {
			break
		}
	}
	return string(b[i:])
}

// LettersToCol converts column letters to a zero-based index. Input must
// be one or more ASCII letters, case-insensitive.
func LettersToCol(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty column", ErrBadAddress)
	}
	col := 0
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			col = col*26 + int(r-'A') + 1
		case r >= 'a' && r <= 'z':
			col = col*26 + int(r-'a') + 1
		default:
			return 0, fmt.Errorf("%w: %q", ErrBadAddress, s)
		}
		if col > 1<<24 {
			return 0, fmt.Errorf("%w: column %q out of range", ErrBadAddress, s)
		}
	}
	return col - 1, nil
}

// ParseAddress parses an A1-style reference. Letters are
// case-insensitive. The row component is 1-based in text and 0-based in
// the returned Address.
func ParseAddress(s string) (Address, error) {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return Address{}, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	col, err := LettersToCol(s[:i])
	if err != nil {
		return Address{}, err
	}
	row := 0
	for _, c := range []byte(s[i:]) {
		if c < '0' || c > '9' {
			return Address{}, fmt.Errorf("%w: %q", ErrBadAddress, s)
		}
		row = row*10 + int(c-'0')
		if row > 1<<30 {
			return Address{}, fmt.Errorf("%w: row in %q out of range", ErrBadAddress, s)
		}
	}
	if row == 0 {
		return Address{}, fmt.Errorf("%w: row must be positive in %q", ErrBadAddress, s)
	}
	return Address{Col: col, Row: row - 1}, nil
}

// IsAddressText reports whether s has the shape of an A1 reference.
func IsAddressText(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

func (a Address) String() string {
	return fmt.Sprintf("%s%d", ColToLetters(a.Col), a.Row+1)
}

// Less orders addresses row-major for deterministic iteration.
func (a Address) Less(b Address) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Range is a rectangular block of cells, normalized so Start is the
// top-left corner and End the bottom-right.
type Range struct {
	Start Address
	End   Address
}

// NewRange builds a normalized range from any two corners.
func NewRange(a, b Address) Range {
	r := Range{Start: a, End: b}
	if r.Start.Row > r.End.Row {
		r.Start.Row, r.End.Row = r.End.Row, r.Start.Row
	}
	if r.Start.Col > r.End.Col {
		r.Start.Col, r.End.Col = r.End.Col, r.Start.Col
	}
	return r
}

// ParseRange parses "A1:B3" into a normalized range.
func ParseRange(s string) (Range, error) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return Range{}, fmt.Errorf("%w: missing colon in range %q", ErrBadAddress, s)
	}
	start, err := ParseAddress(s[:colon])
	if err != nil {
		return Range{}, err
	}
	end, err := ParseAddress(s[colon+1:])
	if err != nil {
		return Range{}, err
	}
	return NewRange(start, end), nil
}

func (r Range) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Size returns the number of cells the range covers.
func (r Range) Size() int {
	return (r.End.Row - r.Start.Row + 1) * (r.End.Col - r.Start.Col + 1)
}

// Contains reports whether a falls inside the range.
func (r Range) Contains(a Address) bool {
	return a.Row >= r.Start.Row && a.Row <= r.End.Row &&
		a.Col >= r.Start.Col && a.Col <= r.End.Col
}

// Addresses enumerates every member cell in row-major order.
func (r Range) Addresses() []Address {
	out := make([]Address, 0, r.Size())
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			out = append(out, Address{Col: col, Row: row})
		}
	}
	return out
}
