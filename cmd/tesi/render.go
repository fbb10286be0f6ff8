package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/engine"
	"github.com/gregoriobaldi/tesi/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle   = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderGrid draws the used portion of the sheet with column letters
// across the top and row numbers down the side. Errors render in red.
func renderGrid(e *engine.Engine, doc *storage.Document) string {
	bounds, ok := doc.Bounds()
	if !ok {
		return "(empty sheet)\n"
	}
	// the grid always starts at A1 so coordinates read naturally
	widths := make([]int, bounds.End.Col+1)
	texts := make([][]string, bounds.End.Row+1)
	errs := make([][]bool, bounds.End.Row+1)
	for row := 0; row <= bounds.End.Row; row++ {
		texts[row] = make([]string, bounds.End.Col+1)
		errs[row] = make([]bool, bounds.End.Col+1)
		for col := 0; col <= bounds.End.Col; col++ {
			addr := cell.Address{Col: col, Row: row}
			v := e.GetValue(addr)
			precision := -1
			if f, ok := doc.Formats[addr]; ok {
				precision = f.Precision
			}
			text := storage.Display(v, precision)
			texts[row][col] = text
			errs[row][col] = v.IsError()
			if len(text) > widths[col] {
				widths[col] = len(text)
			}
		}
	}
	for col := range widths {
		if w := len(cell.ColToLetters(col)); w > widths[col] {
			widths[col] = w
		}
	}
	rowLabelWidth := len(strconv.Itoa(bounds.End.Row + 1))

	var b strings.Builder
	b.WriteString(cellStyle.Render(pad("", rowLabelWidth)))
	for col := 0; col <= bounds.End.Col; col++ {
		b.WriteString(borderStyle.Render("|"))
		b.WriteString(cellStyle.Render(headerStyle.Render(pad(cell.ColToLetters(col), widths[col]))))
	}
	b.WriteString("\n")

	for row := 0; row <= bounds.End.Row; row++ {
		b.WriteString(cellStyle.Render(headerStyle.Render(pad(strconv.Itoa(row+1), rowLabelWidth))))
		for col := 0; col <= bounds.End.Col; col++ {
			b.WriteString(borderStyle.Render("|"))
			text := pad(texts[row][col], widths[col])
			if errs[row][col] {
				text = errorStyle.Render(text)
			}
			b.WriteString(cellStyle.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
