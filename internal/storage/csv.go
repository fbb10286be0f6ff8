package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// Valuer is what CSV export needs from the engine: the computed value
// of a cell.
type Valuer interface {
	GetValue(addr cell.Address) cell.Value
}

// Display renders a value for output. Numbers honor the precision when
// it is non-negative; everything else uses the natural display form.
func Display(v cell.Value, precision int) string {
	if v.IsNumber() && precision >= 0 {
		return strconv.FormatFloat(v.Num, 'f', precision, 64)
	}
	return v.String()
}

// ExportCSV writes the display values of a rectangular range, one CSV
// record per row.
func ExportCSV(w io.Writer, src Valuer, rng cell.Range, formats map[cell.Address]Format) error {
	cw := csv.NewWriter(w)
	for row := rng.Start.Row; row <= rng.End.Row; row++ {
		record := make([]string, 0, rng.End.Col-rng.Start.Col+1)
		for col := rng.Start.Col; col <= rng.End.Col; col++ {
			addr := cell.Address{Col: col, Row: row}
			precision := -1
			if f, ok := formats[addr]; ok {
				precision = f.Precision
			}
			record = append(record, Display(src.GetValue(addr), precision))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads records into a document as raw cell text, anchored
// at start. Empty fields are skipped rather than clearing cells.
func ImportCSV(r io.Reader, d *Document, start cell.Address) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	row := start.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading csv: %w", err)
		}
		for i, field := range record {
			if field == "" {
				continue
			}
			d.Raws[cell.Address{Col: start.Col + i, Row: row}] = field
		}
		row++
	}
}
