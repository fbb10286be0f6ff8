// Package storage reads and writes sheet files. Only raw text and
// formatting persist; values and dependencies are derived state and
// recompute on load.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// Format is per-cell display formatting.
type Format struct {
	// Precision is the number of decimal digits to show; negative
	// means unformatted.
	Precision int `json:"precision" toml:"precision"`
}

// Document is the persistent content of a sheet: what the user typed
// plus formatting, keyed by address.
type Document struct {
	Raws    map[cell.Address]string
	Formats map[cell.Address]Format
}

func NewDocument() *Document {
	return &Document{
		Raws:    map[cell.Address]string{},
		Formats: map[cell.Address]Format{},
	}
}

// file-level schema shared by the JSON and TOML forms, matching the
// original "row,col" cell keys
type cellRecord struct {
	Raw    string  `json:"raw" toml:"raw"`
	Format *Format `json:"format,omitempty" toml:"format,omitempty"`
}

type sheetFile struct {
	Cells map[string]cellRecord `json:"cells" toml:"cells"`
}

func (d *Document) toFile() sheetFile {
	f := sheetFile{Cells: map[string]cellRecord{}}
	for addr, raw := range d.Raws {
		rec := cellRecord{Raw: raw}
		if fm, ok := d.Formats[addr]; ok {
			rec.Format = &fm
		}
		f.Cells[fmt.Sprintf("%d,%d", addr.Row, addr.Col)] = rec
	}
	return f
}

func fromFile(f sheetFile) (*Document, error) {
	d := NewDocument()
	for key, rec := range f.Cells {
		addr, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		d.Raws[addr] = rec.Raw
		if rec.Format != nil {
			d.Formats[addr] = *rec.Format
		}
	}
	return d, nil
}

func parseKey(key string) (cell.Address, error) {
	row, col, ok := strings.Cut(key, ",")
	if !ok {
		return cell.Address{}, fmt.Errorf("bad cell key %q", key)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return cell.Address{}, fmt.Errorf("bad cell key %q: %w", key, err)
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return cell.Address{}, fmt.Errorf("bad cell key %q: %w", key, err)
	}
	if r < 0 || c < 0 {
		return cell.Address{}, fmt.Errorf("bad cell key %q: negative coordinate", key)
	}
	return cell.Address{Col: c, Row: r}, nil
}

// Save writes the document in the format chosen by file extension:
// .toml writes TOML, everything else JSON.
func Save(path string, d *Document) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return SaveTOML(path, d)
	}
	return SaveJSON(path, d)
}

// Load reads a sheet file, dispatching on extension like Save.
func Load(path string) (*Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadTOML(path)
	}
	return LoadJSON(path)
}

func SaveJSON(path string, d *Document) error {
	data, err := json.MarshalIndent(d.toFile(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sheet: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing sheet: %w", err)
	}
	return nil
}

func LoadJSON(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}
	var f sheetFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding sheet %s: %w", path, err)
	}
	return fromFile(f)
}

func SaveTOML(path string, d *Document) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing sheet: %w", err)
	}
	defer out.Close()
	if err := toml.NewEncoder(out).Encode(d.toFile()); err != nil {
		return fmt.Errorf("encoding sheet: %w", err)
	}
	return nil
}

func LoadTOML(path string) (*Document, error) {
	var f sheetFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decoding sheet %s: %w", path, err)
	}
	return fromFile(f)
}

// Bounds returns the smallest range covering every cell in the
// document, and false when the document is empty.
func (d *Document) Bounds() (cell.Range, bool) {
	first := true
	var r cell.Range
	for addr := range d.Raws {
		if first {
			r = cell.Range{Start: addr, End: addr}
			first = false
			continue
		}
		if addr.Row < r.Start.Row {
			r.Start.Row = addr.Row
		}
		if addr.Row > r.End.Row {
			r.End.Row = addr.Row
		}
		if addr.Col < r.Start.Col {
			r.Start.Col = addr.Col
		}
		if addr.Col > r.End.Col {
			r.End.Col = addr.Col
		}
	}
	return r, !first
}
