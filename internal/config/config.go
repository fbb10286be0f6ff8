// Package config holds the tunable limits of the engine. The CLI fills
// it from files, environment, and flags; the engine only sees the
// struct.
package config

import "fmt"

type Config struct {
	// MaxRows and MaxCols bound addressable cells; edits outside the
	// bounds are rejected before touching the store.
	MaxRows int `mapstructure:"max_rows" toml:"max_rows"`
	MaxCols int `mapstructure:"max_cols" toml:"max_cols"`
	// MaxDepth bounds formula nesting at parse time.
	MaxDepth int `mapstructure:"max_depth" toml:"max_depth"`
	// Precision is the default decimal precision for display
	// formatting.
	Precision int `mapstructure:"precision" toml:"precision"`
}

func Default() Config {
	return Config{
		MaxRows:   1_048_576,
		MaxCols:   16_384,
		MaxDepth:  64,
		Precision: 2,
	}
}

func (c Config) Validate() error {
	if c.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be positive, got %d", c.MaxRows)
	}
	if c.MaxCols <= 0 {
		return fmt.Errorf("max_cols must be positive, got %d", c.MaxCols)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Precision < 0 || c.Precision > 15 {
		return fmt.Errorf("precision must be between 0 and 15, got %d", c.Precision)
	}
	return nil
}
