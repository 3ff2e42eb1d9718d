package tables

import (
	"fmt"
	"math"
)

// Default thresholds, in the units of the selection's coordinate space.
const (
	DefaultRowTolerance = 10.0
	DefaultColumnGap    = 15.0
	DefaultWordGap      = 4.0
)

// Config holds the clustering thresholds
type Config struct {
	// Maximum vertical distance from a row's anchor fragment for another
	// fragment to join that row
	RowTolerance float64

	// Horizontal gaps larger than this start a new cell
	ColumnGap float64

	// Horizontal gaps larger than this (but within ColumnGap) are joined
	// with a single space; smaller gaps are joined directly
	WordGap float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RowTolerance: DefaultRowTolerance,
		ColumnGap:    DefaultColumnGap,
		WordGap:      DefaultWordGap,
	}
}

// Validate checks that all thresholds are finite and non-negative and that
// the word gap does not exceed the column gap.
func (c Config) Validate() error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"row tolerance", c.RowTolerance},
		{"column gap", c.ColumnGap},
		{"word gap", c.WordGap},
	}
	for _, th := range thresholds {
		if math.IsNaN(th.value) || math.IsInf(th.value, 0) || th.value < 0 {
			return fmt.Errorf("invalid %s: %v", th.name, th.value)
		}
	}
	if c.WordGap > c.ColumnGap {
		return fmt.Errorf("word gap %v exceeds column gap %v", c.WordGap, c.ColumnGap)
	}
	return nil
}
