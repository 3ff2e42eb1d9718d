package model

import (
	"strings"
)

// Table is a rectangular grid of cell strings. Rows are top to bottom and
// cells left to right; every row has the same length.
type Table struct {
	Rows [][]string
}

// NewTable creates a table with the given dimensions and empty cells
func NewTable(rows, cols int) *Table {
	table := &Table{
		Rows: make([][]string, rows),
	}
	for i := 0; i < rows; i++ {
		table.Rows[i] = make([]string, cols)
	}
	return table
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the first row
func (t *Table) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Cell returns the text at the given row and column (0-indexed) and whether
// the position exists.
func (t *Table) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return "", false
	}
	return t.Rows[row][col], true
}

// Equal reports whether both tables hold the same cells
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(other.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if t.Rows[i][j] != other.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// GetText returns the table as tab-separated lines
func (t *Table) GetText() string {
	return t.ToTSV()
}

// ToTSV converts the table to tab-separated values, one row per line
func (t *Table) ToTSV() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			sb.WriteString(strings.NewReplacer("\t", " ", "\n", " ").Replace(cell))
			if j < len(row)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToMarkdown converts the table to markdown format. The first row is
// rendered as the header.
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	writeRow := func(row []string) {
		for _, cell := range row {
			sb.WriteString("| ")
			cell = strings.ReplaceAll(cell, "\n", " ")
			sb.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(t.Rows[0])

	// Separator
	for range t.Rows[0] {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	for _, row := range t.Rows[1:] {
		writeRow(row)
	}

	return sb.String()
}

// ToCSV converts the table to CSV format
func (t *Table) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			// Escape quotes and wrap in quotes if necessary
			text := cell
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
