package tables

import (
	"sort"
	"strings"

	"github.com/tsawler/snaptable/model"
)

// SegmentRow splits one row's fragments into cell strings.
//
// Fragments are walked left to right. The gap between a fragment's left
// edge and the previous fragment's right edge decides how it joins:
//
//   - gap > columnGap: the fragment starts a new cell
//   - wordGap < gap <= columnGap: same cell, separated by one space
//   - gap <= wordGap: same cell, no separator (kerning, touching glyphs)
//
// Every cell is trimmed. A non-empty row always yields at least one cell.
func SegmentRow(row []model.Fragment, columnGap, wordGap float64) []string {
	if len(row) == 0 {
		return nil
	}

	sorted := make([]model.Fragment, len(row))
	copy(sorted, row)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.X < sorted[j].Box.X
	})

	var cells []string
	var cell strings.Builder
	cell.WriteString(sorted[0].Text)
	lastRight := sorted[0].Right()

	for _, frag := range sorted[1:] {
		gap := frag.Box.X - lastRight

		switch {
		case gap > columnGap:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		case gap > wordGap:
			cell.WriteByte(' ')
		}
		cell.WriteString(frag.Text)
		lastRight = frag.Right()
	}
	cells = append(cells, strings.TrimSpace(cell.String()))

	return cells
}
