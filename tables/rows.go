package tables

import (
	"sort"

	"github.com/tsawler/snaptable/model"
)

// ClusterRows groups fragments into horizontal bands, top to bottom.
//
// Fragments are ordered by their top edge. Each row is anchored at the Y of
// the first fragment placed in it; a fragment whose Y is more than tolerance
// below the anchor starts a new row. The anchor never moves, so slow drift
// across a row is measured against its first member, not its neighbours.
func ClusterRows(fragments []model.Fragment, tolerance float64) [][]model.Fragment {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]model.Fragment, len(fragments))
	copy(sorted, fragments)

	// Stable so fragments sharing a Y keep their input order
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.Y < sorted[j].Box.Y
	})

	var rows [][]model.Fragment
	current := []model.Fragment{sorted[0]}
	anchorY := sorted[0].Box.Y

	for _, frag := range sorted[1:] {
		if frag.Box.Y-anchorY > tolerance {
			rows = append(rows, current)
			current = []model.Fragment{frag}
			anchorY = frag.Box.Y
			continue
		}
		current = append(current, frag)
	}
	rows = append(rows, current)

	return rows
}
