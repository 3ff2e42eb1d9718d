package tables

import (
	"github.com/tsawler/snaptable/model"
)

// Build reconstructs a table from fragments already restricted to a
// selection: malformed fragments are skipped, the rest are clustered into
// rows, each row is segmented into cells, and the grid is padded to a
// rectangle.
//
// The table is nil when no well-formed fragment remains. The skipped
// fragments are returned so callers can report them.
func Build(fragments []model.Fragment, config Config) (*model.Table, []model.Fragment) {
	valid := make([]model.Fragment, 0, len(fragments))
	var skipped []model.Fragment
	for _, frag := range fragments {
		if frag.Validate() != nil {
			skipped = append(skipped, frag)
			continue
		}
		valid = append(valid, frag)
	}

	if len(valid) == 0 {
		return nil, skipped
	}

	rows := ClusterRows(valid, config.RowTolerance)

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = SegmentRow(row, config.ColumnGap, config.WordGap)
	}

	return &model.Table{Rows: Normalize(cells)}, skipped
}
