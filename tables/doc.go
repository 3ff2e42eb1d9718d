// Package tables reconstructs table structure from positioned text
// fragments.
//
// Nothing here knows where fragments came from. A PDF text layer and OCR
// word boxes go through exactly the same steps once they share a
// coordinate space.
//
// # Pipeline
//
// [Build] runs the whole pipeline:
//
//  1. Drop fragments with degenerate geometry
//  2. [ClusterRows] - group fragments into horizontal bands
//  3. [SegmentRow] - split each band into cells by horizontal gaps
//  4. [Normalize] - pad rows to equal length
//
// [Select] restricts a fragment universe to a selection rectangle and is
// applied by sources before building.
//
// # Configuration
//
// Every threshold is an explicit parameter, collected in [Config]:
//
//	config := tables.DefaultConfig()
//	config.RowTolerance = 6
//	table, skipped := tables.Build(fragments, config)
//
//   - RowTolerance - vertical distance from a row's first fragment (10)
//   - ColumnGap - horizontal gap that starts a new cell (15)
//   - WordGap - horizontal gap that inserts a space within a cell (4)
//
// Boundaries are inclusive: a Y delta of exactly RowTolerance stays in the
// row and a gap of exactly ColumnGap stays in the cell.
//
// All functions are pure and safe for concurrent use.
package tables
