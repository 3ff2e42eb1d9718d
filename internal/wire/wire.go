// Package wire holds the JSON shapes shared by the HTTP API and the MCP
// tools.
package wire

import (
	"fmt"

	"github.com/tsawler/snaptable"
	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/tables"
)

// NotFoundMessage is reported when a selection holds no text
const NotFoundMessage = "no text found in selection"

// Fragment is a positioned piece of text with a top-left box
type Fragment struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Selection is a drag rectangle: an anchor and a signed size. Negative
// sizes are drags up or left.
type Selection struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Model converts the posted drag into a model.Selection
func (s Selection) Model() model.Selection {
	return model.Selection{Anchor: model.Point{X: s.X, Y: s.Y}, Width: s.Width, Height: s.Height}
}

// Rect returns the canonical rectangle covered by the drag
func (s Selection) Rect() model.Rect {
	return s.Model().Rect()
}

// Thresholds override the configured clustering thresholds
type Thresholds struct {
	RowTolerance *float64 `json:"row_tolerance,omitempty"`
	ColumnGap    *float64 `json:"column_gap,omitempty"`
	WordGap      *float64 `json:"word_gap,omitempty"`
}

// Apply returns base with the set thresholds replaced
func (t Thresholds) Apply(base tables.Config) tables.Config {
	if t.RowTolerance != nil {
		base.RowTolerance = *t.RowTolerance
	}
	if t.ColumnGap != nil {
		base.ColumnGap = *t.ColumnGap
	}
	if t.WordGap != nil {
		base.WordGap = *t.WordGap
	}
	return base
}

// FragmentsRequest asks for the table inside one or more selections of a
// posted fragment list.
type FragmentsRequest struct {
	Fragments  []Fragment  `json:"fragments"`
	Selection  *Selection  `json:"selection,omitempty"`
	Selections []Selection `json:"selections,omitempty"`
	Thresholds
}

// Validate rejects requests that can never produce a table
func (r FragmentsRequest) Validate() error {
	if r.Selection != nil && len(r.Selections) > 0 {
		return fmt.Errorf("set either selection or selections, not both")
	}
	return nil
}

// ModelFragments converts the posted fragments
func (r FragmentsRequest) ModelFragments() []model.Fragment {
	frags := make([]model.Fragment, len(r.Fragments))
	for i, f := range r.Fragments {
		frags[i] = model.NewFragment(f.Text, f.X, f.Y, f.Width, f.Height)
	}
	return frags
}

// Table is the outcome of one selection
type Table struct {
	Found     bool       `json:"found"`
	Message   string     `json:"message,omitempty"`
	Rows      [][]string `json:"rows,omitempty"`
	Columns   int        `json:"columns"`
	Fragments int        `json:"fragments"`
	Source    string     `json:"source,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// NewTable renders an extraction result
func NewTable(result *snaptable.Result, warnings []snaptable.Warning, source model.SourceKind) Table {
	t := Table{Source: sourceName(source)}
	for _, w := range warnings {
		t.Warnings = append(t.Warnings, w.String())
	}

	if !result.Found() {
		t.Message = NotFoundMessage
		return t
	}

	t.Found = true
	t.Rows = result.Table.Rows
	t.Columns = result.Table.ColCount()
	t.Fragments = result.Fragments
	return t
}

// NotFound is the outcome for a page with nothing to extract
func NotFound(message string, source model.SourceKind) Table {
	return Table{Message: message, Source: sourceName(source)}
}

func sourceName(k model.SourceKind) string {
	if k == model.SourceUnknown {
		return ""
	}
	return k.String()
}

// Tables is the outcome of several selections
type Tables struct {
	Tables []Table `json:"tables"`
}

// NewTables renders a batch result. Warnings are attached to the
// selection they came from.
func NewTables(results []*snaptable.Result, warnings []snaptable.Warning, source model.SourceKind) Tables {
	perSelection := make([][]snaptable.Warning, len(results))
	for _, w := range warnings {
		if w.Selection >= 0 && w.Selection < len(results) {
			perSelection[w.Selection] = append(perSelection[w.Selection], w)
		}
	}

	out := Tables{Tables: make([]Table, len(results))}
	for i, res := range results {
		out.Tables[i] = NewTable(res, perSelection[i], source)
	}
	return out
}
