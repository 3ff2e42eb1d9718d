package sources

import (
	"context"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/tables"
)

// TextItem is a text run from a document's text layer. Transform positions
// its baseline origin in the document's native space; Width and Height are
// in the same unscaled units.
type TextItem struct {
	Text      string
	Transform model.Matrix
	Width     float64
	Height    float64
}

// Vector places text-layer items through a shared viewport transform and
// keeps those fully inside the selection.
type Vector struct {
	Items    []TextItem
	Viewport model.Matrix

	// FallbackHeight replaces a zero item height, in viewport units.
	// Zero means model.DefaultFallbackHeight.
	FallbackHeight float64
}

// NewVector creates a vector source for items rendered through viewport
func NewVector(items []TextItem, viewport model.Matrix) *Vector {
	return &Vector{Items: items, Viewport: viewport}
}

// Fragments places every item and returns those contained in rect. Items
// with no text are ignored; items whose geometry cannot be placed are
// reported as issues.
func (v *Vector) Fragments(ctx context.Context, rect model.Rect) ([]model.Fragment, []Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	fallback := v.FallbackHeight
	if fallback == 0 {
		fallback = model.DefaultFallbackHeight
	}

	frags := make([]model.Fragment, 0, len(v.Items))
	var issues []Issue
	for _, item := range v.Items {
		if item.Text == "" {
			continue
		}
		box, err := model.PlaceText(item.Transform, v.Viewport, item.Width, item.Height, fallback)
		if err != nil {
			issues = append(issues, Issue{Text: item.Text, Err: err})
			continue
		}
		frags = append(frags, model.Fragment{
			Text:   normalizeText(item.Text),
			Box:    box,
			Source: model.SourceTextLayer,
		})
	}

	return tables.Select(frags, rect), issues, nil
}
