// Package sources adapts the places positioned text comes from (a PDF text
// layer, OCR over a bitmap, an in-memory list) into model fragments for one
// selection rectangle.
package sources

import (
	"context"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/tables"
)

// Source produces the positioned fragments that fall inside a selection.
//
// Fragments are in the coordinate space the table is built in. Issues
// describe input items that could not be turned into fragments; they are
// not errors. An error means the source itself could not be read.
type Source interface {
	Fragments(ctx context.Context, rect model.Rect) ([]model.Fragment, []Issue, error)
}

// Issue records an input item the source skipped
type Issue struct {
	Text string
	Err  error
}

func (i Issue) String() string {
	return fmt.Sprintf("skipped %q: %v", i.Text, i.Err)
}

// Static serves an in-memory fragment list that is already in selection
// space, such as fragments posted by an API client.
type Static []model.Fragment

// Fragments returns the contained fragments with their text NFC-normalized
func (s Static) Fragments(ctx context.Context, rect model.Rect) ([]model.Fragment, []Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	frags := make([]model.Fragment, len(s))
	for i, f := range s {
		f.Text = normalizeText(f.Text)
		frags[i] = f
	}
	return tables.Select(frags, rect), nil, nil
}

// normalizeText composes text to NFC so text-layer glyphs and OCR output
// compare equal.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}
