package snaptable

import "github.com/tsawler/snaptable/model"

// Result is the outcome of extracting one selection
type Result struct {
	// Table is nil when nothing was recognized in the selection
	Table *model.Table

	// Fragments is the number of fragments the table was built from
	Fragments int

	// Selection is the rectangle the table was extracted from
	Selection model.Rect
}

// Found reports whether the selection contained any text. A result that
// is not found is not an error; the caller decides how to tell the user.
func (r *Result) Found() bool {
	return r != nil && r.Table != nil
}
