package tables

import "github.com/tsawler/snaptable/model"

// Select returns the fragments whose boxes lie entirely inside rect, in
// their original order. Fragments that only overlap an edge are dropped.
// The result is empty, never nil-with-error, when nothing qualifies.
func Select(fragments []model.Fragment, rect model.Rect) []model.Fragment {
	selected := make([]model.Fragment, 0, len(fragments))
	for _, frag := range fragments {
		if rect.Contains(frag.Box) {
			selected = append(selected, frag)
		}
	}
	return selected
}
