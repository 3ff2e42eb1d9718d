package model

import "errors"

// ErrDegenerateGeometry is reported for fragments whose geometry cannot be
// placed: empty text, non-finite coordinates or a negative size.
var ErrDegenerateGeometry = errors.New("degenerate fragment geometry")

// DefaultFallbackHeight is used for text items that carry no glyph metrics.
const DefaultFallbackHeight = 10.0

// PageViewport returns the transform from PDF user space (origin bottom-left,
// y up) to a top-left, y-down viewport rendered at the given scale.
func PageViewport(pageHeight, scale float64) Matrix {
	return Matrix{scale, 0, 0, -scale, 0, pageHeight * scale}
}

// PlaceText maps a text item's native transform into a top-left bounding
// box in the viewport's coordinate space.
//
// The native matrix is applied first, then the viewport. The translated
// origin is the text baseline, so the box is lifted by its rendered height.
// Width and height are given in the item's unscaled units and are scaled by
// the viewport. A zero-height item keeps its baseline as the top edge and
// takes fallbackHeight, already in viewport units, as its height.
func PlaceText(native, viewport Matrix, width, height, fallbackHeight float64) (BBox, error) {
	if !isFinite(width) || !isFinite(height) || width < 0 || height < 0 {
		return BBox{}, ErrDegenerateGeometry
	}

	m := native.Multiply(viewport)
	for _, v := range m {
		if !isFinite(v) {
			return BBox{}, ErrDegenerateGeometry
		}
	}

	w := width * viewport.XScale()
	h := height * viewport.YScale()

	// Only a real height lifts the box; the fallback just gives it size
	box := BBox{X: m[4], Y: m[5] - h, Width: w, Height: h}
	if h == 0 {
		if fallbackHeight <= 0 || !isFinite(fallbackHeight) {
			return BBox{}, ErrDegenerateGeometry
		}
		box.Height = fallbackHeight
	}
	if !box.IsFinite() {
		return BBox{}, ErrDegenerateGeometry
	}
	return box, nil
}
