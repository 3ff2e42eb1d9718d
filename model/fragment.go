package model

// SourceKind identifies where a fragment came from
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourceTextLayer
	SourceOCR
)

func (k SourceKind) String() string {
	switch k {
	case SourceTextLayer:
		return "text-layer"
	case SourceOCR:
		return "ocr"
	default:
		return "unknown"
	}
}

// Fragment is a positioned piece of text with a top-left bounding box
type Fragment struct {
	Text       string
	Box        BBox
	Source     SourceKind
	Confidence float64 // OCR confidence (0-100), zero for text-layer fragments
}

// NewFragment creates a fragment from its text and top-left box
func NewFragment(text string, x, y, width, height float64) Fragment {
	return Fragment{Text: text, Box: NewBBox(x, y, width, height)}
}

// Right returns the right edge X coordinate
func (f Fragment) Right() float64 {
	return f.Box.Right()
}

// Bottom returns the bottom edge Y coordinate
func (f Fragment) Bottom() float64 {
	return f.Box.Bottom()
}

// Validate returns ErrDegenerateGeometry when the fragment has no text,
// non-finite coordinates or a negative size.
func (f Fragment) Validate() error {
	if f.Text == "" || !f.Box.IsFinite() || f.Box.Width < 0 || f.Box.Height < 0 {
		return ErrDegenerateGeometry
	}
	return nil
}
