package model

// MinSelectionSize is the smallest width or height a settled selection may have.
const MinSelectionSize = 5.0

// Selection is a drag rectangle as the user draws it: an anchor and a
// signed size. Width and Height are negative when dragging up or left.
type Selection struct {
	Anchor Point
	Width  float64
	Height float64
}

// NewSelection starts a zero-sized selection at p
func NewSelection(p Point) Selection {
	return Selection{Anchor: p}
}

// DragTo returns the selection stretched so its moving corner is at p
func (s Selection) DragTo(p Point) Selection {
	return Selection{Anchor: s.Anchor, Width: p.X - s.Anchor.X, Height: p.Y - s.Anchor.Y}
}

// Rect returns the canonical rectangle covered by the selection
func (s Selection) Rect() Rect {
	return NormalizeDrag(s.Anchor, s.Width, s.Height)
}

// Handle names one of the eight resize grips around a selection
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Resize moves the edges named by the handle to p while the opposite edges
// stay fixed. Unknown handles leave the selection unchanged.
func (s Selection) Resize(h Handle, p Point) Selection {
	r := s.Rect()
	out := s

	switch h {
	case HandleE, HandleNE, HandleSE:
		out.Anchor.X = r.Left
		out.Width = p.X - r.Left
	case HandleW, HandleNW, HandleSW:
		out.Anchor.X = p.X
		out.Width = r.Right - p.X
	}

	switch h {
	case HandleS, HandleSE, HandleSW:
		out.Anchor.Y = r.Top
		out.Height = p.Y - r.Top
	case HandleN, HandleNE, HandleNW:
		out.Anchor.Y = p.Y
		out.Height = r.Bottom - p.Y
	}

	return out
}

// Settle finishes a drag. Selections narrower or shorter than minSize are
// discarded (ok is false); the rest are re-anchored at their top-left corner
// with a positive size.
func (s Selection) Settle(minSize float64) (Selection, bool) {
	r := s.Rect()
	if r.Width() < minSize || r.Height() < minSize {
		return Selection{}, false
	}
	return Selection{Anchor: Point{X: r.Left, Y: r.Top}, Width: r.Width(), Height: r.Height()}, true
}

// View describes a panned and zoomed presentation of a page.
type View struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// ToPage maps a screen position to page coordinates. origin is the screen
// position of the view container's top-left corner.
func (v View) ToPage(clientX, clientY float64, origin Point) Point {
	scale := v.Scale
	if scale == 0 {
		scale = 1
	}
	return Point{
		X: (clientX - origin.X - v.OffsetX) / scale,
		Y: (clientY - origin.Y - v.OffsetY) / scale,
	}
}
