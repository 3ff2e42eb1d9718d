package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// BBox is an axis-aligned box in a downward-growing coordinate space.
// X and Y are the top-left corner.
type BBox struct {
	X      float64 // Left
	Y      float64 // Top
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from its top-left corner and size
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// IsFinite reports whether every component is a finite number
func (b BBox) IsFinite() bool {
	return isFinite(b.X) && isFinite(b.Y) && isFinite(b.Width) && isFinite(b.Height)
}

// Rect is a canonical selection rectangle: Left <= Right and Top <= Bottom.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// NewRect creates a canonical rectangle from any two opposite corners
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		Left:   math.Min(x1, x2),
		Top:    math.Min(y1, y2),
		Right:  math.Max(x1, x2),
		Bottom: math.Max(y1, y2),
	}
}

// NormalizeDrag converts a drag gesture (anchor plus a possibly negative
// delta) into a canonical rectangle.
func NormalizeDrag(anchor Point, dx, dy float64) Rect {
	return NewRect(anchor.X, anchor.Y, anchor.X+dx, anchor.Y+dy)
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Contains reports whether the box lies entirely inside the rectangle.
// Edges are inclusive.
func (r Rect) Contains(b BBox) bool {
	return b.Left() >= r.Left && b.Right() <= r.Right &&
		b.Top() >= r.Top && b.Bottom() <= r.Bottom
}

// Unbounded returns a rectangle that contains every finite box. It stands in
// for "no selection".
func Unbounded() Rect {
	return Rect{
		Left:   -math.MaxFloat64,
		Top:    -math.MaxFloat64,
		Right:  math.MaxFloat64,
		Bottom: math.MaxFloat64,
	}
}

// IsUnbounded reports whether r is the rectangle returned by Unbounded
func (r Rect) IsUnbounded() bool {
	return r == Unbounded()
}

// Scale returns the rectangle with its X coordinates multiplied by sx and
// its Y coordinates by sy. The unbounded rectangle stays unbounded.
func (r Rect) Scale(sx, sy float64) Rect {
	if r.IsUnbounded() {
		return r
	}
	return NewRect(r.Left*sx, r.Top*sy, r.Right*sx, r.Bottom*sy)
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]:
// scale-x, skew-y, skew-x, scale-y, translate-x, translate-y.
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Multiply returns the matrix that applies m first and then other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// XScale returns the length of the transformed unit X vector
func (m Matrix) XScale() float64 {
	return math.Hypot(m[0], m[1])
}

// YScale returns the length of the transformed unit Y vector
func (m Matrix) YScale() float64 {
	return math.Hypot(m[2], m[3])
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
