package model

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// ============================================================================
// Geometry Tests
// ============================================================================

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)
	if b.Left() != 10 || b.Right() != 110 {
		t.Errorf("Expected horizontal edges 10..110, got %v..%v", b.Left(), b.Right())
	}
	if b.Top() != 20 || b.Bottom() != 70 {
		t.Errorf("Expected vertical edges 20..70, got %v..%v", b.Top(), b.Bottom())
	}
}

func TestBBoxIsFinite(t *testing.T) {
	if !NewBBox(1, 2, 3, 4).IsFinite() {
		t.Error("Expected finite box")
	}
	if NewBBox(math.NaN(), 0, 1, 1).IsFinite() {
		t.Error("Expected NaN box to be non-finite")
	}
	if NewBBox(0, 0, math.Inf(1), 1).IsFinite() {
		t.Error("Expected infinite box to be non-finite")
	}
}

func TestNormalizeDrag(t *testing.T) {
	tests := []struct {
		name   string
		anchor Point
		dx, dy float64
		want   Rect
	}{
		{"down-right", Point{10, 10}, 30, 20, Rect{10, 10, 40, 30}},
		{"up-left", Point{40, 30}, -30, -20, Rect{10, 10, 40, 30}},
		{"up-right", Point{10, 30}, 30, -20, Rect{10, 10, 40, 30}},
		{"zero", Point{5, 5}, 0, 0, Rect{5, 5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDrag(tt.anchor, tt.dx, tt.dy)
			if got != tt.want {
				t.Errorf("NormalizeDrag() = %+v, want %+v", got, tt.want)
			}
			if got.Left > got.Right || got.Top > got.Bottom {
				t.Errorf("Expected canonical rect, got %+v", got)
			}
		})
	}
}

func TestRectScale(t *testing.T) {
	got := NewRect(10, 20, 30, 40).Scale(2, 0.5)
	if want := (Rect{20, 10, 60, 20}); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if !Unbounded().Scale(2, 2).IsUnbounded() {
		t.Error("Expected unbounded rect to stay unbounded")
	}
	if !Unbounded().Contains(NewBBox(-1e9, -1e9, 1, 1)) {
		t.Error("Expected unbounded rect to contain every finite box")
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(0, 0, 100, 50)

	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"inside", NewBBox(10, 10, 10, 10), true},
		{"exactly on edges", NewBBox(0, 0, 100, 50), true},
		{"one unit past right", NewBBox(0, 0, 101, 50), false},
		{"one unit above", NewBBox(10, -1, 10, 10), false},
		{"mostly inside", NewBBox(90, 40, 20, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.box); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate then scale: the translation is scaled too
	m := Translate(10, 10).Multiply(Scale(2, 2))
	if m != (Matrix{2, 0, 0, 2, 20, 20}) {
		t.Errorf("Expected {2 0 0 2 20 20}, got %v", m)
	}
	if m := Identity().Multiply(Translate(3, 4)); m != Translate(3, 4) {
		t.Errorf("Expected identity to be neutral, got %v", m)
	}
}

func TestMatrixScaleFactors(t *testing.T) {
	m := Matrix{3, 4, 0, -2, 0, 0}
	if m.XScale() != 5 {
		t.Errorf("Expected x scale 5, got %v", m.XScale())
	}
	if m.YScale() != 2 {
		t.Errorf("Expected y scale 2, got %v", m.YScale())
	}
}

// ============================================================================
// Transform Tests
// ============================================================================

func TestPlaceTextIdentity(t *testing.T) {
	// Baseline origin at (20, 100) with a 12 unit tall glyph run.
	box, err := PlaceText(Translate(20, 100), Identity(), 40, 12, DefaultFallbackHeight)
	if err != nil {
		t.Fatalf("PlaceText failed: %v", err)
	}
	want := NewBBox(20, 88, 40, 12)
	if box != want {
		t.Errorf("Expected %+v, got %+v", want, box)
	}
}

func TestPlaceTextPageViewport(t *testing.T) {
	// A PDF page 800 units tall rendered at scale 1.5. Text baseline at
	// (100, 700) in PDF space sits 100 units below the top edge.
	viewport := PageViewport(800, 1.5)
	box, err := PlaceText(Translate(100, 700), viewport, 50, 10, DefaultFallbackHeight)
	if err != nil {
		t.Fatalf("PlaceText failed: %v", err)
	}

	want := NewBBox(150, 150-15, 75, 15)
	if math.Abs(box.X-want.X) > 1e-9 || math.Abs(box.Y-want.Y) > 1e-9 ||
		math.Abs(box.Width-want.Width) > 1e-9 || math.Abs(box.Height-want.Height) > 1e-9 {
		t.Errorf("Expected %+v, got %+v", want, box)
	}
}

func TestPlaceTextFallbackHeight(t *testing.T) {
	box, err := PlaceText(Translate(5, 50), Identity(), 20, 0, 8)
	if err != nil {
		t.Fatalf("PlaceText failed: %v", err)
	}
	if box.Height != 8 {
		t.Errorf("Expected fallback height 8, got %v", box.Height)
	}
	if box.Y != 50 {
		t.Errorf("Expected box to stay at the baseline y=50, got %v", box.Y)
	}
}

func TestPlaceTextFallbackHeightInsideSelection(t *testing.T) {
	box, err := PlaceText(Translate(0, 100), Identity(), 20, 0, 10)
	if err != nil {
		t.Fatalf("PlaceText failed: %v", err)
	}
	if want := NewBBox(0, 100, 20, 10); box != want {
		t.Errorf("Expected %+v, got %+v", want, box)
	}
	if !NewRect(0, 95, 100, 115).Contains(box) {
		t.Errorf("Expected selection around the baseline to contain %+v", box)
	}
}

func TestPlaceTextDeterministic(t *testing.T) {
	native := Matrix{12, 0, 0, 12, 33.3, 444.4}
	viewport := PageViewport(792, 1.2)
	a, errA := PlaceText(native, viewport, 17.5, 9, DefaultFallbackHeight)
	b, errB := PlaceText(native, viewport, 17.5, 9, DefaultFallbackHeight)
	if errA != nil || errB != nil {
		t.Fatalf("PlaceText failed: %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("Expected identical boxes, got %+v and %+v", a, b)
	}
}

func TestPlaceTextDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		native   Matrix
		w, h     float64
		fallback float64
	}{
		{"negative width", Identity(), -1, 10, 10},
		{"negative height", Identity(), 1, -10, 10},
		{"NaN translate", Translate(math.NaN(), 0), 1, 1, 10},
		{"infinite width", Identity(), math.Inf(1), 1, 10},
		{"zero height without fallback", Identity(), 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlaceText(tt.native, Identity(), tt.w, tt.h, tt.fallback)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Errorf("Expected ErrDegenerateGeometry, got %v", err)
			}
		})
	}
}

// ============================================================================
// Fragment Tests
// ============================================================================

func TestFragmentValidate(t *testing.T) {
	if err := NewFragment("A", 0, 0, 10, 10).Validate(); err != nil {
		t.Errorf("Expected valid fragment, got %v", err)
	}
	if err := NewFragment("A", 0, 0, 0, 0).Validate(); err != nil {
		t.Errorf("Expected zero-size fragment to be valid, got %v", err)
	}
	bad := []Fragment{
		NewFragment("", 0, 0, 10, 10),
		NewFragment("A", 0, 0, -1, 10),
		NewFragment("A", math.Inf(-1), 0, 1, 1),
	}
	for _, f := range bad {
		if !errors.Is(f.Validate(), ErrDegenerateGeometry) {
			t.Errorf("Expected ErrDegenerateGeometry for %+v", f)
		}
	}
}

func TestFragmentEdges(t *testing.T) {
	f := NewFragment("x", 3, 4, 5, 6)
	if f.Right() != 8 || f.Bottom() != 10 {
		t.Errorf("Expected right=8 bottom=10, got %v %v", f.Right(), f.Bottom())
	}
}

func TestSourceKindString(t *testing.T) {
	if SourceOCR.String() != "ocr" || SourceTextLayer.String() != "text-layer" || SourceUnknown.String() != "unknown" {
		t.Error("Unexpected SourceKind names")
	}
}

// ============================================================================
// Selection Tests
// ============================================================================

func TestSelectionDragAndSettle(t *testing.T) {
	s := NewSelection(Point{100, 100}).DragTo(Point{40, 60})
	if r := s.Rect(); r != (Rect{40, 60, 100, 100}) {
		t.Errorf("Expected rect {40 60 100 100}, got %+v", r)
	}

	settled, ok := s.Settle(MinSelectionSize)
	if !ok {
		t.Fatal("Expected selection to settle")
	}
	if settled.Anchor != (Point{40, 60}) || settled.Width != 60 || settled.Height != 40 {
		t.Errorf("Expected re-anchored selection, got %+v", settled)
	}

	tiny := NewSelection(Point{0, 0}).DragTo(Point{4, 50})
	if _, ok := tiny.Settle(MinSelectionSize); ok {
		t.Error("Expected selection narrower than the minimum to be discarded")
	}
}

func TestSelectionResize(t *testing.T) {
	base := Selection{Anchor: Point{10, 10}, Width: 100, Height: 50}

	tests := []struct {
		handle Handle
		to     Point
		want   Rect
	}{
		{HandleE, Point{200, 999}, Rect{10, 10, 200, 60}},
		{HandleW, Point{0, 999}, Rect{0, 10, 110, 60}},
		{HandleS, Point{999, 100}, Rect{10, 10, 110, 100}},
		{HandleN, Point{999, 0}, Rect{10, 0, 110, 60}},
		{HandleSE, Point{50, 30}, Rect{10, 10, 50, 30}},
		{HandleNW, Point{20, 20}, Rect{20, 20, 110, 60}},
		{HandleNE, Point{150, 5}, Rect{10, 5, 150, 60}},
		{HandleSW, Point{5, 80}, Rect{5, 10, 110, 80}},
		{Handle("bogus"), Point{0, 0}, Rect{10, 10, 110, 60}},
	}

	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			got := base.Resize(tt.handle, tt.to).Rect()
			if got != tt.want {
				t.Errorf("Resize(%s) = %+v, want %+v", tt.handle, got, tt.want)
			}
		})
	}
}

func TestSelectionResizePastOppositeEdge(t *testing.T) {
	base := Selection{Anchor: Point{10, 10}, Width: 100, Height: 50}
	got := base.Resize(HandleE, Point{0, 0}).Rect()
	if got != (Rect{0, 10, 10, 60}) {
		t.Errorf("Expected flipped rect {0 10 10 60}, got %+v", got)
	}
}

func TestViewToPage(t *testing.T) {
	v := View{OffsetX: 20, OffsetY: 10, Scale: 2}
	p := v.ToPage(130, 70, Point{10, 20})
	if p != (Point{50, 20}) {
		t.Errorf("Expected {50 20}, got %v", p)
	}
	if (View{}).ToPage(5, 6, Point{}) != (Point{5, 6}) {
		t.Error("Expected zero view to act as identity")
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func sampleTable() *Table {
	return &Table{Rows: [][]string{
		{"Name", "Qty"},
		{"Widget, large", "2"},
		{"Say \"hi\"", ""},
	}}
}

func TestTableDimensions(t *testing.T) {
	table := sampleTable()
	if table.RowCount() != 3 || table.ColCount() != 2 {
		t.Errorf("Expected 3x2, got %dx%d", table.RowCount(), table.ColCount())
	}
	if cell, ok := table.Cell(1, 1); !ok || cell != "2" {
		t.Errorf("Expected cell (1,1) = 2, got %q %v", cell, ok)
	}
	if _, ok := table.Cell(5, 0); ok {
		t.Error("Expected out of range cell to report false")
	}
	if (&Table{}).ColCount() != 0 {
		t.Error("Expected empty table to have 0 columns")
	}
	if n := NewTable(2, 3); n.RowCount() != 2 || n.ColCount() != 3 {
		t.Errorf("Expected NewTable 2x3, got %dx%d", n.RowCount(), n.ColCount())
	}
}

func TestTableToCSV(t *testing.T) {
	want := "Name,Qty\n\"Widget, large\",2\n\"Say \"\"hi\"\"\",\n"
	if got := sampleTable().ToCSV(); got != want {
		t.Errorf("ToCSV() = %q, want %q", got, want)
	}
}

func TestTableToTSV(t *testing.T) {
	table := &Table{Rows: [][]string{{"a\tb", "c"}}}
	if got := table.ToTSV(); got != "a b\tc\n" {
		t.Errorf("ToTSV() = %q", got)
	}
}

func TestTableToMarkdown(t *testing.T) {
	md := sampleTable().ToMarkdown()
	lines := strings.Split(strings.TrimSpace(md), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 markdown lines, got %d: %q", len(lines), md)
	}
	if lines[0] != "| Name | Qty |" {
		t.Errorf("Unexpected header line %q", lines[0])
	}
	if lines[1] != "|---|---|" {
		t.Errorf("Unexpected separator line %q", lines[1])
	}
	if (&Table{}).ToMarkdown() != "" {
		t.Error("Expected empty markdown for empty table")
	}
}

func TestTableEqual(t *testing.T) {
	if !sampleTable().Equal(sampleTable()) {
		t.Error("Expected equal tables")
	}
	other := sampleTable()
	other.Rows[2][1] = "x"
	if sampleTable().Equal(other) {
		t.Error("Expected different tables")
	}
	var nilTable *Table
	if !nilTable.Equal(nil) {
		t.Error("Expected nil tables to be equal")
	}
}
