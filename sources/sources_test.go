package sources

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/tables"
)

func TestStaticSelectsAndNormalizes(t *testing.T) {
	src := Static{
		model.NewFragment("Cafe\u0301", 10, 10, 30, 10),
		model.NewFragment("outside", 95, 10, 10, 10),
	}

	frags, issues, err := src.Fragments(context.Background(), model.NewRect(0, 0, 100, 100))
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("Expected no issues, got %v", issues)
	}
	if len(frags) != 1 {
		t.Fatalf("Expected 1 fragment, got %d", len(frags))
	}
	if frags[0].Text != "Caf\u00e9" {
		t.Errorf("Expected NFC text %q, got %q", "Caf\u00e9", frags[0].Text)
	}
	if src[0].Text != "Cafe\u0301" {
		t.Error("Fragments must not modify the source list")
	}
}

func TestStaticCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := (Static{}).Fragments(ctx, model.Unbounded()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestVectorPlacesThroughViewport(t *testing.T) {
	// Page 800 units tall rendered at 1.5: baseline (100, 700) with a
	// 10 unit font lands at y = (800-700)*1.5 - 15.
	src := NewVector([]TextItem{
		{Text: "Qty", Transform: model.Translate(100, 700), Width: 50, Height: 10},
	}, model.PageViewport(800, 1.5))

	frags, _, err := src.Fragments(context.Background(), model.Unbounded())
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("Expected 1 fragment, got %d", len(frags))
	}

	want := model.NewBBox(150, 135, 75, 15)
	if frags[0].Box != want {
		t.Errorf("Expected box %+v, got %+v", want, frags[0].Box)
	}
	if frags[0].Source != model.SourceTextLayer {
		t.Errorf("Expected text-layer source, got %v", frags[0].Source)
	}
}

func TestVectorFallbackHeight(t *testing.T) {
	src := NewVector([]TextItem{
		{Text: "note", Transform: model.Translate(0, 50), Width: 20},
	}, model.Identity())

	frags, _, _ := src.Fragments(context.Background(), model.Unbounded())
	if len(frags) != 1 {
		t.Fatalf("Expected 1 fragment, got %d", len(frags))
	}
	if frags[0].Box.Height != model.DefaultFallbackHeight {
		t.Errorf("Expected default fallback height, got %v", frags[0].Box.Height)
	}
	if frags[0].Box.Y != 50 {
		t.Errorf("Expected box at the baseline, got Y=%v", frags[0].Box.Y)
	}

	src.FallbackHeight = 4
	frags, _, _ = src.Fragments(context.Background(), model.Unbounded())
	if frags[0].Box.Height != 4 {
		t.Errorf("Expected fallback height 4, got %v", frags[0].Box.Height)
	}
}

func TestVectorSkipsDegenerateItems(t *testing.T) {
	src := NewVector([]TextItem{
		{Text: "", Transform: model.Translate(0, 10), Width: 5, Height: 5},
		{Text: "nan", Transform: model.Translate(math.NaN(), 10), Width: 5, Height: 5},
		{Text: "neg", Transform: model.Translate(0, 10), Width: -5, Height: 5},
		{Text: "ok", Transform: model.Translate(0, 10), Width: 5, Height: 5},
	}, model.Identity())

	frags, issues, err := src.Fragments(context.Background(), model.Unbounded())
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "ok" {
		t.Errorf("Expected only the well-formed item, got %+v", frags)
	}
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	for _, is := range issues {
		if !errors.Is(is.Err, model.ErrDegenerateGeometry) {
			t.Errorf("Expected ErrDegenerateGeometry for %q, got %v", is.Text, is.Err)
		}
	}
}

func TestVectorContainment(t *testing.T) {
	src := NewVector([]TextItem{
		{Text: "edge", Transform: model.Translate(0, 10), Width: 10, Height: 10},
		{Text: "over", Transform: model.Translate(91, 10), Width: 10, Height: 10},
	}, model.Identity())

	frags, _, _ := src.Fragments(context.Background(), model.NewRect(0, 0, 100, 100))
	if len(frags) != 1 || frags[0].Text != "edge" {
		t.Errorf("Expected only the contained item, got %+v", frags)
	}
}

type fakeRecognizer struct {
	words []ocr.Word
	err   error

	gotBounds image.Rectangle
	gotLangs  ocr.Languages
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image, langs ocr.Languages) ([]ocr.Word, error) {
	f.gotBounds = img.Bounds()
	f.gotLangs = langs
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.words, f.err
}

func TestRasterCropsBeforeRecognizing(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "A", Box: image.Rect(0, 0, 10, 10), Confidence: 90},
	}}
	src := NewRaster(image.NewRGBA(image.Rect(0, 0, 400, 300)), rec)

	frags, _, err := src.Fragments(context.Background(), model.NewRect(100, 50, 180, 90))
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	if rec.gotBounds != image.Rect(0, 0, 80, 40) {
		t.Errorf("Expected recognizer to see an 80x40 crop, got %v", rec.gotBounds)
	}
	if rec.gotLangs.String() != "rus+eng" {
		t.Errorf("Expected default languages, got %v", rec.gotLangs)
	}
	if len(frags) != 1 || frags[0].Source != model.SourceOCR || frags[0].Confidence != 90 {
		t.Errorf("Unexpected fragments %+v", frags)
	}
}

func TestRasterUpscaleMapsBoxesBack(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "B", Box: image.Rect(20, 10, 60, 30), Confidence: 80},
		{Text: "faint", Box: image.Rect(0, 0, 4, 4), Confidence: 20},
	}}
	src := NewRaster(image.NewRGBA(image.Rect(0, 0, 100, 100)), rec)
	src.Upscale = 2
	src.MinConfidence = 50

	frags, _, err := src.Fragments(context.Background(), model.NewRect(0, 0, 50, 50))
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	if rec.gotBounds != image.Rect(0, 0, 100, 100) {
		t.Errorf("Expected 2x crop, got %v", rec.gotBounds)
	}
	if len(frags) != 1 {
		t.Fatalf("Expected low-confidence word dropped, got %+v", frags)
	}
	if want := model.NewBBox(10, 5, 20, 10); frags[0].Box != want {
		t.Errorf("Expected box %+v, got %+v", want, frags[0].Box)
	}
}

func TestRasterUpscaleUnevenAxes(t *testing.T) {
	// A 10x5 crop at 1.5x rounds to 15x8, so y is scaled by 1.6, not 1.5
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "C", Box: image.Rect(3, 4, 15, 8), Confidence: 90},
	}}
	src := NewRaster(image.NewRGBA(image.Rect(0, 0, 40, 40)), rec)
	src.Upscale = 1.5

	frags, _, err := src.Fragments(context.Background(), model.NewRect(0, 0, 10, 5))
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	if rec.gotBounds != image.Rect(0, 0, 15, 8) {
		t.Fatalf("Expected 15x8 crop, got %v", rec.gotBounds)
	}
	if len(frags) != 1 {
		t.Fatalf("Expected one fragment, got %+v", frags)
	}

	got, want := frags[0].Box, model.NewBBox(2, 2.5, 8, 2.5)
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 ||
		math.Abs(got.Width-want.Width) > 1e-9 || math.Abs(got.Height-want.Height) > 1e-9 {
		t.Errorf("Expected box %+v, got %+v", want, got)
	}
	if got.Bottom() > 5+1e-9 {
		t.Errorf("Expected box inside the 5px crop, bottom at %v", got.Bottom())
	}
}

func TestRasterRecognizerFailure(t *testing.T) {
	cause := &ocr.RecognizerError{Engine: "fake", Err: errors.New("no engine")}
	src := NewRaster(image.NewRGBA(image.Rect(0, 0, 50, 50)), &fakeRecognizer{err: cause})

	_, _, err := src.Fragments(context.Background(), model.NewRect(0, 0, 20, 20))
	var recErr *ocr.RecognizerError
	if !errors.As(err, &recErr) {
		t.Fatalf("Expected *ocr.RecognizerError, got %v", err)
	}
}

func TestRasterFoundNothing(t *testing.T) {
	src := NewRaster(image.NewRGBA(image.Rect(0, 0, 50, 50)), &fakeRecognizer{})

	frags, _, err := src.Fragments(context.Background(), model.NewRect(0, 0, 20, 20))
	if err != nil {
		t.Fatalf("Expected no error when nothing is found, got %v", err)
	}
	if len(frags) != 0 {
		t.Errorf("Expected no fragments, got %d", len(frags))
	}
}

func TestRasterEmptyCrop(t *testing.T) {
	src := NewRaster(image.NewRGBA(image.Rect(0, 0, 50, 50)), &fakeRecognizer{})

	if _, _, err := src.Fragments(context.Background(), model.NewRect(60, 60, 80, 80)); err == nil {
		t.Error("Expected error for a selection outside the image")
	}
}

// The same table laid out once as a PDF text layer and once as OCR words
// must produce identical output.
func TestVectorAndRasterAgree(t *testing.T) {
	type cell struct {
		text       string
		x, y, w, h float64
	}
	layout := []cell{
		{"Name", 100, 200, 40, 10},
		{"Qty", 170, 201, 20, 10},
		{"Widget", 100, 230, 30, 10},
		{"big", 136, 230, 15, 10},
		{"12", 175, 231, 10, 10},
		{"Gear", 100, 260, 20, 10},
	}
	rect := model.NewRect(100, 200, 300, 300)

	items := make([]TextItem, len(layout))
	words := make([]ocr.Word, len(layout))
	for i, c := range layout {
		items[i] = TextItem{Text: c.text, Transform: model.Translate(c.x, c.y+c.h), Width: c.w, Height: c.h}
		x0, y0 := int(c.x-rect.Left), int(c.y-rect.Top)
		words[i] = ocr.Word{Text: c.text, Box: image.Rect(x0, y0, x0+int(c.w), y0+int(c.h)), Confidence: 95}
	}

	vector := NewVector(items, model.Identity())
	ocrSrc := NewRaster(image.NewRGBA(image.Rect(0, 0, 400, 400)), &fakeRecognizer{words: words})

	config := tables.DefaultConfig()
	build := func(src Source) *model.Table {
		frags, _, err := src.Fragments(context.Background(), rect)
		if err != nil {
			t.Fatalf("Fragments failed: %v", err)
		}
		table, _ := tables.Build(frags, config)
		return table
	}

	fromVector := build(vector)
	fromOCR := build(ocrSrc)

	if fromVector == nil || fromOCR == nil {
		t.Fatal("Expected both sources to produce a table")
	}
	if fromVector.ToCSV() != fromOCR.ToCSV() {
		t.Errorf("Expected identical output\nvector:\n%s\nocr:\n%s", fromVector.ToCSV(), fromOCR.ToCSV())
	}

	want := [][]string{{"Name", "Qty"}, {"Widget big", "12"}, {"Gear", ""}}
	if !fromVector.Equal(&model.Table{Rows: want}) {
		t.Errorf("Expected %v, got %v", want, fromVector.Rows)
	}
}
