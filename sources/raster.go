package sources

import (
	"context"
	"fmt"
	"image"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/raster"
)

// Raster recognizes the words inside a selection of a bitmap. The selection
// is in the image's pixel space. The returned fragments are in the cropped
// image's space, with the selection's top-left corner at the origin.
type Raster struct {
	Image      image.Image
	Recognizer ocr.Recognizer
	Languages  ocr.Languages

	// Upscale enlarges the crop before recognition; Tesseract reads small
	// print better at 2x or more. Values <= 1 leave the crop as is.
	Upscale float64

	// MinConfidence drops words Tesseract is less sure of (0-100)
	MinConfidence float64
}

// NewRaster creates a raster source using the default languages
func NewRaster(img image.Image, rec ocr.Recognizer) *Raster {
	return &Raster{
		Image:      img,
		Recognizer: rec,
		Languages:  ocr.DefaultLanguages,
	}
}

// Fragments crops the image to rect and runs the recognizer on the crop.
// Recognizer failures are returned as they are, so callers can tell them
// apart from an engine that found nothing.
func (r *Raster) Fragments(ctx context.Context, rect model.Rect) ([]model.Fragment, []Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if r.Image == nil {
		return nil, nil, fmt.Errorf("raster source has no image")
	}
	if r.Recognizer == nil {
		return nil, nil, fmt.Errorf("raster source has no recognizer")
	}

	crop, err := raster.Crop(r.Image, rect)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to crop selection: %w", err)
	}

	var input image.Image = crop
	// Scale rounds each axis separately, so the factors can differ
	fx, fy := 1.0, 1.0
	if r.Upscale > 1 {
		input = raster.Scale(crop, r.Upscale)
		fx = float64(input.Bounds().Dx()) / float64(crop.Bounds().Dx())
		fy = float64(input.Bounds().Dy()) / float64(crop.Bounds().Dy())
	}

	langs := r.Languages
	if len(langs) == 0 {
		langs = ocr.DefaultLanguages
	}

	words, err := r.Recognizer.Recognize(ctx, input, langs)
	if err != nil {
		return nil, nil, err
	}

	return r.toFragments(words, fx, fy), nil, nil
}

func (r *Raster) toFragments(words []ocr.Word, fx, fy float64) []model.Fragment {
	frags := make([]model.Fragment, 0, len(words))
	for _, w := range words {
		if w.Text == "" {
			continue
		}
		if r.MinConfidence > 0 && w.Confidence < r.MinConfidence {
			continue
		}
		b := w.Box.Canon()
		frags = append(frags, model.Fragment{
			Text: normalizeText(w.Text),
			Box: model.BBox{
				X:      float64(b.Min.X) / fx,
				Y:      float64(b.Min.Y) / fy,
				Width:  float64(b.Dx()) / fx,
				Height: float64(b.Dy()) / fy,
			},
			Source:     model.SourceOCR,
			Confidence: w.Confidence,
		})
	}
	return frags
}
