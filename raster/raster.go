// Package raster prepares bitmaps for OCR: decoding uploaded images,
// cropping a selection out of a page render and upscaling small crops.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	// Decoders for formats uploaded alongside PNG and JPEG
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/snaptable/model"
)

// ErrEmptyCrop is returned when a crop rectangle has no pixels inside the image
var ErrEmptyCrop = errors.New("crop rectangle is empty")

// MaxScale bounds Scale so a typo cannot allocate gigabytes
const MaxScale = 8.0

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// EncodePNG encodes img as PNG, the format handed to OCR engines.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop copies the pixels of img under rect into a new RGBA image whose
// origin is the rect's top-left corner. The rect is in image pixel space,
// relative to img.Bounds().Min, and is clamped to the image. Fractional
// edges are widened to whole pixels.
func Crop(img image.Image, rect model.Rect) (*image.RGBA, error) {
	b := img.Bounds()

	x0 := clampPixel(math.Floor(rect.Left), b.Dx())
	y0 := clampPixel(math.Floor(rect.Top), b.Dy())
	x1 := clampPixel(math.Ceil(rect.Right), b.Dx())
	y1 := clampPixel(math.Ceil(rect.Bottom), b.Dy())

	src := image.Rect(x0, y0, x1, y1).Add(b.Min)
	if src.Empty() {
		return nil, ErrEmptyCrop
	}

	dst := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Src)
	return dst, nil
}

// Scale resizes img by factor using Catmull-Rom interpolation. A factor of
// 1, or one that is not positive, returns img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 || math.IsNaN(factor) {
		return img
	}
	if factor > MaxScale {
		factor = MaxScale
	}

	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// clampPixel converts v to an int within [0, max]. Infinite selections
// clamp to the image edges.
func clampPixel(v float64, max int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(max) {
		return max
	}
	return int(v)
}
