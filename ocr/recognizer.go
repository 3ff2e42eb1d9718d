package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrOCRNotEnabled is returned when the cgo Tesseract client is used but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Word is a recognized word with its pixel box in the recognized image
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64 // 0-100
}

// Recognizer finds words in a bitmap. Implementations must honour ctx and
// return a *RecognizerError when the engine itself fails.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, langs Languages) ([]Word, error)
}

// RecognizerError reports that an OCR engine could not run. It is distinct
// from an engine that ran and found nothing, which returns no words and a
// nil error.
type RecognizerError struct {
	Engine string
	Err    error
}

func (e *RecognizerError) Error() string {
	return fmt.Sprintf("%s recognizer failed: %v", e.Engine, e.Err)
}

func (e *RecognizerError) Unwrap() error {
	return e.Err
}

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (matching Tesseract's numbering).
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD            PageSegMode = 8  // Single word
	PSM_CIRCLE_WORD            PageSegMode = 9  // Single word in a circle
	PSM_SINGLE_CHAR            PageSegMode = 10 // Single character
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12 // Sparse text with OSD
	PSM_RAW_LINE               PageSegMode = 13 // Treat image as single text line
)
