// Package snaptable reconstructs tables from positioned text.
//
// Text fragments come from a source (a PDF text layer, OCR over a page
// image, or an in-memory list). The fragments inside a selection are
// grouped into rows by vertical position and split into cells by the
// horizontal gaps between them.
//
// Basic usage:
//
//	doc, err := pdfdoc.Open("invoice.pdf")
//	if err != nil {
//	    // handle error
//	}
//	page, err := doc.Page(1, pdfdoc.DefaultScale)
//	if err != nil {
//	    // handle error
//	}
//	result, warnings, err := snaptable.FromPage(page).
//	    Select(model.NewRect(80, 120, 640, 400)).
//	    Table(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if !result.Found() {
//	    fmt.Println("no text found in selection")
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", snaptable.FormatWarnings(warnings))
//	}
//
// With options:
//
//	result, _, err := snaptable.FromFragments(frags...).
//	    RowTolerance(6).
//	    ColumnGap(20).
//	    Table(ctx)
package snaptable

import (
	"image"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/pdfdoc"
	"github.com/tsawler/snaptable/sources"
)

// From returns an Extractor reading fragments from src.
//
// Example:
//
//	result, _, err := snaptable.From(src).Select(rect).Table(ctx)
func From(src sources.Source) *Extractor {
	e := &Extractor{
		source:  src,
		options: defaultOptions(),
	}
	if src == nil {
		e.err = errNoSource
	}
	return e
}

// FromFragments returns an Extractor over fragments that are already in
// selection space.
func FromFragments(frags ...model.Fragment) *Extractor {
	return From(sources.Static(frags))
}

// FromPage returns an Extractor over a PDF page's text layer
func FromPage(page *pdfdoc.Page) *Extractor {
	if page == nil {
		return From(nil)
	}
	return From(page.Source(0))
}

// FromImage returns an Extractor that runs rec over the selected part of
// img. Selections are in the image's pixel space.
//
// Example:
//
//	result, _, err := snaptable.FromImage(img, ocr.NewCLI("")).
//	    Select(model.NewRect(0, 0, 400, 200)).
//	    Table(ctx)
func FromImage(img image.Image, rec ocr.Recognizer) *Extractor {
	return From(sources.NewRaster(img, rec))
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustTable is a helper that wraps a call to Table() and panics if the
// error is non-nil. It discards warnings and returns just the result.
//
// Example:
//
//	result := snaptable.MustTable(snaptable.FromFragments(frags...).Table(ctx))
func MustTable[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
