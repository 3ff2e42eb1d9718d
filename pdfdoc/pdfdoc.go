// Package pdfdoc loads PDF pages as positioned text for table extraction.
//
// Glyph positions come from the page's text layer via
// github.com/ledongthuc/pdf. Page dimensions come from pdfcpu, falling back
// to the page's MediaBox when pdfcpu cannot validate the file.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/sources"
)

// DefaultScale is the viewport scale pages are rendered at when none is given
const DefaultScale = 1.2

// Letter size, used when a page declares no MediaBox
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

var (
	// ErrPageOutOfRange is returned for page numbers outside 1..PageCount
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrNoPages is returned for documents without pages
	ErrNoPages = errors.New("document has no pages")
)

// Document is an opened PDF
type Document struct {
	reader *pdf.Reader
	dims   []types.Dim
}

// Open reads and opens the PDF at path
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes opens a PDF held in memory
func OpenBytes(data []byte) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	if reader.NumPage() == 0 {
		return nil, ErrNoPages
	}

	return &Document{
		reader: reader,
		dims:   pageDims(data),
	}, nil
}

// pageDims asks pdfcpu for every page's size. Files pdfcpu rejects even in
// relaxed mode yield nil, and sizes are read from the MediaBox instead.
func pageDims(data []byte) []types.Dim {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil
	}
	return dims
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Page is one PDF page placed in a top-left, y-down viewport
type Page struct {
	Number int

	// Width and Height are the page size in PDF units
	Width  float64
	Height float64

	Scale    float64
	Viewport model.Matrix

	// Items are the page's glyphs, positioned in PDF user space
	Items []sources.TextItem
}

// Page loads page n (1-based) at the given viewport scale. A scale <= 0
// uses DefaultScale.
func (d *Document) Page(n int, scale float64) (*Page, error) {
	if n < 1 || n > d.reader.NumPage() {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, d.reader.NumPage())
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", n)
	}

	width, height := d.pageSize(n, p)

	items, err := textItems(p)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}

	return &Page{
		Number:   n,
		Width:    width,
		Height:   height,
		Scale:    scale,
		Viewport: model.PageViewport(height, scale),
		Items:    items,
	}, nil
}

func (d *Document) pageSize(n int, p pdf.Page) (float64, float64) {
	if n <= len(d.dims) {
		dim := d.dims[n-1]
		if dim.Width > 0 && dim.Height > 0 {
			return dim.Width, dim.Height
		}
	}
	return mediaBoxSize(p.V)
}

// mediaBoxSize reads the MediaBox, which pages may inherit from their
// ancestors in the page tree.
func mediaBoxSize(v pdf.Value) (float64, float64) {
	for node := v; !node.IsNull(); node = node.Key("Parent") {
		box := node.Key("MediaBox")
		if box.Len() != 4 {
			continue
		}
		w := box.Index(2).Float64() - box.Index(0).Float64()
		h := box.Index(3).Float64() - box.Index(1).Float64()
		if w < 0 {
			w = -w
		}
		if h < 0 {
			h = -h
		}
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultPageWidth, defaultPageHeight
}

// textItems reads the page's glyphs. The pdf library panics on some
// malformed content streams, so panics are turned into errors.
func textItems(p pdf.Page) (items []sources.TextItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("failed to read content stream: %v", r)
		}
	}()

	content := p.Content()
	items = make([]sources.TextItem, 0, len(content.Text))
	for _, t := range content.Text {
		items = append(items, sources.TextItem{
			Text:      t.S,
			Transform: model.Translate(t.X, t.Y),
			Width:     t.W,
			Height:    t.FontSize,
		})
	}
	return items, nil
}

// RenderSize returns the page size in viewport units, the pixel size a
// page image must have for selections to line up with the text layer.
func (p *Page) RenderSize() (float64, float64) {
	return p.Width * p.Scale, p.Height * p.Scale
}

// HasText reports whether the page has a usable text layer. Scanned pages
// have none and need OCR.
func (p *Page) HasText() bool {
	for _, item := range p.Items {
		if strings.TrimSpace(item.Text) != "" {
			return true
		}
	}
	return false
}

// Source returns the page's text layer as a fragment source. A zero
// fallbackHeight uses model.DefaultFallbackHeight.
func (p *Page) Source(fallbackHeight float64) *sources.Vector {
	src := sources.NewVector(p.Items, p.Viewport)
	src.FallbackHeight = fallbackHeight
	return src
}
