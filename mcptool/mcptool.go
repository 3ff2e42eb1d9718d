// Package mcptool exposes table extraction as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsawler/snaptable"
	"github.com/tsawler/snaptable/format"
	"github.com/tsawler/snaptable/internal/config"
	"github.com/tsawler/snaptable/internal/wire"
	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/pdfdoc"
	"github.com/tsawler/snaptable/raster"
	"github.com/tsawler/snaptable/sources"
	"github.com/tsawler/snaptable/tables"
)

// NoTextLayerMessage is reported for a PDF page without text and without a
// page image to recognize.
const NoTextLayerMessage = "page has no text layer; pass image_path for OCR"

var errNoRecognizer = errors.New("OCR is not configured")

// Tools serves the snaptable MCP tools
type Tools struct {
	cfg        *config.Config
	recognizer ocr.Recognizer
}

// New creates the tool set. rec may be nil, in which case the image tool
// and OCR fallback report an error.
func New(cfg *config.Config, rec ocr.Recognizer) *Tools {
	return &Tools{cfg: cfg, recognizer: rec}
}

// Register registers the snaptable tools on an MCP server.
func (t *Tools) Register(srv *mcp.Server) {
	addTool(srv, &mcp.Tool{
		Name:        "snaptable_extract",
		Description: "Rebuild a table from positioned text fragments inside one or more selection rectangles.",
		InputSchema: inputSchema(map[string]any{
			"fragments":     fragmentsSchema,
			"selection":     selectionSchema,
			"selections":    map[string]any{"type": "array", "items": selectionSchema},
			"row_tolerance": map[string]any{"type": "number", "minimum": 0},
			"column_gap":    map[string]any{"type": "number", "minimum": 0},
			"word_gap":      map[string]any{"type": "number", "minimum": 0},
		}, []string{"fragments"}),
	}, t.extract)

	addTool(srv, &mcp.Tool{
		Name:        "snaptable_extract_pdf",
		Description: "Extract the table inside a selection of a PDF page. Pages without a text layer are recognized from image_path when given.",
		InputSchema: inputSchema(map[string]any{
			"path":          map[string]any{"type": "string", "description": "PDF file path"},
			"page":          map[string]any{"type": "integer", "minimum": 1, "description": "1-based page number, default 1"},
			"selection":     selectionSchema,
			"image_path":    map[string]any{"type": "string", "description": "Rendered page image for pages without text"},
			"languages":     map[string]any{"type": "string", "description": "OCR languages, e.g. rus+eng"},
			"row_tolerance": map[string]any{"type": "number", "minimum": 0},
			"column_gap":    map[string]any{"type": "number", "minimum": 0},
			"word_gap":      map[string]any{"type": "number", "minimum": 0},
		}, []string{"path"}),
	}, t.extractPDF)

	addTool(srv, &mcp.Tool{
		Name:        "snaptable_extract_image",
		Description: "Recognize the table inside a selection of an image with OCR.",
		InputSchema: inputSchema(map[string]any{
			"path":          map[string]any{"type": "string", "description": "Image file path"},
			"selection":     selectionSchema,
			"languages":     map[string]any{"type": "string", "description": "OCR languages, e.g. rus+eng"},
			"row_tolerance": map[string]any{"type": "number", "minimum": 0},
			"column_gap":    map[string]any{"type": "number", "minimum": 0},
			"word_gap":      map[string]any{"type": "number", "minimum": 0},
		}, []string{"path"}),
	}, t.extractImage)
}

// Handler serves the tools over streamable HTTP
func (t *Tools) Handler(impl *mcp.Implementation) http.Handler {
	srv := mcp.NewServer(impl, nil)
	t.Register(srv)

	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, &mcp.StreamableHTTPOptions{Stateless: true})
}

var selectionSchema = map[string]any{
	"type":        "object",
	"description": "Drag rectangle; negative width or height drags left or up",
	"properties": map[string]any{
		"x":      map[string]any{"type": "number"},
		"y":      map[string]any{"type": "number"},
		"width":  map[string]any{"type": "number"},
		"height": map[string]any{"type": "number"},
	},
	"required": []string{"x", "y", "width", "height"},
}

var fragmentsSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":   map[string]any{"type": "string"},
			"x":      map[string]any{"type": "number"},
			"y":      map[string]any{"type": "number"},
			"width":  map[string]any{"type": "number"},
			"height": map[string]any{"type": "number"},
		},
		"required": []string{"text", "x", "y", "width", "height"},
	},
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// addTool decodes the arguments into R, runs fn and returns its result as
// JSON text. Failures are tool errors, not protocol errors.
func addTool[R any](srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, *R) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r R
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := fn(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- snaptable_extract ---

func (t *Tools) extract(ctx context.Context, r *wire.FragmentsRequest) (any, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	cfg, err := t.thresholds(r.Thresholds)
	if err != nil {
		return nil, err
	}

	ext := snaptable.FromFragments(r.ModelFragments()...).
		Config(cfg).
		Concurrency(t.cfg.Concurrency)

	if len(r.Selections) > 0 {
		rects := make([]model.Rect, len(r.Selections))
		for i, sel := range r.Selections {
			rects[i] = sel.Rect()
		}
		results, warnings, err := ext.Tables(ctx, rects...)
		if err != nil {
			return nil, err
		}
		return wire.NewTables(results, warnings, model.SourceUnknown), nil
	}

	if r.Selection != nil {
		ext = ext.Select(r.Selection.Rect())
	}
	result, warnings, err := ext.Table(ctx)
	if err != nil {
		return nil, err
	}
	return wire.NewTable(result, warnings, model.SourceUnknown), nil
}

// --- snaptable_extract_pdf ---

type pdfReq struct {
	Path      string          `json:"path"`
	Page      int             `json:"page"`
	Selection *wire.Selection `json:"selection,omitempty"`
	ImagePath string          `json:"image_path,omitempty"`
	Languages string          `json:"languages,omitempty"`
	wire.Thresholds
}

func (t *Tools) extractPDF(ctx context.Context, r *pdfReq) (any, error) {
	if r.Path == "" {
		return nil, errors.New("path is required")
	}
	cfg, err := t.thresholds(r.Thresholds)
	if err != nil {
		return nil, err
	}
	if r.Page == 0 {
		r.Page = 1
	}

	doc, err := pdfdoc.Open(r.Path)
	if err != nil {
		return nil, err
	}
	page, err := doc.Page(r.Page, t.cfg.ViewportScale)
	if err != nil {
		return nil, err
	}

	rect := selectionRect(r.Selection)
	if page.HasText() {
		result, warnings, err := snaptable.From(page.Source(t.cfg.FallbackHeight)).
			Config(cfg).
			Select(rect).
			Table(ctx)
		if err != nil {
			return nil, err
		}
		return wire.NewTable(result, warnings, model.SourceTextLayer), nil
	}

	if r.ImagePath == "" {
		return wire.NotFound(NoTextLayerMessage, model.SourceTextLayer), nil
	}

	img, err := decodeImage(r.ImagePath)
	if err != nil {
		return nil, err
	}
	renderW, renderH := page.RenderSize()
	b := img.Bounds()
	rect = rect.Scale(float64(b.Dx())/renderW, float64(b.Dy())/renderH)
	return t.recognize(ctx, img, r.Languages, cfg, rect)
}

// --- snaptable_extract_image ---

type imageReq struct {
	Path      string          `json:"path"`
	Selection *wire.Selection `json:"selection,omitempty"`
	Languages string          `json:"languages,omitempty"`
	wire.Thresholds
}

func (t *Tools) extractImage(ctx context.Context, r *imageReq) (any, error) {
	if r.Path == "" {
		return nil, errors.New("path is required")
	}
	cfg, err := t.thresholds(r.Thresholds)
	if err != nil {
		return nil, err
	}

	if f, err := format.DetectFile(r.Path); err == nil && f == format.PDF {
		return nil, errors.New("PDF files go to snaptable_extract_pdf")
	}

	img, err := decodeImage(r.Path)
	if err != nil {
		return nil, err
	}
	return t.recognize(ctx, img, r.Languages, cfg, selectionRect(r.Selection))
}

func (t *Tools) recognize(ctx context.Context, img image.Image, hint string, cfg tables.Config, rect model.Rect) (any, error) {
	if t.recognizer == nil {
		return nil, errNoRecognizer
	}

	langs := t.cfg.OCR.Languages
	if hint != "" {
		parsed, err := ocr.ParseLanguages(hint)
		if err != nil {
			return nil, err
		}
		langs = parsed
	}

	src := &sources.Raster{
		Image:         img,
		Recognizer:    t.recognizer,
		Languages:     langs,
		Upscale:       t.cfg.OCR.Upscale,
		MinConfidence: t.cfg.OCR.MinConfidence,
	}
	result, warnings, err := snaptable.From(src).Config(cfg).Select(rect).Table(ctx)
	if err != nil {
		return nil, err
	}
	return wire.NewTable(result, warnings, model.SourceOCR), nil
}

func (t *Tools) thresholds(th wire.Thresholds) (tables.Config, error) {
	cfg := th.Apply(t.cfg.Tables)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func selectionRect(sel *wire.Selection) model.Rect {
	if sel == nil {
		return model.Unbounded()
	}
	return sel.Rect()
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := raster.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
