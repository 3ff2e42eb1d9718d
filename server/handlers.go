package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/tsawler/snaptable"
	"github.com/tsawler/snaptable/format"
	"github.com/tsawler/snaptable/internal/wire"
	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/pdfdoc"
	"github.com/tsawler/snaptable/raster"
	"github.com/tsawler/snaptable/sources"
	"github.com/tsawler/snaptable/tables"
)

const noTextLayerMessage = "page has no text layer; send a page image for OCR"

// handleFragments builds tables from a posted fragment list.
func (s *Server) handleFragments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req wire.FragmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := req.Thresholds.Apply(s.cfg.Tables)
	if err := cfg.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ext := snaptable.FromFragments(req.ModelFragments()...).
		Config(cfg).
		Concurrency(s.cfg.Concurrency)

	if len(req.Selections) > 0 {
		rects := make([]model.Rect, len(req.Selections))
		for i, sel := range req.Selections {
			rects[i] = sel.Rect()
		}

		results, warnings, err := ext.Tables(r.Context(), rects...)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.NewTables(results, warnings, model.SourceUnknown))
		return
	}

	if req.Selection != nil {
		ext = ext.Select(req.Selection.Rect())
	}

	result, warnings, err := ext.Table(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.NewTable(result, warnings, model.SourceUnknown))
}

// handlePDF extracts a table from a selection on one PDF page. Pages
// without a text layer are recognized from the optional page image.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	cfg, rect, ok := s.formOptions(w, r)
	if !ok {
		return
	}

	pageNum := 1
	if v := r.FormValue("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "invalid page: "+v, http.StatusBadRequest)
			return
		}
		pageNum = n
	}

	data, err := s.readFile(r, "file")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if format.DetectFromMagic(data) != format.PDF {
		jsonError(w, "file is not a PDF", http.StatusBadRequest)
		return
	}

	doc, err := pdfdoc.OpenBytes(data)
	if err != nil {
		jsonError(w, "invalid pdf: "+err.Error(), http.StatusBadRequest)
		return
	}

	page, err := doc.Page(pageNum, s.cfg.ViewportScale)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if page.HasText() {
		result, warnings, err := snaptable.From(page.Source(s.cfg.FallbackHeight)).
			Config(cfg).
			Select(rect).
			Table(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, wire.NewTable(result, warnings, model.SourceTextLayer))
		return
	}

	imgData, err := s.readFile(r, "image")
	if errors.Is(err, http.ErrMissingFile) {
		writeJSON(w, http.StatusOK, wire.NotFound(noTextLayerMessage, model.SourceTextLayer))
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, _, err := raster.Decode(bytes.NewReader(imgData))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The selection is in viewport units; the image may be rendered at a
	// different resolution.
	renderW, renderH := page.RenderSize()
	b := img.Bounds()
	rect = rect.Scale(float64(b.Dx())/renderW, float64(b.Dy())/renderH)

	s.recognize(w, r, img, cfg, rect)
}

// handleImage recognizes a table in a selection of an uploaded image.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	cfg, rect, ok := s.formOptions(w, r)
	if !ok {
		return
	}

	data, err := s.readFile(r, "file")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if format.DetectFromMagic(data) == format.PDF {
		jsonError(w, "PDF files go to /v1/tables/pdf", http.StatusBadRequest)
		return
	}

	img, _, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.recognize(w, r, img, cfg, rect)
}

func (s *Server) recognize(w http.ResponseWriter, r *http.Request, img image.Image, cfg tables.Config, rect model.Rect) {
	if s.recognizer == nil {
		jsonError(w, "OCR is not configured", http.StatusServiceUnavailable)
		return
	}

	langs := s.cfg.OCR.Languages
	if v := r.FormValue("languages"); v != "" {
		parsed, err := ocr.ParseLanguages(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		langs = parsed
	}

	src := &sources.Raster{
		Image:         img,
		Recognizer:    s.recognizer,
		Languages:     langs,
		Upscale:       s.cfg.OCR.Upscale,
		MinConfidence: s.cfg.OCR.MinConfidence,
	}

	result, warnings, err := snaptable.From(src).Config(cfg).Select(rect).Table(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.NewTable(result, warnings, model.SourceOCR))
}

// fail maps an extraction error to a status code. Recognizer failures are
// upstream failures, distinct from a selection with no text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var recErr *ocr.RecognizerError
	switch {
	case errors.As(err, &recErr):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, raster.ErrEmptyCrop), errors.Is(err, pdfdoc.ErrPageOutOfRange):
		status = http.StatusBadRequest
	}

	loggerFrom(r.Context(), s.log).Error("extraction failed", "error", err, "status", status)
	jsonError(w, err.Error(), status)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	// Two files may be uploaded; allow 1MB on top for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) readFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, fmt.Errorf("%s is required: %w", field, err)
		}
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%s exceeds max size (%d bytes)", field, s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// formOptions reads the thresholds and the selection from form values.
// A missing selection covers the whole page.
func (s *Server) formOptions(w http.ResponseWriter, r *http.Request) (tables.Config, model.Rect, bool) {
	cfg := s.cfg.Tables
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"row_tolerance", &cfg.RowTolerance},
		{"column_gap", &cfg.ColumnGap},
		{"word_gap", &cfg.WordGap},
	} {
		if v := r.FormValue(f.key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				jsonError(w, fmt.Sprintf("invalid %s: %s", f.key, v), http.StatusBadRequest)
				return cfg, model.Rect{}, false
			}
			*f.dst = n
		}
	}
	if err := cfg.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return cfg, model.Rect{}, false
	}

	if r.FormValue("width") == "" && r.FormValue("height") == "" {
		return cfg, model.Unbounded(), true
	}

	var sel wire.Selection
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"x", &sel.X},
		{"y", &sel.Y},
		{"width", &sel.Width},
		{"height", &sel.Height},
	} {
		v := r.FormValue(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			jsonError(w, fmt.Sprintf("invalid %s: %s", f.key, v), http.StatusBadRequest)
			return cfg, model.Rect{}, false
		}
		*f.dst = n
	}
	return cfg, sel.Rect(), true
}
