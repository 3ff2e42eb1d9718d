package snaptable

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/sources"
	"github.com/tsawler/snaptable/tables"
)

var errNoSource = errors.New("no fragment source specified")

// Extractor provides a fluent interface for extracting tables from a
// fragment source. Each configuration method returns a new Extractor
// instance, making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	source  sources.Source
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		source:  e.source,
		options: e.options.clone(),
		err:     e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Select restricts extraction to the fragments fully inside rect.
//
// Example:
//
//	result, _, err := snaptable.From(src).Select(model.NewRect(10, 10, 300, 200)).Table(ctx)
func (e *Extractor) Select(rect model.Rect) *Extractor {
	newExt := e.clone()
	newExt.options.rect = model.NewRect(rect.Left, rect.Top, rect.Right, rect.Bottom)
	return newExt
}

// SelectDrag restricts extraction to the rectangle swept by a drag from
// anchor by (dx, dy). Negative deltas are dragging up or left.
func (e *Extractor) SelectDrag(anchor model.Point, dx, dy float64) *Extractor {
	return e.Select(model.NormalizeDrag(anchor, dx, dy))
}

// SelectAll removes any selection
func (e *Extractor) SelectAll() *Extractor {
	newExt := e.clone()
	newExt.options.rect = model.Unbounded()
	return newExt
}

// RowTolerance sets how far below a row's first fragment another fragment
// may start and still belong to the row.
func (e *Extractor) RowTolerance(v float64) *Extractor {
	newExt := e.clone()
	newExt.options.config.RowTolerance = v
	return newExt
}

// ColumnGap sets the horizontal gap above which fragments fall into
// separate cells.
func (e *Extractor) ColumnGap(v float64) *Extractor {
	newExt := e.clone()
	newExt.options.config.ColumnGap = v
	return newExt
}

// WordGap sets the horizontal gap above which fragments in one cell are
// separated by a space.
func (e *Extractor) WordGap(v float64) *Extractor {
	newExt := e.clone()
	newExt.options.config.WordGap = v
	return newExt
}

// Config replaces all clustering thresholds at once.
//
// Example:
//
//	cfg := tables.DefaultConfig()
//	cfg.RowTolerance = 4
//	result, _, err := snaptable.From(src).Config(cfg).Table(ctx)
func (e *Extractor) Config(config tables.Config) *Extractor {
	newExt := e.clone()
	newExt.options.config = config
	return newExt
}

// Concurrency bounds how many selections Tables extracts at once. Values
// below 1 mean one at a time.
func (e *Extractor) Concurrency(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		n = 1
	}
	newExt.options.concurrency = n
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Table extracts the table inside the current selection.
//
// A selection with no text yields a Result whose Found method reports
// false and a nil error. Errors come only from the source, for example a
// recognizer that could not run, and are returned unchanged so callers can
// inspect them with errors.As. Warnings describe items that were skipped.
//
// Example:
//
//	result, warnings, err := snaptable.From(src).Select(rect).Table(ctx)
//	if err != nil {
//	    return err
//	}
//	if !result.Found() {
//	    fmt.Println("no text found in selection")
//	}
func (e *Extractor) Table(ctx context.Context) (*Result, []Warning, error) {
	if err := e.check(); err != nil {
		return nil, nil, err
	}
	return e.extract(ctx, e.options.rect)
}

// Tables extracts one table per rectangle, running up to Concurrency
// extractions at once. Results are in the order of rects. The first
// source error cancels the remaining extractions.
//
// Example:
//
//	results, _, err := snaptable.FromPage(page).Tables(ctx, header, body)
func (e *Extractor) Tables(ctx context.Context, rects ...model.Rect) ([]*Result, []Warning, error) {
	if err := e.check(); err != nil {
		return nil, nil, err
	}

	results := make([]*Result, len(rects))
	perRect := make([][]Warning, len(rects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.concurrency)
	for i, rect := range rects {
		g.Go(func() error {
			res, warnings, err := e.extract(gctx, model.NewRect(rect.Left, rect.Top, rect.Right, rect.Bottom))
			if err != nil {
				return fmt.Errorf("selection %d: %w", i, err)
			}
			for j := range warnings {
				warnings[j].Selection = i
			}
			results[i] = res
			perRect[i] = warnings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	for _, w := range perRect {
		warnings = append(warnings, w...)
	}
	return results, warnings, nil
}

// Fragments returns the fragments inside the current selection without
// building a table.
func (e *Extractor) Fragments(ctx context.Context) ([]model.Fragment, []Warning, error) {
	if err := e.check(); err != nil {
		return nil, nil, err
	}

	frags, issues, err := e.source.Fragments(ctx, e.options.rect)
	if err != nil {
		return nil, nil, err
	}
	return frags, issueWarnings(issues), nil
}

func (e *Extractor) check() error {
	if e.err != nil {
		return e.err
	}
	if err := e.options.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (e *Extractor) extract(ctx context.Context, rect model.Rect) (*Result, []Warning, error) {
	frags, issues, err := e.source.Fragments(ctx, rect)
	if err != nil {
		return nil, nil, err
	}

	warnings := issueWarnings(issues)
	table, skipped := tables.Build(frags, e.options.config)
	warnings = append(warnings, skippedWarnings(skipped)...)

	return &Result{
		Table:     table,
		Fragments: len(frags) - len(skipped),
		Selection: rect,
	}, warnings, nil
}
