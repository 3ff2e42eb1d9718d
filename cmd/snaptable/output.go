package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/snaptable"
	"github.com/tsawler/snaptable/internal/wire"
	"github.com/tsawler/snaptable/model"
)

var stderr io.Writer = os.Stderr

const (
	formatCSV      = "csv"
	formatTSV      = "tsv"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func formatter(name string) (func(*model.Table) string, error) {
	switch strings.ToLower(name) {
	case formatCSV, "":
		return (*model.Table).ToCSV, nil
	case formatTSV:
		return (*model.Table).ToTSV, nil
	case formatMarkdown, "md":
		return (*model.Table).ToMarkdown, nil
	case formatJSON:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

// write prints the table in the requested format. Warnings and the
// not-found message go to the JSON document or, for text formats, are
// left to the caller's stderr.
func write(w io.Writer, format string, result *snaptable.Result, warnings []snaptable.Warning, source model.SourceKind) error {
	render, err := formatter(format)
	if err != nil {
		return err
	}

	if render == nil {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(wire.NewTable(result, warnings, source))
	}

	if len(warnings) > 0 {
		fmt.Fprintln(stderr, snaptable.FormatWarnings(warnings))
	}
	if !result.Found() {
		return errors.New(wire.NotFoundMessage)
	}
	_, err = io.WriteString(w, render(result.Table))
	return err
}

// parseSelection reads "x,y,width,height". An empty string selects
// everything.
func parseSelection(s string) (model.Rect, error) {
	if strings.TrimSpace(s) == "" {
		return model.Unbounded(), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Rect{}, fmt.Errorf("selection %q: expected x,y,width,height", s)
	}

	var v [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return model.Rect{}, fmt.Errorf("selection %q: invalid number %q", s, p)
		}
		v[i] = n
	}
	return model.NormalizeDrag(model.Point{X: v[0], Y: v[1]}, v[2], v[3]), nil
}
