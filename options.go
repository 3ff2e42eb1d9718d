package snaptable

import (
	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/tables"
)

// DefaultConcurrency bounds how many selections Tables extracts at once
const DefaultConcurrency = 4

// ExtractOptions holds configuration for table extraction.
type ExtractOptions struct {
	// Selection in the source's coordinate space; unbounded when unset
	rect model.Rect

	// Clustering thresholds
	config tables.Config

	// Parallelism for Tables
	concurrency int
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		rect:        model.Unbounded(),
		config:      tables.DefaultConfig(),
		concurrency: DefaultConcurrency,
	}
}

// clone creates a copy of ExtractOptions. All fields are values.
func (o ExtractOptions) clone() ExtractOptions {
	return ExtractOptions{
		rect:        o.rect,
		config:      o.config,
		concurrency: o.concurrency,
	}
}
