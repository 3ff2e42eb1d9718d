//go:build ocr

// Package ocr wraps optical character recognition engines behind the
// [Recognizer] interface.
//
// This file wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/snaptable/raster"
)

const engineTesseract = "tesseract"

// Client wraps Tesseract for OCR operations. The underlying engine is not
// safe for concurrent use, so calls are serialized.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.client.Close()
	c.client = nil
	return err
}

// Recognize returns the words Tesseract finds in img with their pixel
// boxes. A cancelled ctx abandons the wait; the engine finishes the
// current image in the background before accepting the next one.
func (c *Client) Recognize(ctx context.Context, img image.Image, langs Languages) ([]Word, error) {
	data, err := raster.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	type result struct {
		words []Word
		err   error
	}
	done := make(chan result, 1)

	go func() {
		words, err := c.recognizeWords(data, langs)
		done <- result{words: words, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, &RecognizerError{Engine: engineTesseract, Err: r.err}
		}
		return r.words, nil
	}
}

func (c *Client) recognizeWords(data []byte, langs Languages) ([]Word, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil, fmt.Errorf("client closed")
	}
	if len(langs) > 0 {
		if err := c.client.SetLanguage(langs...); err != nil {
			return nil, fmt.Errorf("failed to set language %q: %w", langs.String(), err)
		}
	}
	if err := c.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{Text: text, Box: b.Box, Confidence: b.Confidence})
	}
	return words, nil
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetPageSegMode(gosseract.PageSegMode(mode))
}
