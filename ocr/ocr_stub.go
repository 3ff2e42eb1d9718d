//go:build !ocr

// Package ocr wraps optical character recognition engines behind the
// [Recognizer] interface.
//
// This is the stub build of the cgo Tesseract client, used when the "ocr"
// build tag is not set. Its functions return ErrOCRNotEnabled. The [CLI]
// recognizer, which runs the tesseract binary, is always available.
//
// To enable the cgo client, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
package ocr

import (
	"context"
	"image"
)

// Client is a stub OCR client that returns errors for all operations.
type Client struct{}

// New returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// Recognize reports ErrOCRNotEnabled as a recognizer failure.
func (c *Client) Recognize(ctx context.Context, img image.Image, langs Languages) ([]Word, error) {
	return nil, &RecognizerError{Engine: "tesseract", Err: ErrOCRNotEnabled}
}

// SetPageSegMode returns an error indicating OCR support is not enabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}
