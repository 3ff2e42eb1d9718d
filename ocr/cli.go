package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tsawler/snaptable/raster"
)

const engineCLI = "tesseract-cli"

// CLI recognizes words by running the tesseract binary and reading its
// hOCR output. Unlike [Client] it needs no cgo and is safe for concurrent
// use; each call runs its own process, which is killed when ctx ends.
type CLI struct {
	// Binary is the tesseract executable, "tesseract" when empty
	Binary string

	// PageSegMode is passed as --psm when non-zero
	PageSegMode PageSegMode

	// ExtraArgs are appended before the hocr config name
	ExtraArgs []string
}

// NewCLI creates a CLI recognizer for the given binary
func NewCLI(binary string) *CLI {
	return &CLI{Binary: binary}
}

// Recognize runs tesseract on img and returns the words it found.
func (c *CLI) Recognize(ctx context.Context, img image.Image, langs Languages) ([]Word, error) {
	data, err := raster.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.binary(), c.args(langs)...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &RecognizerError{Engine: engineCLI, Err: err}
	}

	words, err := ParseHOCR(&stdout)
	if err != nil {
		return nil, &RecognizerError{Engine: engineCLI, Err: err}
	}
	return words, nil
}

func (c *CLI) binary() string {
	if c.Binary == "" {
		return "tesseract"
	}
	return c.Binary
}

func (c *CLI) args(langs Languages) []string {
	args := []string{"stdin", "stdout"}
	if len(langs) > 0 {
		args = append(args, "-l", langs.String())
	}
	if c.PageSegMode != 0 {
		args = append(args, "--psm", strconv.Itoa(int(c.PageSegMode)))
	}
	args = append(args, c.ExtraArgs...)
	return append(args, "hocr")
}
