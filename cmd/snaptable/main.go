// Command snaptable extracts the table inside a rectangular selection of a
// PDF page or an image, and serves the same over HTTP and MCP.
//
// Usage:
//
//	snaptable serve [-config snaptable.yaml]
//	snaptable extract [flags] file
//	snaptable pdf [-page 1] [-select x,y,w,h] [-image page.png] [-format csv] file.pdf
//	snaptable image [-select x,y,w,h] [-lang rus+eng] [-format csv] file.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsawler/snaptable"
	"github.com/tsawler/snaptable/format"
	"github.com/tsawler/snaptable/internal/config"
	"github.com/tsawler/snaptable/mcptool"
	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/pdfdoc"
	"github.com/tsawler/snaptable/raster"
	"github.com/tsawler/snaptable/server"
	"github.com/tsawler/snaptable/sources"
)

var version = "dev"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(log, os.Args[2:])
	case "extract":
		err = extract(os.Stdout, os.Args[2:])
	case "pdf":
		err = extractPDF(os.Stdout, os.Args[2:])
	case "image":
		err = extractImage(os.Stdout, os.Args[2:])
	case "version":
		fmt.Println(version)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		log.Error("snaptable failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: snaptable <serve|extract|pdf|image|version> [flags]")
}

func serve(log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("SNAPTABLE_CONFIG"), "YAML config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	rec, closeRec, err := cfg.Recognizer()
	if err != nil {
		// Text-layer extraction works without OCR
		log.Warn("OCR unavailable", "engine", cfg.OCR.Engine, "error", err)
		rec, closeRec = nil, func() error { return nil }
	}
	defer closeRec()

	tools := mcptool.New(cfg, rec)
	srv := server.New(cfg, rec, log,
		server.WithMCP(tools.Handler(&mcp.Implementation{Name: "snaptable", Version: version})),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting snaptable", "address", cfg.Address, "ocr_engine", cfg.OCR.Engine)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// extract picks the pdf or image command from the file's content.
func extract(w io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("extract: expected a file")
	}

	path := args[len(args)-1]
	f, err := format.DetectFile(path)
	if err != nil {
		return err
	}

	switch {
	case f == format.PDF:
		return extractPDF(w, args)
	case f.IsImage():
		return extractImage(w, args)
	}
	return fmt.Errorf("extract: %s is neither a PDF nor a supported image", path)
}

type extractFlags struct {
	configPath string
	selection  string
	format     string
	languages  string
}

func (f *extractFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", os.Getenv("SNAPTABLE_CONFIG"), "YAML config file")
	fs.StringVar(&f.selection, "select", "", "selection as x,y,width,height; negative sizes drag up or left")
	fs.StringVar(&f.format, "format", formatCSV, "output format: csv, tsv, markdown or json")
	fs.StringVar(&f.languages, "lang", "", "OCR languages, e.g. rus+eng")
}

func (f *extractFlags) load() (*config.Config, model.Rect, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, model.Rect{}, err
	}
	rect, err := parseSelection(f.selection)
	if err != nil {
		return nil, model.Rect{}, err
	}
	if _, err := formatter(f.format); err != nil {
		return nil, model.Rect{}, err
	}
	if f.languages != "" {
		langs, err := ocr.ParseLanguages(f.languages)
		if err != nil {
			return nil, model.Rect{}, err
		}
		cfg.OCR.Languages = langs
	}
	return cfg, rect, nil
}

func extractPDF(w io.Writer, args []string) error {
	var f extractFlags
	fs := flag.NewFlagSet("pdf", flag.ExitOnError)
	f.register(fs)
	pageNum := fs.Int("page", 1, "1-based page number")
	imagePath := fs.String("image", "", "rendered page image, used when the page has no text layer")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("pdf: expected one PDF file")
	}

	cfg, rect, err := f.load()
	if err != nil {
		return err
	}

	doc, err := pdfdoc.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	page, err := doc.Page(*pageNum, cfg.ViewportScale)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if page.HasText() {
		result, warnings, err := snaptable.From(page.Source(cfg.FallbackHeight)).
			Config(cfg.Tables).
			Select(rect).
			Table(ctx)
		if err != nil {
			return err
		}
		return write(w, f.format, result, warnings, model.SourceTextLayer)
	}

	if *imagePath == "" {
		return errors.New("page has no text layer; pass -image with a render of the page")
	}
	img, err := decodeImage(*imagePath)
	if err != nil {
		return err
	}
	renderW, renderH := page.RenderSize()
	b := img.Bounds()
	return recognize(ctx, w, cfg, f.format, img, rect.Scale(float64(b.Dx())/renderW, float64(b.Dy())/renderH))
}

func extractImage(w io.Writer, args []string) error {
	var f extractFlags
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	f.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("image: expected one image file")
	}

	cfg, rect, err := f.load()
	if err != nil {
		return err
	}
	img, err := decodeImage(fs.Arg(0))
	if err != nil {
		return err
	}
	return recognize(context.Background(), w, cfg, f.format, img, rect)
}

func recognize(ctx context.Context, w io.Writer, cfg *config.Config, format string, img image.Image, rect model.Rect) error {
	rec, closeRec, err := cfg.Recognizer()
	if err != nil {
		return err
	}
	defer closeRec()

	src := &sources.Raster{
		Image:         img,
		Recognizer:    rec,
		Languages:     cfg.OCR.Languages,
		Upscale:       cfg.OCR.Upscale,
		MinConfidence: cfg.OCR.MinConfidence,
	}
	result, warnings, err := snaptable.From(src).Config(cfg.Tables).Select(rect).Table(ctx)
	if err != nil {
		return err
	}
	return write(w, format, result, warnings, model.SourceOCR)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := raster.Decode(f)
	return img, err
}
