// Package config loads the snaptable service configuration from an
// optional YAML file overlaid by SNAPTABLE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/ocr"
	"github.com/tsawler/snaptable/pdfdoc"
	"github.com/tsawler/snaptable/tables"
)

// OCR engines
const (
	EngineCLI       = "cli"
	EngineTesseract = "tesseract"
)

// Config is the service configuration. Lengths are in output (viewport)
// units unless noted.
type Config struct {
	Address string

	// Upload limits
	MaxUploadBytes int64

	// Per-request deadline
	Timeout time.Duration

	// Clustering thresholds
	Tables tables.Config

	// Text layer placement
	FallbackHeight float64
	ViewportScale  float64

	OCR OCR

	// Selections extracted in parallel per batch request
	Concurrency int
}

// OCR selects and tunes the recognition engine used for raster selections.
type OCR struct {
	Engine        string
	Binary        string
	Languages     ocr.Languages
	PageSegMode   ocr.PageSegMode
	Upscale       float64
	MinConfidence float64

	// Recognitions per second, unlimited when nil
	Limit *int
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Address:        ":8080",
		MaxUploadBytes: 32 << 20,
		Timeout:        60 * time.Second,

		Tables: tables.DefaultConfig(),

		FallbackHeight: model.DefaultFallbackHeight,
		ViewportScale:  pdfdoc.DefaultScale,

		OCR: OCR{
			Engine:    EngineCLI,
			Binary:    "tesseract",
			Languages: append(ocr.Languages(nil), ocr.DefaultLanguages...),
			Upscale:   2,
		},

		Concurrency: 4,
	}
}

type configFile struct {
	Address        *string        `yaml:"address"`
	MaxUploadBytes *int64         `yaml:"max_upload_bytes"`
	Timeout        *time.Duration `yaml:"timeout"`
	Concurrency    *int           `yaml:"concurrency"`

	Tables struct {
		RowTolerance   *float64 `yaml:"row_tolerance"`
		ColumnGap      *float64 `yaml:"column_gap"`
		WordGap        *float64 `yaml:"word_gap"`
		FallbackHeight *float64 `yaml:"fallback_height"`
		ViewportScale  *float64 `yaml:"viewport_scale"`
	} `yaml:"tables"`

	OCR struct {
		Engine        *string  `yaml:"engine"`
		Binary        *string  `yaml:"binary"`
		Languages     *string  `yaml:"languages"`
		PageSegMode   *int     `yaml:"psm"`
		Upscale       *float64 `yaml:"upscale"`
		MinConfidence *float64 `yaml:"min_confidence"`
		Limit         *int     `yaml:"limit"`
	} `yaml:"ocr"`
}

// Load reads the YAML file at path, when path is not empty, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := parseFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := cfg.apply(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*configFile, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var file configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return &file, nil
}

func (c *Config) apply(f *configFile) error {
	setString(&c.Address, f.Address)
	setValue(&c.MaxUploadBytes, f.MaxUploadBytes)
	setValue(&c.Timeout, f.Timeout)
	setValue(&c.Concurrency, f.Concurrency)

	setValue(&c.Tables.RowTolerance, f.Tables.RowTolerance)
	setValue(&c.Tables.ColumnGap, f.Tables.ColumnGap)
	setValue(&c.Tables.WordGap, f.Tables.WordGap)
	setValue(&c.FallbackHeight, f.Tables.FallbackHeight)
	setValue(&c.ViewportScale, f.Tables.ViewportScale)

	setString(&c.OCR.Engine, f.OCR.Engine)
	setString(&c.OCR.Binary, f.OCR.Binary)
	setValue(&c.OCR.Upscale, f.OCR.Upscale)
	setValue(&c.OCR.MinConfidence, f.OCR.MinConfidence)
	if f.OCR.PageSegMode != nil {
		c.OCR.PageSegMode = ocr.PageSegMode(*f.OCR.PageSegMode)
	}
	if f.OCR.Limit != nil {
		limit := *f.OCR.Limit
		c.OCR.Limit = &limit
	}
	if f.OCR.Languages != nil {
		langs, err := ocr.ParseLanguages(*f.OCR.Languages)
		if err != nil {
			return err
		}
		c.OCR.Languages = langs
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.Address = envOr("SNAPTABLE_ADDR", c.Address)
	c.MaxUploadBytes = envInt64("SNAPTABLE_MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.Timeout = envDuration("SNAPTABLE_TIMEOUT", c.Timeout)
	c.Concurrency = envInt("SNAPTABLE_CONCURRENCY", c.Concurrency)

	c.Tables.RowTolerance = envFloat("SNAPTABLE_ROW_TOLERANCE", c.Tables.RowTolerance)
	c.Tables.ColumnGap = envFloat("SNAPTABLE_COLUMN_GAP", c.Tables.ColumnGap)
	c.Tables.WordGap = envFloat("SNAPTABLE_WORD_GAP", c.Tables.WordGap)
	c.FallbackHeight = envFloat("SNAPTABLE_FALLBACK_HEIGHT", c.FallbackHeight)
	c.ViewportScale = envFloat("SNAPTABLE_VIEWPORT_SCALE", c.ViewportScale)

	c.OCR.Engine = envOr("SNAPTABLE_OCR_ENGINE", c.OCR.Engine)
	c.OCR.Binary = envOr("SNAPTABLE_OCR_BINARY", c.OCR.Binary)
	c.OCR.Upscale = envFloat("SNAPTABLE_OCR_UPSCALE", c.OCR.Upscale)
	c.OCR.MinConfidence = envFloat("SNAPTABLE_OCR_MIN_CONFIDENCE", c.OCR.MinConfidence)
	c.OCR.PageSegMode = ocr.PageSegMode(envInt("SNAPTABLE_OCR_PSM", int(c.OCR.PageSegMode)))

	if v := os.Getenv("SNAPTABLE_OCR_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OCR.Limit = &n
		}
	}

	if v := os.Getenv("SNAPTABLE_OCR_LANGUAGES"); v != "" {
		langs, err := ocr.ParseLanguages(v)
		if err != nil {
			return fmt.Errorf("SNAPTABLE_OCR_LANGUAGES: %w", err)
		}
		c.OCR.Languages = langs
	}

	return nil
}

// Validate reports the first setting that can never produce a table.
// Float settings must be finite.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if err := c.Tables.Validate(); err != nil {
		return err
	}
	if !positive(c.FallbackHeight) {
		return fmt.Errorf("fallback height must be positive, got %v", c.FallbackHeight)
	}
	if !positive(c.ViewportScale) {
		return fmt.Errorf("viewport scale must be positive, got %v", c.ViewportScale)
	}

	switch c.OCR.Engine {
	case EngineCLI, EngineTesseract:
	default:
		return fmt.Errorf("unknown OCR engine %q", c.OCR.Engine)
	}
	if math.IsNaN(c.OCR.Upscale) || c.OCR.Upscale < 0 || c.OCR.Upscale > 8 {
		return fmt.Errorf("OCR upscale must be between 0 and 8")
	}
	if math.IsNaN(c.OCR.MinConfidence) || c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 100 {
		return fmt.Errorf("OCR min confidence must be between 0 and 100")
	}
	if c.OCR.Limit != nil && *c.OCR.Limit <= 0 {
		return fmt.Errorf("OCR limit must be positive")
	}
	return nil
}

// Limiter returns the OCR rate limiter, or nil when unlimited
func (c *Config) Limiter() *rate.Limiter {
	return createLimiter(c.OCR.Limit)
}

// Recognizer builds the configured OCR engine behind the rate limiter.
// The returned close function releases the engine.
func (c *Config) Recognizer() (ocr.Recognizer, func() error, error) {
	switch c.OCR.Engine {
	case EngineTesseract:
		client, err := ocr.New()
		if err != nil {
			return nil, nil, err
		}
		if c.OCR.PageSegMode != 0 {
			if err := client.SetPageSegMode(c.OCR.PageSegMode); err != nil {
				client.Close()
				return nil, nil, err
			}
		}
		return ocr.NewLimited(c.Limiter(), client), client.Close, nil

	default:
		cli := ocr.NewCLI(c.OCR.Binary)
		cli.PageSegMode = c.OCR.PageSegMode
		return ocr.NewLimited(c.Limiter(), cli), func() error { return nil }, nil
	}
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// positive reports whether v is finite and greater than zero
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
