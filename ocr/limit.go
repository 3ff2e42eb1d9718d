package ocr

import (
	"context"
	"image"

	"golang.org/x/time/rate"
)

type limitedRecognizer struct {
	limiter    *rate.Limiter
	recognizer Recognizer
}

// NewLimited throttles calls to r. A nil limiter disables throttling.
func NewLimited(l *rate.Limiter, r Recognizer) Recognizer {
	if l == nil {
		return r
	}
	return &limitedRecognizer{
		limiter:    l,
		recognizer: r,
	}
}

func (r *limitedRecognizer) Recognize(ctx context.Context, img image.Image, langs Languages) ([]Word, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.recognizer.Recognize(ctx, img, langs)
}
