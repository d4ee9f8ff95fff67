// Package language detects the language of uploaded documents and queries.
package language

import (
	"context"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
)

const (
	// Undetermined is returned when no language can be identified.
	Undetermined = "und"
	// Pivot is the language text is translated into before chunking or retrieval.
	Pivot = "en"
)

// Detector returns an ISO 639-1 code for text.
type Detector interface {
	Detect(text string) string
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// WhatlangDetector detects languages with trigram statistics.
type WhatlangDetector struct {
	fallback      string
	minConfidence float64
	logger        *zap.Logger
}

// DetectorOption configures a WhatlangDetector.
type DetectorOption func(*WhatlangDetector)

// WithFallback sets the code returned for undetermined or low-confidence input.
func WithFallback(code string) DetectorOption {
	return func(d *WhatlangDetector) { d.fallback = code }
}

// WithMinConfidence sets the confidence below which the fallback is used.
func WithMinConfidence(c float64) DetectorOption {
	return func(d *WhatlangDetector) { d.minConfidence = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) DetectorOption {
	return func(d *WhatlangDetector) { d.logger = l }
}

// NewDetector returns a WhatlangDetector with fallback "en".
func NewDetector(opts ...DetectorOption) *WhatlangDetector {
	d := &WhatlangDetector{fallback: "en", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the ISO 639-1 code of text's language.
func (d *WhatlangDetector) Detect(text string) string {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || info.Confidence < d.minConfidence {
		d.logger.Debug("language undetermined, using fallback",
			zap.String("detected", code),
			zap.Float64("confidence", info.Confidence),
			zap.String("fallback", d.fallback))
		if d.fallback == "" {
			return Undetermined
		}
		return d.fallback
	}
	return code
}

// Passthrough is a Translator that returns its input unchanged.
type Passthrough struct{}

// Translate returns text.
func (Passthrough) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
