// Package extraction converts raw report text into structured observations.
// The primary path is a Gemini call constrained to a JSON schema; a regex
// fallback covers deployments without an API key. Both feed the validating
// adapter in the analysis package, so downstream code never sees raw model
// output.
package extraction

import (
	"context"
	"errors"

	"github.com/reportlens/reportlens/internal/analysis"
)

// ErrEmptyText is returned when there is nothing to extract from.
var ErrEmptyText = errors.New("extraction: report text is empty")

// Extractor turns report text into raw observations plus patient metadata.
type Extractor interface {
	Extract(ctx context.Context, text string) (analysis.Extraction, error)
}

// Explainer produces per-test explanation strings for interpreted results.
// Explanations are advisory display text, attached pass-through by the
// normalizer.
type Explainer interface {
	Explain(ctx context.Context, patient analysis.PatientProfile, results []analysis.InterpretedTestResult) (map[string]string, error)
}
