// Package analysis turns raw extracted observations into interpreted test
// results: it parses free-text values, classifies them against the reference
// table, and reconciles overlapping extraction passes into one canonical list.
package analysis

import (
	"strings"
	"time"
)

// Interpretation is the classification assigned to an observation.
type Interpretation string

const (
	InterpretationHigh    Interpretation = "High"
	InterpretationLow     Interpretation = "Low"
	InterpretationNormal  Interpretation = "Normal"
	InterpretationUnknown Interpretation = "Unknown"
)

// NormalizeInterpretation folds free-text interpretation synonyms into the
// four canonical values. Unrecognized terms become Unknown.
func NormalizeInterpretation(raw string) Interpretation {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "normal", "within range", "normal range":
		return InterpretationNormal
	case "low", "below range", "below normal":
		return InterpretationLow
	case "high", "above range", "above normal":
		return InterpretationHigh
	case "abnormal", "abnormal results", "outside range":
		// Unqualified abnormal results default to High.
		return InterpretationHigh
	default:
		return InterpretationUnknown
	}
}

// SeverityRank orders interpretations for display: High > Low > Normal > Unknown.
// Sorting is a presentation concern; the normalizer itself preserves input order.
func SeverityRank(i Interpretation) int {
	switch i {
	case InterpretationHigh:
		return 3
	case InterpretationLow:
		return 2
	case InterpretationNormal:
		return 1
	default:
		return 0
	}
}

// PatientProfile is the per-upload patient snapshot. All fields optional.
type PatientProfile struct {
	Name   string `json:"name,omitempty"`
	Age    *int   `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// RawTestObservation is one extracted (name, value) pair before interpretation.
type RawTestObservation struct {
	TestName string `json:"test_name"`
	Value    string `json:"value"`
	Unit     string `json:"unit,omitempty"`
	// ReferenceRangeHint is the range as printed on the document. Advisory:
	// used for display only when the test is not in the reference table.
	ReferenceRangeHint string `json:"reference_range,omitempty"`
	// ObservedAt is the draw date extracted from the document, when the
	// extractor can supply one. Trend bucketing falls back to the report
	// date when absent.
	ObservedAt *time.Time `json:"observed_at,omitempty"`
}

// Extraction is the validated output of an extraction collaborator.
type Extraction struct {
	Patient      PatientProfile       `json:"patient"`
	Observations []RawTestObservation `json:"tests"`
}

// InterpretedTestResult is one classified observation, immutable once created.
type InterpretedTestResult struct {
	TestName string `json:"test_name"`
	// Value is preserved verbatim for display.
	Value          string         `json:"value"`
	NumericValue   *float64       `json:"numeric_value,omitempty"`
	Unit           string         `json:"unit,omitempty"`
	ReferenceRange string         `json:"reference_range"`
	Interpretation Interpretation `json:"interpretation"`
	Explanation    string         `json:"explanation,omitempty"`
	// Degraded marks results whose interpretation fell back to Unknown
	// because the value was unparseable or the test unrecognized, so the
	// UI can warn without the whole report failing.
	Degraded   bool       `json:"degraded,omitempty"`
	ObservedAt *time.Time `json:"observed_at,omitempty"`
}
