package extraction

import (
	"context"
	"regexp"
	"strings"

	"github.com/reportlens/reportlens/internal/analysis"
	"github.com/reportlens/reportlens/internal/labtests"
)

// observationLine matches "Name : value unit (optional range)" table rows as
// they come out of OCR, e.g. "Glucose: 110 mg/dL (70 - 110)" or
// "Hemoglobin  15.2 g/dL 13.0-17.0".
var observationLine = regexp.MustCompile(
	`(?i)^\s*([A-Za-z][A-Za-z0-9 ()/%+-]*?)\s*[:\t]?\s+([<>]?\s*\d[\d.,]*|negative|positive|nil|trace|absent|present)\s*([A-Za-zµ%^/0-9]*?/?[A-Za-z%µ^0-9]*)\s*(?:\(?\s*(\d[\d.,]*\s*-\s*\d[\d.,]*[^)]*)\)?)?\s*$`,
)

var agePattern = regexp.MustCompile(`(?i)\bage\s*[:\-]?\s*(\d{1,3})\b`)
var genderPattern = regexp.MustCompile(`(?i)\b(gender|sex)\s*[:\-]?\s*(male|female|m|f)\b`)

// RegexExtractor is the fast, offline extraction path. It only recognizes
// tests present in the reference table, which keeps false positives from
// OCR noise down; everything else is left for the LLM path.
type RegexExtractor struct {
	registry *labtests.Registry
}

// NewRegexExtractor creates a regex extractor over the given reference table.
func NewRegexExtractor(registry *labtests.Registry) *RegexExtractor {
	if registry == nil {
		registry = labtests.DefaultRegistry()
	}
	return &RegexExtractor{registry: registry}
}

// Extract scans the text line by line for recognizable test rows.
func (e *RegexExtractor) Extract(ctx context.Context, text string) (analysis.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return analysis.Extraction{}, ErrEmptyText
	}

	var ext analysis.Extraction
	ext.Patient = extractPatient(text)

	for _, line := range strings.Split(text, "\n") {
		select {
		case <-ctx.Done():
			return analysis.Extraction{}, ctx.Err()
		default:
		}

		m := observationLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if _, known := e.registry.Lookup(name); !known {
			continue
		}
		ext.Observations = append(ext.Observations, analysis.RawTestObservation{
			TestName:           name,
			Value:              strings.TrimSpace(m[2]),
			Unit:               strings.TrimSpace(m[3]),
			ReferenceRangeHint: strings.TrimSpace(m[4]),
		})
	}

	return ext, nil
}

// extractPatient pulls age/gender hints from header lines when present.
func extractPatient(text string) analysis.PatientProfile {
	var p analysis.PatientProfile
	if m := agePattern.FindStringSubmatch(text); m != nil {
		if age := atoiSafe(m[1]); age >= 0 {
			p.Age = &age
		}
	}
	if m := genderPattern.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[2]) {
		case "m", "male":
			p.Gender = "male"
		case "f", "female":
			p.Gender = "female"
		}
	}
	return p
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}
