package extraction

import (
	"regexp"
	"strings"
)

// CleanText collapses runs of whitespace (including newlines) into single
// spaces and trims the result, matching what OCR engines tend to need.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var medicalIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\.?\d*\s*(mg/dL|µg/dL|g/dL|mmol/L|IU/L|U/L|pg/mL|ng/mL)`),
	regexp.MustCompile(`(?i)(hemoglobin|glucose|cholesterol|triglycerides|hdl|ldl|creatinine|bun|alt|ast)`),
	regexp.MustCompile(`(?i)(normal|high|low|range|reference)`),
	regexp.MustCompile(`\d+\s*-\s*\d+`),
	regexp.MustCompile(`\d{1,3}\.\d{1,2}`),
}

var testNamePattern = regexp.MustCompile(`(?i)(hemoglobin|glucose|cholesterol|triglycerides|hdl|ldl|creatinine)`)

// MedicalTextScore estimates how much the text looks like lab-report data,
// in [0, 1]. Used to decide whether an OCR pass produced anything usable.
func MedicalTextScore(text string) float64 {
	if len(strings.TrimSpace(text)) < 10 {
		return 0
	}

	score := 0.0
	for _, pattern := range medicalIndicators {
		matches := len(pattern.FindAllString(text, -1))
		if matches > 0 {
			contribution := float64(matches) * 0.2
			if contribution > 1.0 {
				contribution = 1.0
			}
			score += contribution
		}
	}

	if len(testNamePattern.FindAllString(text, -1)) >= 2 {
		score += 0.5
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
