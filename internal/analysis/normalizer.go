package analysis

import (
	"strings"

	"github.com/reportlens/reportlens/pkg/logging"
)

// Normalizer reconciles heterogeneous extraction output into a canonical,
// interpreted result list. Overlapping OCR passes produce duplicate
// observations; the normalizer keeps the first of each (canonical name, value)
// pair and otherwise preserves input order so repeated runs are reproducible.
type Normalizer struct {
	interpreter *Interpreter
	logger      *logging.Logger
}

// NewNormalizer creates a normalizer over the given interpreter.
func NewNormalizer(interpreter *Interpreter, logger *logging.Logger) *Normalizer {
	if interpreter == nil {
		interpreter = NewInterpreter(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{interpreter: interpreter, logger: logger}
}

// Normalize interprets every observation for the given patient. Malformed
// observations (blank test name) are skipped with a log line; everything else
// degrades to an Unknown classification rather than failing the report.
func (n *Normalizer) Normalize(observations []RawTestObservation, patient PatientProfile) []InterpretedTestResult {
	results := make([]InterpretedTestResult, 0, len(observations))
	seen := make(map[string]struct{}, len(observations))

	for _, obs := range observations {
		if strings.TrimSpace(obs.TestName) == "" {
			n.logger.Warn("skipping observation with blank test name", "value", obs.Value)
			continue
		}

		canonical := n.interpreter.Registry().CanonicalName(obs.TestName)
		dedupeKey := strings.ToLower(canonical) + "\x00" + strings.TrimSpace(obs.Value)
		if _, dup := seen[dedupeKey]; dup {
			continue
		}
		seen[dedupeKey] = struct{}{}

		parsed := ParseValue(obs.Value)
		interpretation, rangeStr := n.interpreter.Interpret(obs.TestName, parsed, patient.Age)

		if rangeStr == "" && obs.ReferenceRangeHint != "" {
			// Unrecognized test: fall back to the range printed on the
			// document, display only.
			rangeStr = strings.TrimSpace(obs.ReferenceRangeHint)
		}

		result := InterpretedTestResult{
			TestName:       canonical,
			Value:          obs.Value,
			Unit:           obs.Unit,
			ReferenceRange: rangeStr,
			Interpretation: interpretation,
			Degraded:       interpretation == InterpretationUnknown,
			ObservedAt:     obs.ObservedAt,
		}
		if parsed.Kind == ValueNumeric {
			num := parsed.Numeric
			result.NumericValue = &num
		}
		results = append(results, result)
	}

	return results
}

// AttachExplanations copies caller-supplied explanations onto matching
// results by test name. Explanations are pass-through; the normalizer never
// generates them.
func AttachExplanations(results []InterpretedTestResult, explanations map[string]string) {
	if len(explanations) == 0 {
		return
	}
	for i := range results {
		if text, ok := explanations[results[i].TestName]; ok {
			results[i].Explanation = text
		}
	}
}
