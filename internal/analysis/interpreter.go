package analysis

import (
	"strings"

	"github.com/reportlens/reportlens/internal/labtests"
)

// Interpreter classifies parsed values against the reference table.
// It is pure: same inputs always produce the same classification.
type Interpreter struct {
	registry *labtests.Registry
}

// NewInterpreter creates an interpreter over the given registry.
func NewInterpreter(registry *labtests.Registry) *Interpreter {
	if registry == nil {
		registry = labtests.DefaultRegistry()
	}
	return &Interpreter{registry: registry}
}

// Registry exposes the reference table for name canonicalization.
func (it *Interpreter) Registry() *labtests.Registry {
	return it.registry
}

// Interpret classifies a parsed value for the named test and returns the
// classification plus the resolved range string for display.
//
// Unknown test names yield (Unknown, ""). A numeric test with a non-numeric
// value yields Unknown but still reports the range. Numeric bounds are
// inclusive on both ends.
func (it *Interpreter) Interpret(testName string, v ParsedValue, age *int) (Interpretation, string) {
	def, ok := it.registry.Lookup(testName)
	if !ok {
		return InterpretationUnknown, ""
	}

	rangeStr := def.RangeStringForAge(age)

	switch def.Kind {
	case labtests.RangeNumeric:
		if v.Kind != ValueNumeric {
			return InterpretationUnknown, rangeStr
		}
		low, high := def.RangeForAge(age)
		switch {
		case v.Numeric < low:
			return InterpretationLow, rangeStr
		case v.Numeric > high:
			return InterpretationHigh, rangeStr
		default:
			return InterpretationNormal, rangeStr
		}

	case labtests.RangeCategorical:
		if v.Kind != ValueCategorical {
			return InterpretationUnknown, rangeStr
		}
		for _, accepted := range def.Accepted {
			if strings.EqualFold(v.Category, accepted) {
				return InterpretationNormal, rangeStr
			}
		}
		for _, abnormal := range def.Abnormal {
			if strings.EqualFold(v.Category, abnormal) {
				return InterpretationHigh, rangeStr
			}
		}
		return InterpretationUnknown, rangeStr
	}

	return InterpretationUnknown, rangeStr
}
