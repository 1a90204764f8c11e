// Package labtests holds the static reference-range table used to classify
// lab results. Definitions are loaded once and immutable afterwards; lookups
// use case-insensitive exact match first, then substring containment.
package labtests

import (
	"fmt"
	"strings"
)

// RangeKind distinguishes numeric interval tests from categorical ones.
type RangeKind int

const (
	RangeNumeric RangeKind = iota
	RangeCategorical
)

// AgeAdjustment overrides the base numeric range for an age bracket.
// Brackets are scanned in order; the first one containing the age wins.
type AgeAdjustment struct {
	MinAge int
	MaxAge int
	Low    float64
	High   float64
}

// TestDefinition describes one named test's expected range.
type TestDefinition struct {
	Name string
	Unit string
	Kind RangeKind

	// Numeric range, inclusive on both ends.
	Low  float64
	High float64

	// AgeAdjustments are checked before the base range when an age is known.
	AgeAdjustments []AgeAdjustment

	// Accepted are normal categorical results (compared case-insensitively).
	Accepted []string
	// Abnormal are known abnormal terms for this test; anything outside both
	// sets classifies as Unknown.
	Abnormal []string
}

// RangeString renders the definition's base range for display,
// e.g. "70 - 110 mg/dL" or "negative".
func (d *TestDefinition) RangeString() string {
	if d.Kind == RangeCategorical {
		return strings.Join(d.Accepted, " / ")
	}
	s := fmt.Sprintf("%s - %s", trimFloat(d.Low), trimFloat(d.High))
	if d.Unit != "" {
		s += " " + d.Unit
	}
	return s
}

// RangeStringForAge renders the range applicable to the given age.
func (d *TestDefinition) RangeStringForAge(age *int) string {
	if d.Kind == RangeCategorical || age == nil {
		return d.RangeString()
	}
	low, high := d.RangeForAge(age)
	s := fmt.Sprintf("%s - %s", trimFloat(low), trimFloat(high))
	if d.Unit != "" {
		s += " " + d.Unit
	}
	return s
}

// RangeForAge selects the numeric bounds for the patient's age. The base range
// applies when age is nil or no bracket contains it.
func (d *TestDefinition) RangeForAge(age *int) (low, high float64) {
	if age != nil {
		for _, adj := range d.AgeAdjustments {
			if *age >= adj.MinAge && *age <= adj.MaxAge {
				return adj.Low, adj.High
			}
		}
	}
	return d.Low, d.High
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// Registry is the immutable lookup table of test definitions.
type Registry struct {
	byName map[string]*TestDefinition
}

// NewRegistry builds a registry from the given definitions. Keys are
// normalized to lowercase; later duplicates overwrite earlier ones.
func NewRegistry(defs []TestDefinition) *Registry {
	r := &Registry{byName: make(map[string]*TestDefinition, len(defs))}
	for i := range defs {
		def := defs[i]
		r.byName[normalizeName(def.Name)] = &def
	}
	return r
}

// normalizeName lowercases and trims a test name for lookup.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds the definition for a test name. It checks exact match first,
// then substring containment in either direction. Among substring candidates
// the longest table key wins, with a lexicographic tie-break so equal-length
// keys resolve the same way on every call despite map iteration order.
func (r *Registry) Lookup(name string) (*TestDefinition, bool) {
	key := normalizeName(name)
	if key == "" {
		return nil, false
	}
	if def, ok := r.byName[key]; ok {
		return def, true
	}
	var best *TestDefinition
	bestKey := ""
	for defKey, def := range r.byName {
		if strings.Contains(key, defKey) || strings.Contains(defKey, key) {
			if len(defKey) > len(bestKey) || (len(defKey) == len(bestKey) && defKey < bestKey) {
				best = def
				bestKey = defKey
			}
		}
	}
	if best != nil {
		return best, true
	}
	return nil, false
}

// CanonicalName resolves an extracted name to the table's canonical spelling.
// Unrecognized names are returned trimmed but otherwise unchanged.
func (r *Registry) CanonicalName(name string) string {
	if def, ok := r.Lookup(name); ok {
		return def.Name
	}
	return strings.TrimSpace(name)
}
