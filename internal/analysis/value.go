package analysis

import (
	"strconv"
	"strings"
)

// ValueKind reports how a raw value string was parsed.
type ValueKind int

const (
	ValueUnparseable ValueKind = iota
	ValueNumeric
	ValueCategorical
)

// Bound records a stripped leading comparison operator. Display only: a "<5"
// still classifies by the numeric value 5.
type Bound int

const (
	BoundNone Bound = iota
	BoundBelow
	BoundAbove
)

// ParsedValue is the comparable form of a raw measurement string.
type ParsedValue struct {
	Kind    ValueKind
	Numeric float64
	// Category is the normalized (lowercased, whitespace-collapsed) text
	// when no numeric form was extractable.
	Category string
	Bound    Bound
}

// ParseValue converts a free-text measurement into a comparable form.
// It never fails: anything that is neither numeric nor meaningful text
// comes back as Unparseable.
func ParseValue(raw string) ParsedValue {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedValue{Kind: ValueUnparseable}
	}

	bound := BoundNone
	switch {
	case strings.HasPrefix(s, "<"):
		bound = BoundBelow
		s = strings.TrimSpace(strings.TrimPrefix(s, "<"))
	case strings.HasPrefix(s, ">"):
		bound = BoundAbove
		s = strings.TrimSpace(strings.TrimPrefix(s, ">"))
	}

	if num, ok := parseNumeric(s); ok {
		return ParsedValue{Kind: ValueNumeric, Numeric: num, Bound: bound}
	}

	cat := strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(raw)), " "))
	if cat == "" {
		return ParsedValue{Kind: ValueUnparseable}
	}
	return ParsedValue{Kind: ValueCategorical, Category: cat}
}

// parseNumeric attempts a float parse after stripping thousands separators,
// a leading "+", and a trailing unit suffix. The unit arrives separately,
// so anything after the numeric token is discarded rather than inferred.
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Cut at the first character that cannot belong to a float literal,
	// which drops embedded unit suffixes like "110mg/dL".
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || c == '.' || (end == 0 && c == '-') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	// Reject when the remainder starts with '-' or '.' ("12-14" is a range,
	// not a single measurement) or '+' ("1+" is a urinalysis plus-grade and
	// must stay categorical so grade vocabularies can match it).
	rest := strings.TrimSpace(s[end:])
	if rest != "" && (rest[0] == '-' || rest[0] == '.' || rest[0] == '+') {
		return 0, false
	}

	num, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// String renders the canonical form of the parsed value, with any stripped
// comparison operator restored for display.
func (v ParsedValue) String() string {
	switch v.Kind {
	case ValueNumeric:
		s := strconv.FormatFloat(v.Numeric, 'f', -1, 64)
		switch v.Bound {
		case BoundBelow:
			return "<" + s
		case BoundAbove:
			return ">" + s
		}
		return s
	case ValueCategorical:
		return v.Category
	default:
		return ""
	}
}
