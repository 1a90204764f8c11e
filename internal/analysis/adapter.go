package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DecodeExtraction validates a dynamic LLM response payload into a strict
// Extraction. LLM output drifts between runs (string ages, alternate key
// names, nulls), so everything is checked here at the boundary; nothing
// downstream sees an unvalidated shape.
func DecodeExtraction(payload []byte) (Extraction, error) {
	var doc struct {
		Patient map[string]json.RawMessage   `json:"patient"`
		Tests   []map[string]json.RawMessage `json:"tests"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Extraction{}, fmt.Errorf("analysis: decode extraction payload: %w", err)
	}

	var ext Extraction
	ext.Patient = decodePatient(doc.Patient)
	ext.Observations = make([]RawTestObservation, 0, len(doc.Tests))

	for _, item := range doc.Tests {
		name := firstString(item, "test_name", "name", "test")
		value := firstString(item, "value", "result")
		if strings.TrimSpace(name) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		ext.Observations = append(ext.Observations, RawTestObservation{
			TestName:           strings.TrimSpace(name),
			Value:              strings.TrimSpace(value),
			Unit:               strings.TrimSpace(firstString(item, "unit", "units")),
			ReferenceRangeHint: strings.TrimSpace(firstString(item, "reference_range", "range", "ref_range")),
		})
	}

	return ext, nil
}

func decodePatient(fields map[string]json.RawMessage) PatientProfile {
	var p PatientProfile
	if fields == nil {
		return p
	}
	p.Name = strings.TrimSpace(rawAsString(fields["name"]))
	p.Gender = strings.TrimSpace(rawAsString(fields["gender"]))
	if age, ok := rawAsInt(fields["age"]); ok && age >= 0 {
		p.Age = &age
	}
	return p
}

// firstString returns the first present, non-null key decoded as a string.
// Numbers are rendered to preserve values the model forgot to quote.
func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			if s := rawAsString(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

func rawAsString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func rawAsInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}
