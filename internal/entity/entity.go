// Package entity normalizes the contact points (emails, phone numbers,
// websites) users attach to a report for fraud lookups.
package entity

import "strings"

// Input is one normalized contact point ready for indexing.
type Input struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Normalize trims raw and classifies it under entityType. It performs
// no format validation: an "email" value is not required to contain
// "@", matching how historical reports were indexed. Whitespace-only
// values and unknown types are dropped silently, not rejected.
func Normalize(entityType, raw string) (Input, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Input{}, false
	}
	switch entityType {
	case "email", "phone", "website":
		return Input{Type: entityType, Value: value}, true
	default:
		return Input{}, false
	}
}

// NormalizeAll applies Normalize to each pair, keeping input order and
// skipping anything dropped.
func NormalizeAll(inputs []Input) []Input {
	out := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		if n, ok := Normalize(in.Type, in.Value); ok {
			out = append(out, n)
		}
	}
	return out
}
