// Package checker turns raw program output into pass/fail verdicts
// and aggregates per-test results into a scored report.
package checker

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// epsilon tolerates formatting differences between numeric outputs,
// e.g. "2.0" vs "2".
const epsilon = 1e-6

type Options struct {
	// IgnoreCase folds case before the trimmed string comparison.
	IgnoreCase bool
	// Strict requires byte-exact equality and bypasses every
	// normalization and heuristic below.
	Strict bool
}

// Compare reports whether actual output matches the expected output.
// It is a fallback chain: trimmed string equality, then numeric
// comparison with an absolute epsilon, then a best-effort structural
// comparison for bracket- or brace-delimited values.
func Compare(actual, expected string, opts Options) bool {
	if opts.Strict {
		return actual == expected
	}

	a := strings.TrimSpace(actual)
	e := strings.TrimSpace(expected)
	if opts.IgnoreCase {
		a = strings.ToLower(a)
		e = strings.ToLower(e)
	}
	if a == e {
		return true
	}

	if af, aerr := strconv.ParseFloat(a, 64); aerr == nil {
		if ef, eerr := strconv.ParseFloat(e, 64); eerr == nil {
			return math.Abs(af-ef) <= epsilon
		}
	}

	if looksStructural(a) && looksStructural(e) {
		av, aok := parseStructural(a)
		ev, eok := parseStructural(e)
		if aok && eok {
			return reflect.DeepEqual(av, ev)
		}
		// parse failure falls through to the trimmed
		// comparison, which already failed above
	}

	return false
}

// looksStructural sniffs for array- or object-like values. It is a
// heuristic and can misfire on pathological strings; Strict mode
// bypasses it entirely.
func looksStructural(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '[' && last == ']') || (first == '{' && last == '}')
}

// parseStructural parses a JSON-like value, tolerating single quotes
// in place of double quotes.
func parseStructural(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, true
	}
	requoted := strings.ReplaceAll(s, "'", `"`)
	if err := json.Unmarshal([]byte(requoted), &v); err == nil {
		return v, true
	}
	return nil, false
}
