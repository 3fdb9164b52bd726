// Package screener performs static pre-execution screening of
// untrusted source code. It runs before any cache lookup or network
// call so that obviously unsafe submissions cost nothing.
package screener

import "fmt"

type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type Result struct {
	Safe   bool    `json:"safe"`
	Issues []Issue `json:"issues"`
}

type Screener struct {
	maxSrcBytes int
}

const DefaultMaxSrcBytes = 64 * 1024

func NewScreener(maxSrcBytes int) *Screener {
	if maxSrcBytes <= 0 {
		maxSrcBytes = DefaultMaxSrcBytes
	}
	return &Screener{maxSrcBytes: maxSrcBytes}
}

// Screen checks source code against the denylist for its language.
// Any error-severity issue makes the submission unsafe. Warnings are
// surfaced but do not block execution. Languages without a rule set
// are rejected outright; an unknown language must not slip through
// unscreened.
func (s *Screener) Screen(srcCode string, langID string) Result {
	if len(srcCode) > s.maxSrcBytes {
		return Result{
			Safe: false,
			Issues: []Issue{{
				Severity: SeverityError,
				Message: fmt.Sprintf("source code exceeds maximum size of %d bytes",
					s.maxSrcBytes),
			}},
		}
	}

	family := langFamily(langID)
	rules, ok := rulesByFamily[family]
	if !ok {
		return Result{
			Safe: false,
			Issues: []Issue{{
				Severity: SeverityError,
				Message:  fmt.Sprintf("no screening rules for language %q", langID),
			}},
		}
	}

	res := Result{Safe: true, Issues: []Issue{}}
	for _, r := range rules {
		if !r.matches(srcCode) {
			continue
		}
		res.Issues = append(res.Issues, Issue{
			Severity: r.severity,
			Message:  r.message,
		})
		if r.severity == SeverityError {
			res.Safe = false
		}
	}
	return res
}
