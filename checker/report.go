package checker

import "math"

// TestCaseResult is the outcome of running one test case.
type TestCaseResult struct {
	TestCaseID   int     `json:"test_case_id"`
	Passed       bool    `json:"passed"`
	ActualOutput string  `json:"actual_output"`
	Error        *string `json:"error,omitempty"`
	CpuMs        int64   `json:"cpu_ms"`
	Hidden       bool    `json:"hidden"`
}

// TimingStats aggregates CPU time over all test cases of a run.
type TimingStats struct {
	SumMs int64 `json:"sum_ms"`
	AvgMs int64 `json:"avg_ms"`
	MaxMs int64 `json:"max_ms"`
	MinMs int64 `json:"min_ms"`
}

// TestReport is recomputed per run and never mutated in place.
type TestReport struct {
	Results  []TestCaseResult `json:"results"`
	Passed   int              `json:"passed"`
	Total    int              `json:"total"`
	Score    int              `json:"score"`
	Feedback string           `json:"feedback"`
	Timing   TimingStats      `json:"timing"`
}

// Score computes the 0-100 score for a result set. A run with no
// test cases scores zero.
func Score(results []TestCaseResult) (passed int, total int, score int) {
	total = len(results)
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	score = int(math.Round(float64(passed) / float64(total) * 100))
	return passed, total, score
}

// Report assembles the full test report: counts, score, timing
// aggregates and a feedback message.
func Report(results []TestCaseResult) TestReport {
	passed, total, score := Score(results)

	var timing TimingStats
	if total > 0 {
		timing.MinMs = results[0].CpuMs
		for _, r := range results {
			timing.SumMs += r.CpuMs
			if r.CpuMs > timing.MaxMs {
				timing.MaxMs = r.CpuMs
			}
			if r.CpuMs < timing.MinMs {
				timing.MinMs = r.CpuMs
			}
		}
		timing.AvgMs = timing.SumMs / int64(total)
	}

	return TestReport{
		Results:  results,
		Passed:   passed,
		Total:    total,
		Score:    score,
		Feedback: Feedback(score),
		Timing:   timing,
	}
}

// Feedback maps a score to a fixed message. Buckets are checked from
// best to worst.
func Feedback(score int) string {
	switch {
	case score >= 100:
		return "Perfect! All test cases passed."
	case score >= 80:
		return "Great job! Almost all test cases passed."
	case score >= 60:
		return "Good progress, but several test cases still fail."
	case score >= 40:
		return "Some test cases pass. Review the failing ones and try again."
	case score > 0:
		return "Most test cases fail. Rework your approach."
	default:
		return "No test cases passed yet. Check your solution against the examples."
	}
}
