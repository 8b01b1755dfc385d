package model

import (
	"math"
	"time"
)

// Detail is a category-specific diagnostic payload. The aggregator never
// reads it.
type Detail map[string]any

// PartialResult is one analyzer's outcome for one category. Values are
// created fresh per invocation and treated as immutable once returned.
type PartialResult struct {
	Score             float64 `json:"score"`
	MaxScore          float64 `json:"max_score"`
	Passed            bool    `json:"passed"`
	IsCriticalFailure bool    `json:"is_critical_failure,omitempty"`
	Error             string  `json:"error,omitempty"`
	Detail            Detail  `json:"detail,omitempty"`
}

// NewResult builds a result for c, clamping score into [0, max] and deriving
// Passed from the category threshold.
func NewResult(c Category, score float64, detail Detail) PartialResult {
	maxScore := c.MaxScore()
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	score = math.Min(score, maxScore)
	return PartialResult{
		Score:    score,
		MaxScore: maxScore,
		Passed:   score >= c.PassThreshold(),
		Detail:   detail,
	}
}

// FailedResult records an analyzer that could not produce a score.
func FailedResult(c Category, err error) PartialResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PartialResult{
		Score:    0,
		MaxScore: c.MaxScore(),
		Passed:   false,
		Error:    msg,
	}
}

// Failed reports whether the result carries an analyzer error.
func (r PartialResult) Failed() bool {
	return r.Error != ""
}

// Results is the per-category result table. It is keyed by Category so
// aggregation never depends on completion order.
type Results map[Category]PartialResult

// Clone returns a shallow copy of the table.
func (r Results) Clone() Results {
	out := make(Results, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Grade is a letter grade.
type Grade string

// Letter grades from best to worst.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeReport is the aggregated output of one grading run.
type GradeReport struct {
	Results    Results `json:"results"`
	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Grade      Grade   `json:"grade"`

	// Set by the parallel executor only.
	ExecutionTime *float64 `json:"execution_time,omitempty"`
	EarlyExit     *bool    `json:"early_exit,omitempty"`
}

// SetExecution stamps the parallel-only fields.
func (r *GradeReport) SetExecution(elapsed time.Duration, earlyExit bool) {
	seconds := elapsed.Seconds()
	r.ExecutionTime = &seconds
	r.EarlyExit = &earlyExit
}

// WasEarlyExit reports whether the run was short-circuited.
func (r *GradeReport) WasEarlyExit() bool {
	return r.EarlyExit != nil && *r.EarlyExit
}
