// Package scoring reduces per-category results into a composite grade report.
package scoring

import (
	"math"

	"github.com/okian/autograder/internal/domain/model"
)

// Aggregate sums the scored categories of results into a GradeReport. It
// never fails: missing categories contribute nothing and malformed scores
// (NaN, infinite, negative or above the category maximum) contribute zero.
func Aggregate(results model.Results) model.GradeReport {
	total := TotalScore(results)

	table := results.Clone()
	if table == nil {
		table = model.Results{}
	}

	return model.GradeReport{
		Results:    table,
		TotalScore: total,
		MaxScore:   model.TotalMaxScore,
		// max_score is fixed at 100, so the percentage is the total itself.
		Percentage: total,
		Passed:     total >= model.PassingTotal,
		Grade:      Grade(total),
	}
}

// TotalScore is the keyed sum over the six scored categories. ux is
// deliberately excluded.
func TotalScore(results model.Results) float64 {
	total := 0.0
	for _, c := range model.ScoredCategories() {
		r, ok := results[c]
		if !ok {
			continue
		}
		total += contribution(c, r)
	}
	return total
}

func contribution(c model.Category, r model.PartialResult) float64 {
	s := r.Score
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 || s > c.MaxScore() {
		return 0
	}
	return s
}
