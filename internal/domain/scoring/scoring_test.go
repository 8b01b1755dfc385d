package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/autograder/internal/domain/model"
	scoring "github.com/okian/autograder/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGrade(t *testing.T) {
	Convey("Given the grade calculator", t, func() {
		Convey("Then the boundary table should hold", func() {
			table := []struct {
				score float64
				grade model.Grade
			}{
				{0, model.GradeF},
				{59, model.GradeF},
				{60, model.GradeD},
				{69, model.GradeD},
				{70, model.GradeC},
				{79, model.GradeC},
				{80, model.GradeB},
				{89, model.GradeB},
				{89.99, model.GradeB},
				{90, model.GradeA},
				{90.00, model.GradeA},
				{100, model.GradeA},
			}
			for _, tc := range table {
				So(scoring.Grade(tc.score), ShouldEqual, tc.grade)
			}
		})

		Convey("Then it should be total for odd inputs", func() {
			So(scoring.Grade(-5), ShouldEqual, model.GradeF)
			So(scoring.Grade(math.NaN()), ShouldEqual, model.GradeF)
			So(scoring.Grade(250), ShouldEqual, model.GradeA)
		})

		Convey("Then it should be monotonic non-decreasing", func() {
			ordinal := map[model.Grade]int{
				model.GradeF: 0, model.GradeD: 1, model.GradeC: 2, model.GradeB: 3, model.GradeA: 4,
			}
			prev := -1
			for s := 0.0; s <= 100.0; s += 0.25 {
				cur := ordinal[scoring.Grade(s)]
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})
	})
}

func results(scores map[model.Category]float64) model.Results {
	out := model.Results{}
	for c, s := range scores {
		out[c] = model.NewResult(c, s, nil)
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given six category scores summing to 80", t, func() {
		r := results(map[model.Category]float64{
			model.CategorySecurity:      10,
			model.CategoryCodeQuality:   25,
			model.CategoryDocumentation: 20,
			model.CategoryTesting:       10,
			model.CategoryGit:           8,
			model.CategoryResearch:      7,
		})

		Convey("When aggregated", func() {
			report := scoring.Aggregate(r)

			Convey("Then the report should be a passing B", func() {
				So(report.TotalScore, ShouldEqual, 80)
				So(report.Percentage, ShouldEqual, report.TotalScore)
				So(report.MaxScore, ShouldEqual, 100)
				So(report.Grade, ShouldEqual, model.GradeB)
				So(report.Passed, ShouldBeTrue)
				So(report.ExecutionTime, ShouldBeNil)
				So(report.EarlyExit, ShouldBeNil)
			})
		})

		Convey("When ux is added", func() {
			r[model.CategoryUX] = model.NewResult(model.CategoryUX, 10, nil)
			report := scoring.Aggregate(r)

			Convey("Then ux should be reported but excluded from the total", func() {
				So(report.Results, ShouldContainKey, model.CategoryUX)
				So(report.TotalScore, ShouldEqual, 80)
			})
		})

		Convey("When categories are missing", func() {
			delete(r, model.CategoryGit)
			delete(r, model.CategoryResearch)
			report := scoring.Aggregate(r)

			Convey("Then they contribute zero without error", func() {
				So(report.TotalScore, ShouldEqual, 65)
				So(report.Grade, ShouldEqual, model.GradeD)
				So(report.Passed, ShouldBeFalse)
			})
		})
	})

	Convey("Given only a critical security failure", t, func() {
		sec := model.NewResult(model.CategorySecurity, 0, nil)
		sec.IsCriticalFailure = true
		report := scoring.Aggregate(model.Results{model.CategorySecurity: sec})

		Convey("Then the report should be a failing F", func() {
			So(report.TotalScore, ShouldEqual, 0)
			So(report.Grade, ShouldEqual, model.GradeF)
			So(report.Passed, ShouldBeFalse)
		})
	})

	Convey("Given malformed partial results", t, func() {
		r := model.Results{
			model.CategorySecurity:    {Score: math.NaN(), MaxScore: 10},
			model.CategoryCodeQuality: {Score: -4, MaxScore: 30},
			model.CategoryTesting:     {Score: 99, MaxScore: 15},
			model.CategoryGit:         {Score: math.Inf(1), MaxScore: 10},
			model.CategoryResearch:    {Score: 6.5, MaxScore: 10},
		}

		Convey("Then only the well-formed score counts", func() {
			So(func() { scoring.Aggregate(r) }, ShouldNotPanic)
			So(scoring.Aggregate(r).TotalScore, ShouldEqual, 6.5)
		})
	})

	Convey("Given a nil result table", t, func() {
		report := scoring.Aggregate(nil)

		Convey("Then the report should still be valid", func() {
			So(report.Results, ShouldNotBeNil)
			So(report.TotalScore, ShouldEqual, 0)
			So(report.Grade, ShouldEqual, model.GradeF)
		})
	})

	Convey("Given the same scores inserted in different orders", t, func() {
		order1 := model.Results{}
		order2 := model.Results{}
		cats := model.ScoredCategories()
		for i, c := range cats {
			order1[c] = model.NewResult(c, float64(i)+0.5, nil)
		}
		for i := len(cats) - 1; i >= 0; i-- {
			order2[cats[i]] = model.NewResult(cats[i], float64(i)+0.5, nil)
		}

		Convey("Then the totals should be identical", func() {
			So(scoring.TotalScore(order1), ShouldEqual, scoring.TotalScore(order2))
			So(scoring.TotalScore(order1), ShouldEqual, 18)
		})
	})
}
