package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	model "github.com/okian/autograder/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	Convey("Given the category set", t, func() {
		Convey("Then the scored categories should sum to 100", func() {
			total := 0.0
			for _, c := range model.ScoredCategories() {
				total += c.MaxScore()
			}
			So(total, ShouldEqual, model.TotalMaxScore)
			So(len(model.ScoredCategories()), ShouldEqual, 6)
		})

		Convey("Then ux should be tracked but not scored", func() {
			So(model.CategoryUX.Valid(), ShouldBeTrue)
			So(model.CategoryUX.Scored(), ShouldBeFalse)
			So(model.CategoryUX.MaxScore(), ShouldEqual, 10)
		})

		Convey("Then names should round-trip through ParseCategory", func() {
			for _, c := range model.AllCategories() {
				parsed, err := model.ParseCategory(c.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, c)
			}
		})

		Convey("When parsing an unknown name", func() {
			_, err := model.ParseCategory("style")

			Convey("Then it should return ErrUnknownCategory", func() {
				So(errors.Is(err, model.ErrUnknownCategory), ShouldBeTrue)
			})
		})

		Convey("Then thresholds should be 70 percent of max", func() {
			So(model.CategoryCodeQuality.PassThreshold(), ShouldAlmostEqual, 21)
			So(model.CategoryDocumentation.PassThreshold(), ShouldAlmostEqual, 17.5)
			So(model.CategoryTesting.PassThreshold(), ShouldAlmostEqual, 10.5)
		})
	})
}

func TestPartialResult(t *testing.T) {
	Convey("Given NewResult", t, func() {
		Convey("When the score is above the threshold", func() {
			r := model.NewResult(model.CategoryGit, 8, model.Detail{"commit_count": 12})

			Convey("Then it should pass", func() {
				So(r.Score, ShouldEqual, 8)
				So(r.MaxScore, ShouldEqual, 10)
				So(r.Passed, ShouldBeTrue)
				So(r.Failed(), ShouldBeFalse)
			})
		})

		Convey("When the score is out of range", func() {
			high := model.NewResult(model.CategorySecurity, 14, nil)
			low := model.NewResult(model.CategorySecurity, -3, nil)

			Convey("Then it should be clamped", func() {
				So(high.Score, ShouldEqual, 10)
				So(low.Score, ShouldEqual, 0)
				So(low.Passed, ShouldBeFalse)
			})
		})
	})

	Convey("Given FailedResult", t, func() {
		r := model.FailedResult(model.CategoryTesting, errors.New("boom"))

		Convey("Then it should carry the category max and the message", func() {
			So(r.Score, ShouldEqual, 0)
			So(r.MaxScore, ShouldEqual, 15)
			So(r.Passed, ShouldBeFalse)
			So(r.Error, ShouldEqual, "boom")
			So(r.Failed(), ShouldBeTrue)
		})
	})
}

func TestGradeReportJSON(t *testing.T) {
	Convey("Given a sequential report", t, func() {
		report := model.GradeReport{
			Results: model.Results{
				model.CategorySecurity: model.NewResult(model.CategorySecurity, 10, nil),
			},
			TotalScore: 10,
			MaxScore:   100,
			Percentage: 10,
			Grade:      model.GradeF,
		}

		Convey("When marshaled", func() {
			data, err := json.Marshal(report)
			So(err, ShouldBeNil)
			var raw map[string]any
			So(json.Unmarshal(data, &raw), ShouldBeNil)

			Convey("Then it should use the fixed keys and omit parallel-only fields", func() {
				for _, key := range []string{"results", "total_score", "max_score", "percentage", "passed", "grade"} {
					So(raw, ShouldContainKey, key)
				}
				So(raw, ShouldNotContainKey, "execution_time")
				So(raw, ShouldNotContainKey, "early_exit")
				So(raw["results"], ShouldContainKey, "security")
			})
		})

		Convey("When execution data is stamped", func() {
			report.SetExecution(1500*time.Millisecond, false)
			data, err := json.Marshal(report)
			So(err, ShouldBeNil)
			var raw map[string]any
			So(json.Unmarshal(data, &raw), ShouldBeNil)

			Convey("Then the parallel keys should be present even when false", func() {
				So(raw["execution_time"], ShouldEqual, 1.5)
				So(raw["early_exit"], ShouldEqual, false)
				So(report.WasEarlyExit(), ShouldBeFalse)
			})
		})
	})
}

func TestCommit(t *testing.T) {
	Convey("Given commit messages", t, func() {
		So(model.Commit{Message: "Add report renderer"}.IsMeaningful(), ShouldBeTrue)
		So(model.Commit{Message: "WIP stuff"}.IsMeaningful(), ShouldBeFalse)
		So(model.Commit{Message: "fix"}.IsMeaningful(), ShouldBeFalse)
		So(model.Commit{Message: "héllo"}.MessageLength(), ShouldEqual, 5)
	})
}
