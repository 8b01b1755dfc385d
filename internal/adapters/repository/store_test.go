package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/autograder/internal/adapters/repository"
	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := repository.NewMemoryStore()
		ctx := context.Background()

		Convey("When a successful outcome is recorded", func() {
			err := s.Record(ctx, analysis.Outcome{
				Category: model.CategoryGit,
				Result:   model.NewResult(model.CategoryGit, 8, nil),
			})

			Convey("Then it should be retrievable", func() {
				So(err, ShouldBeNil)
				So(s.Results(ctx)[model.CategoryGit].Score, ShouldEqual, 8)
				So(s.Results(ctx), ShouldHaveLength, 1)
				So(s.Has(model.CategoryGit), ShouldBeTrue)
				So(s.Has(model.CategoryUX), ShouldBeFalse)
			})

			Convey("And the same category is recorded again", func() {
				err := s.Record(ctx, analysis.Outcome{Category: model.CategoryGit, Result: model.NewResult(model.CategoryGit, 2, nil)})

				Convey("Then ErrDuplicate should be returned and the first result kept", func() {
					So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
					So(s.Results(ctx)[model.CategoryGit].Score, ShouldEqual, 8)
				})
			})
		})

		Convey("When a failed outcome is recorded", func() {
			err := s.Record(ctx, analysis.Outcome{
				Category: model.CategoryDocumentation,
				Err:      errors.New("permission denied"),
			})

			Convey("Then it should be stored as a zero-score failure", func() {
				So(err, ShouldBeNil)
				r := s.Results(ctx)[model.CategoryDocumentation]
				So(r.Score, ShouldEqual, 0)
				So(r.MaxScore, ShouldEqual, 25)
				So(r.Passed, ShouldBeFalse)
				So(r.Error, ShouldEqual, "permission denied")
			})
		})

		Convey("When an unknown category is recorded", func() {
			err := s.Record(ctx, analysis.Outcome{Category: model.Category(99)})

			Convey("Then ErrInvalidCategory should be returned", func() {
				So(errors.Is(err, repository.ErrInvalidCategory), ShouldBeTrue)
			})
		})

		Convey("When results are read", func() {
			_ = s.Record(ctx, analysis.Outcome{Category: model.CategoryUX, Result: model.NewResult(model.CategoryUX, 5, nil)})
			snapshot := s.Results(ctx)
			delete(snapshot, model.CategoryUX)

			Convey("Then the snapshot should be a copy", func() {
				So(s.Has(model.CategoryUX), ShouldBeTrue)
				So(s.Results(ctx), ShouldHaveLength, 1)
			})
		})

		Convey("When workers record concurrently", func() {
			var wg sync.WaitGroup
			for _, c := range model.AllCategories() {
				wg.Add(1)
				go func(c model.Category) {
					defer wg.Done()
					_ = s.Record(ctx, analysis.Outcome{Category: c, Result: model.NewResult(c, 1, nil)})
				}(c)
			}
			wg.Wait()

			Convey("Then every category should be present", func() {
				So(s.Results(ctx), ShouldHaveLength, len(model.AllCategories()))
			})
		})
	})
}
