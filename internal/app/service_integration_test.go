package service_test

import (
	"context"
	"testing"

	"github.com/okian/autograder/internal/adapters/analyzers"
	"github.com/okian/autograder/internal/adapters/cache"
	service "github.com/okian/autograder/internal/app"
	"github.com/okian/autograder/internal/domain/model"
	"github.com/okian/autograder/internal/testprojects"
	. "github.com/smartystreets/goconvey/convey"
)

func generate(t *testing.T, profile testprojects.Profile) string {
	t.Helper()
	p, err := testprojects.Generate(context.Background(), testprojects.Config{Dir: t.TempDir(), Profile: profile, Git: true})
	if err != nil {
		t.Fatal(err)
	}
	return p.Path
}

func realService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithSecurityAnalyzer(analyzers.Security()),
		service.WithAnalyzers(analyzers.Others(analyzers.DefaultSettings())...),
		service.WithCacheFactory(cache.Factory()),
	}
	return service.New(append(base, opts...)...)
}

func TestServiceIntegration(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated good project", t, func() {
		path := generate(t, testprojects.ProfileGood)

		Convey("When graded in both modes", func() {
			svc := realService(service.WithMaxWorkers(3))
			seq, seqErr := svc.RunSequential(ctx, path)
			par, parErr := svc.RunParallel(ctx, path)

			Convey("Then both should award full marks", func() {
				So(seqErr, ShouldBeNil)
				So(parErr, ShouldBeNil)
				So(seq.TotalScore, ShouldEqual, 100)
				So(seq.Grade, ShouldEqual, model.GradeA)
				So(par.TotalScore, ShouldEqual, seq.TotalScore)
				So(par.WasEarlyExit(), ShouldBeFalse)
				So(par.Results[model.CategoryUX].Score, ShouldEqual, 10)
			})

			Convey("Then every category should agree", func() {
				for _, c := range model.AllCategories() {
					So(par.Results[c].Score, ShouldEqual, seq.Results[c].Score)
					So(par.Results[c].Passed, ShouldEqual, seq.Results[c].Passed)
				}
			})
		})
	})

	Convey("Given a generated leaky project", t, func() {
		path := generate(t, testprojects.ProfileLeaky)

		Convey("When graded in parallel with early exit", func() {
			report, err := realService().RunParallel(ctx, path)

			Convey("Then only security should be reported", func() {
				So(err, ShouldBeNil)
				So(report.WasEarlyExit(), ShouldBeTrue)
				So(report.Results, ShouldHaveLength, 1)
				So(report.Results[model.CategorySecurity].IsCriticalFailure, ShouldBeTrue)
				So(report.Passed, ShouldBeFalse)
			})
		})

		Convey("When graded sequentially", func() {
			report, err := realService().RunSequential(ctx, path)

			Convey("Then every category should still run", func() {
				So(err, ShouldBeNil)
				So(report.Results, ShouldHaveLength, 7)
				So(report.TotalScore, ShouldEqual, 90)
				So(report.Grade, ShouldEqual, model.GradeA)
				So(report.Passed, ShouldBeTrue)
			})
		})
	})

	Convey("Given a generated weak project", t, func() {
		report, err := realService().RunParallel(ctx, generate(t, testprojects.ProfileWeak))

		Convey("Then it should fail", func() {
			So(err, ShouldBeNil)
			So(report.TotalScore, ShouldEqual, 23.5)
			So(report.Grade, ShouldEqual, model.GradeF)
			So(report.Results[model.CategoryGit].Detail["commit_count"], ShouldEqual, 1)
		})
	})
}
