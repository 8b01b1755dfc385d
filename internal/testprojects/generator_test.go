package testprojects_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/autograder/internal/testprojects"
	"github.com/okian/autograder/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func countCommits(t *testing.T, root string) int {
	t.Helper()
	repo, err := git.PlainOpen(root)
	if err != nil {
		t.Fatal(err)
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	_ = iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	})
	return n
}

func TestParseProfile(t *testing.T) {
	Convey("Given profile names", t, func() {
		p, err := testprojects.ParseProfile(" LEAKY ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, testprojects.ProfileLeaky)

		_, err = testprojects.ParseProfile("perfect")
		So(errors.Is(err, testprojects.ErrUnknownProfile), ShouldBeTrue)

		So(testprojects.Profiles(), ShouldHaveLength, 3)
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a good profile with history", t, func() {
		dir := t.TempDir()
		p, err := testprojects.Generate(ctx, testprojects.Config{Dir: dir, Name: "good", Profile: testprojects.ProfileGood, Git: true})

		Convey("Then every file and commit should exist", func() {
			So(err, ShouldBeNil)
			So(p.Path, ShouldEqual, filepath.Join(dir, "good"))
			So(p.Commits, ShouldEqual, 12)
			So(countCommits(t, p.Path), ShouldEqual, 12)
			for _, f := range p.Files {
				_, statErr := os.Stat(filepath.Join(p.Path, filepath.FromSlash(f)))
				So(statErr, ShouldBeNil)
			}
			So(p.Files, ShouldContain, "tests/test_pipeline.py")
			So(p.Files, ShouldContain, "README.md")
		})

		Convey("When generating into the same directory again", func() {
			_, err := testprojects.Generate(ctx, testprojects.Config{Dir: dir, Name: "good", Profile: testprojects.ProfileGood})

			Convey("Then it should refuse to overwrite", func() {
				So(errors.Is(err, testprojects.ErrProjectExists), ShouldBeTrue)
			})
		})
	})

	Convey("Given a leaky profile", t, func() {
		p, err := testprojects.Generate(ctx, testprojects.Config{Dir: t.TempDir(), Profile: testprojects.ProfileLeaky, Git: true})

		Convey("Then it should carry the extra settings commit", func() {
			So(err, ShouldBeNil)
			So(p.Commits, ShouldEqual, 13)
			So(p.Files, ShouldContain, "src/storage.py")
			So(filepath.Base(p.Path), ShouldStartWith, "project-")
		})
	})

	Convey("Given a weak profile without history", t, func() {
		p, err := testprojects.Generate(ctx, testprojects.Config{Dir: t.TempDir(), Profile: testprojects.ProfileWeak})

		Convey("Then only the files should be written", func() {
			So(err, ShouldBeNil)
			So(p.Commits, ShouldEqual, 0)
			So(p.Files, ShouldResemble, []string{"README.md", "main.py"})
			_, statErr := os.Stat(filepath.Join(p.Path, ".git"))
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})

	Convey("Given an unknown profile", t, func() {
		_, err := testprojects.Generate(ctx, testprojects.Config{Dir: t.TempDir(), Profile: "perfect"})

		So(errors.Is(err, testprojects.ErrUnknownProfile), ShouldBeTrue)
	})

	Convey("Given a canceled context", t, func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := testprojects.Generate(canceled, testprojects.Config{Dir: t.TempDir(), Profile: testprojects.ProfileGood})

		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
