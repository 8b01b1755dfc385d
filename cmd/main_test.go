package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/autograder/internal/testprojects"
	"github.com/okian/autograder/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(&bytes.Buffer{}))
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func sample(t *testing.T, profile testprojects.Profile) string {
	t.Helper()
	p, err := testprojects.Generate(context.Background(), testprojects.Config{Dir: t.TempDir(), Profile: profile, Git: true})
	if err != nil {
		t.Fatal(err)
	}
	return p.Path
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	return raw
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		code, out, _ := execute("version")

		convey.So(code, convey.ShouldEqual, exitPassed)
		convey.So(out, convey.ShouldEqual, "autograder dev\n")
	})
}

func TestGradeCommand(t *testing.T) {
	t.Setenv("AUTOGRADER_CONFIG", "")

	convey.Convey("Given a well-built project", t, func() {
		path := sample(t, testprojects.ProfileGood)

		convey.Convey("When graded as text", func() {
			code, out, _ := execute("grade", path)

			convey.Convey("Then it should pass with a summary table", func() {
				convey.So(code, convey.ShouldEqual, exitPassed)
				convey.So(out, convey.ShouldContainSubstring, "GRADING SUMMARY")
				convey.So(out, convey.ShouldContainSubstring, "PASSED")
			})
		})

		convey.Convey("When graded sequentially as JSON", func() {
			code, out, _ := execute("grade", path, "--json", "--sequential")

			convey.Convey("Then the report should be a full-score A", func() {
				convey.So(code, convey.ShouldEqual, exitPassed)
				raw := decode(t, out)
				convey.So(raw["total_score"], convey.ShouldEqual, 100.0)
				convey.So(raw["grade"], convey.ShouldEqual, "A")
				convey.So(raw, convey.ShouldNotContainKey, "execution_time")
			})
		})

		convey.Convey("When the report goes to a file", func() {
			target := filepath.Join(t.TempDir(), "report.json")
			code, out, _ := execute("grade", path, "--json", "--output", target)

			convey.Convey("Then stdout should stay empty", func() {
				convey.So(code, convey.ShouldEqual, exitPassed)
				convey.So(out, convey.ShouldBeEmpty)
				data, err := os.ReadFile(target)
				convey.So(err, convey.ShouldBeNil)
				convey.So(decode(t, string(data))["passed"], convey.ShouldEqual, true)
			})
		})

		convey.Convey("When a metrics file is requested", func() {
			target := filepath.Join(t.TempDir(), "grader.prom")
			code, _, _ := execute("grade", path, "--metrics-file", target)

			convey.Convey("Then the textfile should be written", func() {
				convey.So(code, convey.ShouldEqual, exitPassed)
				_, err := os.Stat(target)
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a project with a hardcoded key", t, func() {
		path := sample(t, testprojects.ProfileLeaky)

		convey.Convey("When graded with early exit", func() {
			code, out, _ := execute("grade", path, "--json")

			convey.Convey("Then it should fail after security alone", func() {
				convey.So(code, convey.ShouldEqual, exitFailed)
				raw := decode(t, out)
				convey.So(raw["early_exit"], convey.ShouldEqual, true)
				convey.So(raw["results"], convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When early exit is disabled", func() {
			code, out, _ := execute("grade", path, "--json", "--no-early-exit", "--workers", "2")

			convey.Convey("Then every category should be graded and the total still counts", func() {
				convey.So(code, convey.ShouldEqual, exitPassed)
				raw := decode(t, out)
				convey.So(raw["early_exit"], convey.ShouldEqual, false)
				convey.So(raw["results"], convey.ShouldHaveLength, 7)
				convey.So(raw["total_score"], convey.ShouldEqual, 90.0)
			})
		})
	})

	convey.Convey("Given a weak project", t, func() {
		code, out, _ := execute("grade", sample(t, testprojects.ProfileWeak), "--json")

		convey.Convey("Then it should fail with an F", func() {
			convey.So(code, convey.ShouldEqual, exitFailed)
			raw := decode(t, out)
			convey.So(raw["grade"], convey.ShouldEqual, "F")
			convey.So(raw["total_score"], convey.ShouldEqual, 23.5)
		})
	})

	convey.Convey("Given invalid invocations", t, func() {
		convey.Convey("When the path is missing", func() {
			code, _, errOut := execute("grade")

			convey.So(code, convey.ShouldEqual, exitConfig)
			convey.So(errOut, convey.ShouldContainSubstring, "accepts 1 arg")
		})

		convey.Convey("When the worker count is zero", func() {
			code, _, errOut := execute("grade", t.TempDir(), "--workers", "0")

			convey.So(code, convey.ShouldEqual, exitConfig)
			convey.So(errOut, convey.ShouldContainSubstring, "max_workers")
		})

		convey.Convey("When the environment sets a bad mode", func() {
			t.Setenv("AUTOGRADER_MODE", "turbo")
			code, _, _ := execute("grade", t.TempDir())

			convey.So(code, convey.ShouldEqual, exitConfig)
		})
	})
}

func TestServeCommand(t *testing.T) {
	t.Setenv("AUTOGRADER_CONFIG", "")

	convey.Convey("Given the serve command on an ephemeral port", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(200 * time.Millisecond)
			cancel()
		}()
		var stdout, stderr bytes.Buffer
		code := run(ctx, []string{"serve", "--addr", "127.0.0.1:0"}, &stdout, &stderr)

		convey.Convey("Then it should shut down cleanly on cancel", func() {
			convey.So(code, convey.ShouldEqual, exitPassed)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "server stopped")
		})
	})

	convey.Convey("Given an unusable listen address", t, func() {
		code, _, errOut := execute("serve", "--addr", "256.0.0.1:99999")

		convey.So(code, convey.ShouldEqual, exitConfig)
		convey.So(errOut, convey.ShouldNotBeEmpty)
	})
}
