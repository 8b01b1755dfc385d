package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "autograder")
				So(manager.subsystem, ShouldEqual, "grader")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"course": "se101"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["course"], ShouldEqual, "se101")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording a passed run", func() {
			m.RecordRun("parallel", true, 80, 0.5)

			Convey("Then run counters and gauges should reflect it", func() {
				So(testutil.ToFloat64(m.runsTotal.WithLabelValues("parallel", "passed")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.lastScore), ShouldEqual, 80)
				So(testutil.ToFloat64(m.lastPassed), ShouldEqual, 1)
			})
		})

		Convey("When recording cache activity", func() {
			m.RecordCacheMiss("code_files")
			m.RecordCacheComputation("code_files")
			m.RecordCacheHit("code_files")
			m.RecordCacheHit("code_files")

			Convey("Then each counter should be labelled by kind", func() {
				So(testutil.ToFloat64(m.cacheHits.WithLabelValues("code_files")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.cacheMisses.WithLabelValues("code_files")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheComputations.WithLabelValues("code_files")), ShouldEqual, 1)
			})
		})

		Convey("When recording analyzer failures", func() {
			m.RecordAnalyzerFailure("git", "error")
			m.RecordEarlyExit()

			Convey("Then the failure counter should increase", func() {
				So(testutil.ToFloat64(m.analyzerFailures.WithLabelValues("git", "error")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.earlyExits), ShouldEqual, 1)
			})
		})

		Convey("When recording queue activity", func() {
			m.RecordQueueOperation("enqueue", "ok")
			m.RecordQueueOperation("enqueue", "closed")
			m.UpdateQueueDepth(3)

			Convey("Then the queue series should be updated", func() {
				So(testutil.ToFloat64(m.queueOperations.WithLabelValues("enqueue", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.queueDepth), ShouldEqual, 3)
			})
		})

		Convey("When recording HTTP requests", func() {
			m.RecordHTTPRequest("grade", "POST", "200", 0.2)
			m.RecordHTTPRequest("grade", "POST", "409", 0.001)
			m.UpdateGradingsInFlight(2)

			Convey("Then requests should be counted per status", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("grade", "POST", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("grade", "POST", "409")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.inFlight), ShouldEqual, 2)
			})
		})

		Convey("When metrics are disabled", func() {
			disabled := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			disabled.RecordEarlyExit()

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(disabled.earlyExits), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers should not panic", func() {
			So(func() {
				RecordRun("sequential", false, 42, 1.2)
				RecordEarlyExit()
				UpdateWorkerPoolSize(4)
				RecordAnalyzer("security", 0.01, 10)
				RecordAnalyzerFailure("ux", "timeout")
				RecordCacheHit("git_info")
				RecordCacheMiss("git_info")
				RecordCacheComputation("git_info")
				RecordCacheError("file_content")
				UpdateQueueDepth(0)
				RecordQueueOperation("dequeue", "ok")
				RecordHTTPRequest("healthz", "GET", "200", 0.001)
				UpdateGradingsInFlight(0)
			}, ShouldNotPanic)
		})

		Convey("When writing the textfile", func() {
			path := filepath.Join(t.TempDir(), "autograder.prom")
			err := WriteTextfile(path)

			Convey("Then the file should contain autograder series", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "autograder_grader_")
			})
		})

		Convey("When writing into a missing directory", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then the error should wrap ErrWriteFailed", func() {
				So(errors.Is(err, ErrWriteFailed), ShouldBeTrue)
			})
		})
	})
}
