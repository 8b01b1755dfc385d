// Package service runs the analyzer set over a project and aggregates the
// grade report, either one analyzer at a time or on a bounded worker pool.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/autograder/internal/adapters/analyzers"
	"github.com/okian/autograder/internal/adapters/cache"
	"github.com/okian/autograder/internal/adapters/mq/queue"
	"github.com/okian/autograder/internal/adapters/mq/worker"
	"github.com/okian/autograder/internal/adapters/repository"
	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
	"github.com/okian/autograder/internal/domain/scoring"
	"github.com/okian/autograder/pkg/logger"
	"github.com/okian/autograder/pkg/metrics"
)

// Mode selects the executor.
type Mode string

// Execution modes.
const (
	ModeParallel   Mode = "parallel"
	ModeSequential Mode = "sequential"
)

// DefaultMaxWorkers is the parallel pool size when none is configured.
const DefaultMaxWorkers = 4

// poolShutdownTimeout bounds how long a canceled run waits for busy workers.
const poolShutdownTimeout = 5 * time.Second

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeParallel, "":
		return ModeParallel, nil
	case ModeSequential:
		return ModeSequential, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Service grades projects. It holds no per-run state and is safe to reuse.
type Service struct {
	security     analysis.Analyzer
	others       []analysis.Analyzer
	cacheFactory analysis.CacheFactory

	maxWorkers int
	earlyExit  bool
	timeout    time.Duration

	logger logger.Logger
}

// New constructs a Service with the default analyzer set.
func New(opts ...Option) *Service {
	settings := analyzers.DefaultSettings()
	s := &Service{
		security:     analyzers.Security(),
		others:       analyzers.Others(settings),
		cacheFactory: cache.Factory(),
		maxWorkers:   DefaultMaxWorkers,
		earlyExit:    true,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("executor")
	}
	return s
}

// Validate reports configuration that must stop a run before any analyzer
// starts.
func (s *Service) Validate() error {
	if s.maxWorkers < 1 {
		return fmt.Errorf("%w: max_workers must be at least 1, got %d", ErrInvalidConfig, s.maxWorkers)
	}
	return s.validateTimeout()
}

func (s *Service) validateTimeout() error {
	if s.timeout < 0 {
		return fmt.Errorf("%w: negative analyzer timeout %s", ErrInvalidConfig, s.timeout)
	}
	return nil
}

// Run grades projectPath with the executor selected by mode.
func (s *Service) Run(ctx context.Context, projectPath string, mode Mode) (model.GradeReport, error) {
	switch mode {
	case ModeParallel:
		return s.RunParallel(ctx, projectPath)
	case ModeSequential:
		return s.RunSequential(ctx, projectPath)
	default:
		return model.GradeReport{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// RunSequential runs every analyzer in order on the calling goroutine. Each
// analyzer gets its own cache, so the run rescans the project per category.
func (s *Service) RunSequential(ctx context.Context, projectPath string) (model.GradeReport, error) {
	if err := s.validateTimeout(); err != nil {
		return model.GradeReport{}, err
	}

	start := time.Now()
	_, log := s.runLogger(ModeSequential, projectPath)
	log.Info(ctx, "grading started")

	store := repository.NewMemoryStore()
	for _, a := range s.all() {
		out := analysis.Run(ctx, a, projectPath, s.cacheFactory(projectPath), s.timeout)
		s.logOutcome(ctx, log, out)
		if err := store.Record(ctx, out); err != nil {
			log.Error(ctx, "error recording analyzer outcome", logger.Error(err))
		}
	}

	report := scoring.Aggregate(store.Results(ctx))
	s.finish(ctx, log, ModeSequential, report, time.Since(start))
	return report, nil
}

// RunParallel runs security first, then fans the remaining analyzers out
// to the worker pool over one shared cache. A critical security failure
// ends the run early when early exit is enabled.
func (s *Service) RunParallel(ctx context.Context, projectPath string) (model.GradeReport, error) {
	if err := s.Validate(); err != nil {
		return model.GradeReport{}, err
	}

	start := time.Now()
	runID, log := s.runLogger(ModeParallel, projectPath)
	log.Info(ctx, "grading started",
		logger.Int("max_workers", s.maxWorkers),
		logger.Bool("early_exit_enabled", s.earlyExit),
	)

	shared := s.cacheFactory(projectPath)
	store := repository.NewMemoryStore()

	// Phase 1.
	sec := analysis.Run(ctx, s.security, projectPath, shared, s.timeout)
	s.logOutcome(ctx, log, sec)
	if err := store.Record(ctx, sec); err != nil {
		log.Error(ctx, "error recording analyzer outcome", logger.Error(err))
	}
	if s.earlyExit && sec.OK() && sec.Result.IsCriticalFailure {
		log.Warn(ctx, "critical security failure, skipping remaining analyzers")
		metrics.RecordEarlyExit()
		report := scoring.Aggregate(store.Results(ctx))
		elapsed := time.Since(start)
		report.SetExecution(elapsed, true)
		s.finish(ctx, log, ModeParallel, report, elapsed)
		return report, nil
	}

	// Phase 2.
	if len(s.others) > 0 {
		s.fanOut(ctx, log, runID, projectPath, shared, store)
	}
	if pc, ok := shared.(*cache.ProjectCache); ok {
		st := pc.Stats()
		log.Debug(ctx, "shared cache stats",
			logger.Int("cached_items", st.CachedItems),
			logger.Any("computations", st.Computations),
		)
	}

	report := scoring.Aggregate(store.Results(ctx))
	elapsed := time.Since(start)
	report.SetExecution(elapsed, false)
	s.finish(ctx, log, ModeParallel, report, elapsed)
	return report, nil
}

func (s *Service) fanOut(ctx context.Context, log logger.Logger, runID, projectPath string, shared analysis.Cache, store *repository.MemoryStore) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(s.others)))
	for i, a := range s.others {
		t := queue.Task{
			ID:          fmt.Sprintf("%s/%d", runID, i),
			Analyzer:    a,
			ProjectPath: projectPath,
			Cache:       shared,
		}
		if err := q.Enqueue(ctx, t); err != nil {
			log.Warn(ctx, "analyzer not scheduled",
				logger.String("category", a.Category().String()),
				logger.Error(err),
			)
			s.recordUnscheduled(ctx, log, store, a.Category(), err)
		}
	}
	_ = q.Close()
	log.Debug(ctx, "analyzers queued", logger.Int("depth", q.Len(ctx)))

	pool, err := worker.NewPool(min(s.maxWorkers, len(s.others)), q, store,
		worker.WithLogger(log),
		worker.WithAnalyzerTimeout(s.timeout),
	)
	if err != nil {
		// Validate already rejected this.
		log.Error(ctx, "error creating worker pool", logger.Error(err))
		return
	}
	pool.Start(ctx)
	stop := context.AfterFunc(ctx, func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), poolShutdownTimeout)
		defer cancel()
		if err := pool.Shutdown(sctx); err != nil {
			log.Warn(sctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	})
	pool.Wait()
	stop()

	for _, t := range q.Drain() {
		s.recordUnscheduled(ctx, log, store, t.Analyzer.Category(), ctx.Err())
	}
	for _, a := range s.others {
		if !store.Has(a.Category()) {
			s.recordUnscheduled(ctx, log, store, a.Category(), ctx.Err())
		}
	}
}

func (s *Service) recordUnscheduled(ctx context.Context, log logger.Logger, store *repository.MemoryStore, c model.Category, cause error) {
	err := analysis.ErrNotScheduled
	if cause != nil {
		err = fmt.Errorf("%w: %w", analysis.ErrNotScheduled, cause)
	}
	if recErr := store.Record(ctx, analysis.Outcome{Category: c, Err: err}); recErr != nil {
		log.Error(ctx, "error recording analyzer outcome", logger.Error(recErr))
	}
}

func (s *Service) all() []analysis.Analyzer {
	return append([]analysis.Analyzer{s.security}, s.others...)
}

func (s *Service) runLogger(mode Mode, projectPath string) (string, logger.Logger) {
	runID := uuid.NewString()
	return runID, s.logger.With(
		logger.String("run_id", runID),
		logger.String("mode", string(mode)),
		logger.String("project", projectPath),
	)
}

func (s *Service) logOutcome(ctx context.Context, log logger.Logger, out analysis.Outcome) {
	if out.OK() {
		log.Info(ctx, "analyzer finished",
			logger.String("category", out.Category.String()),
			logger.Float64("score", out.Result.Score),
			logger.Float64("max_score", out.Result.MaxScore),
			logger.Bool("passed", out.Result.Passed),
			logger.Duration("elapsed", out.Elapsed),
		)
		return
	}
	log.Warn(ctx, "analyzer failed",
		logger.String("category", out.Category.String()),
		logger.String("reason", out.Reason()),
		logger.Error(out.Err),
	)
}

func (s *Service) finish(ctx context.Context, log logger.Logger, mode Mode, report model.GradeReport, elapsed time.Duration) {
	metrics.RecordRun(string(mode), report.Passed, report.TotalScore, elapsed.Seconds())
	log.Info(ctx, "grading finished",
		logger.Float64("total_score", report.TotalScore),
		logger.String("grade", string(report.Grade)),
		logger.Bool("passed", report.Passed),
		logger.Bool("early_exit", report.WasEarlyExit()),
		logger.Duration("elapsed", elapsed),
	)
}
