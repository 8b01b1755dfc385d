// Package worker runs analyzer tasks from the queue on a bounded pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/autograder/internal/adapters/mq/queue"
	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/pkg/logger"
	"github.com/okian/autograder/pkg/metrics"
)

// Sentinel kinds for pool errors.
var (
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")
)

// Recorder stores analyzer outcomes.
type Recorder interface {
	Record(ctx context.Context, o analysis.Outcome) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker processes tasks and records their outcomes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is
	// drained.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current task.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	recorder Recorder
	name     string
	timeout  time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		// Cancellation wins over waiting tasks.
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "error recording analyzer outcome", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, t queue.Task) error {
	category := t.Analyzer.Category()
	w.logger.Debug(ctx, "analyzer started",
		logger.String("task", t.ID),
		logger.String("category", category.String()),
	)

	out := analysis.Run(ctx, t.Analyzer, t.ProjectPath, t.Cache, w.timeout)

	if out.OK() {
		w.logger.Info(ctx, "analyzer finished",
			logger.String("category", category.String()),
			logger.Float64("score", out.Result.Score),
			logger.Float64("max_score", out.Result.MaxScore),
			logger.Bool("passed", out.Result.Passed),
			logger.Duration("elapsed", out.Elapsed),
		)
	} else {
		w.logger.Warn(ctx, "analyzer failed",
			logger.String("category", category.String()),
			logger.String("reason", out.Reason()),
			logger.Error(out.Err),
		)
	}

	if err := w.recorder.Record(ctx, out); err != nil {
		return fmt.Errorf("record %s: %w", category, err)
	}
	return nil
}

// Pool manages a fixed number of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. Options are applied to
// every worker.
func NewPool(workerCount int, q Queue, recorder Recorder, opts ...Option) (*Pool, error) {
	if workerCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, workerCount)
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, recorder, workerOpts...)
	}

	metrics.UpdateWorkerPoolSize(workerCount)

	return pool, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	for _, w := range p.workers {
		<-w.Done()
	}
}

// Shutdown closes the queue and waits for the workers to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
