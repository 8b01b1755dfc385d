// Package queue holds analyzer tasks waiting for a worker.
//
// A grading run knows its task set up front, so the queue is filled,
// closed, and then drained by the worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/pkg/metrics"
)

const defaultCapacity = 16

// Task is one analyzer invocation against a project.
type Task struct {
	ID          string
	Analyzer    analysis.Analyzer
	ProjectPath string
	Cache       analysis.Cache
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It fails with ErrFull or ErrClosed instead of
	// blocking.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue returns the channel workers receive tasks from. It is closed
	// once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Task

	// Len returns the number of waiting tasks.
	Len(ctx context.Context) int

	// Close stops accepting tasks. Waiting tasks remain available.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)
	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueOperation("enqueue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueOperation("enqueue", "canceled")
		return err
	}

	select {
	case q.tasks <- t:
		metrics.RecordQueueOperation("enqueue", "ok")
		metrics.UpdateQueueDepth(len(q.tasks))
		return nil
	default:
		metrics.RecordQueueOperation("enqueue", "full")
		return ErrFull
	}
}

// Dequeue returns the task channel. Workers must select on their own
// context as well.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Task {
	return q.tasks
}

// Len returns the number of waiting tasks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	n := len(q.tasks)
	metrics.UpdateQueueDepth(n)
	return n
}

// Close stops accepting tasks.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// Drain removes and returns every waiting task. It is used after
// cancellation to account for tasks no worker picked up.
func (q *InMemoryQueue) Drain() []Task {
	var out []Task
	for {
		select {
		case t, ok := <-q.tasks:
			if !ok {
				metrics.UpdateQueueDepth(0)
				return out
			}
			out = append(out, t)
		default:
			metrics.UpdateQueueDepth(0)
			return out
		}
	}
}
