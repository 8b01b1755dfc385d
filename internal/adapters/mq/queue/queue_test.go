package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

func task(id string) Task {
	return Task{
		ID: id,
		Analyzer: analysis.AnalyzerFunc{Cat: model.CategoryGit, Fn: func(context.Context, string, analysis.Cache) (model.PartialResult, error) {
			return model.PartialResult{}, nil
		}},
		ProjectPath: "/tmp/project",
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, task("t1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "t1" {
		t.Errorf("expected t1, got %v", got.ID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	_ = q.Enqueue(ctx, task("t1"))
	_ = q.Enqueue(ctx, task("t2"))

	if err := q.Enqueue(ctx, task("t3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CloseDrainsRemaining(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, task(fmt.Sprintf("t%d", i))); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Enqueue(ctx, task("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	var ids []string
	for tk := range q.Dequeue(ctx) {
		ids = append(ids, tk.ID)
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 tasks after close, got %d", len(ids))
	}
}

func TestInMemoryQueue_Drain(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	_ = q.Enqueue(ctx, task("a"))
	_ = q.Enqueue(ctx, task("b"))

	if got := q.Drain(); len(got) != 2 {
		t.Errorf("expected 2 drained tasks, got %d", len(got))
	}
	if got := q.Drain(); len(got) != 0 {
		t.Errorf("expected empty drain, got %d", len(got))
	}
}

func TestInMemoryQueue_CanceledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, task("t1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentConsumers(t *testing.T) {
	const n = 12
	q := NewInMemoryQueue(WithCapacity(n))
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_ = q.Enqueue(ctx, task(fmt.Sprintf("t%d", i)))
	}
	_ = q.Close()

	var mu sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range q.Dequeue(ctx) {
				mu.Lock()
				seen[tk.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d distinct tasks, got %d", n, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("task %s consumed %d times", id, count)
		}
	}
}
