package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/autograder/internal/domain/model"
)

// Outcome is the typed result of running one analyzer: either a result or
// an error, never both.
type Outcome struct {
	Category model.Category
	Result   model.PartialResult
	Err      error
	Elapsed  time.Duration
}

// OK reports whether the analyzer produced a result.
func (o Outcome) OK() bool { return o.Err == nil }

// Partial converts the outcome into the result stored in the report. Errors
// become a zero score carrying the category max and the message.
func (o Outcome) Partial() model.PartialResult {
	if o.Err != nil {
		return model.FailedResult(o.Category, o.Err)
	}
	return o.Result
}

// Reason is a short label for metrics.
func (o Outcome) Reason() string {
	switch {
	case o.Err == nil:
		return "ok"
	case errors.Is(o.Err, ErrAnalyzerTimeout):
		return "timeout"
	case errors.Is(o.Err, ErrAnalyzerPanic):
		return "panic"
	case errors.Is(o.Err, ErrNotScheduled), errors.Is(o.Err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// Run invokes a with panic recovery and an optional deadline. A zero
// timeout means no deadline.
func Run(ctx context.Context, a Analyzer, projectPath string, cache Cache, timeout time.Duration) (out Outcome) {
	out.Category = a.Category()
	start := time.Now()
	defer func() {
		out.Elapsed = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("%w: %w", ErrNotScheduled, err)
		return out
	}

	if timeout <= 0 {
		out.Result, out.Err = invoke(ctx, a, projectPath, cache)
		return out
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		res model.PartialResult
		err error
	}
	done := make(chan reply, 1)
	go func() {
		res, err := invoke(tctx, a, projectPath, cache)
		done <- reply{res: res, err: err}
	}()

	select {
	case r := <-done:
		out.Result, out.Err = r.res, r.err
		if out.Err != nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
			out.Err = fmt.Errorf("%w after %s", ErrAnalyzerTimeout, timeout)
		}
	case <-tctx.Done():
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			out.Err = fmt.Errorf("%w after %s", ErrAnalyzerTimeout, timeout)
		} else {
			out.Err = tctx.Err()
		}
	}
	return out
}

func invoke(ctx context.Context, a Analyzer, projectPath string, cache Cache) (res model.PartialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAnalyzerPanic, r)
		}
	}()
	return a.Analyze(ctx, projectPath, cache)
}
