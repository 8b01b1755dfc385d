package analysis

import "errors"

// Sentinel kinds for analyzer outcomes.
var (
	ErrAnalyzerFailed  = errors.New("analyzer failed")
	ErrAnalyzerTimeout = errors.New("analyzer timed out")
	ErrAnalyzerPanic   = errors.New("analyzer panicked")
	ErrNotScheduled    = errors.New("analyzer not scheduled")
)
