// Package analysis defines the contract between the executors and the
// category analyzers.
package analysis

import (
	"context"

	"github.com/okian/autograder/internal/domain/model"
)

// Cache is the read-through view of the project that analyzers borrow for
// one grading run. Implementations must compute each key at most once.
type Cache interface {
	// CodeFiles lists source files with any of the given extensions.
	CodeFiles(ctx context.Context, exts ...string) ([]string, error)
	// TestFiles lists test sources for the given language.
	TestFiles(ctx context.Context, language string) ([]string, error)
	// GitInfo returns the commit summary, or nil when the project is not a
	// git repository.
	GitInfo(ctx context.Context) (*model.GitInfo, error)
	// FileContent returns the content of an absolute path.
	FileContent(ctx context.Context, path string) (string, error)
}

// Analyzer produces the partial result for one category.
type Analyzer interface {
	Category() model.Category
	Analyze(ctx context.Context, projectPath string, cache Cache) (model.PartialResult, error)
}

// AnalyzerFunc adapts a plain function to Analyzer.
type AnalyzerFunc struct {
	Cat model.Category
	Fn  func(ctx context.Context, projectPath string, cache Cache) (model.PartialResult, error)
}

// Category implements Analyzer.
func (f AnalyzerFunc) Category() model.Category { return f.Cat }

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, projectPath string, cache Cache) (model.PartialResult, error) {
	return f.Fn(ctx, projectPath, cache)
}

// CacheFactory builds a fresh cache for a project root.
type CacheFactory func(projectPath string) Cache
