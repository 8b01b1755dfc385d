// Package cache memoizes filesystem and git scans for one grading run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/okian/autograder/internal/adapters/files"
	"github.com/okian/autograder/internal/adapters/gitrepo"
	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
	"github.com/okian/autograder/pkg/metrics"
)

// Key kinds, also used as metric labels.
const (
	KindCodeFiles   = "code_files"
	KindTestFiles   = "test_files"
	KindGitInfo     = "git_info"
	KindFileContent = "file_content"
	KindCustom      = "custom"
)

// DefaultMaxFileSize is the content read limit when none is configured.
const DefaultMaxFileSize = 2 << 20

// ComputeFunc produces the value for a missing key.
type ComputeFunc func(ctx context.Context) (any, error)

// ProjectCache holds computed values for a single project snapshot. Each
// key is computed at most once; failed computations are not stored so the
// next caller retries.
type ProjectCache struct {
	root string

	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group

	computations atomic.Int64

	finder      *files.Finder
	git         *gitrepo.Reader
	maxFileSize int64
}

var _ analysis.Cache = (*ProjectCache)(nil)

// New creates an empty cache for projectPath.
func New(projectPath string, opts ...Option) *ProjectCache {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		root = projectPath
	}
	c := &ProjectCache{
		root:        root,
		entries:     make(map[string]any),
		finder:      files.NewFinder(),
		git:         gitrepo.NewReader(),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Factory returns a constructor producing caches with the same options.
func Factory(opts ...Option) analysis.CacheFactory {
	return func(projectPath string) analysis.Cache {
		return New(projectPath, opts...)
	}
}

// GetOrCompute returns the value stored under key, computing it with fn on
// a miss. Concurrent callers for the same key share one computation. The
// computation ignores the cancellation of whichever caller started it; each
// caller stops waiting when its own context ends.
func (c *ProjectCache) GetOrCompute(ctx context.Context, key, kind string, fn ComputeFunc) (any, error) {
	if v, ok := c.lookup(key); ok {
		metrics.RecordCacheHit(kind)
		return v, nil
	}
	metrics.RecordCacheMiss(kind)

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that finished between lookup and Do has already stored
		// the value.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		c.computations.Add(1)
		metrics.RecordCacheComputation(kind)
		v, err := fn(flightCtx)
		if err != nil {
			metrics.RecordCacheError(kind)
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Has reports whether key is populated without computing it.
func (c *ProjectCache) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Clear drops every entry. In-flight computations still store their value.
func (c *ProjectCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]any)
	c.mu.Unlock()
}

// Stats describes the cache contents.
type Stats struct {
	ProjectPath  string   `json:"project_path"`
	CachedItems  int      `json:"cached_items"`
	Keys         []string `json:"cache_keys"`
	Computations int64    `json:"computations"`
}

// Stats returns a snapshot of the cache contents.
func (c *ProjectCache) Stats() Stats {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return Stats{
		ProjectPath:  c.root,
		CachedItems:  len(keys),
		Keys:         keys,
		Computations: c.computations.Load(),
	}
}

// CodeFiles lists files under the project with any of exts.
func (c *ProjectCache) CodeFiles(ctx context.Context, exts ...string) ([]string, error) {
	if len(exts) == 0 {
		exts = files.DefaultCodeExtensions
	}
	norm := append([]string(nil), exts...)
	sort.Strings(norm)
	key := KindCodeFiles + ":" + strings.Join(norm, ",")
	return getTyped(ctx, c, key, KindCodeFiles, func(ctx context.Context) ([]string, error) {
		return c.finder.CodeFiles(ctx, c.root, norm)
	})
}

// TestFiles lists test sources for language.
func (c *ProjectCache) TestFiles(ctx context.Context, language string) ([]string, error) {
	language = strings.ToLower(language)
	key := KindTestFiles + ":" + language
	return getTyped(ctx, c, key, KindTestFiles, func(ctx context.Context) ([]string, error) {
		return c.finder.TestFiles(ctx, c.root, language)
	})
}

// GitInfo returns the commit summary, or nil when the project is not a
// repository.
func (c *ProjectCache) GitInfo(ctx context.Context) (*model.GitInfo, error) {
	return getTyped(ctx, c, KindGitInfo, KindGitInfo, func(ctx context.Context) (*model.GitInfo, error) {
		info, err := c.git.Info(ctx, c.root)
		if errors.Is(err, gitrepo.ErrNotARepository) {
			return nil, nil
		}
		return info, err
	})
}

// FileContent returns the text of path. Invalid UTF-8 sequences are
// dropped.
func (c *ProjectCache) FileContent(ctx context.Context, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, path)
	}
	path = filepath.Clean(path)
	key := KindFileContent + ":" + path
	return getTyped(ctx, c, key, KindFileContent, func(context.Context) (string, error) {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if c.maxFileSize > 0 && info.Size() > c.maxFileSize {
			return "", fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.ToValidUTF8(string(data), ""), nil
	})
}

func (c *ProjectCache) lookup(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	return v, ok
}

func getTyped[T any](ctx context.Context, c *ProjectCache, key, kind string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrCompute(ctx, key, kind, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, key, v)
	}
	return typed, nil
}
