package cache

import (
	"github.com/okian/autograder/internal/adapters/files"
	"github.com/okian/autograder/internal/adapters/gitrepo"
)

// Option applies a configuration option to the ProjectCache.
type Option func(*ProjectCache)

// WithFinder sets the file finder used for listings.
func WithFinder(f *files.Finder) Option {
	return func(c *ProjectCache) {
		if f != nil {
			c.finder = f
		}
	}
}

// WithGitReader sets the reader used for commit history.
func WithGitReader(r *gitrepo.Reader) Option {
	return func(c *ProjectCache) {
		if r != nil {
			c.git = r
		}
	}
}

// WithMaxFileSize caps file content reads in bytes. Zero or negative
// disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(c *ProjectCache) {
		c.maxFileSize = n
	}
}
