// Package gitrepo reads commit history with go-git.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/okian/autograder/internal/domain/model"
)

// DefaultLimit caps the number of commits read.
const DefaultLimit = 100

// Sentinel kinds for repository errors.
var (
	ErrNotARepository = errors.New("not a git repository")
)

// Reader opens repositories and summarizes their history.
type Reader struct {
	limit        int
	detectDotGit bool
}

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithLimit sets the maximum number of commits read from HEAD.
func WithLimit(limit int) Option {
	return func(r *Reader) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithDetectDotGit makes the reader look for a repository in parent
// directories, the way the git CLI does.
func WithDetectDotGit(enabled bool) Option {
	return func(r *Reader) {
		r.detectDotGit = enabled
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{limit: DefaultLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Info returns the newest commits reachable from HEAD. A repository
// without commits yields an empty, non-nil summary.
func (r *Reader) Info(ctx context.Context, dir string) (*model.GitInfo, error) {
	repo, err := r.open(dir)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return &model.GitInfo{Commits: []model.Commit{}}, nil
		}
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	commits := make([]model.Commit, 0, r.limit)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, model.Commit{
			Hash:    c.Hash.String(),
			Message: subject(c.Message),
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		if len(commits) >= r.limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	return &model.GitInfo{Commits: commits, CommitCount: len(commits)}, nil
}

func (r *Reader) open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: r.detectDotGit})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, dir)
		}
		return nil, err
	}
	return repo, nil
}

func subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
