// Package testprojects writes synthetic student projects to disk for
// end-to-end grading runs.
package testprojects

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"

	"github.com/okian/autograder/pkg/logger"
)

// Generation defaults.
const (
	defaultAuthor = "Sample Student"
	defaultEmail  = "student@university.invalid"
	commitSpacing = time.Hour
	dirPermission = 0o755
	filePerm      = 0o644
	nameIDLength  = 8
)

var defaultStart = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// Generate writes a project for cfg.Profile under cfg.Dir and, when
// cfg.Git is set, records its history one commit per step.
func Generate(ctx context.Context, cfg Config) (*Project, error) {
	profile, err := ParseProfile(string(cfg.Profile))
	if err != nil {
		return nil, err
	}
	cfg = withDefaults(cfg)

	root := filepath.Join(cfg.Dir, cfg.Name)
	if _, err := os.Stat(root); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, root)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if err := os.MkdirAll(root, dirPermission); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	log := logger.Get().With(logger.String("profile", string(profile)), logger.String("path", root))
	log.Info(ctx, "generating project")

	var wt *git.Worktree
	if cfg.Git {
		repo, err := git.PlainInit(root, false)
		if err != nil {
			return nil, fmt.Errorf("init repository: %w", err)
		}
		if wt, err = repo.Worktree(); err != nil {
			return nil, fmt.Errorf("open worktree: %w", err)
		}
	}

	p := &Project{Path: root, Profile: profile}
	for i, s := range stepsFor(profile) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation canceled: %w", err)
		}
		for _, f := range s.files {
			if err := writeFile(root, f); err != nil {
				return nil, err
			}
			p.Files = append(p.Files, f.path)
		}
		if wt == nil {
			continue
		}
		if err := commitStep(wt, s, cfg, i); err != nil {
			return nil, err
		}
		p.Commits++
	}

	log.Info(ctx, "project generated", logger.Int("files", len(p.Files)), logger.Int("commits", p.Commits))
	return p, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.Name == "" {
		cfg.Name = "project-" + uuid.NewString()[:nameIDLength]
	}
	if cfg.Author == "" {
		cfg.Author = defaultAuthor
	}
	if cfg.Email == "" {
		cfg.Email = defaultEmail
	}
	if cfg.Start.IsZero() {
		cfg.Start = defaultStart
	}
	return cfg
}

func writeFile(root string, f file) error {
	path := filepath.Join(root, filepath.FromSlash(f.path))
	if err := os.MkdirAll(filepath.Dir(path), dirPermission); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.path, err)
	}
	if err := os.WriteFile(path, []byte(f.content), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

func commitStep(wt *git.Worktree, s step, cfg Config, index int) error {
	for _, f := range s.files {
		if _, err := wt.Add(f.path); err != nil {
			return fmt.Errorf("stage %s: %w", f.path, err)
		}
	}
	sig := &object.Signature{
		Name:  cfg.Author,
		Email: cfg.Email,
		When:  cfg.Start.Add(time.Duration(index) * commitSpacing),
	}
	if _, err := wt.Commit(s.message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("commit %q: %w", s.message, err)
	}
	return nil
}
