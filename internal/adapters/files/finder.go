// Package files walks project trees for the analyzers.
package files

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/src-d/enry/v2"
)

// DefaultIgnoreDirs are skipped during every walk.
var DefaultIgnoreDirs = []string{
	"node_modules",
	"venv",
	"env",
	".git",
	"__pycache__",
	"dist",
	"build",
	".pytest_cache",
	".mypy_cache",
	".tox",
	"htmlcov",
	".eggs",
	"*.egg-info",
	"temp",
	"tmp",
}

// DefaultCodeExtensions is used when no extension is given.
var DefaultCodeExtensions = []string{".py", ".js", ".ts"}

// Finder lists project files while skipping ignored trees.
type Finder struct {
	ignore []string
}

// NewFinder creates a Finder with the default ignore set.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{
		ignore: DefaultIgnoreDirs,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CodeFiles returns absolute, sorted paths of files under root whose name
// ends with one of exts.
func (f *Finder) CodeFiles(ctx context.Context, root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultCodeExtensions
	}
	abs, err := checkDir(root)
	if err != nil {
		return nil, err
	}

	var out []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, the root was already checked.
			if d != nil && d.IsDir() && path != abs {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != abs && f.skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if hasExt(d.Name(), exts) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// TestFiles returns the test sources for language under root.
func (f *Finder) TestFiles(ctx context.Context, root, language string) ([]string, error) {
	all, err := f.CodeFiles(ctx, root, TestExtensions(language))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, p := range all {
		if IsTestFile(filepath.Base(p)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// skipDir matches directory names only; vendored trees are walked too.
func (f *Finder) skipDir(name string) bool {
	for _, pattern := range f.ignore {
		if pattern == name {
			return true
		}
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// TestExtensions maps a language name to the extensions searched for tests.
func TestExtensions(language string) []string {
	switch strings.ToLower(language) {
	case "javascript", "typescript":
		return []string{".js", ".ts"}
	default:
		return []string{".py"}
	}
}

// IsTestFile reports whether a base name follows a test naming convention.
func IsTestFile(name string) bool {
	return strings.Contains(name, "test_") ||
		strings.Contains(name, "_test") ||
		strings.Contains(name, ".test.") ||
		strings.Contains(name, ".spec.")
}

// Language returns the linguist language for a path, or "" when unknown.
func Language(path string) string {
	lang, _ := enry.GetLanguageByExtension(filepath.Base(path))
	return lang
}

// CountLines counts lines the way a text editor does: a trailing newline
// does not open a new line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

func checkDir(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}
	return abs, nil
}

func hasExt(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
