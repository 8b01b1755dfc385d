// Package analyzers implements the seven category checks run by the
// executors. Every analyzer reads the project through the shared cache.
package analyzers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/autograder/internal/adapters/files"
	"github.com/okian/autograder/internal/domain/analysis"
)

// DocumentRequirement describes one required project document.
type DocumentRequirement struct {
	Name             string   `koanf:"name" json:"name"`
	RequiredSections []string `koanf:"required_sections" json:"required_sections"`
	MinWords         int      `koanf:"min_words" json:"min_words"`
}

// Settings are the tunables shared by the analyzer set.
type Settings struct {
	FileSizeLimit        int
	MinDocstringCoverage float64
	MinCommits           int
	TestLanguage         string
	RequiredDocuments    []DocumentRequirement
}

// DefaultDocuments is the standard academic document set.
func DefaultDocuments() []DocumentRequirement {
	return []DocumentRequirement{
		{Name: "README.md", RequiredSections: []string{"Installation", "Usage"}, MinWords: 200},
		{Name: "PRD.md", RequiredSections: []string{"Project Overview", "Objectives", "Functional Requirements"}, MinWords: 1000},
		{Name: "PLANNING.md", RequiredSections: []string{"Architecture", "Technical Decisions"}, MinWords: 800},
		{Name: "TASKS.md", RequiredSections: []string{"Task Breakdown"}, MinWords: 300},
		{Name: "CLAUDE.md", RequiredSections: []string{"AI Tool Usage", "Prompt Documentation"}, MinWords: 500},
	}
}

// DefaultSettings returns the standard grading thresholds.
func DefaultSettings() Settings {
	return Settings{
		FileSizeLimit:        150,
		MinDocstringCoverage: 0.9,
		MinCommits:           10,
		TestLanguage:         "python",
		RequiredDocuments:    DefaultDocuments(),
	}
}

// Security returns the security analyzer alone. Executors run it before
// the rest of the set.
func Security() analysis.Analyzer {
	return &SecurityAnalyzer{}
}

// Others returns the analyzers that run after security, in sequential
// order.
func Others(s Settings) []analysis.Analyzer {
	docs := s.RequiredDocuments
	if docs == nil {
		docs = DefaultDocuments()
	}
	return []analysis.Analyzer{
		&CodeQualityAnalyzer{FileSizeLimit: s.FileSizeLimit, MinDocstringCoverage: s.MinDocstringCoverage},
		&DocumentationAnalyzer{Documents: docs},
		&TestingAnalyzer{Language: s.TestLanguage},
		&GitAnalyzer{MinCommits: s.MinCommits},
		&ResearchAnalyzer{},
		&UXAnalyzer{},
	}
}

// All returns the full set in sequential order.
func All(s Settings) []analysis.Analyzer {
	return append([]analysis.Analyzer{Security()}, Others(s)...)
}

// projectRoot resolves projectPath to an absolute directory.
func projectRoot(projectPath string) (string, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", files.ErrNotADirectory, projectPath)
	}
	return root, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func relPaths(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = relPath(root, p)
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
