package analyzers

import (
	"context"
	"fmt"
	"regexp"

	"github.com/okian/autograder/internal/adapters/files"
	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

var (
	testFuncRe  = regexp.MustCompile(`(?m)^\s*def\s+(test_\w+)\s*\(`)
	assertionRe = regexp.MustCompile(`\bassert\b`)
)

const minRecommendedTests = 5

// TestFileReport counts tests and assertions in one file.
type TestFileReport struct {
	File       string `json:"file_path"`
	Tests      int    `json:"num_tests"`
	Assertions int    `json:"num_assertions"`
	Lines      int    `json:"lines"`
}

// TestingAnalyzer counts test functions and assertions in the project's
// test files.
type TestingAnalyzer struct {
	Language string
}

// Category implements analysis.Analyzer.
func (*TestingAnalyzer) Category() model.Category { return model.CategoryTesting }

// Analyze implements analysis.Analyzer.
func (a *TestingAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	root, err := projectRoot(projectPath)
	if err != nil {
		return model.PartialResult{}, err
	}
	paths, err := cache.TestFiles(ctx, a.Language)
	if err != nil {
		return model.PartialResult{}, err
	}

	reports := []TestFileReport{}
	var tests, assertions int
	for _, p := range paths {
		src, err := cache.FileContent(ctx, p)
		if err != nil {
			continue
		}
		r := TestFileReport{
			File:       relPath(root, p),
			Tests:      len(testFuncRe.FindAllStringIndex(src, -1)),
			Assertions: len(assertionRe.FindAllStringIndex(src, -1)),
			Lines:      files.CountLines(src),
		}
		tests += r.Tests
		assertions += r.Assertions
		reports = append(reports, r)
	}

	score, message := testScore(len(paths), tests, assertions)
	return model.NewResult(model.CategoryTesting, score, model.Detail{
		"test_files_found": len(paths),
		"total_tests":      tests,
		"total_assertions": assertions,
		"has_tests":        tests > 0,
		"file_results":     reports,
		"message":          message,
	}), nil
}

func testScore(fileCount, tests, assertions int) (float64, string) {
	score := model.CategoryTesting.MaxScore()
	switch {
	case fileCount == 0:
		return 0, "no test files found"
	case tests == 0:
		return 0, "no tests found in test files"
	case tests < minRecommendedTests:
		score -= 5
		return score, fmt.Sprintf("only %d tests found (minimum %d recommended)", tests, minRecommendedTests)
	case assertions < tests:
		score -= 3
		return score, fmt.Sprintf("low assertion count (%d assertions for %d tests)", assertions, tests)
	}
	return score, fmt.Sprintf("found %d tests with %d assertions", tests, assertions)
}
