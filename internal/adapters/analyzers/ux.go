package analyzers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

const readmeMaxScore = 4

var readmeKeywords = []struct{ keyword, description string }{
	{"installation", "Installation or Setup section"},
	{"usage", "Usage or Getting Started section"},
	{"example", "Examples section"},
}

// UXAnalyzer grades README usability and command-line help. It is
// reported but never added to the total.
type UXAnalyzer struct{}

// Category implements analysis.Analyzer.
func (*UXAnalyzer) Category() model.Category { return model.CategoryUX }

// Analyze implements analysis.Analyzer.
func (a *UXAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	root, err := projectRoot(projectPath)
	if err != nil {
		return model.PartialResult{}, err
	}

	readme, err := readOptional(ctx, cache, filepath.Join(root, "README.md"))
	if err != nil {
		return model.PartialResult{}, err
	}
	readmeDetail, readmeScore, md := readmeUsability(readme)

	cliDetail, cliScore, err := cliHelp(ctx, cache)
	if err != nil {
		return model.PartialResult{}, err
	}

	score := readmeScore + cliScore
	if md.HasCodeBlocks {
		score += 2
	}
	if len(md.Headings) >= 5 {
		score += 1
	}
	score = min(score, model.CategoryUX.MaxScore())

	message := "UX needs improvement: enhance documentation and help"
	switch {
	case readme == nil:
		message = "no README found"
	case score >= 8:
		message = "excellent user experience"
	case score >= 7:
		message = "good user experience"
	}

	return model.NewResult(model.CategoryUX, score, model.Detail{
		"readme_result": readmeDetail,
		"cli_result":    cliDetail,
		"message":       message,
	}), nil
}

func readmeUsability(readme *string) (model.Detail, float64, mdSummary) {
	if readme == nil {
		return model.Detail{
			"score":      0,
			"has_readme": false,
			"issues":     []string{"README.md not found"},
		}, 0, mdSummary{}
	}

	md := summarizeMarkdown(*readme)
	score := float64(readmeMaxScore)
	issues := []string{}
	for _, k := range readmeKeywords {
		if !anyHeadingContains(md.Headings, k.keyword) {
			score--
			issues = append(issues, "missing "+k.description)
		}
	}
	if !md.HasCodeBlocks {
		issues = append(issues, "no code examples found")
	}
	sections := md.Headings
	if sections == nil {
		sections = []string{}
	}
	return model.Detail{
		"score":             score,
		"has_readme":        true,
		"sections":          sections,
		"has_code_examples": md.HasCodeBlocks,
		"issues":            issues,
	}, score, md
}

func cliHelp(ctx context.Context, cache analysis.Cache) (model.Detail, float64, error) {
	paths, err := cache.CodeFiles(ctx, ".py")
	if err != nil {
		return nil, 0, err
	}
	var hasArgparse, hasHelp bool
	for _, p := range paths {
		if hasArgparse && hasHelp {
			break
		}
		src, err := cache.FileContent(ctx, p)
		if err != nil {
			continue
		}
		if strings.Contains(src, "argparse") || strings.Contains(src, "ArgumentParser") {
			hasArgparse = true
		}
		if strings.Contains(src, "--help") || strings.Contains(src, "add_help") {
			hasHelp = true
		}
	}

	var score float64
	if hasArgparse {
		score += 2
	}
	if hasHelp {
		score++
	}
	return model.Detail{
		"score":         score,
		"has_argparse":  hasArgparse,
		"has_help_flag": hasHelp,
	}, score, nil
}
