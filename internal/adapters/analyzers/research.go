package analyzers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

var (
	researchDocNames    = []string{"research.md", "experiments.md", "analysis.md", "methodology.md"}
	parameterFileNames  = []string{"experiments.yaml", "parameters.yaml", "config.yaml"}
	analysisScriptHints = []string{"analyze", "experiment", "eval"}
)

// ResearchAnalyzer looks for evidence of systematic experimentation.
type ResearchAnalyzer struct{}

// Category implements analysis.Analyzer.
func (*ResearchAnalyzer) Category() model.Category { return model.CategoryResearch }

// Analyze implements analysis.Analyzer.
func (a *ResearchAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	root, err := projectRoot(projectPath)
	if err != nil {
		return model.PartialResult{}, err
	}

	docs, err := filesNamed(ctx, cache, ".md", researchDocNames)
	if err != nil {
		return model.PartialResult{}, err
	}
	params, err := filesNamed(ctx, cache, ".yaml", parameterFileNames)
	if err != nil {
		return model.PartialResult{}, err
	}
	scripts, err := filesNamed(ctx, cache, ".py", analysisScriptHints)
	if err != nil {
		return model.PartialResult{}, err
	}

	var score float64
	var found []string
	if len(docs) > 0 {
		score += 4
		found = append(found, fmt.Sprintf("%d research doc(s)", len(docs)))
	}
	if len(params) > 0 {
		score += 3
		found = append(found, fmt.Sprintf("%d parameter file(s)", len(params)))
	}
	if len(scripts) > 0 {
		score += 3
		found = append(found, fmt.Sprintf("%d analysis script(s)", len(scripts)))
	}
	message := "no research artifacts found"
	if len(found) > 0 {
		message = "found: " + strings.Join(found, ", ")
	}

	return model.NewResult(model.CategoryResearch, score, model.Detail{
		"has_research":     score > 0,
		"research_docs":    relPaths(root, docs),
		"param_files":      relPaths(root, params),
		"analysis_scripts": relPaths(root, scripts),
		"message":          message,
	}), nil
}

// filesNamed returns files with ext whose lowercased base name contains
// one of hints.
func filesNamed(ctx context.Context, cache analysis.Cache, ext string, hints []string) ([]string, error) {
	paths, err := cache.CodeFiles(ctx, ext)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range paths {
		base := strings.ToLower(filepath.Base(p))
		for _, h := range hints {
			if strings.Contains(base, h) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}
