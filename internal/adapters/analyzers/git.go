package analyzers

import (
	"context"
	"fmt"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

const (
	shortMessageRunes = 10
	maxShortRatio     = 0.2
	maxVagueRatio     = 0.3
	displayedCommits  = 10
)

// GitAnalyzer grades commit history volume and message quality.
type GitAnalyzer struct {
	MinCommits int
}

// Category implements analysis.Analyzer.
func (*GitAnalyzer) Category() model.Category { return model.CategoryGit }

// Analyze implements analysis.Analyzer.
func (a *GitAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	if _, err := projectRoot(projectPath); err != nil {
		return model.PartialResult{}, err
	}
	info, err := cache.GitInfo(ctx)
	if err != nil {
		return model.PartialResult{}, err
	}
	if info == nil {
		return model.NewResult(model.CategoryGit, 0, model.Detail{
			"is_git_repo": false,
			"message":     "not a git repository",
		}), nil
	}
	total := len(info.Commits)
	if total == 0 {
		return model.NewResult(model.CategoryGit, 0, model.Detail{
			"is_git_repo":  true,
			"commit_count": 0,
			"message":      "no commits found",
		}), nil
	}

	var short, vague int
	for _, c := range info.Commits {
		if c.MessageLength() < shortMessageRunes {
			short++
		}
		if !c.IsMeaningful() {
			vague++
		}
	}

	score := model.CategoryGit.MaxScore()
	message := fmt.Sprintf("good git workflow with %d commits", total)
	switch {
	case total < a.MinCommits:
		score -= 5
		message = fmt.Sprintf("only %d commits (minimum: %d)", total, a.MinCommits)
	case float64(short) > float64(total)*maxShortRatio:
		score -= 2
		message = fmt.Sprintf("%d commits have short messages (< %d chars)", short, shortMessageRunes)
	case float64(vague) > float64(total)*maxVagueRatio:
		score -= 2
		message = fmt.Sprintf("%d commits have vague messages", vague)
	}

	shown := info.Commits
	if len(shown) > displayedCommits {
		shown = shown[:displayedCommits]
	}
	return model.NewResult(model.CategoryGit, score, model.Detail{
		"is_git_repo":    true,
		"commit_count":   total,
		"short_messages": short,
		"vague_messages": vague,
		"commits":        shown,
		"message":        message,
	}), nil
}
