package analyzers

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

// SecretFinding locates one hardcoded credential.
type SecretFinding struct {
	Kind string `json:"type"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// SecurityAnalyzer scans for hardcoded secrets and checks repository
// hygiene. Any secret is a critical failure.
type SecurityAnalyzer struct{}

// Category implements analysis.Analyzer.
func (*SecurityAnalyzer) Category() model.Category { return model.CategorySecurity }

// Analyze implements analysis.Analyzer.
func (a *SecurityAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	root, err := projectRoot(projectPath)
	if err != nil {
		return model.PartialResult{}, err
	}

	findings, skipped, err := scanSecrets(ctx, root, cache)
	if err != nil {
		return model.PartialResult{}, err
	}
	gitignore, err := readOptional(ctx, cache, filepath.Join(root, ".gitignore"))
	if err != nil {
		return model.PartialResult{}, err
	}

	missing := missingGitignorePatterns(gitignore)
	gitignoreValid := gitignore != nil && len(missing) == 0
	envProblems := envIssues(root, gitignore)
	envValid := len(envProblems) == 0

	score := model.CategorySecurity.MaxScore()
	switch {
	case len(findings) > 0:
		score = 0
	case !gitignoreValid:
		score -= 3
	case !envValid:
		score -= 2
	}

	result := model.NewResult(model.CategorySecurity, score, model.Detail{
		"secrets_found":    len(findings),
		"findings":         findings,
		"gitignore_exists": gitignore != nil,
		"gitignore_valid":  gitignoreValid,
		"missing_patterns": missing,
		"env_valid":        envValid,
		"env_issues":       envProblems,
		"unreadable_files": skipped,
	})
	result.IsCriticalFailure = len(findings) > 0
	return result, nil
}

func scanSecrets(ctx context.Context, root string, cache analysis.Cache) ([]SecretFinding, []string, error) {
	paths, err := cache.CodeFiles(ctx, secretScanExtensions...)
	if err != nil {
		return nil, nil, err
	}

	findings := []SecretFinding{}
	var skipped []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		slashed := filepath.ToSlash(p)
		if strings.HasSuffix(slashed, ".env.example") || strings.Contains(slashed, "/fixtures/") {
			continue
		}
		content, err := cache.FileContent(ctx, p)
		if err != nil {
			skipped = append(skipped, relPath(root, p))
			continue
		}
		findings = append(findings, scanContent(relPath(root, p), content)...)
	}
	return findings, skipped, nil
}

func scanContent(name, content string) []SecretFinding {
	var out []SecretFinding
	for i, line := range strings.Split(content, "\n") {
		for _, p := range secretPatterns {
			for _, m := range p.re.FindAllString(line, -1) {
				if isPlaceholder(m) {
					continue
				}
				out = append(out, SecretFinding{Kind: p.kind, File: name, Line: i + 1})
			}
		}
	}
	return out
}

func missingGitignorePatterns(gitignore *string) []string {
	if gitignore == nil {
		return append([]string(nil), requiredGitignorePatterns...)
	}
	missing := []string{}
	for _, p := range requiredGitignorePatterns {
		if !strings.Contains(*gitignore, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

func envIssues(root string, gitignore *string) []string {
	issues := []string{}
	if !fileExists(filepath.Join(root, ".env.example")) {
		issues = append(issues, "missing .env.example template")
	}
	ignored := gitignore != nil && strings.Contains(*gitignore, ".env")
	if fileExists(filepath.Join(root, ".env")) && !ignored {
		issues = append(issues, ".env exists but is not in .gitignore")
	}
	return issues
}

// readOptional returns nil when path does not exist.
func readOptional(ctx context.Context, cache analysis.Cache, path string) (*string, error) {
	content, err := cache.FileContent(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}
