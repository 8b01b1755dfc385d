package analyzers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

// DocumentIssue is one problem found in a required document.
type DocumentIssue struct {
	Document string `json:"doc_name"`
	Kind     string `json:"issue_type"`
	Details  string `json:"details"`
	Severity string `json:"severity"`
}

// DocumentReport is the per-document outcome.
type DocumentReport struct {
	Exists        bool            `json:"exists"`
	Passed        bool            `json:"passed"`
	WordCount     int             `json:"word_count"`
	SectionsFound []string        `json:"sections_found"`
	Issues        []DocumentIssue `json:"issues"`
}

// DocumentationAnalyzer checks the required project documents for
// presence, sections and length.
type DocumentationAnalyzer struct {
	Documents []DocumentRequirement
}

// Category implements analysis.Analyzer.
func (*DocumentationAnalyzer) Category() model.Category { return model.CategoryDocumentation }

// Analyze implements analysis.Analyzer.
func (a *DocumentationAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	root, err := projectRoot(projectPath)
	if err != nil {
		return model.PartialResult{}, err
	}

	reports := make(map[string]DocumentReport, len(a.Documents))
	var missing, incomplete, passed int
	for _, req := range a.Documents {
		content, err := readOptional(ctx, cache, filepath.Join(root, req.Name))
		if err != nil {
			return model.PartialResult{}, err
		}
		r := validateDocument(req, content)
		reports[req.Name] = r
		switch {
		case !r.Exists:
			missing++
		case !r.Passed:
			incomplete++
		default:
			passed++
		}
	}

	score := model.CategoryDocumentation.MaxScore()
	score -= float64(missing) * 10
	score -= float64(incomplete) * 5

	return model.NewResult(model.CategoryDocumentation, score, model.Detail{
		"total_docs":      len(a.Documents),
		"docs_passed":     passed,
		"docs_missing":    missing,
		"docs_incomplete": incomplete,
		"results":         reports,
	}), nil
}

func validateDocument(req DocumentRequirement, content *string) DocumentReport {
	if content == nil {
		return DocumentReport{
			SectionsFound: []string{},
			Issues: []DocumentIssue{{
				Document: req.Name,
				Kind:     "missing",
				Details:  "file not found: " + req.Name,
				Severity: "critical",
			}},
		}
	}

	md := summarizeMarkdown(*content)
	issues := []DocumentIssue{}
	if md.Words < req.MinWords {
		issues = append(issues, DocumentIssue{
			Document: req.Name,
			Kind:     "too_short",
			Details:  fmt.Sprintf("only %d words (minimum: %d)", md.Words, req.MinWords),
			Severity: "major",
		})
	}
	for _, section := range req.RequiredSections {
		if !anyHeadingContains(md.Headings, section) {
			issues = append(issues, DocumentIssue{
				Document: req.Name,
				Kind:     "missing_section",
				Details:  "missing required section: " + section,
				Severity: "major",
			})
		}
	}

	sections := md.Headings
	if sections == nil {
		sections = []string{}
	}
	return DocumentReport{
		Exists:        true,
		Passed:        len(issues) == 0,
		WordCount:     md.Words,
		SectionsFound: sections,
		Issues:        issues,
	}
}
