package analyzers

import (
	"context"
	"fmt"

	"github.com/okian/autograder/internal/adapters/files"
	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
)

// SizeViolation is a code file above the line limit.
type SizeViolation struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Lines    int    `json:"lines"`
	Limit    int    `json:"limit"`
	Excess   int    `json:"excess"`
}

// DocstringViolation is an item with no docstring.
type DocstringViolation struct {
	File string `json:"file"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

// NamingViolation is a name that breaks the Python conventions.
type NamingViolation struct {
	File     string `json:"file"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Line     int    `json:"line"`
	Expected string `json:"expected"`
}

// CodeQualityAnalyzer enforces file size limits, docstring coverage and
// naming conventions.
type CodeQualityAnalyzer struct {
	FileSizeLimit        int
	MinDocstringCoverage float64
}

// Category implements analysis.Analyzer.
func (*CodeQualityAnalyzer) Category() model.Category { return model.CategoryCodeQuality }

// Analyze implements analysis.Analyzer.
func (a *CodeQualityAnalyzer) Analyze(ctx context.Context, projectPath string, cache analysis.Cache) (model.PartialResult, error) {
	root, err := projectRoot(projectPath)
	if err != nil {
		return model.PartialResult{}, err
	}
	limit := a.FileSizeLimit
	if limit <= 0 {
		limit = DefaultSettings().FileSizeLimit
	}

	sizes, err := a.sizeViolations(ctx, root, cache, limit)
	if err != nil {
		return model.PartialResult{}, err
	}

	pyFiles, err := cache.CodeFiles(ctx, ".py")
	if err != nil {
		return model.PartialResult{}, err
	}
	var (
		items    int
		docs     = []DocstringViolation{}
		naming   = []NamingViolation{}
		unparsed []string
	)
	for _, p := range pyFiles {
		if err := ctx.Err(); err != nil {
			return model.PartialResult{}, err
		}
		src, err := cache.FileContent(ctx, p)
		if err != nil {
			unparsed = append(unparsed, relPath(root, p))
			continue
		}
		rel := relPath(root, p)
		outline := parsePythonOutline(src)
		n, missing := docstringViolations(rel, outline)
		items += n
		docs = append(docs, missing...)
		naming = append(naming, namingViolations(rel, outline)...)
	}

	coverage := 0.0
	if items > 0 {
		coverage = 1 - float64(len(docs))/float64(items)
	}
	docsPassed := coverage >= a.MinDocstringCoverage

	score := model.CategoryCodeQuality.MaxScore()
	score -= float64(len(sizes)) * 5
	if !docsPassed {
		score -= (a.MinDocstringCoverage - coverage) * 20
	}
	score -= float64(len(naming)) * 0.5

	return model.NewResult(model.CategoryCodeQuality, score, model.Detail{
		"file_size": model.Detail{
			"violations": sizes,
			"passed":     len(sizes) == 0,
			"limit":      limit,
		},
		"docstrings": model.Detail{
			"total_files": len(pyFiles),
			"total_items": items,
			"coverage":    coverage,
			"passed":      docsPassed,
			"missing":     docs,
		},
		"naming": model.Detail{
			"violations": naming,
			"passed":     len(naming) == 0,
		},
		"unreadable_files": unparsed,
	}), nil
}

func (a *CodeQualityAnalyzer) sizeViolations(ctx context.Context, root string, cache analysis.Cache, limit int) ([]SizeViolation, error) {
	paths, err := cache.CodeFiles(ctx, files.DefaultCodeExtensions...)
	if err != nil {
		return nil, err
	}
	out := []SizeViolation{}
	for _, p := range paths {
		src, err := cache.FileContent(ctx, p)
		if err != nil {
			continue
		}
		if n := files.CountLines(src); n > limit {
			out = append(out, SizeViolation{
				File:     relPath(root, p),
				Language: files.Language(p),
				Lines:    n,
				Limit:    limit,
				Excess:   n - limit,
			})
		}
	}
	return out, nil
}

// docstringViolations counts the module, public functions, classes and
// public methods. __init__ is always checked.
func docstringViolations(file string, o pyOutline) (int, []DocstringViolation) {
	items := 1
	var out []DocstringViolation
	if !o.ModuleDocstring {
		out = append(out, DocstringViolation{File: file, Kind: "module", Name: "<module>", Line: 1})
	}
	for _, f := range o.Functions {
		if !checkFunctionDoc(f.Name) {
			continue
		}
		items++
		if !f.HasDocstring {
			out = append(out, DocstringViolation{File: file, Kind: "function", Name: f.Name, Line: f.Line})
		}
	}
	for _, c := range o.Classes {
		items++
		if !c.HasDocstring {
			out = append(out, DocstringViolation{File: file, Kind: "class", Name: c.Name, Line: c.Line})
		}
		for _, m := range c.Methods {
			if !checkMethodDoc(m.Name) {
				continue
			}
			items++
			if !m.HasDocstring {
				out = append(out, DocstringViolation{File: file, Kind: "method", Name: fmt.Sprintf("%s.%s", c.Name, m.Name), Line: m.Line})
			}
		}
	}
	return items, out
}

func namingViolations(file string, o pyOutline) []NamingViolation {
	var out []NamingViolation
	for _, f := range o.Functions {
		if !isDunder(f.Name) && !snakeCaseRe.MatchString(f.Name) {
			out = append(out, NamingViolation{File: file, Kind: "function", Name: f.Name, Line: f.Line, Expected: "snake_case"})
		}
	}
	for _, c := range o.Classes {
		if !pascalCaseRe.MatchString(c.Name) {
			out = append(out, NamingViolation{File: file, Kind: "class", Name: c.Name, Line: c.Line, Expected: "PascalCase"})
		}
		for _, m := range c.Methods {
			if !isDunder(m.Name) && !snakeCaseRe.MatchString(m.Name) {
				out = append(out, NamingViolation{File: file, Kind: "method", Name: c.Name + "." + m.Name, Line: m.Line, Expected: "snake_case"})
			}
		}
	}
	return out
}
