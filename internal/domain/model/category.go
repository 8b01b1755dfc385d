// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Category identifies one grading dimension. The set is closed; use
// AllCategories to iterate it.
type Category int

// Grading categories in sequential execution order.
const (
	CategorySecurity Category = iota + 1
	CategoryCodeQuality
	CategoryDocumentation
	CategoryTesting
	CategoryGit
	CategoryResearch
	CategoryUX
)

// Fixed composite scale.
const (
	TotalMaxScore = 100.0
	PassRatio     = 0.7
	PassingTotal  = TotalMaxScore * PassRatio
)

type categoryInfo struct {
	name     string
	label    string
	maxScore float64
	scored   bool
}

var categories = map[Category]categoryInfo{
	CategorySecurity:      {name: "security", label: "Security", maxScore: 10, scored: true},
	CategoryCodeQuality:   {name: "code_quality", label: "Code Quality", maxScore: 30, scored: true},
	CategoryDocumentation: {name: "documentation", label: "Documentation", maxScore: 25, scored: true},
	CategoryTesting:       {name: "testing", label: "Testing", maxScore: 15, scored: true},
	CategoryGit:           {name: "git", label: "Git Workflow", maxScore: 10, scored: true},
	CategoryResearch:      {name: "research", label: "Research", maxScore: 10, scored: true},
	// ux is tracked but does not contribute to the 100-point total.
	CategoryUX: {name: "ux", label: "UX", maxScore: 10, scored: false},
}

// AllCategories returns every category in sequential execution order.
func AllCategories() []Category {
	return []Category{
		CategorySecurity,
		CategoryCodeQuality,
		CategoryDocumentation,
		CategoryTesting,
		CategoryGit,
		CategoryResearch,
		CategoryUX,
	}
}

// ScoredCategories returns the six categories summed into the total score.
func ScoredCategories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range AllCategories() {
		if c.Scored() {
			out = append(out, c)
		}
	}
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// String returns the wire name, e.g. "code_quality".
func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Label returns a human readable name for reports.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return c.String()
}

// MaxScore returns the fixed maximum for the category.
func (c Category) MaxScore() float64 {
	return categories[c].maxScore
}

// PassThreshold is the minimum score that marks the category as passed.
func (c Category) PassThreshold() float64 {
	return c.MaxScore() * PassRatio
}

// Scored reports whether the category contributes to the total score.
func (c Category) Scored() bool {
	return categories[c].scored
}

// ParseCategory maps a wire name back to a Category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, info := range categories {
		if info.name == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// MarshalText encodes the category by name so maps keyed by Category
// serialize with readable keys.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
