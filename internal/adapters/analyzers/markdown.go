package analyzers

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
)

// mdSummary is what the document checks need from a markdown file.
type mdSummary struct {
	Headings      []string
	Words         int
	HasCodeBlocks bool
}

// summarizeMarkdown parses src and counts prose words. Fenced code is
// excluded from the count; headings and inline code are not.
func summarizeMarkdown(src string) mdSummary {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var (
		out   mdSummary
		prose strings.Builder
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				prose.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out.Headings = append(out.Headings, strings.TrimSpace(inlineText(node, source)))
		case *ast.FencedCodeBlock:
			out.HasCodeBlocks = true
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				prose.Write(seg.Value(source))
			}
			prose.WriteByte(' ')
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			prose.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				prose.WriteByte(' ')
			}
		case *ast.String:
			prose.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	out.Words = len(strings.Fields(prose.String()))
	return out
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// anyHeadingContains reports whether some heading contains want, ignoring
// case. A Caser is not safe for concurrent use, so each call makes one.
func anyHeadingContains(headings []string, want string) bool {
	fold := cases.Fold()
	needle := fold.String(want)
	for _, h := range headings {
		if strings.Contains(fold.String(h), needle) {
			return true
		}
	}
	return false
}
