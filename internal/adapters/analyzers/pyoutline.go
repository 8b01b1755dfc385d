package analyzers

import (
	"regexp"
	"strings"
)

var (
	pyDefRe    = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)\s*[:(]`)
	pyStringRe = regexp.MustCompile(`^[rRuU]?("""|'''|"|')`)
)

// pyDef is a function, method or class header.
type pyDef struct {
	Name         string
	Line         int
	HasDocstring bool
}

type pyClass struct {
	pyDef
	Methods []pyDef
}

// pyOutline is the structural summary of one Python module. Functions
// holds every def at any depth except direct class methods.
type pyOutline struct {
	ModuleDocstring bool
	Functions       []pyDef
	Classes         []pyClass
}

type pyFrame struct {
	indent int
	class  int // index into Classes, -1 for functions
}

// parsePythonOutline scans source line by line. It tracks indentation
// and triple-quoted strings, which is enough to find definitions and
// their docstrings without a full parser.
func parsePythonOutline(src string) pyOutline {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	out := pyOutline{ModuleDocstring: moduleDocstring(lines)}

	var stack []pyFrame
	inString := ""
	for i, raw := range lines {
		if inString != "" {
			if idx := strings.Index(raw, inString); idx >= 0 {
				inString = tripleQuoteState(raw[idx+3:], "")
			}
			continue
		}

		stripped := strings.TrimSpace(raw)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}

		indent := indentWidth(raw)
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if m := pyDefRe.FindStringSubmatch(raw); m != nil {
			def := pyDef{Name: m[2], Line: i + 1, HasDocstring: hasDocstring(lines, i)}
			if n := len(stack); n > 0 && stack[n-1].class >= 0 {
				cls := &out.Classes[stack[n-1].class]
				cls.Methods = append(cls.Methods, def)
			} else {
				out.Functions = append(out.Functions, def)
			}
			stack = append(stack, pyFrame{indent: indent, class: -1})
		} else if m := pyClassRe.FindStringSubmatch(raw); m != nil {
			out.Classes = append(out.Classes, pyClass{
				pyDef: pyDef{Name: m[2], Line: i + 1, HasDocstring: hasDocstring(lines, i)},
			})
			stack = append(stack, pyFrame{indent: indent, class: len(out.Classes) - 1})
		}

		inString = tripleQuoteState(raw, "")
	}
	return out
}

// tripleQuoteState returns the delimiter left open at the end of s.
func tripleQuoteState(s, open string) string {
	for {
		if open != "" {
			idx := strings.Index(s, open)
			if idx < 0 {
				return open
			}
			s = s[idx+3:]
			open = ""
			continue
		}
		dq := strings.Index(s, `"""`)
		sq := strings.Index(s, `'''`)
		switch {
		case dq < 0 && sq < 0:
			return ""
		case sq < 0 || (dq >= 0 && dq < sq):
			open, s = `"""`, s[dq+3:]
		default:
			open, s = `'''`, s[sq+3:]
		}
	}
}

// hasDocstring reports whether the body of the header starting at line i
// begins with a string literal.
func hasDocstring(lines []string, i int) bool {
	depth := 0
	end := -1
	for j := i; j < len(lines) && j < i+50; j++ {
		depth += strings.Count(lines[j], "(") + strings.Count(lines[j], "[") -
			strings.Count(lines[j], ")") - strings.Count(lines[j], "]")
		if depth <= 0 {
			end = j
			break
		}
	}
	if end < 0 {
		return false
	}

	header := lines[end]
	if colon := strings.LastIndex(header, ":"); colon >= 0 {
		rest := strings.TrimSpace(header[colon+1:])
		if rest != "" && !strings.HasPrefix(rest, "#") {
			return pyStringRe.MatchString(rest)
		}
	}

	for k := end + 1; k < len(lines); k++ {
		s := strings.TrimSpace(lines[k])
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		return pyStringRe.MatchString(s)
	}
	return false
}

func moduleDocstring(lines []string) bool {
	for _, l := range lines {
		s := strings.TrimSpace(l)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		return pyStringRe.MatchString(s)
	}
	return false
}

func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 8 - w%8
		default:
			return w
		}
	}
	return w
}

var (
	snakeCaseRe  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	pascalCaseRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
)

func isDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// checkFunctionDoc skips private helpers but keeps dunders.
func checkFunctionDoc(name string) bool {
	return !strings.HasPrefix(name, "_") || strings.HasPrefix(name, "__")
}

// checkMethodDoc skips every underscore name except __init__.
func checkMethodDoc(name string) bool {
	return !strings.HasPrefix(name, "_") || name == "__init__"
}
