package repair

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Diagnostic is one compiler error.
type Diagnostic struct {
	File    string
	Line    int // 1-based
	Column  int // 1-based
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

var (
	// e: file:///app/src/main/java/Home.kt:12:5 Unresolved reference: Text
	uriDiagRe = regexp.MustCompile(`^e:\s+file://(/?[^:]+):(\d+):(\d+)\s+(.*)$`)
	// e: /app/src/main/java/Home.kt: (12, 5): Unresolved reference: Text
	pathDiagRe = regexp.MustCompile(`^e:\s+([^:]+\.kts?):\s*\((\d+),\s*(\d+)\):\s*(.*)$`)
)

// ParseDiagnostics extracts the errors of Kotlin compiler output, grouped
// by file. Warnings and other lines are ignored.
func ParseDiagnostics(text string) map[string][]Diagnostic {
	out := make(map[string][]Diagnostic)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		m := uriDiagRe.FindStringSubmatch(line)
		if m == nil {
			m = pathDiagRe.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}
		ln, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		d := Diagnostic{File: m[1], Line: ln, Column: col, Message: strings.TrimSpace(m[4])}
		if !slices.Contains(out[d.File], d) {
			out[d.File] = append(out[d.File], d)
		}
	}
	return out
}

// fingerprint identifies a set of diagnostics independent of order.
func fingerprint(diags map[string][]Diagnostic) string {
	var all []string
	for _, ds := range diags {
		for _, d := range ds {
			all = append(all, d.String())
		}
	}
	slices.Sort(all)
	return strings.Join(all, "\n")
}

func count(diags map[string][]Diagnostic) int {
	n := 0
	for _, ds := range diags {
		n += len(ds)
	}
	return n
}

// Rule names reported by FixDiagnostics.
const (
	RuleSeparateExpressions = "separate-expressions"
	RuleUnexpectedToken     = "unexpected-token"
	RuleExpectingElement    = "expecting-element"
	RuleExpectingParen      = "expecting-paren"
	RuleExpectingBrace      = "expecting-brace"
	RuleTopLevel            = "top-level-declaration"
	RuleUnresolved          = "unresolved-reference"
)

var unresolvedRe = regexp.MustCompile(`Unresolved reference:?\s*'?(\w+)'?`)

// FixDiagnostics applies one rule per diagnostic, bottom to top so earlier
// edits do not shift the positions of later ones. It returns the result
// and the rules that changed something.
func (f *Fixer) FixDiagnostics(content string, diags []Diagnostic) (string, []string) {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b Diagnostic) int {
		if a.Line != b.Line {
			return b.Line - a.Line
		}
		return b.Column - a.Column
	})

	lines := strings.Split(content, "\n")
	var applied []string
	var imports []string
	note := func(rule string) {
		if !slices.Contains(applied, rule) {
			applied = append(applied, rule)
		}
	}

	for _, d := range sorted {
		i := d.Line - 1
		if i < 0 || i >= len(lines) {
			continue
		}
		line := lines[i]
		col := min(max(d.Column-1, 0), len(line))
		msg := d.Message

		switch {
		case strings.Contains(msg, "Unexpected tokens"):
			if strings.Contains(msg, "use ';' to separate expressions") {
				if col > 0 && line[col-1] == ',' {
					lines[i] = line[:col-1] + ";" + line[col:]
				} else {
					lines[i] = line[:col] + ";" + line[col:]
				}
				note(RuleSeparateExpressions)
				continue
			}
			if col > 0 && line[col-1] == ',' {
				lines[i] = line[:col-1] + line[col:]
			} else {
				lines[i] = strings.TrimRight(line[:col], " \t")
			}
			note(RuleUnexpectedToken)

		case strings.Contains(msg, "Expecting an element"):
			if trimmed := strings.TrimRight(line, " \t"); strings.HasSuffix(trimmed, ",") {
				lines[i] = strings.TrimSuffix(trimmed, ",")
			} else {
				lines[i] = commentOut(line, "expecting an element")
			}
			note(RuleExpectingElement)

		case strings.Contains(msg, "Expecting ')'"):
			lines[i] = line[:col] + ")" + line[col:]
			note(RuleExpectingParen)

		case strings.Contains(msg, "Expecting '}'"):
			lines = slices.Insert(lines, i+1, "}")
			note(RuleExpectingBrace)

		case strings.Contains(msg, "Expecting a top level declaration"):
			lines[i] = commentOut(line, "invalid top level declaration")
			note(RuleTopLevel)

		case unresolvedRe.MatchString(msg):
			symbol := unresolvedRe.FindStringSubmatch(msg)[1]
			if path, ok := f.tables.Imports[symbol]; ok {
				imports = append(imports, path)
			}
		}
	}

	out := strings.Join(lines, "\n")
	if len(imports) > 0 {
		if next := insertImports(out, imports); next != out {
			out = next
			note(RuleUnresolved)
		}
	}
	return out, applied
}

// commentOut keeps the original text visible in the file.
func commentOut(line, reason string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "//") {
		return line
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	return indent + "// " + strings.TrimSpace(line) + " // TODO: " + reason
}
