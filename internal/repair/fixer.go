// Package repair patches generated Kotlin after the fact. It works on plain
// text: content rules clean up whole files, diagnostic rules act on the
// line and column the Kotlin compiler reported.
//
// Nothing here understands Kotlin. A repaired file can still fail to
// compile, and a rule can make a file worse; the continuous mode stops
// when the same errors come back.
package repair

import (
	"regexp"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/brackets"
	"github.com/simonhull/firebird-suite/magpie/internal/tables"
)

var (
	trailingSemicolonRe = regexp.MustCompile(`(?m);[ \t]*$`)
	trailingCommaRe     = regexp.MustCompile(`,\s*\)`)
	doubledCommaRe      = regexp.MustCompile(`,[ \t]*,`)
	blankRunRe          = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	tryRe               = regexp.MustCompile(`\btry\s*\{`)
	importRe            = regexp.MustCompile(`(?m)^import\s+([\w.*]+)`)
	packageRe           = regexp.MustCompile(`(?m)^package\s+[\w.]+[ \t]*\n?`)
	headerLineRe        = regexp.MustCompile(`(?m)^(?:package|import)\s.*$`)
)

// Rule names reported by FixContent.
const (
	RuleTrailingSemicolon = "trailing-semicolon"
	RuleTrailingComma     = "trailing-comma"
	RuleDanglingTry       = "dangling-try"
	RuleDoubledComma      = "doubled-comma"
	RuleMissingImports    = "missing-imports"
	RuleBlankLines        = "blank-lines"
	RuleBalance           = "balance"
)

type contentRule struct {
	name  string
	apply func(f *Fixer, s string) string
}

var contentRules = []contentRule{
	{RuleTrailingSemicolon, func(_ *Fixer, s string) string { return trailingSemicolonRe.ReplaceAllString(s, "") }},
	{RuleTrailingComma, func(_ *Fixer, s string) string { return trailingCommaRe.ReplaceAllString(s, ")") }},
	{RuleDanglingTry, func(_ *Fixer, s string) string { return closeDanglingTry(s) }},
	{RuleDoubledComma, func(_ *Fixer, s string) string { return doubledCommaRe.ReplaceAllString(s, ",") }},
	{RuleMissingImports, func(f *Fixer, s string) string { return f.addMissingImports(s) }},
	{RuleBlankLines, func(_ *Fixer, s string) string { return blankRunRe.ReplaceAllString(s, "\n\n") }},
	{RuleBalance, func(_ *Fixer, s string) string { return brackets.Balance(s) }},
}

// Fixer applies the repair rules. The import rules use the symbol table of
// its Tables.
type Fixer struct {
	tables tables.Tables
}

// NewFixer returns a Fixer. A zero Tables value means tables.Default().
func NewFixer(t tables.Tables) *Fixer {
	if t.Imports == nil {
		t = tables.Default()
	}
	return &Fixer{tables: t}
}

// FixContent runs every content rule in order and returns the result with
// the names of the rules that changed something.
func (f *Fixer) FixContent(content string) (string, []string) {
	var applied []string
	for _, r := range contentRules {
		next := r.apply(f, content)
		if next != content {
			applied = append(applied, r.name)
			content = next
		}
	}
	return content, applied
}

// closeDanglingTry gives every `try { }` that is followed by neither catch
// nor finally an empty catch block.
func closeDanglingTry(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range tryRe.FindAllStringIndex(s, -1) {
		if loc[0] < last {
			continue
		}
		end := matchingBrace(s, loc[1]-1)
		if end < 0 {
			break
		}
		rest := strings.TrimLeft(s[end+1:], " \t\r\n")
		if strings.HasPrefix(rest, "catch") || strings.HasPrefix(rest, "finally") {
			continue
		}
		b.WriteString(s[last : end+1])
		b.WriteString(" catch (e: Exception) {\n}")
		last = end + 1
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// matchingBrace returns the index of the '}' closing the '{' at open, or -1.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// addMissingImports inserts the imports the symbol table says the body
// needs.
func (f *Fixer) addMissingImports(s string) string {
	have := existingImports(s)
	body := headerLineRe.ReplaceAllString(s, "")
	return insertImports(s, f.tables.RequiredImports(body, have))
}

func existingImports(s string) []string {
	var out []string
	for _, m := range importRe.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

// insertImports adds paths after the last import, or after the package
// line when there is none. Paths already imported are skipped.
func insertImports(s string, paths []string) string {
	have := existingImports(s)
	var add []string
	for _, p := range paths {
		if !slices.Contains(have, p) && !slices.Contains(add, p) {
			add = append(add, p)
		}
	}
	if len(add) == 0 {
		return s
	}
	slices.Sort(add)
	var lines strings.Builder
	for _, p := range add {
		lines.WriteString("import " + p + "\n")
	}

	if locs := importRe.FindAllStringIndex(s, -1); len(locs) > 0 {
		end := locs[len(locs)-1][1]
		if nl := strings.IndexByte(s[end:], '\n'); nl >= 0 {
			end += nl + 1
			return s[:end] + lines.String() + s[end:]
		}
		return s + "\n" + strings.TrimSuffix(lines.String(), "\n")
	}
	if loc := packageRe.FindStringIndex(s); loc != nil {
		head := s[:loc[1]]
		if !strings.HasSuffix(head, "\n") {
			head += "\n"
		}
		return head + "\n" + lines.String() + s[loc[1]:]
	}
	return lines.String() + "\n" + s
}
