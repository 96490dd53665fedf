package swift

import (
	"regexp"
	"strings"
)

var (
	importRe = regexp.MustCompile(`(?m)^[^\S\n]*(?:@testable\s+)?import\s+(?:(?:class|struct|enum|protocol|func|typealias)\s+)?([\w.]+)`)

	declRe = regexp.MustCompile(`(?m)^[^\S\n]*(?:@\w+(?:\([^)\n]*\))?\s+)*` +
		`(?:(?:public|private|fileprivate|internal|open|final|indirect)\s+)*` +
		`(class|struct|enum|protocol|extension)\s+([\w.]+)(?:\s*<[^>{\n]*>)?` +
		`(?:\s*:\s*([^{\n]+?))?\s*(?:where\s+[^{\n]+?)?\s*\{`)

	propertyRe = regexp.MustCompile(`(?m)(?:^|[;{])[^\S\n]*((?:@\w+(?:\([^)\n]*\))?\s+)*)` +
		`(?:(?:public|private|fileprivate|internal|open|final|static|class|lazy|weak|unowned|override|nonisolated)(?:\(set\))?\s+)*` +
		`(var|let)\s+(\w+)\s*:\s*([^\n=;{}]+)(?:=\s*([^\n;{}]+))?`)

	methodRe = regexp.MustCompile(`(?m)func\s+(\w+)\s*(?:<[^>\n]*>)?\s*` +
		`\(((?:[^()]|\([^()]*\))*)\)\s*` +
		`(async\s*)?((?:re)?throws\s*)?(?:->\s*([^{\n]+?))?\s*(?:\{|where\b|$)`)

	caseRe      = regexp.MustCompile(`(?m)^[^\S\n]*(?:indirect\s+)?case\s+([^\n:]+?)\s*$`)
	attributeRe = regexp.MustCompile(`@(\w+)`)

	combineRe   = regexp.MustCompile(`\bimport\s+Combine\b|Publisher|Subject\b`)
	swiftDataRe = regexp.MustCompile(`\bimport\s+SwiftData\b|@Model\b`)
	firebaseRe  = regexp.MustCompile(`\bimport\s+Firebase\w*|FirebaseAuth`)
)

var observableWrappers = map[string]bool{
	"Published": true,
	"State":     true,
	"Binding":   true,
}

// Scan extracts the outline of a Swift file. Comments are removed first;
// only the first type declaration becomes the unit, later ones are listed
// in Dropped.
func Scan(content string) *Unit {
	u := &Unit{
		UsesCombine:   combineRe.MatchString(content),
		UsesSwiftData: swiftDataRe.MatchString(content),
		UsesFirebase:  firebaseRe.MatchString(content),
	}

	src := StripComments(content)

	for _, m := range importRe.FindAllStringSubmatch(src, -1) {
		u.Imports = append(u.Imports, m[1])
	}

	decls := declRe.FindAllStringSubmatch(src, -1)
	if len(decls) > 0 {
		first := decls[0]
		u.Kind = Kind(first[1])
		u.ClassName = first[2]
		u.Superclass, u.Protocols = splitInheritance(first[3])
		for _, d := range decls[1:] {
			u.Dropped = append(u.Dropped, d[2])
		}
	}

	for _, m := range propertyRe.FindAllStringSubmatch(src, -1) {
		p := Property{
			Name:    m[3],
			Type:    strings.TrimSpace(m[4]),
			Default: strings.TrimSpace(m[5]),
			Mutable: m[2] == "var",
		}
		for _, a := range attributeRe.FindAllStringSubmatch(m[1], -1) {
			p.Attributes = append(p.Attributes, a[1])
			if observableWrappers[a[1]] {
				p.Observable = true
			}
		}
		u.Properties = append(u.Properties, p)
	}

	for _, m := range methodRe.FindAllStringSubmatch(src, -1) {
		u.Methods = append(u.Methods, Method{
			Name:   m[1],
			Params: strings.TrimSpace(m[2]),
			Async:  m[3] != "",
			Throws: m[4] != "",
			Return: strings.TrimSpace(m[5]),
		})
	}

	if u.Kind == KindEnum {
		for _, m := range caseRe.FindAllStringSubmatch(src, -1) {
			u.EnumCases = append(u.EnumCases, parseCases(m[1])...)
		}
	}

	return u
}

func splitInheritance(clause string) (string, []string) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return "", nil
	}
	var parts []string
	for _, p := range strings.Split(clause, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

// parseCases splits `a, b = "x", loaded(User)` into individual cases.
func parseCases(list string) []EnumCase {
	var out []EnumCase
	for _, item := range SplitTopLevel(list, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		c := EnumCase{}
		if name, raw, ok := strings.Cut(item, "="); ok {
			c.Name = strings.TrimSpace(name)
			c.RawValue = strings.TrimSpace(raw)
		} else {
			c.Name = item
		}
		if i := strings.IndexByte(c.Name, '('); i >= 0 {
			c.Name = strings.TrimSpace(c.Name[:i])
		}
		if c.Name != "" && !strings.HasPrefix(c.Name, ".") && !strings.HasPrefix(c.Name, "let ") {
			out = append(out, c)
		}
	}
	return out
}

// SplitTopLevel splits s on sep where sep is not nested inside (), [], <>
// or a string literal.
func SplitTopLevel(s string, sep byte) []string {
	var (
		parts    []string
		depth    int
		inString bool
		start    int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '(' || c == '[' || c == '<' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '>':
			// "->" in closure types is not a closing bracket
			if i == 0 || s[i-1] != '-' {
				depth--
			}
		case c == sep && depth <= 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// StripComments removes // and /* */ comments, leaving string literals
// (including """ blocks) untouched. Line structure is preserved.
func StripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], `"""`):
			end := strings.Index(src[i+3:], `"""`)
			if end < 0 {
				b.WriteString(src[i:])
				return b.String()
			}
			b.WriteString(src[i : i+3+end+3])
			i += 3 + end + 3
		case src[i] == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) && src[j] == '"' {
				j++
			}
			if j > len(src) {
				j = len(src)
			}
			b.WriteString(src[i:j])
			i = j
		case strings.HasPrefix(src[i:], "//"):
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				return b.String()
			}
			i += j
		case strings.HasPrefix(src[i:], "/*"):
			j := strings.Index(src[i+2:], "*/")
			if j < 0 {
				return b.String()
			}
			b.WriteString(strings.Repeat("\n", strings.Count(src[i:i+2+j], "\n")))
			i += 2 + j + 2
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return b.String()
}

// ExtractBlock finds the first match of header, which must end at an
// opening brace, and returns the text between that brace and its matching
// closing brace. Braces inside string literals are ignored. If the block
// never closes, everything after the header is returned.
func ExtractBlock(src string, header *regexp.Regexp) (string, bool) {
	loc := header.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	open := loc[1] - 1
	if open < 0 || src[open] != '{' {
		idx := strings.IndexByte(src[loc[1]:], '{')
		if idx < 0 {
			return "", false
		}
		open = loc[1] + idx
	}

	depth := 0
	inString := false
	for i := open; i < len(src); i++ {
		c := src[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[open+1 : i], true
			}
		}
	}
	return src[open+1:], true
}
