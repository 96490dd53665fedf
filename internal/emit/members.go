package emit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/swift"
)

var (
	storedRe       = regexp.MustCompile(`(?:^|\s)(?:let|var)\s+(\w+)`)
	staticRe       = regexp.MustCompile(`\b(?:static|class)\s+(?:let|var)\s`)
	computedRe     = regexp.MustCompile(`\bvar\s+(\w+)\s*:\s*([^={]+?)\s*\{`)
	inferredDepRe  = regexp.MustCompile(`(?:let|var)\s+(\w+)\s*=\s*(\w*(?:Repository|Service)\w*)\(`)
	observableRe   = regexp.MustCompile(`(?m)^\s*@Observable\b`)
	swiftFuncStart = `(?m)func\s+%s\b[^{}\n]*\{`
)

// memberLines returns the trimmed lines declared directly inside the first
// type body of content, with comments removed. One-line declarations
// (`struct A { let x: Int }`) produce nothing.
func memberLines(content string) []string {
	src := swift.StripComments(content)
	var out []string
	depth := 0
	entered := false
	inString := false
	for _, line := range strings.Split(src, "\n") {
		if depth == 1 {
			if t := strings.TrimSpace(line); t != "" && t != "}" {
				out = append(out, t)
			}
		}
		for i := 0; i < len(line); i++ {
			c := line[i]
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
			}
		}
		inString = false
		if depth >= 1 {
			entered = true
		}
		if entered && depth <= 0 {
			break
		}
	}
	return out
}

// storedProperties filters the scanned properties down to instance stored
// properties of the first declaration. Locals, statics and computed
// properties are dropped.
func storedProperties(u *swift.Unit, content string) []swift.Property {
	lines := memberLines(content)
	declared := make(map[string]bool)
	for _, l := range lines {
		if staticRe.MatchString(l) || computedRe.MatchString(l) || strings.HasPrefix(l, "func ") {
			continue
		}
		if m := storedRe.FindStringSubmatch(l); m != nil {
			declared[m[1]] = true
		}
	}

	seen := make(map[string]bool)
	var out []swift.Property
	for _, p := range u.Properties {
		if seen[p.Name] || strings.Contains(p.Type, "some View") {
			continue
		}
		if len(lines) > 0 && !declared[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}

// swiftBody returns the body of `func name` as trimmed, non-empty lines.
func swiftBody(content, name string) []string {
	re := regexp.MustCompile(fmt.Sprintf(swiftFuncStart, regexp.QuoteMeta(name)))
	body, ok := swift.ExtractBlock(swift.StripComments(content), re)
	if !ok {
		return nil
	}
	var out []string
	for _, l := range strings.Split(body, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// methods returns the scanned methods minus initializers and repeated
// names.
func methods(u *swift.Unit) []swift.Method {
	seen := make(map[string]bool)
	var out []swift.Method
	for _, m := range u.Methods {
		if m.Name == "init" || m.Name == "deinit" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		out = append(out, m)
	}
	return out
}

// commented renders Swift source as Kotlin line comments.
func commented(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "// " + l
	}
	return out
}
