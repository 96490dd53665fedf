package compose

import (
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
)

var (
	bindingRe   = regexp.MustCompile(`\$(\w+)`)
	shorthandRe = regexp.MustCompile(`\$0\b`)
	nilRe       = regexp.MustCompile(`\bnil\b`)
	tryAwaitRe  = regexp.MustCompile(`\b(?:try[?!]?|await)\s+`)
	toggleRe    = regexp.MustCompile(`([A-Za-z_][\w.]*)\.toggle\(\)`)
	printRe     = regexp.MustCompile(`\bprint\(`)
	dismissRe   = regexp.MustCompile(`\bdismiss\(\)`)
	taskRe      = regexp.MustCompile(`^Task(?:\(.*?\))?\s*\{`)
	animationRe = regexp.MustCompile(`^withAnimation(?:\(.*?\))?\s*\{`)
	forceCastRe = regexp.MustCompile(`\bas!\s`)
	selfRe      = regexp.MustCompile(`\bself\.`)
)

var callRenames = strings.NewReplacer(
	".uppercased()", ".uppercase()",
	".lowercased()", ".lowercase()",
	".append(", ".add(",
	".removeAll()", ".clear()",
	"..<", " until ",
	"...", "..",
	"??", "?:",
)

// Expr rewrites a Swift expression or statement into its Kotlin spelling:
// `$binding` becomes `binding`, nil becomes null, ternaries become
// if/else, `\(x)` interpolation becomes `${x}`, and a handful of standard
// library names are renamed. Text it does not recognise passes through.
func Expr(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = convertTernary(s)
	s = mapCode(s, translateCode)

	switch {
	case taskRe.MatchString(s):
		s = taskRe.ReplaceAllString(s, "coroutineScope.launch {")
	case animationRe.MatchString(s):
		s = animationRe.ReplaceAllString(s, "run {")
	}
	return s
}

func translateCode(code string) string {
	code = selfRe.ReplaceAllString(code, "")
	code = tryAwaitRe.ReplaceAllString(code, "")
	code = shorthandRe.ReplaceAllString(code, "it")
	code = bindingRe.ReplaceAllString(code, "$1")
	code = nilRe.ReplaceAllString(code, "null")
	code = forceCastRe.ReplaceAllString(code, "as ")
	code = callRenames.Replace(code)
	code = toggleRe.ReplaceAllString(code, "$1 = !$1")
	code = printRe.ReplaceAllString(code, "println(")
	code = dismissRe.ReplaceAllString(code, "navController.popBackStack()")
	code = replaceProperty(code, "isEmpty", ".isEmpty()")
	code = replaceProperty(code, "count", ".size")
	code = replaceProperty(code, "first", ".firstOrNull()")
	code = replaceProperty(code, "last", ".lastOrNull()")
	return code
}

// replaceProperty rewrites `.name` when it is a property access, that is
// not followed by more identifier characters or a call.
func replaceProperty(code, name, repl string) string {
	needle := "." + name
	var b strings.Builder
	for {
		i := strings.Index(code, needle)
		if i < 0 {
			b.WriteString(code)
			return b.String()
		}
		end := i + len(needle)
		next := skipSpaces(code, end)
		if (end < len(code) && isIdentChar(code[end])) || (next < len(code) && code[next] == '(') {
			b.WriteString(code[:end])
		} else {
			b.WriteString(code[:i])
			b.WriteString(repl)
		}
		code = code[end:]
	}
}

// mapCode applies fn to the parts of s outside string literals and
// interpolates the literals.
func mapCode(s string, fn func(string) string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		b.WriteString(fn(s[start:i]))
		j := i + 1
		for j < len(s) && s[j] != '"' {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(s) {
			b.WriteString(typemap.Interpolate(s[i:]))
			return b.String()
		}
		b.WriteString(typemap.Interpolate(s[i : j+1]))
		start = j + 1
		i = j
	}
	b.WriteString(fn(s[start:]))
	return b.String()
}

// convertTernary rewrites `a = c ? x : y` as `a = if (c) x else y`. Only the
// outermost level of s is considered.
func convertTernary(s string) string {
	q := findTopLevel(s, 0, func(s string, i int) bool {
		return s[i] == '?' && i > 0 && s[i-1] == ' ' && i+1 < len(s) && s[i+1] == ' '
	})
	if q < 0 {
		return s
	}
	c := findTopLevel(s, q+1, func(s string, i int) bool {
		return s[i] == ':' && s[i-1] == ' '
	})
	if c < 0 {
		return s
	}

	condStart := 0
	if eq := lastAssignment(s[:q]); eq >= 0 {
		condStart = eq + 1
	}
	prefix := s[:condStart]
	if prefix != "" && !strings.HasSuffix(prefix, " ") {
		prefix += " "
	}
	cond := strings.TrimSpace(s[condStart:q])
	then := strings.TrimSpace(s[q+1 : c])
	otherwise := convertTernary(strings.TrimSpace(s[c+1:]))
	return prefix + "if (" + cond + ") " + then + " else " + otherwise
}

func findTopLevel(s string, from int, match func(string, int) bool) int {
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			continue
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if i >= from && depth == 0 && match(s, i) {
			return i
		}
	}
	return -1
}

// lastAssignment finds the last top-level '=' that is an assignment rather
// than part of ==, !=, <= or >=.
func lastAssignment(s string) int {
	last := -1
	findTopLevel(s, 0, func(s string, i int) bool {
		if s[i] != '=' {
			return false
		}
		if i+1 < len(s) && s[i+1] == '=' {
			return false
		}
		if i > 0 && strings.ContainsRune("=!<>", rune(s[i-1])) {
			return false
		}
		last = i
		return false
	})
	return last
}

// Dp renders a SwiftUI point value as a Compose Dp expression.
func Dp(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return "0.dp"
	case isNumber(v):
		return strings.TrimSuffix(v, ".0") + ".dp"
	case isIdentPath(v):
		return v + ".dp"
	}
	return "(" + Expr(v) + ").dp"
}

// Float renders v as a Kotlin Float expression.
func Float(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case isNumber(v):
		return v + "f"
	case isIdentPath(v):
		return v + ".toFloat()"
	}
	return "(" + Expr(v) + ").toFloat()"
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.' && !dot && i > 0:
			dot = true
		case c == '-' && i == 0 && len(s) > 1:
		default:
			return false
		}
	}
	return true
}

func isIdentPath(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) && s[i] != '.' {
			return false
		}
	}
	return true
}
