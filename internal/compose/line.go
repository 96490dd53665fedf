package compose

import (
	"strings"
	"unicode"
)

// Call is one `.name(args) { closure }` modifier in a chain.
type Call struct {
	Name       string
	Args       string // text inside the parentheses
	HasArgs    bool
	Closure    string // trailing closure body, or the text after '{' when Opens
	HasClosure bool
	Opens      bool // the trailing closure is left open on this line
}

// Line is one SwiftUI source line split into its parts:
//
//	VStack(spacing: 8) { ... }.padding().background(Color.red)
//	^ Head             ^ Trailer ^ Modifiers
type Line struct {
	Indent    string
	Text      string // trimmed source
	Head      string
	Trailer   string // from the first top-level '{' after Head: "{", "{ item in", "{ save() }"
	Modifiers []Call
	Rest      string // anything left unparsed
}

// Tokenize splits raw into a Line. It never fails; text it cannot split
// stays in Head or Rest.
func Tokenize(raw string) Line {
	text := strings.TrimSpace(raw)
	l := Line{
		Indent: raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))],
		Text:   text,
	}

	i := scanHead(text)
	l.Head = strings.TrimSpace(text[:i])
	rest := text[i:]

	if strings.HasPrefix(rest, "{") {
		end := matching(rest, 0, '{', '}')
		if end < 0 {
			l.Trailer = rest
			return l
		}
		l.Trailer = rest[:end+1]
		rest = strings.TrimSpace(rest[end+1:])
	}

	calls, rest := parseChain(rest)
	l.Modifiers = calls
	l.Rest = rest
	return l
}

// Name returns the identifier the head starts with: "VStack" for
// `VStack(spacing: 8)`, "Color.blue" for `Color.blue`.
func (l Line) Name() string {
	end := len(l.Head)
	for i, r := range l.Head {
		if r == '(' || r == ' ' || r == '{' || r == '<' {
			end = i
			break
		}
	}
	return l.Head[:end]
}

// Args returns the text inside the head's outermost parentheses.
func (l Line) Args() (string, bool) {
	open := strings.IndexByte(l.Head, '(')
	if open < 0 {
		return "", false
	}
	end := matching(l.Head, open, '(', ')')
	if end < 0 {
		return l.Head[open+1:], true
	}
	return l.Head[open+1 : end], true
}

// Opens reports whether the line leaves a '{' open.
func (l Line) Opens() bool {
	if l.Trailer != "" && matching(l.Trailer, 0, '{', '}') < 0 {
		return true
	}
	if n := len(l.Modifiers); n > 0 && l.Modifiers[n-1].Opens {
		return true
	}
	return false
}

// TrailerBody returns the trailing closure content without braces or the
// `x in` parameter clause, and the parameter names.
func (l Line) TrailerBody() (body string, params string) {
	t := strings.TrimSpace(l.Trailer)
	t = strings.TrimPrefix(t, "{")
	if end := matching(l.Trailer, 0, '{', '}'); end >= 0 {
		t = strings.TrimSuffix(strings.TrimSpace(t), "}")
	}
	return splitClosureParams(t)
}

// Modifier returns the first modifier called name.
func (l Line) Modifier(name string) (Call, bool) {
	for _, c := range l.Modifiers {
		if c.Name == name {
			return c, true
		}
	}
	return Call{}, false
}

// splitClosureParams separates `item in Text(item)` into the body and "item".
func splitClosureParams(s string) (body, params string) {
	s = strings.TrimSpace(s)
	idx := strings.Index(s, " in")
	if idx < 0 {
		if s == "in" {
			return "", ""
		}
		return s, ""
	}
	if after := s[idx+3:]; after != "" && !unicode.IsSpace(rune(after[0])) {
		return s, ""
	}
	head := strings.TrimSpace(s[:idx])
	for _, r := range head {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ',' || r == ' ' || r == '(' || r == ')') {
			return s, ""
		}
	}
	return strings.TrimSpace(s[idx+3:]), strings.Trim(head, "() ")
}

// scanHead returns the index where the head ends: a top-level '{' or the
// '.' of the first modifier.
func scanHead(text string) int {
	depth := 0
	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
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
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '{':
			if depth == 0 {
				return i
			}
		case '.':
			if depth == 0 && isModifierDot(text, i) {
				return i
			}
		}
	}
	return len(text)
}

func isModifierDot(text string, i int) bool {
	if i+1 >= len(text) || !isIdentStart(text[i+1]) {
		return false
	}
	if i == 0 {
		return true
	}
	prev := strings.TrimRight(text[:i], " \t")
	if prev == "" {
		return true
	}
	last := prev[len(prev)-1]
	return last == ')' || last == '}'
}

// parseChain parses a run of `.name(args) { closure }` calls.
func parseChain(s string) ([]Call, string) {
	var calls []Call
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, ".") {
		call, n, ok := parseCall(s)
		if !ok {
			break
		}
		calls = append(calls, call)
		s = strings.TrimSpace(s[n:])
		if call.Opens {
			break
		}
	}
	return calls, s
}

func parseCall(s string) (Call, int, bool) {
	j := 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	if j == 1 || !isIdentStart(s[1]) {
		return Call{}, 0, false
	}
	call := Call{Name: s[1:j]}

	j = skipSpaces(s, j)
	if j < len(s) && s[j] == '(' {
		end := matching(s, j, '(', ')')
		if end < 0 {
			return Call{}, 0, false
		}
		call.Args = strings.TrimSpace(s[j+1 : end])
		call.HasArgs = true
		j = end + 1
	}

	k := skipSpaces(s, j)
	if k < len(s) && s[k] == '{' {
		end := matching(s, k, '{', '}')
		if end < 0 {
			call.Opens = true
			call.Closure = strings.TrimSpace(s[k+1:])
			return call, len(s), true
		}
		call.Closure = strings.TrimSpace(s[k+1 : end])
		call.HasClosure = true
		j = end + 1
	}
	return call, j, true
}

// matching returns the index of the bracket closing the one at s[i], or -1.
// String literals are skipped.
func matching(s string, i int, open, close byte) int {
	depth := 0
	inString := false
	for ; i < len(s); i++ {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// netBraces counts '{' minus '}' outside string literals.
func netBraces(s string) int {
	n := 0
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
		case '{':
			n++
		case '}':
			n--
		}
	}
	return n
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Arg is one argument of a call, split into its label and value.
type Arg struct {
	Label string
	Value string
}

// SplitArgs splits `"Title", isPresented: $show` into labelled arguments.
func SplitArgs(s string) []Arg {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []Arg
	for _, part := range splitTopLevel(s, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a := Arg{Value: part}
		if i := labelEnd(part); i > 0 {
			a.Label = part[:i]
			a.Value = strings.TrimSpace(part[i+1:])
		}
		args = append(args, a)
	}
	return args
}

// labelEnd returns the index of the ':' ending a leading `label:`, or -1.
func labelEnd(s string) int {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ':' {
		return -1
	}
	return i
}

// Named returns the value of the argument labelled label.
func Named(args []Arg, label string) (string, bool) {
	for _, a := range args {
		if a.Label == label {
			return a.Value, true
		}
	}
	return "", false
}

// Positional returns the n-th unlabelled argument.
func Positional(args []Arg, n int) (string, bool) {
	for _, a := range args {
		if a.Label != "" {
			continue
		}
		if n == 0 {
			return a.Value, true
		}
		n--
	}
	return "", false
}

// splitTopLevel splits on sep outside (), [], {} and string literals.
func splitTopLevel(s string, sep byte) []string {
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
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
