// Package compose rewrites the body of a SwiftUI view into Jetpack Compose.
//
// The rewriter works line by line. Each line is tokenized into a head
// (`VStack(spacing: 8)`), an optional trailing closure and a modifier
// chain, then handed to the first rule whose matcher accepts it. Every '{'
// a rule opens pushes a frame carrying the text that closes it, so a
// SwiftUI `}` can close `Button(onClick = {` with `}) { Text(...) }`.
// Lines no rule accepts become `// TODO: Convert SwiftUI:` comments.
//
// This is a heuristic. Output is not guaranteed to compile, only to have
// balanced brackets.
package compose

import (
	"strconv"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/brackets"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/tables"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
)

// ViewRef names the Kotlin composable a Swift view converts to.
type ViewRef struct {
	Name   string
	Screen bool // takes a navController argument
}

// Rewriter converts SwiftUI view bodies. It is safe for concurrent use.
type Rewriter struct {
	tables tables.Tables
	mapper *typemap.Mapper
	views  map[string]ViewRef
	rules  []rule
}

// New returns a Rewriter using t for icons, colors and fonts and m for
// state property types.
func New(t tables.Tables, m *typemap.Mapper) *Rewriter {
	r := &Rewriter{tables: t, mapper: m}
	r.rules = defaultRules()
	return r
}

// WithViews returns a copy of r that knows the composables other views and
// computed `some View` properties convert to. Keys are Swift type names
// ("DetailView") or property names ("header").
func (r *Rewriter) WithViews(views map[string]ViewRef) *Rewriter {
	cp := *r
	cp.views = views
	return &cp
}

// Rewrite converts a SwiftUI body (the content between the braces of
// `var body: some View`) into Compose statements. The result has balanced
// brackets and no indentation beyond what the source had.
func (r *Rewriter) Rewrite(body string) string {
	s := &run{Rewriter: r}
	for _, src := range preprocess(body) {
		s.process(src)
	}
	s.flush(0)
	s.expandTabs()

	out := strings.Join(s.out, "\n")
	out = strings.Trim(out, "\n")
	return brackets.Balance(out)
}

type frameKind int

const (
	kindBlock frameKind = iota
	kindLazy
	kindColumn
	kindRow
	kindTab
	kindTabItem
	kindSkip
	kindLet
	kindButtonAction
	kindAlert
	kindTodo
)

type frame struct {
	closer string
	kind   frameKind
	params string // Button: arguments that follow the onClick lambda
}

// run is the state of one Rewrite call.
type run struct {
	*Rewriter
	frames []frame
	out    []string
	indent string
	noWrap bool
	tabs   []tab
}

// srcLine is a preprocessed source line plus any modifier chain hoisted
// from the line that closes it.
type srcLine struct {
	text    string
	hoisted string
}

func (s *run) push(closer string, kind frameKind) *frame {
	s.frames = append(s.frames, frame{closer: closer, kind: kind})
	return &s.frames[len(s.frames)-1]
}

func (s *run) pop() (frame, bool) {
	if len(s.frames) == 0 {
		return frame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *run) top() frame {
	if len(s.frames) == 0 {
		return frame{}
	}
	return s.frames[len(s.frames)-1]
}

// emit appends lines at the current indentation.
func (s *run) emit(lines ...string) {
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			s.out = append(s.out, "")
			continue
		}
		for _, part := range strings.Split(l, "\n") {
			s.out = append(s.out, s.indent+part)
		}
	}
}

func (s *run) appendToLast(text string) {
	if len(s.out) == 0 {
		s.emit(text)
		return
	}
	s.out[len(s.out)-1] += text
}

func (s *run) emitCloser(f frame) {
	if f.closer == "" {
		return
	}
	s.emit(f.closer)
}

// flush closes every frame above depth.
func (s *run) flush(depth int) {
	for len(s.frames) > depth {
		f, _ := s.pop()
		s.emitCloser(f)
	}
}

func (s *run) process(src srcLine) {
	l := Tokenize(src.text)
	if l.Text == "" {
		s.out = append(s.out, "")
		return
	}
	if strings.HasPrefix(l.Text, "}") {
		s.close(l)
		return
	}
	if src.hoisted != "" {
		calls, _ := parseChain(src.hoisted)
		l.Modifiers = append(l.Modifiers, calls...)
	}
	s.line(l)
}

// line converts one statement line.
func (s *run) line(l Line) {
	s.indent = l.Indent
	parent := s.top()

	switch parent.kind {
	case kindTabItem:
		s.captureTab(l.Text)
		for i := 0; i < netBraces(l.Text); i++ {
			s.push("", kindTabItem)
		}
		return
	case kindSkip:
		for i := 0; i < netBraces(l.Text); i++ {
			s.push("", kindSkip)
		}
		return
	}

	tabChild := parent.kind == kindTab && l.Head != ""
	if tabChild {
		s.tabs = append(s.tabs, tab{})
	}

	before := len(s.frames)
	s.noWrap = false
	out := s.apply(l)
	for i := len(s.frames) - before; i < netBraces(l.Text); i++ {
		s.push("}", kindBlock)
	}
	pushed := len(s.frames) - before

	switch {
	case tabChild && len(out) > 0:
		out = s.prefixTab(out, pushed, len(s.tabs)-1)
	case parent.kind == kindLazy && !s.noWrap && len(out) > 0:
		out = s.wrapItem(out, before, pushed)
	}
	s.emit(out...)
}

func (s *run) prefixTab(out []string, pushed, index int) []string {
	prefix := strconv.Itoa(index) + " -> "
	if len(out) == 1 || pushed > 0 {
		out[0] = prefix + out[0]
		return out
	}
	wrapped := []string{prefix + "{"}
	for _, l := range out {
		wrapped = append(wrapped, "    "+l)
	}
	return append(wrapped, "}")
}

// wrapItem puts a LazyColumn child that is not already an items() call
// inside `item { }`.
func (s *run) wrapItem(out []string, before, pushed int) []string {
	if pushed > 0 {
		s.frames[before].closer += "\n}"
		return append([]string{"item {"}, out...)
	}
	if len(out) == 1 {
		return []string{"item { " + out[0] + " }"}
	}
	wrapped := []string{"item {"}
	for _, l := range out {
		wrapped = append(wrapped, "    "+l)
	}
	return append(wrapped, "}")
}

func (s *run) apply(l Line) []string {
	for _, r := range s.rules {
		if r.match(s, l) {
			return r.apply(s, l)
		}
	}
	return s.unconverted(l.Text)
}

// unconverted keeps text as a TODO comment. A '{' it opens is closed by a
// commented `}` so the comment never unbalances the output.
func (s *run) unconverted(text string) []string {
	for i := 0; i < netBraces(text); i++ {
		s.push("// }", kindTodo)
	}
	return []string{todo(text)}
}

// close handles a line starting with '}'.
func (s *run) close(l Line) {
	s.indent = l.Indent
	text := l.Text
	n := 0
	for n < len(text) && (text[n] == '}' || text[n] == ' ') {
		n++
	}
	rest := strings.TrimSpace(text[n:])
	closers := strings.Count(text[:n], "}")

	for k := 0; k < closers; k++ {
		f, ok := s.pop()
		if !ok {
			continue
		}
		if k == closers-1 && rest != "" && s.continueFrame(f, rest) {
			return
		}
		s.emitCloser(f)
	}

	switch {
	case rest == "":
	case rest[0] == ')' || rest[0] == ',':
		s.appendToLast(Expr(rest))
	case strings.HasPrefix(rest, "else"):
		s.elseBranch(rest)
	default:
		s.line(Tokenize(l.Indent + rest))
	}
}

// continueFrame handles closures that continue after the '}' that ends
// them: `} label: {`, `} message: {`, `} else {` after an if-let.
func (s *run) continueFrame(f frame, rest string) bool {
	label, after, ok := strings.Cut(rest, ":")
	after = strings.TrimSpace(after)
	if ok && !strings.HasPrefix(after, "{") {
		ok = false
	}

	switch {
	case f.kind == kindButtonAction && ok && label == "label":
		if strings.HasSuffix(after, "}") && matching(after, 0, '{', '}') == len(after)-1 {
			s.emit("}" + f.params + ") { " + s.inline(after[1:len(after)-1]) + " }")
			return true
		}
		s.emit("}" + f.params + ") {")
		s.push("}", kindBlock)
		return true

	case f.kind == kindAlert && ok && label == "message":
		s.emit("        },")
		if strings.HasSuffix(after, "}") && matching(after, 0, '{', '}') == len(after)-1 {
			s.emit("        text = { "+s.inline(after[1:len(after)-1])+" }", "    )", "}")
			return true
		}
		s.emit("        text = {")
		s.push(f.closer, kindBlock)
		return true

	case f.kind == kindSkip && strings.HasSuffix(rest, "{"):
		s.push("", kindSkip)
		return true

	case f.kind == kindLet && rest == "else {":
		s.emit("} ?: run {")
		s.push("}", kindBlock)
		return true
	}
	return false
}

func (s *run) elseBranch(rest string) {
	switch {
	case rest == "else {":
		s.appendToLast(" else {")
		s.push("}", kindBlock)
	case strings.HasPrefix(rest, "else if "):
		cond := strings.TrimPrefix(rest, "else ")
		before := len(s.frames)
		out := s.apply(Tokenize(cond))
		for i := len(s.frames) - before; i < netBraces(cond); i++ {
			s.push("}", kindBlock)
		}
		if len(out) > 0 {
			s.appendToLast(" else " + out[0])
			s.emit(out[1:]...)
		}
	default:
		s.emit(s.unconverted(rest)...)
	}
}

// fragment converts a closure body written on one line, such as the label
// of `Button { save() } label: { Text("Save") }`. Statements separated by
// ';' become separate lines.
func (s *run) fragment(body string, parent frameKind) []string {
	sub := &run{Rewriter: s.Rewriter}
	base := 0
	if parent != kindBlock {
		sub.push("", parent)
		base = 1
	}
	for _, stmt := range splitTopLevel(body, ';') {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			sub.process(srcLine{text: stmt})
		}
	}
	sub.flush(base)
	var out []string
	for _, l := range sub.out {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// inline converts a one-line closure body and joins the result with "; ".
func (s *run) inline(body string) string {
	body, _ = splitClosureParams(body)
	frag := s.fragment(body, kindBlock)
	for i := range frag {
		frag[i] = strings.TrimSpace(frag[i])
	}
	return strings.Join(frag, "; ")
}

// wrapBody renders `head { body }` on one line when the converted body is a
// single line, and as an indented block otherwise.
func (s *run) wrapBody(head, body string, parent frameKind) []string {
	frag := s.fragment(body, parent)
	if len(frag) == 0 {
		return []string{head + " {}"}
	}
	if len(frag) == 1 {
		return []string{head + " { " + strings.TrimSpace(frag[0]) + " }"}
	}
	lines := []string{head + " {"}
	for _, l := range frag {
		lines = append(lines, "    "+l)
	}
	return append(lines, "}")
}

// expandTabs replaces the NavigationBar placeholder with one item per tab.
func (s *run) expandTabs() {
	for i, l := range s.out {
		if !strings.Contains(l, tabItemsPlaceholder) {
			continue
		}
		items := s.tabItems(leadingSpace(l))
		out := append([]string{}, s.out[:i]...)
		out = append(out, items...)
		s.out = append(out, s.out[i+1:]...)
		return
	}
}

// preprocess prepares a body for line-by-line rewriting: comments are
// removed, the text is dedented, statements separated by ';' are split,
// lines with unbalanced parentheses are joined, and modifier lines are
// joined onto the expression they modify. Finally, complete modifier
// chains after a closing '}' are hoisted onto the line that opened the
// block, so `VStack { ... }.padding()` reaches the VStack rule.
func preprocess(body string) []srcLine {
	body = swift.StripComments(body)
	var lines []string
	for _, raw := range strings.Split(dedent(body), "\n") {
		raw = strings.TrimRight(raw, " \t\r")
		indent := leadingSpace(raw)
		parts := splitTopLevel(raw, ';')
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" || len(parts) == 1 {
				lines = append(lines, indent+p)
			}
		}
	}

	var joined []string
	for i := 0; i < len(lines); i++ {
		cur := lines[i]
		for parenDepth(cur) > 0 && i+1 < len(lines) {
			i++
			cur += " " + strings.TrimSpace(lines[i])
		}
		trimmed := strings.TrimSpace(cur)
		if n := len(joined); n > 0 && isContinuation(trimmed) {
			prev := strings.TrimSpace(joined[n-1])
			if prev != "" && !strings.HasSuffix(prev, "{") {
				joined[n-1] += trimmed
				continue
			}
		}
		joined = append(joined, cur)
	}

	return hoist(joined)
}

func isContinuation(trimmed string) bool {
	return len(trimmed) > 1 && trimmed[0] == '.' && isIdentStart(trimmed[1])
}

func hoist(lines []string) []srcLine {
	out := make([]srcLine, len(lines))
	var openers []int
	for i, l := range lines {
		out[i].text = l
		text := strings.TrimSpace(l)

		if strings.HasPrefix(text, "}") {
			n := 0
			for n < len(text) && text[n] == '}' {
				n++
			}
			opener := -1
			for k := 0; k < n && len(openers) > 0; k++ {
				opener = openers[len(openers)-1]
				openers = openers[:len(openers)-1]
			}
			rest := strings.TrimSpace(text[n:])
			if opener >= 0 && isContinuation(rest) {
				var hoisted strings.Builder
				for isContinuation(rest) {
					c, used, ok := parseCall(rest)
					if !ok || c.Opens {
						break
					}
					hoisted.WriteString(rest[:used])
					rest = strings.TrimSpace(rest[used:])
				}
				out[opener].hoisted += hoisted.String()
				out[i].text = leadingSpace(l) + strings.Repeat("}", n) + rest
			}
			text = text[n:]
		}

		for j := 0; j < netOpens(text); j++ {
			openers = append(openers, i)
		}
		for j := 0; j < netCloses(text) && len(openers) > 0; j++ {
			openers = openers[:len(openers)-1]
		}
	}
	return out
}

// netOpens and netCloses split netBraces into unmatched '{' and unmatched
// '}' so a line like `} else {` pops and pushes.
func netOpens(s string) int {
	open, _ := unmatched(s)
	return open
}

func netCloses(s string) int {
	_, closes := unmatched(s)
	return closes
}

func unmatched(s string) (open, closes int) {
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
			open++
		case '}':
			if open > 0 {
				open--
			} else {
				closes++
			}
		}
	}
	return open, closes
}

func parenDepth(s string) int {
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
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
	}
	return depth
}

func dedent(s string) string {
	lines := strings.Split(s, "\n")
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := len(leadingSpace(l)); common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return s
	}
	for i, l := range lines {
		if len(l) >= common {
			lines[i] = l[common:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
