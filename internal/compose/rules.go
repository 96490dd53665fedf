package compose

import (
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// rule pairs a matcher with the rewrite it applies. Rules are tried in
// order and the first match wins.
type rule struct {
	name  string
	match func(*run, Line) bool
	apply func(*run, Line) []string
}

func defaultRules() []rule {
	return []rule{
		{"state", matchState, (*run).state},
		{"local", matchRe(localRe), (*run).local},
		{"task", matchRe(taskRe), (*run).statement},
		{"tabView", func(_ *run, l Line) bool { return l.Name() == "TabView" && l.Opens() }, (*run).tabView},
		{"container", matchContainer, (*run).container},
		{"forEach", named("ForEach"), (*run).forEach},
		{"ifLet", matchRe(ifLetRe), (*run).ifLet},
		{"if", matchRe(ifRe), (*run).ifStmt},
		{"text", named("Text"), (*run).text},
		{"button", named("Button"), (*run).button},
		{"image", named("Image", "AsyncImage"), (*run).image},
		{"textField", named("TextField", "SecureField", "TextEditor"), (*run).textField},
		{"toggle", named("Toggle"), (*run).toggle},
		{"navigationLink", named("NavigationLink"), (*run).navigationLink},
		{"label", named("Label"), (*run).label},
		{"spacer", named("Spacer"), (*run).spacer},
		{"divider", named("Divider"), (*run).divider},
		{"progress", named("ProgressView"), (*run).progress},
		{"slider", named("Slider"), (*run).slider},
		{"color", matchRe(colorViewRe), (*run).colorView},
		{"shape", named("Circle", "Rectangle", "RoundedRectangle", "Capsule", "Ellipse"), (*run).shape},
		{"empty", named("EmptyView"), func(*run, Line) []string { return nil }},
		{"modifiers", func(_ *run, l Line) bool { return l.Head == "" && len(l.Modifiers) > 0 }, (*run).bareModifiers},
		{"subview", matchSubview, (*run).subview},
		{"view", matchView, (*run).view},
		{"statement", matchStatement, (*run).statement},
	}
}

var (
	localRe     = regexp.MustCompile(`^(let|var)\s+(\w+)\s*(?::\s*([^=]+?))?\s*(?:=\s*(.+))?$`)
	ifLetRe     = regexp.MustCompile(`^if\s+(?:let|var)\s`)
	ifRe        = regexp.MustCompile(`^if\s`)
	letBindRe   = regexp.MustCompile(`^(?:let|var)\s+(\w+)(?:\s*:\s*[^=]+)?(?:\s*=\s*(.+))?$`)
	colorViewRe = regexp.MustCompile(`^(Color(?:\.\w+|\([^)]*\))(?:\.opacity\([^)]*\))?)(.*)$`)
	guardRe     = regexp.MustCompile(`^guard\s+let\s+(\w+)\s*=\s*(.+?)\s+else\s*\{\s*return\s*\}$`)
	forRe       = regexp.MustCompile(`^for\s+(.+?)\s+in\s+(.+?)\s*\{$`)
	localizedRe = regexp.MustCompile(`^LocalizedStringKey\((.+)\)$`)
	formatRe    = regexp.MustCompile(`^String\(format:\s*("(?:[^"\\]|\\.)*")\s*,\s*(.+)\)$`)
	urlRe       = regexp.MustCompile(`^URL\(string:\s*(.+)\)!?$`)
	enumerateRe = regexp.MustCompile(`^(?:Array\()?(.+?)\.enumerated\(\)\)?$`)
	rangeRe     = regexp.MustCompile(`^(.+?)\s*(\.\.<|\.\.\.)\s*(.+)$`)
)

// unsupported SwiftUI views are kept as TODO comments instead of being
// treated as calls to user composables.
var unsupported = map[string]bool{
	"Picker": true, "Menu": true, "DatePicker": true, "ColorPicker": true, "Stepper": true,
	"Link": true, "ShareLink": true, "Map": true, "Chart": true, "Gauge": true,
	"DisclosureGroup": true, "ControlGroup": true, "ContentUnavailableView": true,
	"EditButton": true, "PhotosPicker": true, "Canvas": true, "TimelineView": true,
	"ViewThatFits": true, "Grid": true, "GridRow": true, "LazyVGrid": true, "LazyHGrid": true,
	"ToolbarItem": true, "ToolbarItemGroup": true, "DispatchQueue": true, "Alert": true,
	"ActionSheet": true, "Path": true, "LinearGradient": true, "RadialGradient": true,
	"AngularGradient": true, "VideoPlayer": true, "OutlineGroup": true, "Table": true,
	"TableColumn": true, "AnyView": true, "SignInWithAppleButton": true, "TabView": true,
}

var containers = map[string]string{
	"VStack":              "Column",
	"LazyVStack":          "Column",
	"HStack":              "Row",
	"LazyHStack":          "Row",
	"ZStack":              "Box",
	"Group":               "Column",
	"NavigationView":      "Column",
	"NavigationStack":     "Column",
	"NavigationSplitView": "Column",
	"GeometryReader":      "BoxWithConstraints",
	"ScrollView":          "LazyColumn",
	"List":                "LazyColumn",
	"Form":                "LazyColumn",
	"Section":             "Section",
}

func named(names ...string) func(*run, Line) bool {
	return func(_ *run, l Line) bool {
		name := l.Name()
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func matchRe(re *regexp.Regexp) func(*run, Line) bool {
	return func(_ *run, l Line) bool { return re.MatchString(l.Text) }
}

func matchState(_ *run, l Line) bool {
	_, ok := ParseStateLine(l.Text)
	return ok
}

func matchContainer(_ *run, l Line) bool {
	return containers[l.Name()] != "" && l.Trailer != ""
}

func matchSubview(s *run, l Line) bool {
	name := leadingIdent(l.Text)
	if _, ok := s.views[name]; !ok || name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	rest := l.Text[len(name):]
	return rest == "" || rest[0] == '.' || rest[0] == '('
}

func leadingIdent(s string) string {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[:i]
}

func matchView(s *run, l Line) bool {
	name := l.Name()
	if _, ok := s.views[name]; ok {
		return true
	}
	if name == "" || unsupported[name] || name[0] < 'A' || name[0] > 'Z' || strings.Contains(name, ".") {
		return false
	}
	return strings.Contains(l.Head, "(") || l.Trailer != ""
}

var statementKeywords = []string{"switch ", "case ", "default:", "do {", "defer ", "#if", "#else", "#endif", "catch"}

var (
	statementPrefixes = []string{"guard ", "for ", "return", "try ", "await ", "throw ", "break", "continue", "self."}
	assignRe          = regexp.MustCompile(`^[\w.\[\]]+\s*[-+*/%]?=[^=]`)
	receiverCallRe    = regexp.MustCompile(`^\w+(?:\??\.\w+)+\s*[({]`)
	bareCallRe        = regexp.MustCompile(`^\w+\(`)
)

// matchStatement accepts the statement shapes the converter understands:
// assignments, calls through a receiver, complete one-line calls, and
// control flow. Anything else is left for the unconverted rule.
func matchStatement(_ *run, l Line) bool {
	for _, kw := range statementKeywords {
		if strings.HasPrefix(l.Text, kw) {
			return false
		}
	}
	if c := l.Text[0]; c != '_' && (c < 'a' || c > 'z') {
		return false
	}
	for _, p := range statementPrefixes {
		if strings.HasPrefix(l.Text, p) {
			return true
		}
	}
	switch {
	case assignRe.MatchString(l.Text), receiverCallRe.MatchString(l.Text), animationRe.MatchString(l.Text):
		return true
	case bareCallRe.MatchString(l.Text):
		end := matching(l.Text, strings.IndexByte(l.Text, '('), '(', ')')
		return end == len(l.Text)-1
	}
	return false
}

// finish assembles a component with the parts of its modifier chain that
// are not arguments: unknown modifiers as a trailing TODO comment, effect
// statements after it, and a block a modifier leaves open.
func (s *run) finish(lines []string, m mods, l Line) []string {
	todos := m.todos
	if l.Rest != "" {
		todos = append(todos, l.Rest)
	}
	if len(lines) > 0 {
		lines[0] += todoSuffix(todos)
	}
	lines = append(lines, m.effects...)
	if m.opener != nil {
		lines = append(lines, s.openBlock(*m.opener)...)
	}
	return lines
}

func trailerOpen(l Line) bool {
	return l.Trailer != "" && matching(l.Trailer, 0, '{', '}') < 0
}

func (s *run) headArgs(l Line) []Arg {
	raw, _ := l.Args()
	return SplitArgs(raw)
}

func (s *run) state(l Line) []string {
	p, _ := ParseStateLine(l.Text)
	if decl := StateDeclaration(p, s.mapper); decl != "" {
		return []string{decl}
	}
	return nil
}

func (s *run) local(l Line) []string {
	g := localRe.FindStringSubmatch(l.Text)
	decl := "val "
	if g[1] == "var" {
		decl = "var "
	}
	decl += g[2]
	if g[3] != "" {
		decl += ": " + s.mapper.Map(g[3])
	}
	if g[4] != "" {
		decl += " = " + Expr(g[4])
	}
	return []string{decl}
}

func (s *run) tabView(l Line) []string {
	s.tabs = nil
	s.push("        }\n    }\n}", kindTab)
	return []string{
		"var selectedTab by remember { mutableStateOf(0) }",
		"Scaffold(",
		"    bottomBar = {",
		"        NavigationBar {",
		"            " + tabItemsPlaceholder,
		"        }",
		"    }",
		") { innerPadding ->",
		"    Box(modifier = Modifier.padding(innerPadding)) {",
		"        when (selectedTab) {",
	}
}

func (s *run) container(l Line) []string {
	name := l.Name()
	args := s.headArgs(l)
	m := s.modifiers(l.Modifiers, targetLayout)
	body, params := l.TrailerBody()
	open := trailerOpen(l)

	switch containers[name] {
	case "Section":
		return s.section(l, args, m, body, open)
	case "LazyColumn":
		return s.lazy(l, args, m, body, params, open)
	}

	kotlin := containers[name]
	kind := kindBlock
	var chain, own []string
	switch kotlin {
	case "Column":
		kind = kindColumn
		chain = []string{".fillMaxWidth()"}
		if strings.HasPrefix(name, "Navigation") {
			chain = []string{".fillMaxSize()"}
		}
		if v, ok := Named(args, "alignment"); ok {
			own = append(own, "horizontalAlignment = "+columnAlignment(v))
		}
		if v, ok := Named(args, "spacing"); ok {
			own = append(own, "verticalArrangement = Arrangement.spacedBy("+Dp(v)+")")
		}
	case "Row":
		kind = kindRow
		chain = []string{".fillMaxWidth()"}
		if v, ok := Named(args, "alignment"); ok {
			own = append(own, "verticalAlignment = "+rowAlignment(v))
		}
		if v, ok := Named(args, "spacing"); ok {
			own = append(own, "horizontalArrangement = Arrangement.spacedBy("+Dp(v)+")")
		}
	case "Box":
		if v, ok := Named(args, "alignment"); ok {
			own = append(own, "contentAlignment = "+boxAlignment(v))
		}
	case "BoxWithConstraints":
		chain = []string{".fillMaxSize()"}
	}

	m.chain = append(chain, m.chain...)
	head := kotlin + "(" + m.with(own...) + ")"
	m.chain, m.params = nil, nil

	if open {
		s.push("}", kind)
		return s.finish([]string{head + " {"}, m, l)
	}
	return s.finish(s.wrapBody(head, body, kind), m, l)
}

func (s *run) lazy(l Line, args []Arg, m mods, body, params string, open bool) []string {
	kotlin := "LazyColumn"
	if axis, ok := Positional(args, 0); ok && strings.Contains(axis, "horizontal") {
		kotlin = "LazyRow"
	} else if axis, ok := Named(args, "axes"); ok && strings.Contains(axis, "horizontal") {
		kotlin = "LazyRow"
	}
	m.chain = append([]string{".fillMaxSize()"}, m.chain...)
	head := kotlin + "(" + m.with() + ")"
	m.chain, m.params = nil, nil

	// List(items) { item in ... } iterates directly.
	if coll, ok := Positional(args, 0); ok && l.Name() == "List" {
		items := s.iteration(coll, args, params, true)
		if open {
			s.push("}\n}", kindBlock)
			return s.finish([]string{head + " {", "    " + items}, m, l)
		}
		lines := []string{head + " {", "    " + items}
		for _, f := range s.fragment(body, kindBlock) {
			lines = append(lines, "        "+f)
		}
		return s.finish(append(lines, "    }", "}"), m, l)
	}

	if open {
		s.push("}", kindLazy)
		return s.finish([]string{head + " {"}, m, l)
	}
	return s.finish(s.wrapBody(head, body, kindLazy), m, l)
}

func (s *run) section(l Line, args []Arg, m mods, body string, open bool) []string {
	title, ok := Positional(args, 0)
	if !ok {
		if h, hok := Named(args, "header"); hok {
			if inner, found := strings.CutPrefix(h, "Text("); found {
				title, ok = strings.TrimSuffix(inner, ")"), true
			}
		}
	}

	if s.top().kind == kindLazy {
		s.noWrap = true
		var lines []string
		if ok {
			lines = append(lines, "item { Text(text = "+Expr(title)+", style = MaterialTheme.typography.titleSmall) }")
		}
		if open {
			s.push("", kindLazy)
			return lines
		}
		return append(lines, s.fragment(body, kindLazy)...)
	}

	lines := []string{"Column(" + m.with("modifier = Modifier.fillMaxWidth()") + ") {"}
	m.params = nil
	if ok {
		lines = append(lines, "    Text(text = "+Expr(title)+", style = MaterialTheme.typography.titleSmall)")
	}
	if open {
		s.push("}", kindColumn)
		return s.finish(lines, m, l)
	}
	for _, f := range s.fragment(body, kindColumn) {
		lines = append(lines, "    "+f)
	}
	return s.finish(append(lines, "}"), m, l)
}

func columnAlignment(v string) string {
	switch strings.TrimPrefix(v, ".") {
	case "leading":
		return "Alignment.Start"
	case "trailing":
		return "Alignment.End"
	}
	return "Alignment.CenterHorizontally"
}

func rowAlignment(v string) string {
	switch strings.TrimPrefix(v, ".") {
	case "top", "firstTextBaseline":
		return "Alignment.Top"
	case "bottom", "lastTextBaseline":
		return "Alignment.Bottom"
	}
	return "Alignment.CenterVertically"
}

var boxAlignments = map[string]string{
	"topLeading": "TopStart", "top": "TopCenter", "topTrailing": "TopEnd",
	"leading": "CenterStart", "center": "Center", "trailing": "CenterEnd",
	"bottomLeading": "BottomStart", "bottom": "BottomCenter", "bottomTrailing": "BottomEnd",
}

func boxAlignment(v string) string {
	if a, ok := boxAlignments[strings.TrimPrefix(v, ".")]; ok {
		return "Alignment." + a
	}
	return "Alignment.Center"
}

// iteration renders the loop header for a collection: `items(list) {
// item ->` inside lazy lists, `list.forEach { item ->` elsewhere.
func (s *run) iteration(coll string, args []Arg, params string, lazy bool) string {
	coll = strings.TrimSpace(coll)
	if strings.Contains(params, ",") {
		params = "(" + params + ")"
	}
	lambda := " {"
	if params != "" {
		lambda = " { " + params + " ->"
	}

	var key string
	if id, ok := Named(args, "id"); ok && id != `\.self` && strings.HasPrefix(id, `\.`) {
		key = ", key = { it." + strings.TrimPrefix(id, `\.`) + " }"
	}

	if g := enumerateRe.FindStringSubmatch(coll); g != nil {
		if lazy {
			return "items(" + Expr(g[1]) + ".withIndex().toList())" + lambda
		}
		return Expr(g[1]) + ".withIndex().forEach" + lambda
	}
	if g := rangeRe.FindStringSubmatch(coll); g != nil {
		lo, hi := Expr(g[1]), Expr(g[3])
		op := " until "
		if g[2] == "..." {
			op = ".."
		}
		if lazy && lo == "0" && op == " until " {
			return "items(" + hi + ")" + lambda
		}
		if lazy {
			return "items((" + lo + op + hi + ").toList())" + lambda
		}
		return "(" + lo + op + hi + ").forEach" + lambda
	}
	if base, ok := strings.CutSuffix(coll, ".indices"); ok && lazy {
		return "items(" + Expr(base) + ".size)" + lambda
	}
	if lazy {
		return "items(" + Expr(coll) + key + ")" + lambda
	}
	return Expr(coll) + ".forEach" + lambda
}

func (s *run) forEach(l Line) []string {
	args := s.headArgs(l)
	coll, ok := Positional(args, 0)
	if !ok {
		return s.unconverted(l.Text)
	}
	body, params := l.TrailerBody()
	lazy := s.top().kind == kindLazy
	if lazy {
		s.noWrap = true
	}
	head := s.iteration(coll, args, params, lazy)
	m := s.modifiers(l.Modifiers, targetLayout)

	if trailerOpen(l) || l.Trailer == "" {
		return s.finish([]string{head}, m, l)
	}
	frag := s.fragment(body, kindBlock)
	if len(frag) == 1 {
		return s.finish([]string{head + " " + strings.TrimSpace(frag[0]) + " }"}, m, l)
	}
	lines := []string{head}
	for _, f := range frag {
		lines = append(lines, "    "+f)
	}
	return s.finish(append(lines, "}"), m, l)
}

// openBrace returns the index of the first '{' outside parentheses and
// string literals.
func openBrace(text string) int {
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
		}
	}
	return -1
}

func scopeKind(k frameKind) frameKind {
	if k == kindColumn || k == kindRow {
		return k
	}
	return kindBlock
}

func (s *run) ifStmt(l Line) []string {
	brace := openBrace(l.Text)
	if brace < 0 || strings.HasPrefix(l.Text, "if #") || strings.HasPrefix(l.Text, "if case ") {
		return s.unconverted(l.Text)
	}
	head := "if (" + Expr(strings.TrimSpace(l.Text[3:brace])) + ")"
	end := matching(l.Text, brace, '{', '}')
	if end < 0 {
		s.push("}", scopeKind(s.top().kind))
		return []string{head + " {"}
	}

	lines := s.wrapBody(head, l.Text[brace+1:end], scopeKind(s.top().kind))
	rest := strings.TrimSpace(l.Text[end+1:])
	switch {
	case rest == "":
	case rest == "else {":
		lines[len(lines)-1] += " else {"
		s.push("}", scopeKind(s.top().kind))
	case strings.HasPrefix(rest, "else {") && strings.HasSuffix(rest, "}"):
		inner := strings.TrimSpace(rest[len("else {") : len(rest)-1])
		lines[len(lines)-1] += " else { " + s.inline(inner) + " }"
	default:
		lines[len(lines)-1] += todoSuffix([]string{rest})
	}
	return lines
}

func (s *run) ifLet(l Line) []string {
	brace := openBrace(l.Text)
	if brace < 0 {
		return s.unconverted(l.Text)
	}
	var heads []string
	for _, part := range splitTopLevel(l.Text[3:brace], ',') {
		part = strings.TrimSpace(part)
		if g := letBindRe.FindStringSubmatch(part); g != nil {
			subject := g[2]
			if subject == "" {
				subject = g[1]
			}
			heads = append(heads, Expr(subject)+"?.let { "+g[1]+" ->")
			continue
		}
		if strings.HasPrefix(part, "case ") {
			return s.unconverted(l.Text)
		}
		heads = append(heads, "if ("+Expr(part)+") {")
	}

	end := matching(l.Text, brace, '{', '}')
	if end >= 0 {
		inner := s.inline(l.Text[brace+1 : end])
		for i := len(heads) - 1; i >= 0; i-- {
			inner = heads[i] + " " + inner + " }"
		}
		return []string{inner}
	}

	lines := make([]string, len(heads))
	var closer []string
	for i, h := range heads {
		lines[i] = strings.Repeat("    ", i) + h
	}
	for i := len(heads) - 1; i >= 0; i-- {
		closer = append(closer, strings.Repeat("    ", i)+"}")
	}
	kind := kindBlock
	if len(heads) == 1 {
		kind = kindLet
	}
	s.push(strings.Join(closer, "\n"), kind)
	return lines
}

func (s *run) text(l Line) []string {
	m := s.modifiers(l.Modifiers, targetText)
	return s.finish([]string{"Text(" + m.with("text = "+textValue(s.headArgs(l))) + ")"}, m, l)
}

func textValue(args []Arg) string {
	if v, ok := Named(args, "verbatim"); ok {
		return Expr(v)
	}
	v, ok := Positional(args, 0)
	if !ok {
		return `""`
	}
	if g := localizedRe.FindStringSubmatch(v); g != nil {
		v = g[1]
	}
	if g := formatRe.FindStringSubmatch(v); g != nil {
		return g[1] + ".format(" + Expr(g[2]) + ")"
	}
	if _, ok := Named(args, "style"); ok {
		return Expr(v) + ".toString()"
	}
	return Expr(v)
}

// actionLambda turns a Button action into a Kotlin lambda: a closure is
// converted, a function reference is called.
func (s *run) actionLambda(action string) string {
	action = strings.TrimSpace(action)
	if strings.HasPrefix(action, "{") && strings.HasSuffix(action, "}") {
		return "{ " + s.inline(action[1:len(action)-1]) + " }"
	}
	if isIdentPath(action) {
		return "{ " + Expr(action) + "() }"
	}
	return "{ " + Expr(action) + " }"
}

// button handles the SwiftUI Button shapes:
//
//	Button("Save") { save() }          Button(onClick = { save() }) { Text(text = "Save") }
//	Button("Save", action: save)       Button(onClick = { save() }) { Text(text = "Save") }
//	Button("Save") {  ...  }           Button(onClick = {  ...  }) { Text(text = "Save") }
//	Button(action: save) {  label  }   Button(onClick = { save() }) {  label  }
//	Button {  action  } label: {  }    Button(onClick = {  action  }) {  label  }
func (s *run) button(l Line) []string {
	args := s.headArgs(l)
	m := s.modifiers(l.Modifiers, targetControl)
	suffix := ""
	if extra := m.with(); extra != "" {
		suffix = ", " + extra
	}
	m.chain, m.params = nil, nil

	title, hasTitle := Positional(args, 0)
	if hasTitle {
		title = textValue(args)
	}
	action, hasAction := Named(args, "action")
	body, _ := l.TrailerBody()
	open := trailerOpen(l)

	switch {
	case hasTitle && hasAction:
		return s.finish([]string{"Button(onClick = " + s.actionLambda(action) + suffix + ") { Text(text = " + title + ") }"}, m, l)
	case hasTitle && open:
		s.push("}"+suffix+") { Text(text = "+title+") }", kindBlock)
		return s.finish([]string{"Button(onClick = {"}, m, l)
	case hasTitle && l.Trailer != "":
		return s.finish([]string{"Button(onClick = { " + s.inline(body) + " }" + suffix + ") { Text(text = " + title + ") }"}, m, l)
	case hasAction && open:
		s.push("}", kindBlock)
		return s.finish([]string{"Button(onClick = " + s.actionLambda(action) + suffix + ") {"}, m, l)
	case hasAction && l.Trailer != "":
		return s.finish(s.wrapBody("Button(onClick = "+s.actionLambda(action)+suffix+")", body, kindBlock), m, l)
	case open:
		f := s.push("})", kindButtonAction)
		f.params = suffix
		return s.finish([]string{"Button(onClick = {"}, m, l)
	case l.Trailer != "" && strings.HasPrefix(l.Rest, "label:"):
		label := strings.TrimSpace(strings.TrimPrefix(l.Rest, "label:"))
		l.Rest = ""
		head := "Button(onClick = { " + s.inline(body) + " }" + suffix + ")"
		end := matching(label, 0, '{', '}')
		switch {
		case strings.HasPrefix(label, "{") && end == len(label)-1:
			return s.finish([]string{head + " { " + s.inline(label[1:end]) + " }"}, m, l)
		case strings.HasPrefix(label, "{") && end < 0:
			return s.finish([]string{head + " {"}, m, l)
		}
	}
	return s.unconverted(l.Text)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return ""
}

func (s *run) image(l Line) []string {
	args := s.headArgs(l)

	if l.Name() == "AsyncImage" {
		url, ok := Named(args, "url")
		if !ok {
			url, _ = Positional(args, 0)
		}
		if g := urlRe.FindStringSubmatch(url); g != nil {
			url = g[1]
		}
		m := s.modifiers(l.Modifiers, targetImage)
		if trailerOpen(l) {
			s.push("", kindSkip)
		}
		l.Rest = ""
		return s.finish([]string{"AsyncImage(" + m.with("model = "+Expr(url), "contentDescription = null") + ")"}, m, l)
	}

	if sys, ok := Named(args, "systemName"); ok {
		icon := "Icons.Default.Info"
		if lit := unquote(sys); lit != "" {
			icon = s.tables.Icon(lit)
		}
		m := s.modifiers(l.Modifiers, targetIcon)
		return s.finish([]string{"Icon(" + m.with("imageVector = "+icon, "contentDescription = null") + ")"}, m, l)
	}

	if name, ok := Positional(args, 0); ok && unquote(name) != "" {
		m := s.modifiers(l.Modifiers, targetImage)
		res := "painter = painterResource(id = R.drawable." + naming.ResourceName(unquote(name)) + ")"
		return s.finish([]string{"Image(" + m.with(res, "contentDescription = null") + ")"}, m, l)
	}
	return s.unconverted(l.Text)
}

// multiline renders a call with one argument per line.
func multiline(name string, params []string) []string {
	lines := []string{name + "("}
	for i, p := range params {
		if i < len(params)-1 {
			p += ","
		}
		lines = append(lines, "    "+p)
	}
	return append(lines, ")")
}

func (s *run) textField(l Line) []string {
	args := s.headArgs(l)
	value, ok := Named(args, "text")
	if !ok {
		value, ok = Named(args, "value")
	}
	if !ok {
		return s.unconverted(l.Text)
	}
	v := Expr(value)
	m := s.modifiers(l.Modifiers, targetControl)

	params := []string{"value = " + v, "onValueChange = { " + v + " = it }"}
	if label, ok := Positional(args, 0); ok {
		params = append(params, "label = { Text(text = "+Expr(label)+") }")
	}
	switch l.Name() {
	case "SecureField":
		params = append(params, "visualTransformation = PasswordVisualTransformation()")
	case "TextEditor":
		params = append(params, "minLines = 5")
	}
	params = append(params, m.params...)
	params = append(params, "modifier = Modifier.fillMaxWidth()"+strings.Join(m.chain, ""))
	return s.finish(multiline("OutlinedTextField", params), m, l)
}

func (s *run) toggle(l Line) []string {
	args := s.headArgs(l)
	binding, ok := Named(args, "isOn")
	if !ok {
		return s.unconverted(l.Text)
	}
	b := Expr(binding)
	m := s.modifiers(l.Modifiers, targetControl)

	sw := "Switch(" + strings.Join(append([]string{"checked = " + b, "onCheckedChange = { " + b + " = it }"}, m.params...), ", ") + ")"
	rowArgs := []string{"verticalAlignment = Alignment.CenterVertically"}
	if p := modifierParam(m.chain); p != "" {
		rowArgs = append([]string{p}, rowArgs...)
	}
	row := "Row(" + strings.Join(rowArgs, ", ") + ")"
	m.chain, m.params = nil, nil

	if label, ok := Positional(args, 0); ok {
		return s.finish([]string{
			row + " {",
			"    Text(text = " + Expr(label) + ", modifier = Modifier.weight(1f))",
			"    " + sw,
			"}",
		}, m, l)
	}
	if trailerOpen(l) {
		s.push("    "+sw+"\n}", kindRow)
		return s.finish([]string{row + " {"}, m, l)
	}
	if l.Trailer != "" {
		body, _ := l.TrailerBody()
		return s.finish([]string{
			row + " {",
			"    Box(modifier = Modifier.weight(1f)) { " + s.inline(body) + " }",
			"    " + sw,
			"}",
		}, m, l)
	}
	return s.unconverted(l.Text)
}

func viewName(call string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(call), "(")
	return strings.TrimSpace(name)
}

func (s *run) navigationLink(l Line) []string {
	args := s.headArgs(l)
	m := s.modifiers(l.Modifiers, targetControl)
	suffix := ""
	if extra := m.with(); extra != "" {
		suffix = ", " + extra
	}
	m.chain, m.params = nil, nil

	onClick := "{ /* TODO: navigate */ }"
	if dest, ok := Named(args, "destination"); ok {
		onClick = `{ navController.navigate("` + naming.Route(viewName(dest)) + `") }`
	}
	head := "TextButton(onClick = " + onClick + suffix + ")"

	if _, ok := Positional(args, 0); ok {
		return s.finish([]string{head + " { Text(text = " + textValue(args) + ") }"}, m, l)
	}
	switch {
	case trailerOpen(l):
		return s.finish([]string{head + " {"}, m, l)
	case l.Trailer != "":
		body, _ := l.TrailerBody()
		return s.finish(s.wrapBody(head, body, kindBlock), m, l)
	}
	return s.unconverted(l.Text)
}

func (s *run) label(l Line) []string {
	args := s.headArgs(l)
	title, ok := Positional(args, 0)
	if !ok {
		return s.unconverted(l.Text)
	}
	m := s.modifiers(l.Modifiers, targetLayout)
	rowArgs := []string{"verticalAlignment = Alignment.CenterVertically"}
	if p := modifierParam(m.chain); p != "" {
		rowArgs = append([]string{p}, rowArgs...)
	}
	var icon string
	if img, ok := Named(args, "systemImage"); ok {
		icon = "Icon(imageVector = " + s.tables.Icon(unquote(img)) + ", contentDescription = null); Spacer(modifier = Modifier.width(8.dp)); "
	}
	line := "Row(" + strings.Join(rowArgs, ", ") + ") { " + icon + "Text(text = " + Expr(title) + ") }"
	return s.finish([]string{line}, m, l)
}

func (s *run) spacer(l Line) []string {
	args := s.headArgs(l)
	m := s.modifiers(l.Modifiers, targetLayout)
	parent := s.top().kind
	chain := m.chain
	if v, ok := Named(args, "minLength"); ok {
		dim := ".height("
		if parent == kindRow {
			dim = ".width("
		}
		chain = append([]string{dim + Dp(v) + ")"}, chain...)
	}
	if len(chain) == 0 {
		if parent == kindColumn || parent == kindRow {
			chain = []string{".weight(1f)"}
		} else {
			chain = []string{".height(16.dp)"}
		}
	}
	return s.finish([]string{"Spacer(modifier = Modifier" + strings.Join(chain, "") + ")"}, m, l)
}

func (s *run) divider(l Line) []string {
	m := s.modifiers(l.Modifiers, targetLayout)
	return s.finish([]string{"HorizontalDivider(" + m.with() + ")"}, m, l)
}

func (s *run) progress(l Line) []string {
	args := s.headArgs(l)
	m := s.modifiers(l.Modifiers, targetLayout)
	if v, ok := Named(args, "value"); ok {
		p := Float(v)
		if total, ok := Named(args, "total"); ok {
			p += " / " + Float(total)
		}
		return s.finish([]string{"LinearProgressIndicator(" + m.with("progress = { "+p+" }") + ")"}, m, l)
	}
	return s.finish([]string{"CircularProgressIndicator(" + m.with() + ")"}, m, l)
}

func (s *run) slider(l Line) []string {
	args := s.headArgs(l)
	v, ok := Named(args, "value")
	if !ok {
		return s.unconverted(l.Text)
	}
	b := Expr(v)
	own := []string{"value = " + b, "onValueChange = { " + b + " = it }"}
	if r, ok := Named(args, "in"); ok {
		if lo, hi, found := strings.Cut(r, "..."); found {
			own = append(own, "valueRange = "+Float(lo)+".."+Float(hi))
		}
	}
	m := s.modifiers(l.Modifiers, targetControl)
	return s.finish([]string{"Slider(" + m.with(own...) + ")"}, m, l)
}

func (s *run) colorView(l Line) []string {
	g := colorViewRe.FindStringSubmatch(l.Text)
	calls, rest := parseChain(g[2])
	m := s.modifiers(calls, targetLayout)
	chain := m.chain
	if len(chain) == 0 {
		chain = []string{".fillMaxSize()"}
	}
	chain = append(chain, ".background("+s.color(g[1])+")")
	l.Rest = rest
	return s.finish([]string{"Box(modifier = Modifier" + strings.Join(chain, "") + ")"}, m, l)
}

func (s *run) shape(l Line) []string {
	shape, _ := shapeOf(l.Head)
	paint := ".background(MaterialTheme.colorScheme.onSurface)"
	var rest []Call
	for _, c := range l.Modifiers {
		args := SplitArgs(c.Args)
		first, _ := Positional(args, 0)
		switch c.Name {
		case "fill", "foregroundColor", "foregroundStyle":
			paint = ".background(" + s.color(first) + ")"
		case "stroke", "strokeBorder":
			width, ok := Named(args, "lineWidth")
			if !ok {
				width = "1"
			}
			paint = ".border(" + Dp(width) + ", " + s.color(first) + ", " + shape + ")"
		default:
			rest = append(rest, c)
		}
	}
	m := s.modifiers(rest, targetLayout)
	chain := append(m.chain, ".clip("+shape+")", paint)
	return s.finish([]string{"Box(modifier = Modifier" + strings.Join(chain, "") + ")"}, m, l)
}

var effectModifiers = map[string]bool{
	"onAppear": true, "task": true, "onChange": true, "onDisappear": true,
	"alert": true, "sheet": true, "fullScreenCover": true, "tabItem": true,
}

// bareModifiers handles a modifier chain that reached no component, most
// often an effect or sheet attached after a closing brace.
func (s *run) bareModifiers(l Line) []string {
	m := s.modifiers(l.Modifiers, targetLayout)
	var stray []string
	for _, c := range l.Modifiers {
		if !c.Opens && !effectModifiers[c.Name] && !ignoredModifiers[c.Name] {
			stray = append(stray, renderCall(c))
		}
	}
	var lines []string
	if len(stray) > 0 {
		lines = append(lines, todo(strings.Join(stray, "")))
	}
	lines = append(lines, m.effects...)
	if m.opener != nil {
		lines = append(lines, s.openBlock(*m.opener)...)
	}
	return lines
}

func (s *run) subview(l Line) []string {
	name := leadingIdent(l.Text)
	ref := s.views[name]
	rest := l.Text[len(name):]

	var own []string
	if strings.HasPrefix(rest, "(") {
		end := matching(rest, 0, '(', ')')
		if end < 0 {
			return s.unconverted(l.Text)
		}
		own = callArgs(SplitArgs(rest[1:end]))
		rest = rest[end+1:]
	}
	if ref.Screen {
		own = append(own, "navController = navController")
	}

	calls, tail := parseChain(rest)
	m := s.modifiers(calls, targetLayout)
	l.Rest = tail
	return s.finish([]string{ref.Name + "(" + m.with(own...) + ")"}, m, l)
}

func callArgs(args []Arg) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a.Label != "" {
			out = append(out, a.Label+" = "+Expr(a.Value))
		} else {
			out = append(out, Expr(a.Value))
		}
	}
	return out
}

func (s *run) view(l Line) []string {
	name := l.Name()
	kname := name
	own := callArgs(s.headArgs(l))
	if ref, ok := s.views[name]; ok {
		kname = ref.Name
		if ref.Screen {
			own = append(own, "navController = navController")
		}
	}
	m := s.modifiers(l.Modifiers, targetLayout)
	head := kname + "(" + m.with(own...) + ")"
	m.chain, m.params = nil, nil

	switch {
	case trailerOpen(l):
		return s.finish([]string{head + " {"}, m, l)
	case l.Trailer != "":
		body, _ := l.TrailerBody()
		return s.finish(s.wrapBody(head, body, kindBlock), m, l)
	}
	return s.finish([]string{head}, m, l)
}

func (s *run) statement(l Line) []string {
	switch g := guardRe.FindStringSubmatch(l.Text); {
	case g != nil:
		return []string{"val " + g[1] + " = " + Expr(g[2]) + " ?: return"}
	case strings.HasPrefix(l.Text, "guard "):
		return s.unconverted(l.Text)
	}
	if g := forRe.FindStringSubmatch(l.Text); g != nil {
		return []string{"for (" + g[1] + " in " + Expr(g[2]) + ") {"}
	}
	return []string{Expr(l.Text)}
}
