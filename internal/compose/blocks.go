package compose

import (
	"fmt"
	"regexp"
	"strings"
)

// block is a statement wrapper that a modifier with a closure turns into:
// LaunchedEffect for onAppear, an AlertDialog for alert, and so on.
type block struct {
	open   []string
	closer string
	kind   frameKind
}

func (s *run) block(c Call) (block, bool) {
	args := SplitArgs(c.Args)
	_, params := splitClosureParams(c.Closure)

	switch c.Name {
	case "onAppear", "task":
		return block{open: []string{"LaunchedEffect(Unit) {"}, closer: "}"}, true

	case "onChange":
		v, ok := Named(args, "of")
		if !ok {
			v, ok = Positional(args, 0)
		}
		if !ok {
			return block{}, false
		}
		b := block{open: []string{"LaunchedEffect(" + Expr(v) + ") {"}, closer: "}"}
		if params != "" && params != "_" && !strings.Contains(params, ",") {
			b.open = append(b.open, "    val "+params+" = "+Expr(v))
		}
		return b, true

	case "onDisappear":
		return block{open: []string{"DisposableEffect(Unit) {", "    onDispose {"}, closer: "    }\n}"}, true

	case "alert":
		binding, ok := Named(args, "isPresented")
		if !ok {
			return block{}, false
		}
		b := Expr(binding)
		title, ok := Positional(args, 0)
		if !ok {
			title = `"Alert"`
		}
		return block{
			open: []string{
				"if (" + b + ") {",
				"    AlertDialog(",
				"        onDismissRequest = { " + b + " = false },",
				"        title = { Text(text = " + Expr(title) + ") },",
				"        confirmButton = {",
			},
			closer: "        }\n    )\n}",
			kind:   kindAlert,
		}, true

	case "sheet", "fullScreenCover":
		if binding, ok := Named(args, "isPresented"); ok {
			b := Expr(binding)
			return block{
				open: []string{
					"if (" + b + ") {",
					"    ModalBottomSheet(onDismissRequest = { " + b + " = false }) {",
				},
				closer: "    }\n}",
			}, true
		}
		if item, ok := Named(args, "item"); ok {
			b := Expr(item)
			p := params
			if p == "" || p == "_" {
				p = "it"
			}
			return block{
				open: []string{
					b + "?.let { " + p + " ->",
					"    ModalBottomSheet(onDismissRequest = { " + b + " = null }) {",
				},
				closer: "    }\n}",
			}, true
		}
	}
	return block{}, false
}

// inline renders b around a closure that is complete on one line.
func (b block) inline(s *run, closure string) []string {
	body, _ := splitClosureParams(closure)
	frag := s.fragment(body, kindBlock)

	if len(b.open) == 1 && b.closer == "}" && len(frag) <= 1 {
		inner := " "
		if len(frag) == 1 {
			inner = " " + strings.TrimSpace(frag[0]) + " "
		}
		return []string{b.open[0] + inner + "}"}
	}

	last := b.open[len(b.open)-1]
	pad := leadingSpace(last) + "    "
	lines := append([]string{}, b.open...)
	for _, l := range frag {
		lines = append(lines, pad+l)
	}
	return append(lines, strings.Split(b.closer, "\n")...)
}

// openBlock starts the block for a modifier whose closure stays open on
// the line, pushing the frame that will close it.
func (s *run) openBlock(c Call) []string {
	if c.Name == "tabItem" {
		s.captureTab(c.Closure)
		s.push("", kindTabItem)
		return nil
	}
	b, ok := s.block(c)
	if !ok {
		s.push("// }", kindTodo)
		return []string{todo("." + c.Name + "(" + c.Args + ") {")}
	}
	s.push(b.closer, b.kind)
	return b.open
}

var (
	legacyTitleRe   = regexp.MustCompile(`title:\s*Text\((.+?)\)\s*(?:,|\)$)`)
	legacyMessageRe = regexp.MustCompile(`message:\s*Text\((.+?)\)\s*(?:,|\)$)`)
	legacyButtonRe  = regexp.MustCompile(`(?:dismissButton|primaryButton):\s*\.\w+\(\s*Text\((.+?)\)`)
)

// legacyAlert converts `.alert(isPresented:) { Alert(title: ...) }`.
func (s *run) legacyAlert(binding, body string) []string {
	b := Expr(binding)
	title := `"Alert"`
	if g := legacyTitleRe.FindStringSubmatch(body); g != nil {
		title = Expr(g[1])
	}
	button := `"OK"`
	if g := legacyButtonRe.FindStringSubmatch(body); g != nil {
		button = Expr(g[1])
	}
	lines := []string{
		"if (" + b + ") {",
		"    AlertDialog(",
		"        onDismissRequest = { " + b + " = false },",
		"        title = { Text(text = " + title + ") },",
	}
	if g := legacyMessageRe.FindStringSubmatch(body); g != nil {
		lines = append(lines, "        text = { Text(text = "+Expr(g[1])+") },")
	}
	return append(lines,
		"        confirmButton = {",
		"            TextButton(onClick = { "+b+" = false }) { Text(text = "+button+") }",
		"        }",
		"    )",
		"}",
	)
}

// tab is one child of a TabView.
type tab struct {
	title string
	icon  string
}

const tabItemsPlaceholder = "__MAGPIE_TAB_ITEMS__"

var (
	tabLabelRe = regexp.MustCompile(`Label\(\s*"([^"]*)"\s*,\s*systemImage:\s*"([^"]*)"`)
	tabImageRe = regexp.MustCompile(`Image\(\s*systemName:\s*"([^"]*)"`)
	tabTextRe  = regexp.MustCompile(`Text\(\s*"([^"]*)"`)
)

// captureTab records tabItem content on the most recent tab.
func (s *run) captureTab(content string) {
	if len(s.tabs) == 0 {
		return
	}
	t := &s.tabs[len(s.tabs)-1]
	if g := tabLabelRe.FindStringSubmatch(content); g != nil {
		t.title, t.icon = g[1], g[2]
		return
	}
	if g := tabImageRe.FindStringSubmatch(content); g != nil {
		t.icon = g[1]
	}
	if g := tabTextRe.FindStringSubmatch(content); g != nil {
		t.title = g[1]
	}
}

// tabItems renders the NavigationBarItems for every captured tab.
func (s *run) tabItems(indent string) []string {
	var lines []string
	for i, t := range s.tabs {
		title := t.title
		if title == "" {
			title = fmt.Sprintf("Tab %d", i+1)
		}
		lines = append(lines,
			indent+"NavigationBarItem(",
			fmt.Sprintf("%s    selected = selectedTab == %d,", indent, i),
			fmt.Sprintf("%s    onClick = { selectedTab = %d },", indent, i),
			fmt.Sprintf("%s    icon = { Icon(imageVector = %s, contentDescription = %q) },", indent, s.tables.Icon(t.icon), title),
			fmt.Sprintf("%s    label = { Text(text = %q) }", indent, title),
			indent+")",
		)
	}
	return lines
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
