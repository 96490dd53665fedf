package compose

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// target selects which modifiers become named parameters of the component
// instead of Modifier chain entries.
type target int

const (
	targetLayout target = iota
	targetText
	targetIcon
	targetImage
	targetControl
)

// mods is the translation of a modifier chain.
type mods struct {
	chain   []string // ".padding(8.dp)"
	params  []string // "style = MaterialTheme.typography.titleLarge"
	effects []string // statements emitted after the component
	todos   []string // modifiers left as written
	opener  *Call    // a modifier whose closure stays open on this line
}

// ignoredModifiers have no Compose counterpart worth emitting. They are
// dropped silently.
var ignoredModifiers = map[string]bool{
	"navigationTitle": true, "navigationBarTitleDisplayMode": true, "navigationBarHidden": true,
	"navigationBarBackButtonHidden": true, "navigationBarItems": true, "toolbarBackground": true,
	"toolbarColorScheme": true, "listStyle": true, "listRowSeparator": true, "listRowInsets": true,
	"listRowBackground": true, "buttonStyle": true, "textFieldStyle": true, "pickerStyle": true,
	"toggleStyle": true, "labelStyle": true, "tag": true, "environment": true, "environmentObject": true,
	"accessibilityLabel": true, "accessibilityIdentifier": true, "accessibilityHint": true,
	"accessibilityElement": true, "ignoresSafeArea": true, "edgesIgnoringSafeArea": true,
	"animation": true, "transition": true, "id": true, "keyboardType": true, "autocapitalization": true,
	"textInputAutocapitalization": true, "autocorrectionDisabled": true, "disableAutocorrection": true,
	"textContentType": true, "submitLabel": true, "preferredColorScheme": true,
	"scrollContentBackground": true, "presentationDetents": true, "presentationDragIndicator": true,
	"statusBar": true, "statusBarHidden": true, "contentShape": true, "fixedSize": true,
	"layoutPriority": true, "symbolRenderingMode": true, "symbolVariant": true,
	"minimumScaleFactor": true, "truncationMode": true, "allowsHitTesting": true,
	"interactiveDismissDisabled": true, "resizable": true, "renderingMode": true, "imageScale": true,
	"interpolation": true, "scrollIndicators": true, "scrollDismissesKeyboard": true,
	"controlSize": true, "headerProminence": true, "badge": true, "focused": true,
}

var (
	edgeNames = map[string]string{
		"top": "top", "bottom": "bottom", "leading": "start", "trailing": "end",
		"horizontal": "horizontal", "vertical": "vertical",
	}
	fontWeightRe = regexp.MustCompile(`\.weight\(\s*\.(\w+)\s*\)`)
	cornerRe     = regexp.MustCompile(`cornerRadius:\s*([^,)]+)`)
	fillRe       = regexp.MustCompile(`^(\w+\([^)]*\))\.fill\((.+)\)$`)
)

func (s *run) modifiers(calls []Call, t target) mods {
	var m mods
	for i := range calls {
		if calls[i].Opens {
			m.opener = &calls[i]
			continue
		}
		s.modifier(&m, calls[i], t)
	}
	return m
}

func (s *run) modifier(m *mods, c Call, t target) {
	args := SplitArgs(c.Args)
	first, _ := Positional(args, 0)

	switch c.Name {
	case "padding":
		m.chain = append(m.chain, padding(args))
	case "frame":
		m.chain = append(m.chain, frameChain(args)...)
	case "background":
		if bg := s.background(c); bg != "" {
			m.chain = append(m.chain, bg)
			return
		}
		m.todos = append(m.todos, renderCall(c))
	case "foregroundColor", "foregroundStyle":
		switch t {
		case targetText:
			m.params = append(m.params, "color = "+s.color(first))
		case targetIcon:
			m.params = append(m.params, "tint = "+s.color(first))
		}
	case "tint", "accentColor":
		if t == targetIcon {
			m.params = append(m.params, "tint = "+s.color(first))
		}
	case "font":
		if t != targetText {
			return
		}
		if p := s.font(c.Args); p != nil {
			m.params = append(m.params, p...)
			return
		}
		m.todos = append(m.todos, renderCall(c))
	case "fontWeight":
		if t == targetText {
			m.params = append(m.params, "fontWeight = "+s.tables.FontWeight(first))
		}
	case "bold":
		if t == targetText {
			m.params = append(m.params, "fontWeight = FontWeight.Bold")
		}
	case "italic":
		if t == targetText {
			m.params = append(m.params, "fontStyle = FontStyle.Italic")
		}
	case "multilineTextAlignment":
		if t == targetText {
			m.params = append(m.params, "textAlign = "+textAlign(first))
		}
	case "lineLimit":
		if t == targetText && first != "" && first != "nil" {
			m.params = append(m.params, "maxLines = "+first)
		}
	case "cornerRadius":
		m.chain = append(m.chain, ".clip(RoundedCornerShape("+Dp(first)+"))")
	case "clipShape":
		if shape, ok := shapeOf(first); ok {
			m.chain = append(m.chain, ".clip("+shape+")")
			return
		}
		m.todos = append(m.todos, renderCall(c))
	case "opacity":
		m.chain = append(m.chain, ".alpha("+Float(first)+")")
	case "shadow":
		radius, ok := Named(args, "radius")
		if !ok {
			radius = first
		}
		if radius == "" {
			radius = "4"
		}
		m.chain = append(m.chain, ".shadow("+Dp(radius)+")")
	case "border":
		width, ok := Named(args, "width")
		if !ok {
			width = "1"
		}
		m.chain = append(m.chain, fmt.Sprintf(".border(%s, %s)", Dp(width), s.color(first)))
	case "offset":
		var parts []string
		for _, axis := range []string{"x", "y"} {
			if v, ok := Named(args, axis); ok {
				parts = append(parts, axis+" = "+Dp(v))
			}
		}
		m.chain = append(m.chain, ".offset("+strings.Join(parts, ", ")+")")
	case "onTapGesture":
		if c.HasClosure && len(args) == 0 {
			m.chain = append(m.chain, ".clickable { "+s.inline(c.Closure)+" }")
			return
		}
		m.todos = append(m.todos, renderCall(c))
	case "disabled":
		if t == targetControl {
			m.params = append(m.params, "enabled = "+negate(Expr(first)))
			return
		}
		m.todos = append(m.todos, renderCall(c))
	case "aspectRatio":
		if mode, ok := Named(args, "contentMode"); ok && t == targetImage {
			m.params = append(m.params, "contentScale = "+contentScale(mode))
		}
		if first != "" && !strings.HasPrefix(first, ".") {
			m.chain = append(m.chain, ".aspectRatio("+Float(first)+")")
		}
	case "scaledToFit":
		if t == targetImage {
			m.params = append(m.params, "contentScale = ContentScale.Fit")
		}
	case "scaledToFill":
		if t == targetImage {
			m.params = append(m.params, "contentScale = ContentScale.Crop")
		}
	case "tabItem":
		s.captureTab(c.Closure)
	case "onAppear", "task", "onChange", "onDisappear", "alert", "sheet", "fullScreenCover":
		if binding, ok := Named(args, "isPresented"); ok && c.Name == "alert" && strings.HasPrefix(c.Closure, "Alert(") {
			m.effects = append(m.effects, s.legacyAlert(binding, c.Closure)...)
			return
		}
		b, ok := s.block(c)
		if !ok {
			m.todos = append(m.todos, renderCall(c))
			return
		}
		m.effects = append(m.effects, b.inline(s, c.Closure)...)
	default:
		if !ignoredModifiers[c.Name] {
			m.todos = append(m.todos, renderCall(c))
		}
	}
}

// padding translates the SwiftUI padding overloads:
//
//	.padding()                      .padding(16.dp)
//	.padding(8)                     .padding(8.dp)
//	.padding(.horizontal, 20)       .padding(horizontal = 20.dp)
//	.padding([.top, .leading], 4)   .padding(top = 4.dp, start = 4.dp)
//	.padding([.top, .bottom], 4)    .padding(vertical = 4.dp)
//	.padding(EdgeInsets(top: 1...)) .padding(top = 1.dp, ...)
func padding(args []Arg) string {
	if len(args) == 0 {
		return ".padding(16.dp)"
	}
	first := args[0].Value
	if strings.HasPrefix(first, "EdgeInsets(") {
		inner := strings.TrimSuffix(strings.TrimPrefix(first, "EdgeInsets("), ")")
		var parts []string
		for _, a := range SplitArgs(inner) {
			if edge, ok := edgeNames[a.Label]; ok {
				parts = append(parts, edge+" = "+Dp(a.Value))
			}
		}
		return ".padding(" + strings.Join(parts, ", ") + ")"
	}
	if !strings.HasPrefix(first, ".") && !strings.HasPrefix(first, "[") {
		return ".padding(" + Dp(first) + ")"
	}

	amount := "16"
	if len(args) > 1 {
		amount = args[1].Value
	}
	var edges []string
	for _, e := range strings.Split(strings.Trim(first, "[]"), ",") {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if edge, ok := edgeNames[e]; ok && !slices.Contains(edges, edge) {
			edges = append(edges, edge)
		}
	}
	switch {
	case len(edges) == 0:
		return ".padding(" + Dp(amount) + ")"
	case sameEdges(edges, "top", "bottom"):
		edges = []string{"vertical"}
	case sameEdges(edges, "start", "end"):
		edges = []string{"horizontal"}
	}
	parts := make([]string, len(edges))
	for i, edge := range edges {
		parts[i] = edge + " = " + Dp(amount)
	}
	return ".padding(" + strings.Join(parts, ", ") + ")"
}

// sameEdges reports whether edges is exactly the pair a, b in any order.
func sameEdges(edges []string, a, b string) bool {
	return len(edges) == 2 && slices.Contains(edges, a) && slices.Contains(edges, b)
}

// frameChain maps frame(width:height:) to size modifiers and frame(maxWidth:
// .infinity) to the fillMax family. Alignment is dropped.
func frameChain(args []Arg) []string {
	get := func(label string) string {
		v, _ := Named(args, label)
		return v
	}
	width, height := get("width"), get("height")
	maxWidth, maxHeight := get("maxWidth"), get("maxHeight")
	minWidth, minHeight := get("minWidth"), get("minHeight")

	var chain []string
	switch {
	case maxWidth == ".infinity" && maxHeight == ".infinity":
		chain = append(chain, ".fillMaxSize()")
	case maxWidth == ".infinity":
		chain = append(chain, ".fillMaxWidth()")
	case maxHeight == ".infinity":
		chain = append(chain, ".fillMaxHeight()")
	}
	if maxWidth != "" && maxWidth != ".infinity" {
		chain = append(chain, ".widthIn(max = "+Dp(maxWidth)+")")
	}
	if maxHeight != "" && maxHeight != ".infinity" {
		chain = append(chain, ".heightIn(max = "+Dp(maxHeight)+")")
	}

	switch {
	case width != "" && width == height:
		chain = append(chain, ".size("+Dp(width)+")")
	case width != "" && height != "":
		chain = append(chain, ".size(width = "+Dp(width)+", height = "+Dp(height)+")")
	case width != "":
		chain = append(chain, ".width("+Dp(width)+")")
	case height != "":
		chain = append(chain, ".height("+Dp(height)+")")
	}

	if minWidth != "" || minHeight != "" {
		var parts []string
		if minWidth != "" {
			parts = append(parts, "minWidth = "+Dp(minWidth))
		}
		if minHeight != "" {
			parts = append(parts, "minHeight = "+Dp(minHeight))
		}
		chain = append(chain, ".defaultMinSize("+strings.Join(parts, ", ")+")")
	}
	return chain
}

func (s *run) background(c Call) string {
	if c.HasClosure {
		return ""
	}
	v := strings.TrimSpace(c.Args)
	switch {
	case v == "":
		return ""
	case strings.HasSuffix(v, "Material"):
		return ".background(MaterialTheme.colorScheme.surfaceVariant)"
	case fillRe.MatchString(v):
		g := fillRe.FindStringSubmatch(v)
		if shape, ok := shapeOf(g[1]); ok {
			return ".background(" + s.color(g[2]) + ", " + shape + ")"
		}
		return ""
	case isColor(v):
		return ".background(" + s.color(v) + ")"
	}
	return ""
}

func isColor(v string) bool {
	return strings.HasPrefix(v, "Color") || (strings.HasPrefix(v, ".") && isIdentPath(v[1:]))
}

// color translates a SwiftUI color expression. Named colors go through the
// color table, asset colors become colorResource lookups and anything else
// is passed through as an expression.
func (s *run) color(v string) string {
	v = strings.TrimSpace(v)
	alpha := ""
	if i := strings.LastIndex(v, ".opacity("); i > 0 && strings.HasSuffix(v, ")") {
		alpha = v[i+len(".opacity(") : len(v)-1]
		v = v[:i]
	}

	var out string
	switch {
	case strings.HasPrefix(v, `Color("`):
		name := strings.Trim(strings.TrimPrefix(v, "Color"), `()"`)
		out = "colorResource(id = R.color." + naming.ResourceName(name) + ")"
	case strings.HasPrefix(v, "Color(red:"):
		var parts []string
		for _, a := range SplitArgs(strings.TrimSuffix(strings.TrimPrefix(v, "Color("), ")")) {
			parts = append(parts, a.Label+" = "+Float(a.Value))
		}
		out = "Color(" + strings.Join(parts, ", ") + ")"
	case isColor(v):
		out = s.tables.Color(v)
	default:
		out = Expr(v)
	}
	if alpha != "" {
		out += ".copy(alpha = " + Float(alpha) + ")"
	}
	return out
}

// font translates .font(...) into Text parameters, or nil when the
// argument is not a recognisable font expression.
func (s *run) font(raw string) []string {
	raw = strings.TrimSpace(raw)
	base := raw
	var weight string
	if i := strings.Index(base, ".bold()"); i > 0 {
		weight = "FontWeight.Bold"
		base = base[:i]
	}
	if g := fontWeightRe.FindStringSubmatch(base); g != nil {
		weight = s.tables.FontWeight(g[1])
		base = base[:strings.Index(base, ".weight(")]
	}

	var params []string
	switch {
	case strings.HasPrefix(base, ".system(") || strings.HasPrefix(base, ".custom("):
		open := strings.IndexByte(base, '(')
		args := SplitArgs(strings.TrimSuffix(base[open+1:], ")"))
		if style, ok := Positional(args, 0); ok && strings.HasPrefix(style, ".") {
			params = append(params, "style = "+s.tables.Font(style))
		}
		if size, ok := Named(args, "size"); ok {
			params = append(params, "fontSize = "+sp(size))
		}
		if w, ok := Named(args, "weight"); ok {
			weight = s.tables.FontWeight(w)
		}
	case strings.HasPrefix(base, ".") && isIdentPath(base[1:]):
		params = append(params, "style = "+s.tables.Font(base))
	default:
		return nil
	}
	if weight != "" {
		params = append(params, "fontWeight = "+weight)
	}
	return params
}

func sp(v string) string {
	if isNumber(v) {
		return strings.TrimSuffix(v, ".0") + ".sp"
	}
	return "(" + Expr(v) + ").sp"
}

func textAlign(v string) string {
	switch strings.TrimPrefix(v, ".") {
	case "leading":
		return "TextAlign.Start"
	case "trailing":
		return "TextAlign.End"
	}
	return "TextAlign.Center"
}

func contentScale(mode string) string {
	if strings.TrimPrefix(mode, ".") == "fill" {
		return "ContentScale.Crop"
	}
	return "ContentScale.Fit"
}

// shapeOf maps SwiftUI shape values to Compose shapes.
func shapeOf(v string) (string, bool) {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasPrefix(v, "Circle"), strings.HasPrefix(v, ".circle"), strings.HasPrefix(v, "Ellipse"):
		return "CircleShape", true
	case strings.HasPrefix(v, "Capsule"), strings.HasPrefix(v, ".capsule"):
		return "RoundedCornerShape(50)", true
	case strings.HasPrefix(v, "RoundedRectangle"), strings.HasPrefix(v, ".rect(cornerRadius"):
		if g := cornerRe.FindStringSubmatch(v); g != nil {
			return "RoundedCornerShape(" + Dp(g[1]) + ")", true
		}
		return "RoundedCornerShape(8.dp)", true
	case strings.HasPrefix(v, "Rectangle"), strings.HasPrefix(v, ".rect"):
		return "RectangleShape", true
	}
	return "", false
}

func negate(cond string) string {
	switch cond {
	case "true":
		return "false"
	case "false":
		return "true"
	}
	if isIdentPath(cond) {
		return "!" + cond
	}
	return "!(" + cond + ")"
}

// renderCall writes a modifier back out for a TODO comment. Closure bodies
// are elided so the comment never carries unbalanced brackets.
func renderCall(c Call) string {
	s := "." + c.Name
	if c.HasArgs {
		s += "(" + c.Args + ")"
	}
	if c.HasClosure || c.Opens {
		s += " {...}"
	}
	return s
}

// modifierParam renders the chain as a `modifier =` argument, or "" when
// the chain is empty.
func modifierParam(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return "modifier = Modifier" + strings.Join(chain, "")
}

// with joins the component's own arguments with the translated modifier
// parameters.
func (m mods) with(own ...string) string {
	all := append([]string{}, own...)
	all = append(all, m.params...)
	if p := modifierParam(m.chain); p != "" {
		all = append(all, p)
	}
	return strings.Join(all, ", ")
}

func todoSuffix(todos []string) string {
	if len(todos) == 0 {
		return ""
	}
	return "  // TODO: Convert SwiftUI: " + strings.Join(todos, "")
}
