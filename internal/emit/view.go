package emit

import (
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/compose"
	"github.com/simonhull/firebird-suite/magpie/internal/signature"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

var (
	bodyRe         = regexp.MustCompile(`var\s+body\s*:\s*some\s+View\s*\{`)
	viewPropertyRe = regexp.MustCompile(`^(?:@\w+\s+)*(?:(?:private|fileprivate)\s+)?var\s+(\w+)\s*:\s*some\s+View\s*\{`)
	viewFuncRe     = regexp.MustCompile(`^(?:@\w+\s+)*(?:(?:private|fileprivate)\s+)?func\s+(\w+)\s*\(([^)]*)\)\s*->\s*some\s+View\s*\{`)
	privateRe      = regexp.MustCompile(`^(?:@\w+\s+)*(?:private|fileprivate)\s+(?:let|var)\s+(\w+)`)
	resourceRe     = regexp.MustCompile(`\bR\.(?:drawable|string|color)\.`)
)

// screenMarkers in a view's source make it a navigation destination.
var screenMarkers = []string{
	"NavigationView", "NavigationStack", "NavigationSplitView", "TabView",
	"NavigationLink", "navigationDestination", "navigationTitle", "@main", "dismiss()",
}

var componentSuffixes = []string{
	"Row", "Cell", "Card", "Button", "Badge", "Item", "Header", "Footer", "Component",
	"Label", "Field", "Chip", "Tile", "Bar", "Indicator", "Avatar", "Section",
}

// IsScreen decides whether a SwiftUI view becomes a screen (a composable
// taking a NavController) or a reusable component. Navigation markers in
// content win; then name suffixes decide: *Screen, *Page and *View are
// screens unless the stem reads like a component (ItemRowView, ProfileCard).
func IsScreen(filename, content string) bool {
	for _, m := range screenMarkers {
		if strings.Contains(content, m) {
			return true
		}
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem := naming.TrimRoleSuffix(name, "View")
	for _, s := range componentSuffixes {
		if strings.HasSuffix(stem, s) {
			return false
		}
	}
	for _, s := range []string{"Screen", "Page", "View"} {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ComposableName is the Kotlin function a SwiftUI view converts to:
// HomeView → HomeScreen for screens, unchanged for components.
func ComposableName(name string, screen bool) string {
	if !screen {
		return name
	}
	return naming.TrimRoleSuffix(name, "View", "Screen", "Page") + "Screen"
}

type subview struct {
	Name   string
	Params string
	Body   string
	OptIn  bool
	key    string
	swift  string
}

type viewData struct {
	Name            string
	Params          []string
	States          []string
	Scope           bool
	OptIn           bool
	SurfaceModifier string
	Body            string
	Subviews        []subview
	Preview         bool
	PreviewArgs     string
	Dropped         []string
}

// View renders a SwiftUI view as a composable. State properties become
// remember/koinViewModel declarations, plain stored properties become
// parameters, computed `some View` properties and @ViewBuilder functions
// become private composables, and the body is rewritten inside a Surface.
func (e *Emitter) View(u *swift.Unit, content, filename string) (GeneratedFile, error) {
	if filename == "" {
		filename = u.ClassName + ".swift"
	}
	screen, ok := e.screens[u.ClassName]
	if !ok {
		screen = IsScreen(filename, content)
	}
	d := viewData{
		Name:            ComposableName(u.ClassName, screen),
		SurfaceModifier: "modifier",
		Dropped:         u.Dropped,
	}
	if screen {
		d.SurfaceModifier = "modifier.fillMaxSize()"
	}

	lines := memberLines(content)
	private := make(map[string]bool)
	for _, l := range lines {
		if m := privateRe.FindStringSubmatch(l); m != nil {
			private[m[1]] = true
		}
		if p, ok := compose.ParseStateLine(l); ok {
			if decl := compose.StateDeclaration(p, e.mapper); decl != "" {
				d.States = append(d.States, decl)
			}
		}
	}

	previewable := true
	var previewArgs []string
	for _, p := range storedProperties(u, content) {
		if compose.IsStateProperty(p) || len(p.Attributes) > 0 {
			continue
		}
		typ := e.mapper.MapLoose(p.Type)
		def := typemap.Literal(p.Default, typ)
		if private[p.Name] && def != "" {
			d.States = append(d.States, "val "+p.Name+": "+typ+" = "+def)
			continue
		}
		param := p.Name + ": " + typ
		if def != "" {
			param += " = " + def
		} else if v := typemap.DefaultValue(typ); v != "null" || strings.HasSuffix(typ, "?") {
			previewArgs = append(previewArgs, p.Name+" = "+v)
		} else {
			previewable = false
		}
		d.Params = append(d.Params, param)
	}
	if screen {
		d.Params = append(d.Params, "navController: NavController = rememberNavController()")
	}
	d.Params = append(d.Params, "modifier: Modifier = Modifier")
	d.Preview = previewable
	d.PreviewArgs = strings.Join(previewArgs, ", ")

	src := swift.StripComments(content)
	subs := e.subviews(lines, src)
	views := maps.Clone(e.views)
	if views == nil {
		views = make(map[string]compose.ViewRef)
	}
	for _, sv := range subs {
		views[sv.key] = compose.ViewRef{Name: sv.Name}
	}

	// Subviews that navigate need the controller, which changes how
	// every call site is rewritten, so rewrite twice.
	r := e.rewriter.WithViews(views)
	for i := range subs {
		if strings.Contains(r.Rewrite(subs[i].swift), "navController") {
			views[subs[i].key] = compose.ViewRef{Name: subs[i].Name, Screen: true}
		}
	}
	r = e.rewriter.WithViews(views)

	var all strings.Builder
	for i := range subs {
		sv := &subs[i]
		sv.Body = r.Rewrite(sv.swift)
		params := sv.Params
		if views[sv.key].Screen {
			params = joinParams(params, "navController: NavController")
		}
		sv.Params = joinParams(params, "modifier: Modifier = Modifier")
		sv.OptIn = strings.Contains(sv.Body, "ModalBottomSheet")
		all.WriteString(sv.Body + "\n")
	}
	d.Subviews = subs

	if body, ok := swift.ExtractBlock(src, bodyRe); ok {
		d.Body = r.Rewrite(body)
	}
	all.WriteString(d.Body + "\n" + strings.Join(d.States, "\n"))
	text := all.String()
	d.Scope = strings.Contains(text, "coroutineScope.")
	d.OptIn = strings.Contains(d.Body, "ModalBottomSheet")

	out, err := e.render("view.kt.tmpl", d)
	if err != nil {
		return GeneratedFile{}, err
	}

	sub := SubComponents
	if screen {
		sub = SubScreens
	}
	var fixed []string
	if d.Preview {
		fixed = append(fixed, e.layout.Package(SubTheme)+".AppTheme")
	}
	if resourceRe.MatchString(text) {
		fixed = append(fixed, e.layout.Package("")+".R")
	}
	if strings.Contains(text, "koinViewModel()") {
		fixed = append(fixed, e.layout.Package(SubViewModels)+".*")
	}
	for _, ref := range e.views {
		other := SubComponents
		if ref.Screen {
			other = SubScreens
		}
		if other != sub && ref.Name != d.Name && regexp.MustCompile(`\b`+regexp.QuoteMeta(ref.Name)+`\(`).MatchString(text) {
			fixed = append(fixed, e.layout.Package(other)+"."+ref.Name)
		}
	}
	return e.file(sub, d.Name, fixed, out), nil
}

// subviews finds computed `some View` properties and view-returning
// functions declared on the view.
func (e *Emitter) subviews(lines []string, src string) []subview {
	var out []subview
	for _, l := range lines {
		if m := viewPropertyRe.FindStringSubmatch(l); m != nil && m[1] != "body" {
			re := regexp.MustCompile(`var\s+` + m[1] + `\s*:\s*some\s+View\s*\{`)
			if body, ok := swift.ExtractBlock(src, re); ok {
				out = append(out, subview{Name: naming.PascalCase(m[1]), key: m[1], swift: body})
			}
			continue
		}
		if m := viewFuncRe.FindStringSubmatch(l); m != nil {
			re := regexp.MustCompile(`func\s+` + m[1] + `\s*\([^)]*\)\s*->\s*some\s+View\s*\{`)
			if body, ok := swift.ExtractBlock(src, re); ok {
				sig := signature.Signature{Params: signature.TranslateParams(m[2], e.mapper)}
				out = append(out, subview{
					Name:   naming.PascalCase(m[1]),
					Params: sig.ParamList(),
					key:    m[1],
					swift:  body,
				})
			}
		}
	}
	return out
}

func joinParams(list, param string) string {
	if list == "" {
		return param
	}
	return list + ", " + param
}
