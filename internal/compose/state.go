package compose

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
)

var (
	stateLineRe = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s+)+)(?:(?:private|public|fileprivate|internal)(?:\(set\))?\s+)*(var|let)\s+(\w+)\s*(?::\s*([^=]+?))?\s*(?:=\s*(.+))?$`)
	wrapperRe   = regexp.MustCompile(`@(\w+)(?:\(([^)]*)\))?`)
	ctorTypeRe  = regexp.MustCompile(`^([A-Z]\w*)\(`)
)

var stateWrappers = map[string]bool{
	"State":             true,
	"Binding":           true,
	"StateObject":       true,
	"ObservedObject":    true,
	"EnvironmentObject": true,
	"Bindable":          true,
	"Published":         true,
	"AppStorage":        true,
	"SceneStorage":      true,
	"Environment":       true,
}

// ParseStateLine reads a single `@State private var x: T = v` line. Lines
// without a property wrapper are rejected.
func ParseStateLine(line string) (swift.Property, bool) {
	m := stateLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return swift.Property{}, false
	}
	p := swift.Property{
		Name:    m[3],
		Type:    strings.TrimSpace(m[4]),
		Default: strings.TrimSpace(m[5]),
		Mutable: m[2] == "var",
	}
	for _, w := range wrapperRe.FindAllStringSubmatch(m[1], -1) {
		p.Attributes = append(p.Attributes, w[1])
	}
	return p, IsStateProperty(p)
}

// IsStateProperty reports whether p carries a wrapper StateDeclaration
// knows how to render.
func IsStateProperty(p swift.Property) bool {
	return wrapper(p) != ""
}

func wrapper(p swift.Property) string {
	for _, a := range p.Attributes {
		if stateWrappers[a] {
			return a
		}
	}
	return ""
}

// StateDeclaration renders the Compose equivalent of a SwiftUI state
// property:
//
//	@State var count: Int = 0         var count by remember { mutableStateOf<Int>(0) }
//	@Binding var isOn: Bool           var isOn: MutableState<Boolean> = remember { mutableStateOf(false) }
//	@StateObject var vm = HomeVM()    val vm: HomeVM = koinViewModel()
//
// @Environment(\.dismiss) renders as nothing because dismiss() calls are
// rewritten to navController.popBackStack().
func StateDeclaration(p swift.Property, m *typemap.Mapper) string {
	typ := ""
	if p.Type != "" {
		typ = m.Map(p.Type)
	}

	switch wrapper(p) {
	case "":
		return ""
	case "StateObject", "ObservedObject", "EnvironmentObject", "Bindable":
		if typ == "" {
			if g := ctorTypeRe.FindStringSubmatch(p.Default); g != nil {
				typ = g[1]
			}
		}
		if typ == "" {
			typ = "ViewModel"
		}
		return fmt.Sprintf("val %s: %s = koinViewModel()", p.Name, strings.TrimSuffix(typ, "?"))
	case "Environment":
		if p.Name == "dismiss" || p.Name == "presentationMode" {
			return ""
		}
		return todo("@Environment var " + p.Name)
	case "Binding":
		t := typ
		if t == "" {
			t = "Any?"
		}
		return fmt.Sprintf("var %s: MutableState<%s> = remember { mutableStateOf(%s) }", p.Name, t, initial(p.Default, typ))
	}

	if typ == "" {
		return fmt.Sprintf("var %s by remember { mutableStateOf(%s) }", p.Name, initial(p.Default, typ))
	}
	return fmt.Sprintf("var %s by remember { mutableStateOf<%s>(%s) }", p.Name, typ, initial(p.Default, typ))
}

func initial(def, typ string) string {
	if def == "" {
		return typemap.DefaultValue(typ)
	}
	return Expr(typemap.Literal(def, typ))
}

func todo(source string) string {
	return "// TODO: Convert SwiftUI: " + strings.TrimSpace(source)
}
