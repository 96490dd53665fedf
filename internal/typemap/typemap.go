// Package typemap translates Swift type spellings and literals into their
// Kotlin counterparts.
package typemap

import (
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// Mapper maps Swift types using a lookup table (tables.Types) extended by
// structural rules for optionals, collections, closures and generics.
type Mapper struct {
	table map[string]string
}

// New returns a Mapper over table. The table is not copied.
func New(table map[string]string) *Mapper {
	if table == nil {
		table = map[string]string{}
	}
	return &Mapper{table: table}
}

var (
	genericRe = regexp.MustCompile(`^([\w.]+)\s*<(.+)>$`)

	// Guessed shapes for malformed generic text. Both also match ordinary
	// "label: Type" fragments.
	looseListRe = regexp.MustCompile(`^List<(\w+):\s*(\w+)>`)
	loosePairRe = regexp.MustCompile(`^(\w+)\s*:\s*(\w+)`)
)

// Map translates one Swift type. Unknown names map to themselves.
func (m *Mapper) Map(t string) string {
	t = strings.TrimSpace(t)
	for _, prefix := range []string{"@escaping ", "@Sendable ", "@autoclosure ", "inout ", "some ", "any "} {
		t = strings.TrimSpace(strings.TrimPrefix(t, prefix))
	}
	if t == "" {
		return ""
	}

	if k, ok := m.table[t]; ok {
		return k
	}

	switch {
	case strings.HasSuffix(t, "?"):
		return m.Map(strings.TrimSuffix(t, "?")) + "?"
	case strings.HasSuffix(t, "!"):
		return m.Map(strings.TrimSuffix(t, "!"))
	}

	if arrow := topLevelArrow(t); arrow >= 0 {
		return m.mapClosure(t[:arrow], t[arrow+2:])
	}

	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		inner := t[1 : len(t)-1]
		if parts := swift.SplitTopLevel(inner, ':'); len(parts) == 2 {
			return "Map<" + m.Map(parts[0]) + ", " + m.Map(parts[1]) + ">"
		}
		return "List<" + m.Map(inner) + ">"
	}

	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		return m.mapTuple(t[1 : len(t)-1])
	}

	if g := genericRe.FindStringSubmatch(t); g != nil {
		return m.mapGeneric(g[1], g[2])
	}

	return t
}

// MapLoose applies two guesses before Map: `List<K: V>` and a bare `K: V`
// both become Map<K, V>. They exist for property text the scanner captured
// badly and misfire on fragments such as `label: String`, which also turns
// into a Map.
func (m *Mapper) MapLoose(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ":") && !strings.Contains(raw, "=") {
		if g := looseListRe.FindStringSubmatch(raw); g != nil {
			return "Map<" + m.Map(g[1]) + ", " + m.Map(g[2]) + ">"
		}
		if g := loosePairRe.FindStringSubmatch(raw); g != nil {
			return "Map<" + m.Map(g[1]) + ", " + m.Map(g[2]) + ">"
		}
	}
	return m.Map(raw)
}

func (m *Mapper) mapGeneric(name, args string) string {
	parts := swift.SplitTopLevel(args, ',')
	switch name {
	case "Optional":
		return m.Map(args) + "?"
	case "Array", "ContiguousArray":
		return "List<" + m.Map(args) + ">"
	case "Set":
		return "Set<" + m.Map(args) + ">"
	case "Dictionary":
		if len(parts) == 2 {
			return "Map<" + m.Map(parts[0]) + ", " + m.Map(parts[1]) + ">"
		}
	case "Result":
		// kotlin.Result has no error parameter
		return "Result<" + m.Map(parts[0]) + ">"
	case "Published", "State", "Binding":
		return m.Map(args)
	case "AnyPublisher", "PassthroughSubject", "CurrentValueSubject":
		return "Flow<" + m.Map(parts[0]) + ">"
	}

	mapped := make([]string, len(parts))
	for i, p := range parts {
		mapped[i] = m.Map(p)
	}
	base := name
	if k, ok := m.table[name]; ok {
		base = k
	}
	return base + "<" + strings.Join(mapped, ", ") + ">"
}

func (m *Mapper) mapClosure(params, result string) string {
	params = strings.TrimSpace(params)
	params = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(params, "throws")), "async")
	params = strings.TrimSpace(params)
	params = strings.TrimPrefix(params, "(")
	params = strings.TrimSuffix(params, ")")

	var mapped []string
	if strings.TrimSpace(params) != "" {
		for _, p := range swift.SplitTopLevel(params, ',') {
			// drop tuple labels: (value: Int) -> Void
			if parts := swift.SplitTopLevel(p, ':'); len(parts) == 2 {
				p = parts[1]
			}
			mapped = append(mapped, m.Map(p))
		}
	}
	return "(" + strings.Join(mapped, ", ") + ") -> " + ReturnType(m, result)
}

func (m *Mapper) mapTuple(inner string) string {
	if strings.TrimSpace(inner) == "" {
		return "Unit"
	}
	parts := swift.SplitTopLevel(inner, ',')
	mapped := make([]string, len(parts))
	for i, p := range parts {
		if kv := swift.SplitTopLevel(p, ':'); len(kv) == 2 {
			p = kv[1]
		}
		mapped[i] = m.Map(p)
	}
	switch len(mapped) {
	case 1:
		if strings.Contains(mapped[0], "->") {
			return "(" + mapped[0] + ")"
		}
		return mapped[0]
	case 2:
		return "Pair<" + strings.Join(mapped, ", ") + ">"
	case 3:
		return "Triple<" + strings.Join(mapped, ", ") + ">"
	}
	return "Any"
}

// ReturnType maps a Swift return type, normalising an empty, Void, None or
// () return to Unit.
func ReturnType(m *Mapper, ret string) string {
	ret = strings.TrimSpace(ret)
	switch ret {
	case "", "Void", "None", "()":
		return "Unit"
	}
	return m.Map(ret)
}

// topLevelArrow returns the index of the first "->" outside brackets, or -1.
func topLevelArrow(t string) int {
	depth := 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '(', '[', '<':
			depth++
		case ')', ']':
			depth--
		case '>':
			if i > 0 && t[i-1] == '-' {
				continue
			}
			depth--
		case '-':
			if depth == 0 && i+1 < len(t) && t[i+1] == '>' {
				return i
			}
		}
	}
	return -1
}

// DefaultValue returns the zero literal Kotlin code would use for a
// constructor default of type k, or "null".
func DefaultValue(k string) string {
	k = strings.TrimSpace(k)
	if strings.HasSuffix(k, "?") {
		return "null"
	}
	switch k {
	case "String":
		return `""`
	case "Int", "Short", "Byte":
		return "0"
	case "Long":
		return "0L"
	case "Float":
		return "0f"
	case "Double":
		return "0.0"
	case "Boolean":
		return "false"
	case "Unit":
		return "Unit"
	}
	switch {
	case strings.HasPrefix(k, "List<"):
		return "emptyList()"
	case strings.HasPrefix(k, "Set<"):
		return "emptySet()"
	case strings.HasPrefix(k, "Map<"):
		return "emptyMap()"
	}
	return "null"
}

var (
	numberRe        = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	enumCaseRe      = regexp.MustCompile(`^\.(\w+)$`)
	interpolationRe = regexp.MustCompile(`\\\(([^()]*(?:\([^()]*\))?[^()]*)\)`)
)

// Literal translates a Swift initializer expression for a property of
// Kotlin type k. Expressions it does not recognise are returned unchanged.
func Literal(expr, k string) string {
	expr = strings.TrimSpace(expr)
	base := strings.TrimSuffix(k, "?")

	switch expr {
	case "":
		return ""
	case "nil":
		return "null"
	case "true", "false":
		return expr
	case "[:]", "{}":
		return "emptyMap()"
	case "[]":
		switch {
		case strings.HasPrefix(base, "Map<"):
			return "emptyMap()"
		case strings.HasPrefix(base, "Set<"):
			return "emptySet()"
		}
		return "emptyList()"
	case "Date()", "Date.now", ".now":
		return "LocalDateTime.now()"
	case "UUID()", "UUID().uuidString":
		return "java.util.UUID.randomUUID().toString()"
	}

	if strings.HasPrefix(expr, `"`) {
		return Interpolate(expr)
	}

	if numberRe.MatchString(expr) {
		switch base {
		case "Float":
			return expr + "f"
		case "Long":
			return expr + "L"
		case "Double":
			if !strings.Contains(expr, ".") {
				return expr + ".0"
			}
		}
		return expr
	}

	if g := enumCaseRe.FindStringSubmatch(expr); g != nil && base != "" {
		return base + "." + naming.ConstantCase(g[1])
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		return collectionLiteral(expr[1:len(expr)-1], base)
	}

	return expr
}

func collectionLiteral(inner, k string) string {
	items := swift.SplitTopLevel(inner, ',')
	var out []string
	isMap := false
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if kv := swift.SplitTopLevel(item, ':'); len(kv) == 2 {
			isMap = true
			out = append(out, Literal(kv[0], "")+" to "+Literal(kv[1], ""))
			continue
		}
		out = append(out, Literal(item, ""))
	}
	switch {
	case isMap:
		return "mapOf(" + strings.Join(out, ", ") + ")"
	case strings.HasPrefix(k, "Set<"):
		return "setOf(" + strings.Join(out, ", ") + ")"
	}
	return "listOf(" + strings.Join(out, ", ") + ")"
}

// Interpolate rewrites Swift string interpolation `\(expr)` as Kotlin
// `${expr}`.
func Interpolate(s string) string {
	return interpolationRe.ReplaceAllString(s, `$${$1}`)
}
