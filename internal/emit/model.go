package emit

import (
	"strconv"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/signature"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

type field struct {
	Name    string
	Type    string
	Default string
}

type enumCase struct {
	Name  string
	Value string
}

type modelData struct {
	Name     string
	Kind     string // data, enum, interface
	Fields   []field
	Cases    []enumCase
	RawType  string
	Methods  []string
	Adapter  bool
	Dropped  []string
	Abstract []string // interface members
}

var rawValueTypes = map[string]bool{
	"String": true, "Int": true, "Long": true, "Double": true, "Float": true, "Char": true,
}

// Model renders a struct or class as a serializable data class, an enum as
// an enum class and a protocol as an interface. When the file uses SwiftData
// a SQLDelight column adapter is appended.
func (e *Emitter) Model(u *swift.Unit, content string) (GeneratedFile, error) {
	d := modelData{
		Name:    u.ClassName,
		Adapter: u.UsesSwiftData && !u.IsProtocol(),
		Dropped: u.Dropped,
	}

	switch {
	case u.IsEnum():
		d.Kind = "enum"
		d.RawType, d.Cases = e.enumCases(u)
	case u.IsProtocol():
		d.Kind = "interface"
		for _, p := range u.Properties {
			d.Abstract = append(d.Abstract, "val "+p.Name+": "+e.mapper.MapLoose(p.Type))
		}
		for _, m := range methods(u) {
			sig := signature.Translate(m, e.mapper)
			prefix := ""
			if m.Async {
				prefix = "suspend"
			}
			d.Abstract = append(d.Abstract, sig.Declaration(prefix))
		}
	default:
		d.Kind = "data"
		for _, p := range storedProperties(u, content) {
			typ := e.mapper.MapLoose(p.Type)
			d.Fields = append(d.Fields, field{
				Name:    p.Name,
				Type:    typ,
				Default: typemap.Literal(p.Default, typ),
			})
		}
		for _, m := range methods(u) {
			sig := signature.Translate(m, e.mapper)
			d.Methods = append(d.Methods, sig.Declaration("")+` = TODO("Port `+m.Name+`")`)
		}
	}

	body, err := e.render("model.kt.tmpl", d)
	if err != nil {
		return GeneratedFile{}, err
	}
	return e.file(SubModels, u.ClassName, nil, body), nil
}

// enumCases upper-cases case names and, for raw-value enums, spells out
// the implicit raw values Swift would assign.
func (e *Emitter) enumCases(u *swift.Unit) (string, []enumCase) {
	raw := ""
	if t := e.mapper.Map(u.Superclass); u.Superclass != "" && rawValueTypes[t] {
		raw = t
	}

	out := make([]enumCase, 0, len(u.EnumCases))
	next := 0
	for _, c := range u.EnumCases {
		ec := enumCase{Name: naming.ConstantCase(c.Name)}
		switch {
		case raw == "":
		case c.RawValue != "":
			ec.Value = typemap.Literal(c.RawValue, raw)
			if n, err := strconv.Atoi(strings.TrimSpace(c.RawValue)); err == nil {
				next = n + 1
			}
		case raw == "String":
			ec.Value = strconv.Quote(c.Name)
		case raw == "Int" || raw == "Long":
			ec.Value = strconv.Itoa(next)
			next++
		default:
			ec.Value = typemap.DefaultValue(raw)
		}
		out = append(out, ec)
	}
	return raw, out
}
