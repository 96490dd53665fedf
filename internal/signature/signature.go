// Package signature turns scanned Swift method declarations into Kotlin
// function signatures.
package signature

import (
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
)

// Param is one translated parameter.
type Param struct {
	Name    string
	Type    string
	Default string // Kotlin literal, "" when absent
	Vararg  bool
}

func (p Param) String() string {
	s := p.Name + ": " + p.Type
	if p.Vararg {
		s = "vararg " + s
	}
	if p.Default != "" {
		s += " = " + p.Default
	}
	return s
}

// Signature is a Kotlin function shape.
type Signature struct {
	Name   string
	Params []Param
	Return string
	Async  bool
	Throws bool
}

// Translate converts m using mapper for every parameter and the return type.
// Argument labels are dropped: `from prompt: String` and `_ prompt: String`
// both become `prompt: String`.
func Translate(m swift.Method, mapper *typemap.Mapper) Signature {
	return Signature{
		Name:   m.Name,
		Params: TranslateParams(m.Params, mapper),
		Return: typemap.ReturnType(mapper, m.Return),
		Async:  m.Async,
		Throws: m.Throws,
	}
}

var attributes = []string{"@escaping", "@autoclosure", "@Sendable", "@MainActor", "inout", "borrowing", "consuming"}

// TranslateParams splits a raw Swift parameter list on top-level commas and
// translates each entry.
func TranslateParams(raw string, mapper *typemap.Mapper) []Param {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var params []Param
	for _, part := range swift.SplitTopLevel(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params = append(params, translateParam(part, mapper))
	}
	return params
}

func translateParam(part string, mapper *typemap.Mapper) Param {
	pieces := swift.SplitTopLevel(part, ':')
	names := strings.Fields(pieces[0])
	if len(names) == 0 {
		return Param{Name: "arg", Type: "Any"}
	}
	name := names[len(names)-1]
	if len(pieces) == 1 {
		return Param{Name: name, Type: "Any"}
	}

	rest := strings.Join(pieces[1:], ":")
	typ, def, _ := strings.Cut(rest, "=")
	typ = strings.TrimSpace(typ)
	for _, attr := range attributes {
		typ = strings.TrimSpace(strings.ReplaceAll(typ, attr+" ", ""))
	}

	p := Param{Name: name}
	if strings.HasSuffix(typ, "...") {
		p.Vararg = true
		typ = strings.TrimSuffix(typ, "...")
	}
	p.Type = mapper.Map(typ)
	p.Default = typemap.Literal(def, p.Type)
	return p
}

// ParamList renders the parameters as a Kotlin parameter list body.
func (s Signature) ParamList() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Args renders the parameter names for a delegating call.
func (s Signature) Args() string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// Declaration renders `<prefix> fun name(params): Return`. An empty prefix
// gives a plain `fun`.
func (s Signature) Declaration(prefix string) string {
	decl := fmt.Sprintf("fun %s(%s): %s", s.Name, s.ParamList(), s.Return)
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		return prefix + " " + decl
	}
	return decl
}

// WithReturn returns a copy of s with a different return type.
func (s Signature) WithReturn(ret string) Signature {
	s.Return = ret
	return s
}
