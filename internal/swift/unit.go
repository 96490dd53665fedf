// Package swift extracts the structural outline of a Swift source file with
// regular expressions: imports, the first type declaration, its properties,
// methods and enum cases, plus a few framework flags.
//
// There is no parser. Brace depth is not tracked, so a property declared in
// a nested type or a local `let x: Int` inside a method is reported as a
// member of the first declaration. Failure is silent: text the patterns do
// not recognise simply produces empty fields.
package swift

// Kind is the keyword of a Swift type declaration.
type Kind string

const (
	KindNone      Kind = ""
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindProtocol  Kind = "protocol"
	KindExtension Kind = "extension"
)

// Property is a `var` or `let` declaration with an explicit type annotation.
type Property struct {
	Name       string
	Type       string   // raw Swift type text
	Default    string   // raw initializer text, "" when absent
	Attributes []string // property wrappers without '@', e.g. "State", "Published"
	Mutable    bool     // var rather than let
	Observable bool     // wrapped by @Published, @State or @Binding
}

// HasAttribute reports whether the property carries @name.
func (p Property) HasAttribute(name string) bool {
	for _, a := range p.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// Method is a `func` declaration. Params and Return are raw Swift text.
type Method struct {
	Name   string
	Params string
	Return string
	Async  bool
	Throws bool
}

// EnumCase is one `case` of an enum. RawValue is the literal after '=' if
// any, e.g. `"active"`.
type EnumCase struct {
	Name     string
	RawValue string
}

// Unit is the outline of one Swift file.
type Unit struct {
	ClassName  string
	Kind       Kind
	Superclass string   // first inheritance entry
	Protocols  []string // remaining inheritance entries
	Imports    []string
	Properties []Property
	Methods    []Method
	EnumCases  []EnumCase

	UsesCombine   bool
	UsesSwiftData bool
	UsesFirebase  bool

	// Dropped lists the names of further type declarations found after the
	// first one. They are not converted.
	Dropped []string
}

func (u *Unit) IsClass() bool     { return u.Kind == KindClass }
func (u *Unit) IsStruct() bool    { return u.Kind == KindStruct }
func (u *Unit) IsEnum() bool      { return u.Kind == KindEnum }
func (u *Unit) IsProtocol() bool  { return u.Kind == KindProtocol }
func (u *Unit) IsExtension() bool { return u.Kind == KindExtension }

// Inherits reports whether name appears in the inheritance clause.
func (u *Unit) Inherits(name string) bool {
	if u.Superclass == name {
		return true
	}
	for _, p := range u.Protocols {
		if p == name {
			return true
		}
	}
	return false
}

// ObservableProperties returns the properties wrapped by @Published, @State
// or @Binding.
func (u *Unit) ObservableProperties() []Property {
	var out []Property
	for _, p := range u.Properties {
		if p.Observable {
			out = append(out, p)
		}
	}
	return out
}
