package emit

import (
	"github.com/simonhull/firebird-suite/magpie/internal/signature"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// Service renders an interface named after the Swift service and a Ktor
// backed `{Name}Impl`. Every method is a suspend function; results other
// than Unit are left as TODO() placeholders.
func (e *Emitter) Service(u *swift.Unit, content string) (GeneratedFile, error) {
	name := ServiceName(u.ClassName)
	d := dataLayerData{
		Interface: name,
		Impl:      name + "Impl",
		Deps:      []dependency{{Name: "client", Type: "HttpClient"}},
		Dropped:   u.Dropped,
	}
	if u.UsesFirebase || e.usesFirebase {
		d.Deps = append(d.Deps, dependency{Name: "auth", Type: "FirebaseAuth"})
	}

	for _, m := range methods(u) {
		sig := signature.Translate(m, e.mapper)
		d.Methods = append(d.Methods, ioMethod{
			Name: m.Name,
			Decl: sig.Declaration("suspend"),
			Impl: ioBody(m.Name, sig.Return, swiftBody(content, m.Name)),
		})
	}

	body, err := e.render("datalayer.kt.tmpl", d)
	if err != nil {
		return GeneratedFile{}, err
	}
	f := e.file(SubServices, name, nil, body)
	f.Args = len(d.Deps)
	return f, nil
}

// ServiceName strips implementation suffixes: AuthServiceProtocol →
// AuthService.
func ServiceName(name string) string {
	return naming.TrimRoleSuffix(name, "Impl", "Protocol", "Type", "Interface")
}
