package emit

import (
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/signature"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// ioMethod is a data-layer method: declared on an interface and
// implemented off the main thread.
type ioMethod struct {
	Name string
	Decl string // without `override`
	Impl string // expression body, starts after " = "
}

type dataLayerData struct {
	Interface string
	Impl      string
	Deps      []dependency
	Methods   []ioMethod
	Dropped   []string
}

// Repository renders `{Base}Repository` and `{Base}RepositoryImpl`. Methods
// returning a list or an optional become Flow-returning functions; the
// rest are suspend functions running on Dispatchers.IO.
func (e *Emitter) Repository(u *swift.Unit, content string) (GeneratedFile, error) {
	base := RepositoryBase(u.ClassName)
	d := dataLayerData{
		Interface: base + "Repository",
		Impl:      base + "RepositoryImpl",
		Deps: []dependency{
			{Name: "localDataSource", Type: "LocalDataSource"},
			{Name: "remoteDataSource", Type: "RemoteDataSource"},
		},
		Dropped: u.Dropped,
	}
	for _, m := range methods(u) {
		sig := signature.Translate(m, e.mapper)
		if wrapsInFlow(sig.Return) {
			sig = sig.WithReturn("Flow<" + sig.Return + ">")
			d.Methods = append(d.Methods, ioMethod{
				Name: m.Name,
				Decl: sig.Declaration(""),
				Impl: flowBody(m.Name, swiftBody(content, m.Name)),
			})
			continue
		}
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
	fixed := []string{
		e.layout.Package(SubLocal) + ".LocalDataSource",
		e.layout.Package(SubRemote) + ".RemoteDataSource",
	}
	f := e.file(SubRepositories, d.Interface, fixed, body)
	f.Args = len(d.Deps)
	return f, nil
}

// RepositoryBase strips implementation and role suffixes from a repository
// type name: TaskRepositoryProtocol → Task.
func RepositoryBase(name string) string {
	name = naming.TrimRoleSuffix(name, "Impl", "Protocol", "Type", "Interface")
	return naming.TrimRoleSuffix(name, "Repository")
}

func wrapsInFlow(ret string) bool {
	return strings.HasPrefix(ret, "List<") || strings.HasSuffix(ret, "?")
}

// ioBody renders `withContext(Dispatchers.IO) { try { ... } catch ... }`.
// The Swift body is carried along as comments.
func ioBody(name, ret string, src []string) string {
	var b strings.Builder
	b.WriteString("withContext(Dispatchers.IO) {\n")
	b.WriteString("        try {\n")
	for _, l := range commented(src) {
		b.WriteString("            " + l + "\n")
	}
	if ret != "Unit" {
		b.WriteString(`            TODO("Port ` + name + `")` + "\n")
	}
	b.WriteString("        } catch (e: Exception) {\n")
	b.WriteString("            throw e\n")
	b.WriteString("        }\n")
	b.WriteString("    }")
	return b.String()
}

func flowBody(name string, src []string) string {
	var b strings.Builder
	b.WriteString("flow {\n")
	for _, l := range commented(src) {
		b.WriteString("        " + l + "\n")
	}
	b.WriteString(`        emit(TODO("Port ` + name + `"))` + "\n")
	b.WriteString("    }.flowOn(Dispatchers.IO)")
	return b.String()
}
