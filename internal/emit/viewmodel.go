package emit

import (
	"regexp"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/signature"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

type dependency struct {
	Name string
	Type string
}

type vmMethod struct {
	Name   string
	Decl   string
	Launch bool // Unit result, body runs in viewModelScope
	Swift  []string
}

type viewModelData struct {
	Name      string
	Deps      []dependency
	States    []field
	Plain     []field
	UiState   bool
	Loading   string // assignment target for the loading flag, "" when none
	ErrorSink string // assignment target for error messages, "" when none
	Methods   []vmMethod
	HasLoad   bool
	Dropped   []string
}

var depTypeRe = regexp.MustCompile(`Repository|Service`)

// ViewModel renders an ObservableObject (or @Observable class) as an
// androidx ViewModel. Published properties become private MutableStateFlow
// backing fields exposed as StateFlow; when there are none a UiState data
// class is generated instead. Repository and service properties move to
// the constructor.
func (e *Emitter) ViewModel(u *swift.Unit, content string) (GeneratedFile, error) {
	d := viewModelData{Name: u.ClassName, Dropped: u.Dropped}
	observable := observableRe.MatchString(content)

	for _, p := range storedProperties(u, content) {
		typ := e.mapper.MapLoose(p.Type)
		switch {
		case depTypeRe.MatchString(p.Type) && !p.HasAttribute("Published"):
			d.Deps = append(d.Deps, dependency{Name: p.Name, Type: dependencyType(typ)})
		case p.HasAttribute("Published") || (observable && p.Mutable && !p.HasAttribute("ObservationIgnored")):
			d.States = append(d.States, stateField(p.Name, typ, p.Default))
		default:
			d.Plain = append(d.Plain, stateField(p.Name, typ, p.Default))
		}
	}
	for _, l := range memberLines(content) {
		m := inferredDepRe.FindStringSubmatch(l)
		if m != nil && !slices.ContainsFunc(d.Deps, func(d dependency) bool { return d.Name == m[1] }) {
			d.Deps = append(d.Deps, dependency{Name: m[1], Type: dependencyType(m[2])})
		}
	}

	d.UiState = len(d.States) == 0
	switch {
	case d.UiState:
		d.Loading = "_uiState.value = _uiState.value.copy(isLoading = %s)"
		d.ErrorSink = "_uiState.value = _uiState.value.copy(errorMessage = e.message)"
	default:
		for _, s := range d.States {
			if s.Name == "isLoading" && s.Type == "Boolean" {
				d.Loading = "_isLoading.value = %s"
			}
			if (s.Name == "errorMessage" || s.Name == "error") && strings.HasPrefix(s.Type, "String") {
				d.ErrorSink = "_" + s.Name + ".value = e.message"
			}
		}
	}

	for _, m := range methods(u) {
		sig := signature.Translate(m, e.mapper)
		if m.Name == "loadData" {
			d.HasLoad = true
		}
		vm := vmMethod{Name: m.Name, Swift: commented(swiftBody(content, m.Name))}
		if sig.Return == "Unit" {
			vm.Decl = "fun " + sig.Name + "(" + sig.ParamList() + ")"
			vm.Launch = true
		} else {
			prefix := ""
			if m.Async {
				prefix = "suspend"
			}
			vm.Decl = sig.Declaration(prefix)
		}
		d.Methods = append(d.Methods, vm)
	}

	body, err := e.render("viewmodel.kt.tmpl", d)
	if err != nil {
		return GeneratedFile{}, err
	}
	var fixed []string
	if hasDep(d.Deps, "Repository") {
		fixed = append(fixed, e.layout.Package(SubRepositories)+".*")
	}
	if hasDep(d.Deps, "Service") {
		fixed = append(fixed, e.layout.Package(SubServices)+".*")
	}
	f := e.file(SubViewModels, u.ClassName, fixed, body)
	f.Args = len(d.Deps)
	return f, nil
}

func stateField(name, typ, def string) field {
	init := typemap.Literal(def, typ)
	if init == "" {
		init = typemap.DefaultValue(typ)
	}
	if init == "null" && !strings.HasSuffix(typ, "?") {
		typ += "?"
	}
	return field{Name: name, Type: typ, Default: init}
}

// dependencyType strips protocol-style suffixes so the constructor refers
// to the interface the repository and service emitters generate.
func dependencyType(t string) string {
	t = strings.TrimSuffix(strings.TrimSpace(t), "?")
	for _, prefix := range []string{"any ", "some "} {
		t = strings.TrimPrefix(t, prefix)
	}
	return naming.TrimRoleSuffix(t, "Protocol", "Type", "Interface")
}

func hasDep(deps []dependency, role string) bool {
	for _, d := range deps {
		if strings.Contains(d.Type, role) {
			return true
		}
	}
	return false
}
