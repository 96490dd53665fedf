// Package emit renders the Kotlin file for one scanned Swift declaration.
// There is one emitter per role (model, view model, repository, service
// and view), each backed by an embedded template.
//
// Emitters are string builders. Nothing checks that the output compiles.
package emit

import (
	"embed"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/compose"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/tables"
	"github.com/simonhull/firebird-suite/magpie/internal/typemap"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Role is what a Swift file converts to.
type Role string

const (
	RoleModel      Role = "model"
	RoleView       Role = "view"
	RoleViewModel  Role = "viewmodel"
	RoleRepository Role = "repository"
	RoleService    Role = "service"
)

// Route decides the role of u. The class name wins over category, which is
// the guess the analyzer made from the file path:
//
//	HomeViewModel   → viewmodel
//	UserRepository* → repository
//	*Service*       → service
//	ProfileView     → view
func Route(u *swift.Unit, category Role) Role {
	name := u.ClassName
	switch {
	case strings.HasSuffix(name, "ViewModel"):
		return RoleViewModel
	case strings.Contains(name, "Repository"):
		return RoleRepository
	case strings.Contains(name, "Service"):
		return RoleService
	case strings.HasSuffix(name, "View"):
		return RoleView
	}
	return category
}

// GeneratedFile is one rendered Kotlin file.
type GeneratedFile struct {
	Path    string
	Content string

	// Name is the main declaration: the class, interface or composable
	// other files refer to.
	Name string
	// Args counts the constructor parameters of the class the DI module
	// has to build (the Impl for repositories and services).
	Args int
}

// Operation wraps the file in a write operation for generator.Execute.
func (f GeneratedFile) Operation() generator.Operation {
	return generator.NewWriteFile(f.Path, []byte(f.Content))
}

// Options configures an Emitter.
type Options struct {
	Layout Layout
	Tables tables.Tables

	// Views maps Swift view type names to the composables they become.
	Views map[string]compose.ViewRef

	// Screens overrides IsScreen for the Swift views it names.
	Screens map[string]bool

	// Models lists converted model names. Files that mention one import
	// the models package.
	Models []string

	UsesFirebase bool
}

// Emitter renders Kotlin files. It is safe for concurrent use.
type Emitter struct {
	layout       Layout
	tables       tables.Tables
	mapper       *typemap.Mapper
	rewriter     *compose.Rewriter
	renderer     *generator.Renderer
	views        map[string]compose.ViewRef
	screens      map[string]bool
	models       []string
	usesFirebase bool
}

// New returns an Emitter. A zero Tables value means tables.Default().
func New(opts Options) *Emitter {
	t := opts.Tables
	if t.Types == nil {
		t = tables.Default()
	}
	m := typemap.New(t.Types)
	return &Emitter{
		layout:       opts.Layout,
		tables:       t,
		mapper:       m,
		rewriter:     compose.New(t, m),
		renderer:     generator.NewRenderer(),
		views:        opts.Views,
		screens:      opts.Screens,
		models:       opts.Models,
		usesFirebase: opts.UsesFirebase,
	}
}

// Emit dispatches to the emitter for role. filename is the Swift file's
// base name; only views use it.
func (e *Emitter) Emit(role Role, u *swift.Unit, content, filename string) (GeneratedFile, error) {
	switch role {
	case RoleModel:
		return e.Model(u, content)
	case RoleViewModel:
		return e.ViewModel(u, content)
	case RoleRepository:
		return e.Repository(u, content)
	case RoleService:
		return e.Service(u, content)
	case RoleView:
		return e.View(u, content, filename)
	}
	return GeneratedFile{}, fmt.Errorf("unknown role %q", role)
}

func (e *Emitter) render(name string, data any) (string, error) {
	b, err := e.renderer.RenderFS(templatesFS, "templates/"+name, data)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return string(b), nil
}

// file assembles package line, imports and body. Imports are the union of
// fixed and whatever the import table finds in body.
func (e *Emitter) file(sub, name string, fixed []string, body string) GeneratedFile {
	if e.mentionsModel(body) {
		fixed = append(fixed, e.layout.Package(SubModels)+".*")
	}
	imports := append(slices.Clone(fixed), e.tables.RequiredImports(body, fixed)...)
	slices.Sort(imports)
	imports = slices.Compact(imports)

	var b strings.Builder
	b.WriteString("package " + e.layout.Package(sub) + "\n\n")
	for _, imp := range imports {
		b.WriteString("import " + imp + "\n")
	}
	if len(imports) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(strings.Trim(body, "\n"))
	b.WriteString("\n")

	return GeneratedFile{
		Path:    e.layout.File(sub, name),
		Content: b.String(),
		Name:    name,
	}
}

func (e *Emitter) mentionsModel(body string) bool {
	for _, m := range e.models {
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(m) + `\b`).MatchString(body) {
			return true
		}
	}
	return false
}

// Sub-packages below the application package.
const (
	SubModels       = "models"
	SubViewModels   = "viewmodels"
	SubRepositories = "repositories"
	SubServices     = "services"
	SubScreens      = "ui.screens"
	SubComponents   = "ui.components"
	SubTheme        = "ui.theme"
	SubNavigation   = "ui.navigation"
	SubLocal        = "data.local"
	SubRemote       = "data.remote"
	SubNetwork      = "network"
	SubDI           = "di"
)

// Layout places Kotlin files below the app module's source root.
type Layout struct {
	Base string // application package, com.example.app
	Root string // source root, app/src/main/java
}

// Package returns the fully qualified sub-package. An empty sub is the base
// package itself.
func (l Layout) Package(sub string) string {
	if sub == "" {
		return l.Base
	}
	return l.Base + "." + sub
}

// Dir returns the directory of a sub-package.
func (l Layout) Dir(sub string) string {
	return filepath.Join(l.Root, filepath.FromSlash(generator.PackagePath(l.Package(sub))))
}

// File returns the path of name.kt in a sub-package.
func (l Layout) File(sub, name string) string {
	return filepath.Join(l.Dir(sub), name+".kt")
}
