// Package scaffold generates the parts of the Android project that do not
// come from a single Swift file: directory tree, Gradle build, manifest and
// entry points, resources, Koin modules, the data layer, networking and
// Firebase glue.
//
// Every generator returns []generator.Operation; nothing is written until
// the caller executes them.
package scaffold

import (
	"embed"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Options configures a Generator.
type Options struct {
	OutputDir      string
	FromDir        string
	TemplateKotlin string // optional Android template project
	PackageName    string
	AppName        string
}

// Binding is a class the DI modules construct.
type Binding struct {
	Name string // interface or class name
	Args int    // constructor parameters, each resolved with get()
}

// Screen is a navigation destination.
type Screen struct {
	Name  string // composable, HomeScreen
	Route string // home
	Tab   bool   // shown in the bottom navigation bar
}

// Object is the name of the destination object: HomeScreen → Home.
func (s Screen) Object() string {
	return naming.TrimRoleSuffix(s.Name, "Screen")
}

// Inventory is what the conversion stages produced. The DI, navigation and
// database generators wire it together.
type Inventory struct {
	Models       []string
	ViewModels   []Binding
	Repositories []Binding
	Services     []Binding
	Screens      []Screen

	UsesFirebase   bool
	UsesDatabase   bool
	UsesNetworking bool
}

// Generator renders the project scaffolding.
type Generator struct {
	opts     Options
	layout   emit.Layout
	renderer *generator.Renderer
	logger   logger.Logger
}

// New creates a Generator.
func New(opts Options) *Generator {
	return &Generator{
		opts: opts,
		layout: emit.Layout{
			Base: opts.PackageName,
			Root: filepath.Join(opts.OutputDir, "app", "src", "main", "java"),
		},
		renderer: generator.NewRenderer(),
		logger:   logger.Default(),
	}
}

// WithLogger returns a copy of the Generator logging to log.
func (g *Generator) WithLogger(log logger.Logger) *Generator {
	c := *g
	c.logger = log
	return &c
}

// Layout is where generated Kotlin sources go.
func (g *Generator) Layout() emit.Layout {
	return g.layout
}

// templateData is passed to every template.
type templateData struct {
	Package  string
	AppName  string
	AppClass string // app name as a Kotlin/XML identifier, MyApp
	Database string // SQLDelight database class, MyAppDatabase
	Inventory
	Extra any
}

func (g *Generator) data(inv Inventory, extra any) templateData {
	return templateData{
		Package:   g.opts.PackageName,
		AppName:   g.opts.AppName,
		AppClass:  g.appClass(),
		Database:  g.appClass() + "Database",
		Inventory: inv,
		Extra:     extra,
	}
}

var nonIdentRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

func (g *Generator) appClass() string {
	name := nonIdentRe.ReplaceAllString(g.opts.AppName, " ")
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		b.WriteString(naming.PascalCase(w))
	}
	if b.Len() == 0 {
		return "App"
	}
	s := b.String()
	if s[0] >= '0' && s[0] <= '9' {
		s = "App" + s
	}
	return s
}

func (g *Generator) render(name string, data any) ([]byte, error) {
	b, err := g.renderer.RenderFS(templatesFS, "templates/"+name, data)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return b, nil
}

// write renders tmpl to path, relative to the output directory.
func (g *Generator) write(path, tmpl string, data any) (generator.Operation, error) {
	content, err := g.render(tmpl, data)
	if err != nil {
		return nil, err
	}
	return generator.NewWriteFile(filepath.Join(g.opts.OutputDir, path), content), nil
}

// kotlin renders tmpl to name.kt in a sub-package.
func (g *Generator) kotlin(sub, name, tmpl string, data any) (generator.Operation, error) {
	content, err := g.render(tmpl, data)
	if err != nil {
		return nil, err
	}
	return generator.NewWriteFile(g.layout.File(sub, name), content), nil
}

// renderAll runs each step and collects the operations, stopping at the
// first error.
func renderAll(steps ...func() (generator.Operation, error)) ([]generator.Operation, error) {
	ops := make([]generator.Operation, 0, len(steps))
	for _, step := range steps {
		op, err := step()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (g *Generator) resDir(parts ...string) string {
	return filepath.Join(append([]string{g.opts.OutputDir, "app", "src", "main", "res"}, parts...)...)
}
