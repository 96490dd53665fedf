package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

var (
	namespaceRe     = regexp.MustCompile(`(namespace\s*=?\s*)["'][^"']*["']`)
	applicationIDRe = regexp.MustCompile(`(applicationId\s*=?\s*)["'][^"']*["']`)
	databaseNameRe  = regexp.MustCompile(`create\("\w+Database"\)`)
	rootNameRe      = regexp.MustCompile(`rootProject\.name\s*=\s*"[^"]*"`)
)

type gradleFile struct {
	path  string // relative to the output directory
	tmpl  string
	patch func(g *Generator, content string) string
}

var gradleFiles = []gradleFile{
	{"settings.gradle.kts", "settings.gradle.kts.tmpl", func(g *Generator, s string) string {
		return rootNameRe.ReplaceAllString(s, fmt.Sprintf("rootProject.name = %q", g.rootName()))
	}},
	{"build.gradle.kts", "build.gradle.kts.tmpl", nil},
	{filepath.Join("app", "build.gradle.kts"), "app.build.gradle.kts.tmpl", func(g *Generator, s string) string {
		pkg := `${1}"` + g.opts.PackageName + `"`
		s = namespaceRe.ReplaceAllString(s, pkg)
		s = applicationIDRe.ReplaceAllString(s, pkg)
		return databaseNameRe.ReplaceAllString(s, fmt.Sprintf("create(%q)", g.appClass()+"Database"))
	}},
	{"gradle.properties", "gradle.properties.tmpl", nil},
}

// Gradle writes the settings, root and app build scripts and
// gradle.properties. When the Kotlin template has its own copy of a file,
// that copy is kept and only the package and project names are replaced;
// otherwise the built-in script is rendered with plugins and dependencies
// for what inv uses.
func (g *Generator) Gradle(inv Inventory) ([]generator.Operation, error) {
	data := g.data(inv, g.rootName())
	var ops []generator.Operation
	for _, f := range gradleFiles {
		dst := filepath.Join(g.opts.OutputDir, f.path)
		if content, ok := g.templateFile(f.path); ok {
			if f.patch != nil {
				content = f.patch(g, content)
			}
			g.logger.Debug("Using Gradle file from template", logger.F("file", f.path))
			ops = append(ops, generator.NewWriteFile(dst, []byte(content)))
			continue
		}
		op, err := g.write(f.path, f.tmpl, data)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (g *Generator) templateFile(rel string) (string, bool) {
	if g.opts.TemplateKotlin == "" {
		return "", false
	}
	path := filepath.Join(g.opts.TemplateKotlin, rel)
	if !filesystem.Exists(path) {
		return "", false
	}
	b, err := os.ReadFile(path)
	if err != nil {
		g.logger.Warn("Failed to read template file", logger.F("file", path), logger.F("error", err))
		return "", false
	}
	return string(b), true
}

// rootName is the Gradle project name: lower case, no spaces.
func (g *Generator) rootName() string {
	return strings.ToLower(strings.Join(strings.Fields(g.opts.AppName), "-"))
}
