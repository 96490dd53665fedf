package generator

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"text/template"

	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// Renderer parses and caches text/template files used for Kotlin, Gradle and
// Android XML output.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with the built-in helper functions.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders a template given as a string. name is used for
// caching and error messages.
func (r *Renderer) RenderString(name, text string, data any) ([]byte, error) {
	return r.render("string:"+name, func() (string, error) { return text, nil }, data)
}

// RenderFS renders a template from a filesystem, typically an embed.FS.
func (r *Renderer) RenderFS(fsys fs.FS, path string, data any) ([]byte, error) {
	return r.render(fmt.Sprintf("fs:%p:%s", fsys, path), func() (string, error) {
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return "", fmt.Errorf("failed to read template from fs '%s': %w", path, err)
		}
		return string(b), nil
	}, data)
}

// RenderFile renders a template from disk.
func (r *Renderer) RenderFile(path string, data any) ([]byte, error) {
	return r.render("file:"+path, func() (string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read template file '%s': %w", path, err)
		}
		return string(b), nil
	}, data)
}

func (r *Renderer) render(key string, load func() (string, error), data any) ([]byte, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[key]
	r.mu.RUnlock()

	if !ok {
		text, err := load()
		if err != nil {
			return nil, err
		}
		tmpl, err = template.New(key).Funcs(r.funcMap).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template '%s': %w", key, err)
		}
		r.mu.Lock()
		r.cache[key] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", key, err)
	}
	return buf.Bytes(), nil
}

// ClearCache drops every parsed template.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"pascalCase":   naming.PascalCase,
		"camelCase":    naming.CamelCase,
		"snakeCase":    naming.SnakeCase,
		"constantCase": naming.ConstantCase,
		"lowerFirst":   naming.LowerFirst,
		"plural":       naming.Pluralize,
		"route":        naming.Route,
		"resourceName": naming.ResourceName,

		"quote":     Quote,
		"xmlEscape": XMLEscape,
		"indent":    Indent,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,
		"pkgPath":   PackagePath,
		"last":      Last,
	}
}

// Quote renders s as a Kotlin string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// XMLEscape escapes text for Android resource XML, including the apostrophe
// and quote escaping aapt requires.
func XMLEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`'`, `\'`,
		`"`, `\"`,
	)
	return r.Replace(s)
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// PackagePath turns a Kotlin package into a directory path:
// com.company.amap → com/company/amap.
func PackagePath(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "/")
}

// Last reports whether i is the final index of a slice of length n; used
// for comma placement in templates.
func Last(i, n int) bool {
	return i == n-1
}
