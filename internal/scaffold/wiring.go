package scaffold

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// Gets is the Koin argument list for the constructor: get(), get().
func (b Binding) Gets() string {
	return strings.TrimSuffix(strings.Repeat("get(), ", b.Args), ", ")
}

// DI writes the Koin modules MyApplication starts: app singletons, data
// sources, repositories, services and view models.
func (g *Generator) DI(inv Inventory) ([]generator.Operation, error) {
	data := g.data(inv, nil)
	modules := []struct{ name, tmpl string }{
		{"AppModule", "AppModule.kt.tmpl"},
		{"DataModule", "DataModule.kt.tmpl"},
		{"RepositoryModule", "RepositoryModule.kt.tmpl"},
		{"ServiceModule", "ServiceModule.kt.tmpl"},
		{"ViewModelModule", "ViewModelModule.kt.tmpl"},
	}
	ops := make([]generator.Operation, 0, len(modules))
	for _, m := range modules {
		op, err := g.kotlin(emit.SubDI, m.name, m.tmpl, data)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// table is the SQLDelight table holding one model as JSON.
type table struct {
	Model   string
	Name    string // UserEntity
	Queries string // userEntityQueries
}

func tables(models []string) []table {
	out := make([]table, 0, len(models))
	for _, m := range models {
		name := naming.TrimRoleSuffix(m, "Model") + "Entity"
		out = append(out, table{Model: m, Name: name, Queries: naming.LowerFirst(name) + "Queries"})
	}
	return out
}

// Database writes the local and remote data sources every repository
// depends on. With inv.UsesDatabase the local source is backed by
// SQLDelight: one .sq file per model plus AppDatabase; otherwise it keeps
// values in memory.
func (g *Generator) Database(inv Inventory) ([]generator.Operation, error) {
	tbls := tables(inv.Models)
	data := g.data(inv, tbls)

	ops, err := renderAll(
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubLocal, "LocalDataSource", "LocalDataSource.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubRemote, "RemoteDataSource", "RemoteDataSource.kt.tmpl", data)
		},
	)
	if err != nil {
		return nil, err
	}
	if !inv.UsesDatabase {
		return ops, nil
	}

	op, err := g.kotlin(emit.SubLocal, "AppDatabase", "AppDatabase.kt.tmpl", data)
	if err != nil {
		return nil, err
	}
	ops = append(ops, op)

	sqlDir := filepath.Join("app", "src", "main", "sqldelight", filepath.FromSlash(generator.PackagePath(g.layout.Package(emit.SubLocal))))
	for _, t := range tbls {
		op, err := g.write(filepath.Join(sqlDir, t.Name+".sq"), "table.sq.tmpl", g.data(inv, t))
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Network writes the Ktor client factory, a string-based ApiService and
// the ApiResponse envelope.
func (g *Generator) Network(inv Inventory) ([]generator.Operation, error) {
	data := g.data(inv, nil)
	return renderAll(
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubNetwork, "ApiClient", "ApiClient.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubNetwork, "ApiService", "ApiService.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubNetwork+".models", "ApiResponse", "ApiResponse.kt.tmpl", data)
		},
	)
}

// Firebase writes FirebaseAuthService and app/google-services.json. An
// existing google-services.json in the Swift project or the output root is
// copied; otherwise a placeholder naming the package is written.
func (g *Generator) Firebase(inv Inventory) ([]generator.Operation, error) {
	data := g.data(inv, nil)
	op, err := g.kotlin(emit.SubServices, "FirebaseAuthService", "FirebaseAuthService.kt.tmpl", data)
	if err != nil {
		return nil, err
	}
	ops := []generator.Operation{op}

	dst := filepath.Join(g.opts.OutputDir, "app", "google-services.json")
	for _, dir := range []string{g.opts.FromDir, g.opts.OutputDir} {
		src := filepath.Join(dir, "google-services.json")
		if dir != "" && filesystem.Exists(src) {
			return append(ops, &generator.CopyFileOp{Src: src, Dst: dst}), nil
		}
	}
	op, err = g.write(filepath.Join("app", "google-services.json"), "google-services.json.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("google-services.json: %w", err)
	}
	return append(ops, op), nil
}
