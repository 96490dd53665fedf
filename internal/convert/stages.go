package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/simonhull/firebird-suite/magpie/internal/analyzer"
	"github.com/simonhull/firebird-suite/magpie/internal/compose"
	"github.com/simonhull/firebird-suite/magpie/internal/emit"
	"github.com/simonhull/firebird-suite/magpie/internal/scaffold"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// stage produces the operations of one step. Source stages also count the
// files they skipped in res.
type stage struct {
	name string
	ops  func(res *StageResult) ([]generator.Operation, error)
}

// run holds the state one conversion accumulates: the inventory the
// scaffolding stages wire together, and every output path claimed so far.
type run struct {
	*Converter
	info    *analyzer.ProjectInfo
	report  *Report
	emitter *emit.Emitter
	inv     scaffold.Inventory
	claimed map[string]string // output path → what produced it
}

func newRun(c *Converter, info *analyzer.ProjectInfo, report *Report) *run {
	r := &run{
		Converter: c,
		info:      info,
		report:    report,
		claimed:   make(map[string]string),
		inv: scaffold.Inventory{
			UsesFirebase:   info.UsesFirebase,
			UsesDatabase:   info.UsesSwiftData,
			UsesNetworking: info.UsesNetworking,
		},
	}
	r.emitter = emit.New(r.index())
	return r
}

// index names every model and view up front so files converted early can
// refer to ones converted later.
func (r *run) index() emit.Options {
	opts := emit.Options{
		Layout:       r.scaffold.Layout(),
		Tables:       r.opts.Tables,
		Views:        make(map[string]compose.ViewRef),
		Screens:      make(map[string]bool),
		UsesFirebase: r.info.UsesFirebase,
	}
	for _, p := range r.info.Models {
		src, err := r.cache.Load(filepath.Join(r.info.Root, p))
		if err != nil || src.Unit.ClassName == "" {
			continue
		}
		if emit.Route(src.Unit, emit.RoleModel) == emit.RoleModel {
			opts.Models = append(opts.Models, src.Unit.ClassName)
		}
	}
	for _, p := range r.info.Views {
		src, err := r.cache.Load(filepath.Join(r.info.Root, p))
		if err != nil || src.Unit.ClassName == "" {
			continue
		}
		name := src.Unit.ClassName
		if emit.Route(src.Unit, emit.RoleView) != emit.RoleView {
			continue
		}
		screen := r.info.IsScreen(p)
		opts.Screens[name] = screen
		opts.Views[name] = compose.ViewRef{Name: emit.ComposableName(name, screen), Screen: screen}
	}
	return opts
}

func (r *run) stages() []stage {
	stages := []stage{
		{"models", r.sources(emit.RoleModel)},
		{"views", r.sources(emit.RoleView)},
		{"viewmodels", r.sources(emit.RoleViewModel)},
		{"repositories", r.sources(emit.RoleRepository)},
		{"services", r.sources(emit.RoleService)},
		{"di", r.generated(func() ([]generator.Operation, error) { return r.scaffold.DI(r.inv) })},
	}
	if r.info.UsesFirebase {
		stages = append(stages, stage{"firebase", r.generated(func() ([]generator.Operation, error) {
			return r.scaffold.Firebase(r.inv)
		})})
	} else {
		r.logger.Debug("Firebase not used, skipping stage")
	}
	return append(stages,
		stage{"database", r.generated(func() ([]generator.Operation, error) { return r.scaffold.Database(r.inv) })},
		stage{"network", r.generated(func() ([]generator.Operation, error) { return r.scaffold.Network(r.inv) })},
		stage{"resources", r.generated(func() ([]generator.Operation, error) { return r.scaffold.Resources(r.info) })},
		stage{"manifest", r.generated(func() ([]generator.Operation, error) { return r.scaffold.Manifest(r.inv) })},
		stage{"gradle", r.generated(func() ([]generator.Operation, error) { return r.scaffold.Gradle(r.inv) })},
	)
}

// runStage executes one stage. Only cancellation is returned; everything
// else is logged and recorded.
func (r *run) runStage(ctx context.Context, s stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := StageResult{Name: s.name}
	ops, err := s.ops(&res)
	if err == nil {
		var summary generator.Summary
		summary, err = r.execute(ctx, ops)
		res.Files = summary.Files()
		r.report.Summary.Add(summary)
	}
	if err != nil {
		if fatal(ctx, err) {
			return err
		}
		res.Err = err
		r.logger.Warn("Stage failed", logger.F("stage", s.name), logger.F("error", err))
	} else {
		r.logger.Info("Stage complete", logger.F("stage", s.name), logger.F("files", res.Files), logger.F("skipped", res.Skipped))
	}
	r.report.Stages = append(r.report.Stages, res)
	return nil
}

// sources converts the Swift files the analyzer filed under role. Each
// file routes by its class name, so a HomeViewModel found in Models/
// still becomes a view model.
func (r *run) sources(role emit.Role) func(*StageResult) ([]generator.Operation, error) {
	return func(res *StageResult) ([]generator.Operation, error) {
		var ops []generator.Operation
		for _, p := range r.info.Files(role) {
			f, routed, err := r.convertFile(p, role)
			if err != nil {
				res.Skipped++
				r.logger.Warn("Failed to convert file", logger.F("file", p), logger.F("error", err))
				continue
			}
			if owner, ok := r.claimed[f.Path]; ok {
				res.Skipped++
				r.logger.Warn("Output already produced, keeping the first",
					logger.F("file", p), logger.F("output", rel(r.opts.OutputDir, f.Path)), logger.F("first", owner))
				continue
			}
			r.claimed[f.Path] = p
			r.record(routed, f, p)
			ops = append(ops, f.Operation())
		}
		return ops, nil
	}
}

func (r *run) convertFile(p string, category emit.Role) (emit.GeneratedFile, emit.Role, error) {
	src, err := r.cache.Load(filepath.Join(r.info.Root, p))
	if err != nil {
		return emit.GeneratedFile{}, "", err
	}
	if src.Unit.ClassName == "" {
		return emit.GeneratedFile{}, "", fmt.Errorf("no type declaration found")
	}
	role := emit.Route(src.Unit, category)
	f, err := r.emitter.Emit(role, src.Unit, src.Content, filepath.Base(p))
	if err != nil {
		return emit.GeneratedFile{}, "", err
	}
	r.logger.Debug("Converted file", logger.F("file", p), logger.F("role", string(role)), logger.F("output", rel(r.opts.OutputDir, f.Path)))
	return f, role, nil
}

// record adds a converted file to the inventory.
func (r *run) record(role emit.Role, f emit.GeneratedFile, p string) {
	switch role {
	case emit.RoleModel:
		r.inv.Models = append(r.inv.Models, f.Name)
	case emit.RoleViewModel:
		r.inv.ViewModels = append(r.inv.ViewModels, scaffold.Binding{Name: f.Name, Args: f.Args})
	case emit.RoleRepository:
		r.inv.Repositories = append(r.inv.Repositories, scaffold.Binding{Name: f.Name, Args: f.Args})
	case emit.RoleService:
		r.inv.Services = append(r.inv.Services, scaffold.Binding{Name: f.Name, Args: f.Args})
	case emit.RoleView:
		if filepath.Dir(f.Path) != r.scaffold.Layout().Dir(emit.SubScreens) {
			return
		}
		src, err := r.cache.Load(filepath.Join(r.info.Root, p))
		if err != nil {
			return
		}
		r.inv.Screens = append(r.inv.Screens, scaffold.Screen{
			Name:  f.Name,
			Route: naming.Route(f.Name),
			Tab:   slices.Contains(r.info.AppStructure.Tabs, src.Unit.ClassName),
		})
	}
}

// generated wraps a scaffolding generator. Files a converted Swift source
// already produced are left alone.
func (r *run) generated(gen func() ([]generator.Operation, error)) func(*StageResult) ([]generator.Operation, error) {
	return func(*StageResult) ([]generator.Operation, error) {
		ops, err := gen()
		if err != nil {
			return nil, err
		}
		out := ops[:0]
		for _, op := range ops {
			w, ok := op.(generator.Writer)
			if !ok {
				out = append(out, op)
				continue
			}
			if owner, taken := r.claimed[w.Target()]; taken {
				r.logger.Debug("Keeping converted file", logger.F("output", rel(r.opts.OutputDir, w.Target())), logger.F("source", owner))
				continue
			}
			r.claimed[w.Target()] = "generated"
			out = append(out, op)
		}
		return out, nil
	}
}
