package scaffold

import (
	"path/filepath"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// packageDirs are created below the application package.
var packageDirs = []string{
	emit.SubModels,
	emit.SubScreens,
	emit.SubComponents,
	emit.SubTheme,
	emit.SubNavigation,
	emit.SubViewModels,
	emit.SubRepositories,
	emit.SubServices,
	emit.SubDI,
	emit.SubLocal,
	emit.SubRemote,
	emit.SubNetwork,
	"utils",
}

var resourceDirs = []string{
	"drawable",
	"drawable-hdpi",
	"drawable-mdpi",
	"drawable-xhdpi",
	"drawable-xxhdpi",
	"values",
	"values-night",
	"raw",
	"xml",
}

// templateIgnoreDirs are never copied from the Kotlin template.
var templateIgnoreDirs = []string{".git", ".idea", "build", ".gradle"}

// Clean removes the output directory.
func (g *Generator) Clean() []generator.Operation {
	return []generator.Operation{&generator.RemoveAllOp{Path: g.opts.OutputDir}}
}

// Structure creates the package and resource directories and copies the
// Kotlin template project, if one is configured and exists.
func (g *Generator) Structure() ([]generator.Operation, error) {
	var ops []generator.Operation
	ops = append(ops, &generator.MkdirOp{Path: g.opts.OutputDir})

	if g.opts.TemplateKotlin != "" {
		if filesystem.IsDir(g.opts.TemplateKotlin) {
			copies, err := g.templateCopies()
			if err != nil {
				return nil, err
			}
			ops = append(ops, copies...)
		} else {
			g.logger.Warn("Kotlin template not found, using built-in defaults", logger.F("path", g.opts.TemplateKotlin))
		}
	}

	for _, sub := range packageDirs {
		ops = append(ops, &generator.MkdirOp{Path: g.layout.Dir(sub)})
	}
	for _, dir := range resourceDirs {
		ops = append(ops, &generator.MkdirOp{Path: g.resDir(dir)})
	}
	return ops, nil
}

func (g *Generator) templateCopies() ([]generator.Operation, error) {
	var ops []generator.Operation
	paths, err := filesystem.FindFiles(g.opts.TemplateKotlin, filesystem.WalkOptions{
		IgnoreDirs:     templateIgnoreDirs,
		IgnorePatterns: []string{"local.properties", ".DS_Store"},
		IncludeHidden:  true,
	})
	if err != nil {
		return nil, err
	}
	for _, src := range paths {
		rel, err := filepath.Rel(g.opts.TemplateKotlin, src)
		if err != nil {
			return nil, err
		}
		ops = append(ops, &generator.CopyFileOp{Src: src, Dst: filepath.Join(g.opts.OutputDir, rel)})
	}
	return ops, nil
}
