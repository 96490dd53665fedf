// Package analyzer walks a Swift project and classifies its files into the
// roles the converter emits: models, views, view models, repositories and
// services. It also records navigation, resources and the frameworks the
// project depends on.
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// Analyzer classifies the files of a Swift project.
type Analyzer struct {
	cache       *swift.Cache
	templateIOS string
	logger      logger.Logger
}

// NewAnalyzer creates an Analyzer scanning through cache. A nil cache gets
// a private one.
func NewAnalyzer(cache *swift.Cache) (*Analyzer, error) {
	if cache == nil {
		c, err := swift.NewCache(0)
		if err != nil {
			return nil, err
		}
		cache = c
	}
	return &Analyzer{cache: cache, logger: logger.Default()}, nil
}

// WithLogger returns a copy of the Analyzer logging to log.
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	c := *a
	c.logger = log
	return &c
}

// WithTemplate returns a copy of the Analyzer that skips files identical
// to their counterpart under the iOS template directory dir.
func (a *Analyzer) WithTemplate(dir string) *Analyzer {
	c := *a
	c.templateIOS = dir
	return &c
}

// Analyze walks root. Files that cannot be read are logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*ProjectInfo, error) {
	if !filesystem.IsDir(root) {
		return nil, fmt.Errorf("source directory %s: %w", root, fs.ErrNotExist)
	}
	a.logger.Info("Analyzing Swift project", logger.F("path", root))

	info := &ProjectInfo{Root: root, Kind: detectKind(root)}
	deps := make(map[string]bool)
	contents := make(map[string]string)

	err := filesystem.Walk(root, filesystem.WalkOptions{}, func(path string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !strings.EqualFold(filepath.Ext(path), ".swift") {
			switch resourceKind(rel) {
			case "resources":
				info.Resources = append(info.Resources, rel)
			case "strings":
				info.Strings = append(info.Strings, rel)
			case "colors":
				info.Colors = append(info.Colors, rel)
			}
			return nil
		}
		if filepath.Base(rel) == "Package.swift" {
			return nil
		}

		src, err := a.cache.Load(path)
		if err != nil {
			a.logger.Warn("Failed to read Swift file", logger.F("file", rel), logger.F("error", err))
			return nil
		}
		if a.unchangedFromTemplate(rel, path) {
			a.logger.Debug("Skipping template file", logger.F("file", rel))
			info.Skipped = append(info.Skipped, rel)
			return nil
		}

		for _, k := range dependencyKeywords {
			if k.re.MatchString(src.Content) {
				deps[k.name] = true
			}
		}

		if entryPointRe.MatchString(src.Content) {
			info.Skipped = append(info.Skipped, rel)
			return nil
		}
		role, ok := classify(rel, src.Content)
		if !ok {
			a.logger.Debug("Unclassified Swift file", logger.F("file", rel))
			info.Skipped = append(info.Skipped, rel)
			return nil
		}
		info.add(role, rel)
		if role == emit.RoleView {
			contents[rel] = src.Content
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", root, err)
	}

	for _, rel := range info.Views {
		if screenByPath(rel, contents[rel]) {
			info.AppStructure.Screens = append(info.AppStructure.Screens, rel)
		} else {
			info.AppStructure.Components = append(info.AppStructure.Components, rel)
		}
	}
	info.AppStructure.MainNavigation, info.AppStructure.Tabs = mainNavigation(info.Views, contents)

	for name := range deps {
		info.Dependencies = append(info.Dependencies, name)
	}
	slices.Sort(info.Dependencies)
	info.UsesFirebase = deps[DepFirebase]
	info.UsesSwiftData = deps[DepDatabase]
	info.UsesCombine = deps[DepCoroutines]
	info.UsesNetworking = deps[DepNetworking]

	a.logger.Info("Analysis complete",
		logger.F("models", len(info.Models)),
		logger.F("views", len(info.Views)),
		logger.F("viewmodels", len(info.ViewModels)),
		logger.F("repositories", len(info.Repositories)),
		logger.F("services", len(info.Services)),
		logger.F("resources", len(info.Resources)),
		logger.F("dependencies", strings.Join(info.Dependencies, ",")),
	)
	return info, nil
}

func (a *Analyzer) unchangedFromTemplate(rel, path string) bool {
	if a.templateIOS == "" {
		return false
	}
	counterpart := filepath.Join(a.templateIOS, rel)
	return filesystem.Exists(counterpart) && filesystem.SameContent(path, counterpart)
}

// screenByPath lets the directory decide first: Components/ holds
// components, Screens/ and Features/ hold screens unless the name or
// content says otherwise.
func screenByPath(rel, content string) bool {
	switch {
	case inDir(rel, "Components"):
		return false
	case inDir(rel, "Screens"):
		return true
	}
	return emit.IsScreen(filepath.Base(rel), content)
}

// mainNavigation finds the root tab view and the views its tabs create.
func mainNavigation(views []string, contents map[string]string) (string, []string) {
	nav := ""
	if slices.Contains(views, mainNavigationPath) {
		nav = mainNavigationPath
	} else {
		for _, rel := range views {
			if tabViewRe.MatchString(contents[rel]) {
				nav = rel
				break
			}
		}
	}
	if nav == "" {
		return "", nil
	}

	var tabs []string
	for _, m := range tabScreenRe.FindAllStringSubmatch(swift.StripComments(contents[nav]), -1) {
		if !slices.Contains(tabs, m[1]) {
			tabs = append(tabs, m[1])
		}
	}
	return nav, tabs
}

func detectKind(root string) ProjectKind {
	if filesystem.Exists(filepath.Join(root, "Package.swift")) {
		return KindSwiftPM
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return KindPlain
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), ".xcodeproj") {
			return KindXcode
		}
	}
	return KindPlain
}
