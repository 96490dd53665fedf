package analyzer

import (
	"slices"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
)

// ProjectKind is how the Swift sources are organised on disk.
type ProjectKind string

const (
	KindSwiftPM ProjectKind = "swiftpm" // Package.swift at the root
	KindXcode   ProjectKind = "xcode"   // an .xcodeproj bundle at the root
	KindPlain   ProjectKind = "plain"
)

// Dependencies the generated Android project may need.
const (
	DepFirebase   = "firebase"
	DepDatabase   = "database"
	DepCoroutines = "coroutines"
	DepNetworking = "networking"
)

// ProjectInfo is the result of analysing a Swift project. It is built once
// by Analyze and only read afterwards. Paths are relative to Root.
type ProjectInfo struct {
	Root string
	Kind ProjectKind

	Models       []string
	Views        []string
	ViewModels   []string
	Repositories []string
	Services     []string

	Resources []string // images and data files to copy as drawables/raw
	Strings   []string // Localizable.strings files
	Colors    []string // *.colorset/Contents.json files

	AppStructure AppStructure
	Dependencies []string // sorted

	UsesFirebase   bool
	UsesSwiftData  bool
	UsesCombine    bool
	UsesNetworking bool

	// Skipped lists Swift files left out: unchanged template files, the
	// @main entry point and files no pattern classified.
	Skipped []string
}

// AppStructure describes navigation.
type AppStructure struct {
	MainNavigation string   // file holding the root TabView, "" when none
	Tabs           []string // view types instantiated by the main navigation
	Screens        []string
	Components     []string
}

// HasDependency reports whether name was detected.
func (p *ProjectInfo) HasDependency(name string) bool {
	return slices.Contains(p.Dependencies, name)
}

// Files returns the files of one role.
func (p *ProjectInfo) Files(role emit.Role) []string {
	switch role {
	case emit.RoleModel:
		return p.Models
	case emit.RoleView:
		return p.Views
	case emit.RoleViewModel:
		return p.ViewModels
	case emit.RoleRepository:
		return p.Repositories
	case emit.RoleService:
		return p.Services
	}
	return nil
}

// IsScreen reports whether the view at rel was classified as a screen.
func (p *ProjectInfo) IsScreen(rel string) bool {
	return slices.Contains(p.AppStructure.Screens, rel)
}

// SourceCount is the number of Swift files that will be converted.
func (p *ProjectInfo) SourceCount() int {
	return len(p.Models) + len(p.Views) + len(p.ViewModels) + len(p.Repositories) + len(p.Services)
}

func (p *ProjectInfo) add(role emit.Role, rel string) {
	switch role {
	case emit.RoleModel:
		p.Models = append(p.Models, rel)
	case emit.RoleView:
		p.Views = append(p.Views, rel)
	case emit.RoleViewModel:
		p.ViewModels = append(p.ViewModels, rel)
	case emit.RoleRepository:
		p.Repositories = append(p.Repositories, rel)
	case emit.RoleService:
		p.Services = append(p.Services, rel)
	}
}
