package analyzer

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
)

// pattern classifies a Swift file by where it lives and what it is called.
type pattern struct {
	role  emit.Role
	match func(rel, name string) bool
}

// pathPatterns are tried in order; the first match wins. View models come
// before models because HomeViewModel.swift also ends in Model.swift.
var pathPatterns = []pattern{
	{emit.RoleViewModel, func(rel, name string) bool {
		return strings.HasSuffix(name, "ViewModel.swift") || inDir(rel, "ViewModels")
	}},
	{emit.RoleRepository, func(rel, name string) bool {
		return strings.Contains(name, "Repository") || inDir(rel, "Repositories")
	}},
	{emit.RoleService, func(rel, name string) bool {
		return strings.Contains(name, "Service") || inDir(rel, "Services")
	}},
	{emit.RoleModel, func(rel, name string) bool {
		return strings.HasSuffix(name, "Model.swift") || inDir(rel, "Models")
	}},
	{emit.RoleView, func(rel, name string) bool {
		return strings.HasSuffix(name, "View.swift") || inDir(rel, "Views") || inDir(rel, "Features") ||
			inDir(rel, "Screens") || inDir(rel, "Components")
	}},
}

// contentPatterns classify files the path patterns missed.
var contentPatterns = []struct {
	role emit.Role
	re   *regexp.Regexp
}{
	{emit.RoleView, regexp.MustCompile(`(?m)^\s*(?:\w+\s+)*struct\s+\w+\s*:\s*(?:[\w, ]*,\s*)?View\b`)},
	{emit.RoleViewModel, regexp.MustCompile(`\bObservableObject\b|(?m)^\s*@Observable\b`)},
	{emit.RoleModel, regexp.MustCompile(`(?m)^\s*@Model\b|\b(?:struct|class|enum)\s+\w+\s*:\s*[^{]*\b(?:Codable|Decodable|Identifiable|Hashable)\b`)},
}

var (
	entryPointRe = regexp.MustCompile(`(?m)^\s*@main\b`)
	tabViewRe    = regexp.MustCompile(`\bTabView\b`)
	tabScreenRe  = regexp.MustCompile(`\b([A-Z]\w*View)\(\)`)
)

var dependencyKeywords = []struct {
	name string
	re   *regexp.Regexp
}{
	{DepFirebase, regexp.MustCompile(`Firebase`)},
	{DepDatabase, regexp.MustCompile(`SwiftData|@Model\b`)},
	{DepCoroutines, regexp.MustCompile(`\bCombine\b|Publisher|Subject\b`)},
	{DepNetworking, regexp.MustCompile(`URLSession|Alamofire|\bAPI`)},
}

var (
	imageExts    = []string{".png", ".jpg", ".jpeg", ".svg", ".pdf", ".webp"}
	resourceExts = []string{".png", ".jpg", ".jpeg", ".svg", ".json", ".xml"}
)

// mainNavigationPath is where the conventional root tab view lives.
var mainNavigationPath = filepath.Join("Features", "Navigation", "AppTabView.swift")

func classify(rel, content string) (emit.Role, bool) {
	name := filepath.Base(rel)
	for _, p := range pathPatterns {
		if p.match(rel, name) {
			return p.role, true
		}
	}
	for _, p := range contentPatterns {
		if p.re.MatchString(content) {
			return p.role, true
		}
	}
	return "", false
}

func inDir(rel, dir string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/"), dir)
}

// resourceKind sorts a non-Swift file into resources, strings or colors.
func resourceKind(rel string) string {
	slash := filepath.ToSlash(rel)
	ext := strings.ToLower(filepath.Ext(rel))
	switch {
	case filepath.Base(rel) == "Localizable.strings":
		return "strings"
	case strings.Contains(slash, ".colorset/") && filepath.Base(rel) == "Contents.json":
		return "colors"
	case strings.Contains(slash, ".imageset/") && slices.Contains(imageExts, ext):
		return "resources"
	case strings.HasPrefix(slash, "Resources/") && slices.Contains(resourceExts, ext):
		return "resources"
	}
	return ""
}
