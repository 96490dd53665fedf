package scaffold

import (
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/emit"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// tabIcons picks a Material icon for a bottom navigation tab by route.
var tabIcons = map[string]string{
	"home":          "Home",
	"settings":      "Settings",
	"profile":       "Person",
	"account":       "AccountCircle",
	"search":        "Search",
	"favorites":     "Favorite",
	"notifications": "Notifications",
	"calendar":      "DateRange",
	"stats":         "Info",
	"history":       "List",
}

type navTab struct {
	Object string
	Label  string
	Icon   string
}

type navData struct {
	Start string // destination object the NavHost starts on
	Tabs  []navTab
}

// Manifest writes AndroidManifest.xml, the Application and Activity
// classes, navigation, the Compose theme and the backup rule files.
func (g *Generator) Manifest(inv Inventory) ([]generator.Operation, error) {
	data := g.data(inv, navigation(inv.Screens))
	return renderAll(
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "AndroidManifest.xml"), "AndroidManifest.xml.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin("", "MyApplication", "MyApplication.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin("", "MainActivity", "MainActivity.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubNavigation, "AppNavHost", "AppNavHost.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubTheme, "Theme", "Theme.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubTheme, "Color", "Color.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.kotlin(emit.SubTheme, "Type", "Type.kt.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "res", "xml", "backup_rules.xml"), "backup_rules.xml.tmpl", data)
		},
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "res", "xml", "data_extraction_rules.xml"), "data_extraction_rules.xml.tmpl", data)
		},
	)
}

// navigation starts on the first tab, or the first screen when there are
// no tabs.
func navigation(screens []Screen) navData {
	var d navData
	for _, s := range screens {
		if !s.Tab {
			continue
		}
		icon, ok := tabIcons[s.Route]
		if !ok {
			icon = "Star"
		}
		d.Tabs = append(d.Tabs, navTab{
			Object: s.Object(),
			Label:  tabLabel(s.Object()),
			Icon:   icon,
		})
	}
	switch {
	case len(d.Tabs) > 0:
		d.Start = d.Tabs[0].Object
	case len(screens) > 0:
		d.Start = screens[0].Object()
	}
	return d
}

// tabLabel spells an object name as title-cased words: UserProfile → User Profile.
func tabLabel(object string) string {
	words := strings.Split(naming.SnakeCase(object), "_")
	for i, w := range words {
		words[i] = naming.PascalCase(w)
	}
	return strings.Join(words, " ")
}
