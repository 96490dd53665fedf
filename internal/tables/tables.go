// Package tables holds the lookup tables behind every translation heuristic:
// Swift→Kotlin types, SF Symbol→Material icon names, SwiftUI colors and font
// styles, and the symbol→package table used to insert Kotlin imports.
//
// Tables are plain values. Translators receive them explicitly; nothing in
// magpie reads a package-level table.
package tables

import (
	_ "embed"
	"fmt"
	"maps"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yml
var defaultsYAML []byte

// Tables is the full set of heuristic lookup tables.
type Tables struct {
	Types       map[string]string `yaml:"types"`
	Icons       map[string]string `yaml:"icons"`
	Colors      map[string]string `yaml:"colors"`
	Fonts       map[string]string `yaml:"fonts"`
	FontWeights map[string]string `yaml:"font_weights"`
	Imports     map[string]string `yaml:"imports"`
}

var (
	parseOnce sync.Once
	parsed    Tables
	parseErr  error
)

// Default returns a fresh copy of the built-in tables. Callers may mutate the
// result freely.
func Default() Tables {
	parseOnce.Do(func() {
		parseErr = yaml.Unmarshal(defaultsYAML, &parsed)
	})
	if parseErr != nil {
		// The defaults are embedded at build time; a parse failure is a bug.
		panic(fmt.Sprintf("tables: invalid embedded defaults: %v", parseErr))
	}
	return parsed.Clone()
}

// Parse reads tables from YAML, e.g. the `tables:` section of magpie.yml.
func Parse(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parsing tables: %w", err)
	}
	return t, nil
}

// Clone returns a deep copy.
func (t Tables) Clone() Tables {
	return Tables{
		Types:       maps.Clone(t.Types),
		Icons:       maps.Clone(t.Icons),
		Colors:      maps.Clone(t.Colors),
		Fonts:       maps.Clone(t.Fonts),
		FontWeights: maps.Clone(t.FontWeights),
		Imports:     maps.Clone(t.Imports),
	}
}

// Merge returns t with every entry of overrides added or replaced.
func (t Tables) Merge(overrides Tables) Tables {
	out := t.Clone()
	out.Types = mergeMap(out.Types, overrides.Types)
	out.Icons = mergeMap(out.Icons, overrides.Icons)
	out.Colors = mergeMap(out.Colors, overrides.Colors)
	out.Fonts = mergeMap(out.Fonts, overrides.Fonts)
	out.FontWeights = mergeMap(out.FontWeights, overrides.FontWeights)
	out.Imports = mergeMap(out.Imports, overrides.Imports)
	return out
}

func mergeMap(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Icon maps an SF Symbol name to a Material icon expression. Variants such
// as "house.fill" or "person.circle" fall back to their base symbol;
// anything unknown becomes Icons.Default.Info.
func (t Tables) Icon(symbol string) string {
	name := symbol
	for name != "" {
		if icon, ok := t.Icons[name]; ok {
			return "Icons.Default." + icon
		}
		i := strings.LastIndex(name, ".")
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return "Icons.Default.Info"
}

// Color maps a SwiftUI color name (blue, .blue, Color.blue, Color(.systemGray6))
// to a Compose color expression.
func (t Tables) Color(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "Color")
	name = strings.TrimPrefix(name, "(")
	name = strings.TrimSuffix(name, ")")
	name = strings.TrimPrefix(name, ".")
	if v, ok := t.Colors[name]; ok {
		if strings.ContainsAny(v, ".(") {
			return v
		}
		return "Color." + v
	}
	return "Color.Unspecified"
}

// Font maps a SwiftUI text style (.title, .headline) to a Material 3
// typography token.
func (t Tables) Font(style string) string {
	style = strings.TrimPrefix(strings.TrimSpace(style), ".")
	if v, ok := t.Fonts[style]; ok {
		return "MaterialTheme.typography." + v
	}
	return "MaterialTheme.typography.bodyLarge"
}

// FontWeight maps .bold, .semibold, ... to FontWeight constants.
func (t Tables) FontWeight(weight string) string {
	weight = strings.TrimPrefix(strings.TrimSpace(weight), ".")
	if v, ok := t.FontWeights[weight]; ok {
		return "FontWeight." + v
	}
	return "FontWeight.Normal"
}
