package scaffold

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/simonhull/firebird-suite/magpie/internal/analyzer"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/naming"
)

// stringEntryRe matches one `"key" = "value";` line of a .strings file.
var stringEntryRe = regexp.MustCompile(`^\s*"((?:[^"\\]|\\.)*)"\s*=\s*"((?:[^"\\]|\\.)*)"\s*;`)

// formatRe finds Foundation format specifiers that differ on Android.
var formatRe = regexp.MustCompile(`%(\d+\$)?@`)

// defaultStrings are added unless the project defines the same key.
var defaultStrings = []Value{
	{"ok", "OK"},
	{"cancel", "Cancel"},
	{"loading", "Loading…"},
	{"error_message", "An error occurred. Please try again."},
	{"retry", "Retry"},
}

var defaultColors = []Value{
	{"primary", "#FF6200EE"},
	{"primary_variant", "#FF3700B3"},
	{"secondary", "#FF03DAC6"},
	{"background", "#FFFFFFFF"},
	{"surface", "#FFFFFFFF"},
	{"error", "#FFB00020"},
	{"on_primary", "#FFFFFFFF"},
	{"on_background", "#FF000000"},
}

var (
	drawableExts = []string{".png", ".jpg", ".jpeg", ".webp"}
	rawExts      = []string{".json"}
	xmlExts      = []string{".xml"}
)

// Value is one named entry of a values resource file.
type Value struct {
	Name  string
	Value string
}

type valuesData struct {
	Strings []Value
	Colors  []Value
	Night   bool
}

// Resources writes strings.xml, colors.xml and the day/night themes, and
// copies images into res/drawable under Android-safe names. Only the first
// image of each asset catalog image set is copied.
func (g *Generator) Resources(info *analyzer.ProjectInfo) ([]generator.Operation, error) {
	values := valuesData{
		Strings: g.stringValues(info),
		Colors:  g.colorValues(info),
	}
	night := values
	night.Night = true

	ops, err := renderAll(
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "res", "values", "strings.xml"), "strings.xml.tmpl", g.data(Inventory{}, values))
		},
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "res", "values", "colors.xml"), "colors.xml.tmpl", g.data(Inventory{}, values))
		},
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "res", "values", "themes.xml"), "themes.xml.tmpl", g.data(Inventory{}, values))
		},
		func() (generator.Operation, error) {
			return g.write(filepath.Join("app", "src", "main", "res", "values-night", "themes.xml"), "themes.xml.tmpl", g.data(Inventory{}, night))
		},
	)
	if err != nil {
		return nil, err
	}
	return append(ops, g.copies(info)...), nil
}

func (g *Generator) stringValues(info *analyzer.ProjectInfo) []Value {
	out := []Value{{"app_name", g.opts.AppName}}
	seen := map[string]bool{"app_name": true}
	add := func(v Value) {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}

	for _, rel := range preferBase(info.Strings) {
		data, err := os.ReadFile(filepath.Join(info.Root, rel))
		if err != nil {
			g.logger.Warn("Failed to read strings file", logger.F("file", rel), logger.F("error", err))
			continue
		}
		for _, e := range ParseStrings(decodeText(data)) {
			add(e)
		}
	}
	for _, d := range defaultStrings {
		add(d)
	}
	for i := range out {
		out[i].Value = generator.XMLEscape(out[i].Value)
	}
	return out
}

// preferBase orders Base.lproj and en.lproj first so their values win.
func preferBase(paths []string) []string {
	out := slices.Clone(paths)
	rank := func(p string) int {
		switch filepath.Base(filepath.Dir(p)) {
		case "Base.lproj":
			return 0
		case "en.lproj":
			return 1
		}
		return 2
	}
	slices.SortStableFunc(out, func(a, b string) int { return rank(a) - rank(b) })
	return out
}

// decodeText returns data as UTF-8. Xcode often saves .strings files as
// UTF-16 with a byte order mark.
func decodeText(data []byte) string {
	if len(data) < 2 {
		return string(data)
	}
	var order binary.ByteOrder
	switch {
	case data[0] == 0xFF && data[1] == 0xFE:
		order = binary.LittleEndian
	case data[0] == 0xFE && data[1] == 0xFF:
		order = binary.BigEndian
	default:
		return strings.TrimPrefix(string(data), "\uFEFF")
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 2; i+1 < len(data); i += 2 {
		units = append(units, order.Uint16(data[i:]))
	}
	return string(utf16.Decode(units))
}

// ParseStrings reads the entries of a Localizable.strings file. Keys become
// resource names; %@ placeholders become %s.
func ParseStrings(content string) []Value {
	var out []Value
	for _, line := range strings.Split(content, "\n") {
		m := stringEntryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.ReplaceAll(m[2], `\"`, `"`)
		value = formatRe.ReplaceAllString(value, "%${1}s")
		out = append(out, Value{Name: naming.StringKey(m[1]), Value: value})
	}
	return out
}

func (g *Generator) colorValues(info *analyzer.ProjectInfo) []Value {
	out := slices.Clone(defaultColors)
	for _, rel := range info.Colors {
		name := naming.ResourceName(strings.TrimSuffix(filepath.Base(filepath.Dir(rel)), ".colorset"))
		data, err := os.ReadFile(filepath.Join(info.Root, rel))
		if err != nil {
			g.logger.Warn("Failed to read color set", logger.F("file", rel), logger.F("error", err))
			continue
		}
		hex, err := ParseColorSet(data)
		if err != nil {
			g.logger.Debug("Skipping color set", logger.F("file", rel), logger.F("error", err))
			continue
		}
		if i := slices.IndexFunc(out, func(v Value) bool { return v.Name == name }); i >= 0 {
			out[i].Value = hex
			continue
		}
		out = append(out, Value{Name: name, Value: hex})
	}
	return out
}

type colorSet struct {
	Colors []struct {
		Idiom      string `json:"idiom"`
		Appearance []struct {
			Value string `json:"value"`
		} `json:"appearances"`
		Color struct {
			Components map[string]any `json:"components"`
		} `json:"color"`
	} `json:"colors"`
}

// ParseColorSet returns the universal, light-appearance color of an asset
// catalog color set as #AARRGGBB.
func ParseColorSet(data []byte) (string, error) {
	var set colorSet
	if err := json.Unmarshal(data, &set); err != nil {
		return "", fmt.Errorf("parsing color set: %w", err)
	}
	for _, c := range set.Colors {
		if len(c.Appearance) > 0 || c.Color.Components == nil {
			continue
		}
		comp := c.Color.Components
		var argb [4]int
		for i, key := range []string{"alpha", "red", "green", "blue"} {
			raw, ok := comp[key]
			if !ok && key == "alpha" {
				raw = "1"
			}
			n, err := colorComponent(fmt.Sprint(raw))
			if err != nil {
				return "", fmt.Errorf("component %s: %w", key, err)
			}
			argb[i] = n
		}
		return fmt.Sprintf("#%02X%02X%02X%02X", argb[0], argb[1], argb[2], argb[3]), nil
	}
	return "", fmt.Errorf("no universal color")
}

// colorComponent accepts the three spellings Xcode writes: "0xFF", "255"
// and "1.000".
func colorComponent(v string) (int, error) {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasPrefix(strings.ToLower(v), "0x"):
		n, err := strconv.ParseInt(v[2:], 16, 32)
		return int(n), err
	case strings.Contains(v, "."):
		f, err := strconv.ParseFloat(v, 64)
		return int(f*255 + 0.5), err
	case v == "1":
		return 255, nil // 1.0 written without the fraction
	}
	n, err := strconv.Atoi(v)
	return n, err
}

func (g *Generator) copies(info *analyzer.ProjectInfo) []generator.Operation {
	var ops []generator.Operation
	seen := make(map[string]bool)
	for _, rel := range info.Resources {
		ext := strings.ToLower(filepath.Ext(rel))
		stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		if dir := filepath.Base(filepath.Dir(rel)); strings.HasSuffix(dir, ".imageset") {
			stem = strings.TrimSuffix(dir, ".imageset")
		}

		var dir string
		switch {
		case slices.Contains(drawableExts, ext):
			dir = "drawable"
		case slices.Contains(rawExts, ext):
			dir = "raw"
		case slices.Contains(xmlExts, ext):
			dir = "xml"
		default:
			g.logger.Debug("No Android resource type", logger.F("file", rel))
			continue
		}
		name := naming.ResourceName(stem) + ext
		if ext == ".jpeg" {
			name = naming.ResourceName(stem) + ".jpg"
		}
		dst := filepath.Join(dir, name)
		if seen[dst] {
			continue
		}
		seen[dst] = true
		ops = append(ops, &generator.CopyFileOp{
			Src: filepath.Join(info.Root, rel),
			Dst: g.resDir(dir, name),
		})
	}
	return ops
}
