// Package naming converts Swift identifiers and resource names into the
// spellings Kotlin and Android expect.
package naming

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nonIdent      = regexp.MustCompile(`[^a-zA-Z0-9_]+`)
	repeatedUnder = regexp.MustCompile(`_+`)
)

// PascalCase converts snake_case or camelCase to PascalCase.
// Examples: user_name → UserName, userName → UserName.
func PascalCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			if part != "" {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, "")
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CamelCase converts snake_case or PascalCase to camelCase.
// Leading acronyms are lowered as a block: URLSession → urlSession.
func CamelCase(s string) string {
	s = PascalCase(s)
	if s == "" {
		return ""
	}
	runes := []rune(s)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		// keep the last capital of an acronym when a lower-case word follows
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
		i++
	}
	return string(runes)
}

// SnakeCase converts PascalCase or camelCase to snake_case.
// Examples: UserName → user_name, HTTPServer → http_server.
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		return strings.ToLower(s)
	}

	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteRune('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ConstantCase turns an enum case name into a Kotlin enum constant.
// Example: inProgress → IN_PROGRESS.
func ConstantCase(s string) string {
	return strings.ToUpper(SnakeCase(s))
}

// LowerFirst lowers the first rune only: UserRepository → userRepository.
func LowerFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// ResourceName converts a file base name into a valid Android resource name:
// lower case, underscores only, never starting with a digit.
// Example: "App Icon@2x" → "app_icon_2x".
func ResourceName(s string) string {
	s = SnakeCase(strings.TrimSpace(s))
	s = nonIdent.ReplaceAllString(strings.ToLower(s), "_")
	s = repeatedUnder.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "res"
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "res_" + s
	}
	return s
}

// StringKey converts a Localizable.strings key into a strings.xml name.
// Example: "Welcome Back" → "welcome_back".
func StringKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = nonIdent.ReplaceAllString(key, "_")
	key = repeatedUnder.ReplaceAllString(key, "_")
	key = strings.Trim(key, "_")
	if key == "" || unicode.IsDigit(rune(key[0])) {
		key = "str_" + key
	}
	return key
}

// Route derives a navigation route from a view type name.
// Example: DetailView → "detail", SettingsScreen() → "settings".
func Route(viewName string) string {
	name := strings.TrimSuffix(strings.TrimSpace(viewName), "()")
	for _, suffix := range []string{"View", "Screen"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != "" {
			name = trimmed
		}
	}
	return SnakeCase(name)
}

// TrimRoleSuffix removes the first matching suffix from name, unless that
// would leave it empty. Example: (UserViewModel, "ViewModel") → User.
func TrimRoleSuffix(name string, suffixes ...string) string {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
