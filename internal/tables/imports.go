package tables

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
)

var (
	iconRefRe   = regexp.MustCompile(`\bIcons\.Default\.(\w+)`)
	delegatedRe = regexp.MustCompile(`\bby\s+(?:remember|mutableStateOf|viewModel|collectAsState)\b|\.collectAsState\(\)`)
)

// RequiredImports returns the sorted import paths that content needs
// according to the Imports table. Paths already in have, or covered by a
// wildcard import in have (e.g. "androidx.compose.runtime.*"), are left out.
//
// Capitalised symbols match as whole words. Lower-case symbols are
// functions, so they only match when called: `remember {`, `.padding(`.
func (t Tables) RequiredImports(content string, have []string) []string {
	haveSet := make(map[string]bool, len(have))
	for _, h := range have {
		haveSet[h] = true
	}
	covered := func(path string) bool {
		if haveSet[path] {
			return true
		}
		if i := strings.LastIndex(path, "."); i > 0 {
			return haveSet[path[:i]+".*"]
		}
		return false
	}

	found := make(map[string]bool)
	for symbol, path := range t.Imports {
		if covered(path) || found[path] {
			continue
		}
		if symbolUsed(content, symbol) {
			found[path] = true
		}
	}

	for _, m := range iconRefRe.FindAllStringSubmatch(content, -1) {
		path := "androidx.compose.material.icons.filled." + m[1]
		if !covered(path) {
			found[path] = true
		}
	}

	if delegatedRe.MatchString(content) {
		for _, path := range []string{"androidx.compose.runtime.getValue", "androidx.compose.runtime.setValue"} {
			if !covered(path) {
				found[path] = true
			}
		}
	}

	out := make([]string, 0, len(found))
	for path := range found {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// symbol -> *regexp.Regexp
var symbolPatterns sync.Map

// lower-case symbols that are values rather than functions
var valueSymbols = map[string]bool{"dp": true, "sp": true, "viewModelScope": true}

func symbolUsed(content, symbol string) bool {
	if re, ok := symbolPatterns.Load(symbol); ok {
		return re.(*regexp.Regexp).MatchString(content)
	}
	pattern := `\b` + regexp.QuoteMeta(symbol) + `\b`
	if first := []rune(symbol); len(first) > 0 && unicode.IsLower(first[0]) && !valueSymbols[symbol] {
		// a call, possibly with type arguments: mutableStateOf<List<Int>>(...)
		pattern += `\s*(?:<[^(){}\n]*>)?\s*[({]`
	}
	re := regexp.MustCompile(pattern)
	symbolPatterns.Store(symbol, re)
	return re.MatchString(content)
}
