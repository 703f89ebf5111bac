// Package cssref finds font files referenced from a stylesheet through url(...) constructs.
package cssref

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultPrefix is the relative directory icon-font stylesheets use for their webfonts.
const DefaultPrefix = "../webfonts/"

var (
	cacheMu sync.Mutex
	cache   = map[string]*regexp.Regexp{}
)

// ExtractFontReferences returns the sorted, deduplicated file names referenced as
// url(../webfonts/<name>) in css, with any ?query or #fragment suffix removed.
func ExtractFontReferences(css string) []string {
	return Extract(css, DefaultPrefix)
}

// Extract is ExtractFontReferences for an arbitrary path prefix.
// The result is never nil.
func Extract(css, prefix string) []string {
	re := patternFor(prefix)
	seen := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(css, -1) {
		name := Canonical(m[1])
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical strips the query and fragment from a referenced file name.
func Canonical(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return strings.TrimSpace(ref)
}

func patternFor(prefix string) *regexp.Regexp {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := cache[prefix]; ok {
		return re
	}
	re := regexp.MustCompile(`url\(\s*['"]?` + regexp.QuoteMeta(prefix) + `([^'")]+)['"]?\s*\)`)
	cache[prefix] = re
	return re
}
