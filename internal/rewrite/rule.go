package rewrite

import (
	"regexp"
	"strings"
)

// Rule is one external-to-local substitution. Pattern only runs on content that
// contains the Contains substring.
type Rule struct {
	Name        string
	Contains    string
	Pattern     *regexp.Regexp
	Replacement string
}

// AttrRule rewrites attr="external" (single or double quoted) to attr="local".
// Only an exact attribute value match is replaced; anything else in the tag is kept.
func AttrRule(name, attr, external, local string) Rule {
	pattern := `(\s(?i:` + regexp.QuoteMeta(attr) + `)\s*=\s*)(["'])` + regexp.QuoteMeta(external) + `["']`
	return Rule{
		Name:        name,
		Contains:    external,
		Pattern:     regexp.MustCompile(pattern),
		Replacement: "${1}${2}" + escapeTemplate(local) + "${2}",
	}
}

// PreconnectRule removes <link> hints (preconnect, dns-prefetch, ...) whose href is
// exactly origin, with or without a trailing slash. A tag alone on its line takes the
// line with it; a tag sharing its line with other markup is removed by itself.
func PreconnectRule(origin string) Rule {
	origin = strings.TrimSuffix(origin, "/")
	tag := `<link\b[^>]*\shref\s*=\s*["']` + regexp.QuoteMeta(origin) + `/?["'][^>]*>`
	pattern := `(?im)^[ \t]*` + tag + `[ \t]*(?:\r?\n|\z)|` + tag
	return Rule{
		Name:     "preconnect " + origin,
		Contains: origin,
		Pattern:  regexp.MustCompile(pattern),
	}
}

// Apply runs the rule against content and returns the result.
func (r Rule) Apply(content string) string {
	if r.Pattern == nil || r.Contains == "" || !strings.Contains(content, r.Contains) {
		return content
	}
	return r.Pattern.ReplaceAllString(content, r.Replacement)
}

// Apply runs every rule in order and reports whether content changed.
func Apply(content string, rules []Rule) (string, bool) {
	out := content
	for _, r := range rules {
		out = r.Apply(out)
	}
	return out, out != content
}

func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
