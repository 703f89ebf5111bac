// Package plan describes which remote assets a site vendors and where their local
// copies live. The built-in Default plan matches the reference deployment; a YAML or
// JSON manifest with the same shape may replace it.
package plan

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"vendorize/internal/cssref"
	"vendorize/internal/rewrite"
)

// AssetSpec is one top-level remote resource.
type AssetSpec struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
	// Dest is slash-separated and relative to the site root.
	Dest string `yaml:"dest" json:"dest"`
	// Attr is the HTML attribute that carries URL in documents: src or href.
	Attr string `yaml:"attr" json:"attr"`
	// Ref overrides the local reference written into documents. Defaults to Dest.
	Ref    string      `yaml:"ref,omitempty" json:"ref,omitempty"`
	Nested *NestedRefs `yaml:"nested,omitempty" json:"nested,omitempty"`
}

// NestedRefs marks a stylesheet whose url(...) references must be fetched too.
type NestedRefs struct {
	// BaseURL is concatenated with each referenced file name.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Prefix is the relative path the stylesheet uses inside url(...).
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	DestDir string `yaml:"dest_dir" json:"dest_dir"`
}

// Plan is the ordered list of assets plus origins whose preconnect hints become dead
// once everything is local.
type Plan struct {
	Assets      []AssetSpec `yaml:"assets" json:"assets"`
	Preconnects []string    `yaml:"preconnects,omitempty" json:"preconnects,omitempty"`
}

// LocalRef is the reference documents should use for the asset.
func (a AssetSpec) LocalRef() string {
	if a.Ref != "" {
		return a.Ref
	}
	return a.Dest
}

// RefPrefix returns the configured prefix or cssref.DefaultPrefix.
func (n NestedRefs) RefPrefix() string {
	if n.Prefix != "" {
		return n.Prefix
	}
	return cssref.DefaultPrefix
}

// URLFor resolves a nested file name into the URL it is fetched from.
func (n NestedRefs) URLFor(name string) string {
	return n.BaseURL + name
}

// DestFor returns the slash-separated destination of a nested file.
func (n NestedRefs) DestFor(name string) string {
	return path.Join(n.DestDir, name)
}

// CheckRefName rejects nested file names that would resolve outside DestDir.
// The names come from downloaded stylesheets, so they are checked before use.
func CheckRefName(name string) error {
	if name == "" || name == "." || path.Base(name) != name || strings.Contains(name, `\`) || !filepath.IsLocal(name) {
		return fmt.Errorf("nested reference %q is not a plain file name", name)
	}
	return nil
}

// Dirs returns the sorted set of slash-separated directories the plan writes into.
func (p *Plan) Dirs() []string {
	set := make(map[string]struct{})
	for _, a := range p.Assets {
		set[path.Dir(a.Dest)] = struct{}{}
		if a.Nested != nil {
			set[path.Clean(a.Nested.DestDir)] = struct{}{}
		}
	}
	delete(set, ".")
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Rules returns one attribute rule per asset followed by one cleanup rule per
// preconnect origin.
func (p *Plan) Rules() []rewrite.Rule {
	rules := make([]rewrite.Rule, 0, len(p.Assets)+len(p.Preconnects))
	for _, a := range p.Assets {
		rules = append(rules, rewrite.AttrRule(a.Name, a.Attr, a.URL, a.LocalRef()))
	}
	for _, origin := range p.Preconnects {
		rules = append(rules, rewrite.PreconnectRule(origin))
	}
	return rules
}

// Hosts returns the sorted, distinct hosts of every asset URL.
func (p *Plan) Hosts() []string {
	set := make(map[string]struct{})
	for _, a := range p.Assets {
		if u, err := url.Parse(a.URL); err == nil && u.Host != "" {
			set[strings.ToLower(u.Host)] = struct{}{}
		}
	}
	hosts := make([]string, 0, len(set))
	for h := range set {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Validate checks the plan before any network activity.
func (p *Plan) Validate() error {
	if p == nil || len(p.Assets) == 0 {
		return fmt.Errorf("plan: no assets")
	}
	names := make(map[string]bool)
	dests := make(map[string]string)
	for i, a := range p.Assets {
		label := a.Name
		if label == "" {
			return fmt.Errorf("plan: asset %d: name is required", i)
		}
		if names[label] {
			return fmt.Errorf("plan: duplicate asset name %q", label)
		}
		names[label] = true
		if err := checkURL(a.URL); err != nil {
			return fmt.Errorf("plan: asset %q: %w", label, err)
		}
		if err := checkDest(a.Dest); err != nil {
			return fmt.Errorf("plan: asset %q: %w", label, err)
		}
		if prev, ok := dests[path.Clean(a.Dest)]; ok {
			return fmt.Errorf("plan: assets %q and %q share destination %s", prev, label, a.Dest)
		}
		dests[path.Clean(a.Dest)] = label
		if a.Attr != "src" && a.Attr != "href" {
			return fmt.Errorf("plan: asset %q: attr must be src or href, got %q", label, a.Attr)
		}
		if n := a.Nested; n != nil {
			if err := checkURL(n.BaseURL); err != nil {
				return fmt.Errorf("plan: asset %q: nested base: %w", label, err)
			}
			if !strings.HasSuffix(n.BaseURL, "/") {
				return fmt.Errorf("plan: asset %q: nested base_url must end with /", label)
			}
			if err := checkDest(n.DestDir); err != nil {
				return fmt.Errorf("plan: asset %q: nested dest_dir: %w", label, err)
			}
		}
	}
	for _, origin := range p.Preconnects {
		if err := checkURL(origin); err != nil {
			return fmt.Errorf("plan: preconnect: %w", err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q: missing host", raw)
	}
	return nil
}

func checkDest(dest string) error {
	if dest == "" {
		return fmt.Errorf("destination is required")
	}
	if !filepath.IsLocal(filepath.FromSlash(dest)) {
		return fmt.Errorf("destination %q must be relative and stay inside the site root", dest)
	}
	return nil
}
