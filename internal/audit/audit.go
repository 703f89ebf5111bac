// Package audit reports script and stylesheet references in HTML documents that still
// point at remote hosts.
package audit

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// DefaultParallel is the number of documents parsed concurrently when Scan is given 0.
const DefaultParallel = 4

// Finding is one remote reference left in a document.
type Finding struct {
	Path string
	Tag  string
	Attr string
	URL  string
	Host string
}

// Scan parses paths and returns every script[src] and link[href] whose URL is absolute
// and whose host is one of hosts. An empty hosts list matches any remote host.
// Findings are ordered by path, then by position in the document.
func Scan(ctx context.Context, paths, hosts []string, parallel int) ([]Finding, error) {
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	watch := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		watch[strings.ToLower(h)] = true
	}

	perDoc := make([][]Finding, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found, err := scanFile(p, watch)
			if err != nil {
				return err
			}
			perDoc[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Finding
	for _, f := range perDoc {
		all = append(all, f...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Path < all[j].Path })
	return all, nil
}

func scanFile(path string, watch map[string]bool) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("audit: parse %s: %w", path, err)
	}

	var found []Finding
	doc.Find("script[src], link[href]").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		attr := "src"
		if tag == "link" {
			attr = "href"
		}
		raw, _ := s.Attr(attr)
		host, ok := remoteHost(raw)
		if !ok {
			return
		}
		if len(watch) > 0 && !watch[host] {
			return
		}
		found = append(found, Finding{Path: path, Tag: tag, Attr: attr, URL: raw, Host: host})
	})
	return found, nil
}

// remoteHost returns the lower-cased host of an absolute or protocol-relative URL.
func remoteHost(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return strings.ToLower(u.Host), true
}

// Hosts returns the distinct hosts among findings, sorted.
func Hosts(findings []Finding) []string {
	set := make(map[string]struct{})
	for _, f := range findings {
		set[f.Host] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
