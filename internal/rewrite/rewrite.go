// Package rewrite points HTML documents at locally vendored copies of their assets.
package rewrite

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vendorize/internal/atomicfile"
	"vendorize/internal/logging"
	"vendorize/internal/metrics"
)

// DocumentChange is the outcome of rewriting one document.
type DocumentChange struct {
	Path    string
	Changed bool
	Err     error
}

// Rewriter applies rules to documents on disk, one at a time.
type Rewriter struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewRewriter returns a Rewriter. Both arguments may be nil.
func NewRewriter(logger *slog.Logger, rec *metrics.Recorder) *Rewriter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Rewriter{logger: logger, metrics: rec}
}

// RewriteFiles rewrites every path and returns one change per path, in order.
// A document is written back only when its content changed. Failures are recorded
// on the change and never stop the remaining documents.
func (rw *Rewriter) RewriteFiles(paths []string, rules []Rule) []DocumentChange {
	changes := make([]DocumentChange, 0, len(paths))
	for _, p := range paths {
		ch := rw.rewriteFile(p, rules)
		switch {
		case ch.Err != nil:
			rw.logger.Error("rewrite failed", "path", p, "error", ch.Err)
			rw.metrics.ObserveDocument(metrics.DocFailed)
		case ch.Changed:
			rw.logger.Info("updated assets", "path", p)
			rw.metrics.ObserveDocument(metrics.DocRewritten)
		default:
			rw.logger.Debug("unchanged", "path", p)
			rw.metrics.ObserveDocument(metrics.DocUnchanged)
		}
		changes = append(changes, ch)
	}
	return changes
}

func (rw *Rewriter) rewriteFile(path string, rules []Rule) DocumentChange {
	ch := DocumentChange{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		ch.Err = fmt.Errorf("stat: %w", err)
		return ch
	}
	data, err := os.ReadFile(path)
	if err != nil {
		ch.Err = fmt.Errorf("read: %w", err)
		return ch
	}
	out, changed := Apply(string(data), rules)
	if !changed {
		return ch
	}
	if err := atomicfile.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		ch.Err = fmt.Errorf("write: %w", err)
		return ch
	}
	ch.Changed = true
	return ch
}

// ListHTML returns the .html files directly inside dir, sorted by name.
func ListHTML(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// Changed returns the paths of changes that rewrote their document.
func Changed(changes []DocumentChange) []string {
	var out []string
	for _, c := range changes {
		if c.Changed {
			out = append(out, c.Path)
		}
	}
	return out
}

// Failed returns the changes that carry an error.
func Failed(changes []DocumentChange) []DocumentChange {
	var out []DocumentChange
	for _, c := range changes {
		if c.Err != nil {
			out = append(out, c)
		}
	}
	return out
}
