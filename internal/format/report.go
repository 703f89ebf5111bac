package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"vendorize/internal/audit"
	"vendorize/internal/localize"
	"vendorize/internal/plan"
	"vendorize/internal/rewrite"
)

// RunReport renders one row per fetch attempt plus a totals footer.
func RunReport(r *localize.RunReport, m Mode) string {
	t := NewTable(m)
	t.Title("Assets")
	t.Header("", "Asset", "Destination", "Size", "Result")
	for _, o := range r.Outcomes {
		name := o.Asset
		if o.Nested() {
			name = "  " + o.Parent + "/" + o.Asset
		}
		size, result := "", "fetched"
		if o.OK() {
			size = Bytes(o.Bytes)
		} else {
			result = failureText(o)
		}
		t.Row(Mark(o.OK()), name, o.Dest, size, result)
	}
	t.Footer("", fmt.Sprintf("%d ok, %d failed", len(r.Succeeded()), len(r.Failed())), "",
		Bytes(r.TotalBytes()), Duration(r.Duration()))
	t.AlignRight(4)
	return t.String()
}

func failureText(o localize.Outcome) string {
	msg := o.Reason()
	if o.Err != nil {
		msg += ": " + o.Err.Error()
	}
	return msg
}

// Documents renders rewritten and failed documents; unchanged ones are counted only.
func Documents(changes []rewrite.DocumentChange, root string, m Mode) string {
	t := NewTable(m)
	t.Title("Documents")
	t.Header("", "Document", "Result")
	unchanged := 0
	for _, c := range changes {
		switch {
		case c.Err != nil:
			t.Row(Mark(false), rel(root, c.Path), c.Err.Error())
		case c.Changed:
			t.Row(Mark(true), rel(root, c.Path), "rewritten")
		default:
			unchanged++
		}
	}
	t.Footer("", fmt.Sprintf("%d documents", len(changes)), fmt.Sprintf("%d unchanged", unchanged))
	return t.String()
}

// Findings renders remaining remote references.
func Findings(findings []audit.Finding, root string, m Mode) string {
	t := NewTable(m)
	t.Title("Remote references")
	t.Header("Document", "Tag", "URL")
	for _, f := range findings {
		t.Row(rel(root, f.Path), "<"+f.Tag+" "+f.Attr+">", f.URL)
	}
	t.Footer(fmt.Sprintf("%d found", len(findings)), "", strings.Join(audit.Hosts(findings), ", "))
	return t.String()
}

// Plan renders the assets a plan will fetch.
func Plan(p *plan.Plan, m Mode) string {
	t := NewTable(m)
	t.Title("Plan")
	t.Header("Asset", "URL", "Destination", "Nested")
	for _, a := range p.Assets {
		nested := ""
		if a.Nested != nil {
			nested = a.Nested.RefPrefix() + "* -> " + a.Nested.DestDir
		}
		t.Row(a.Name, a.URL, a.Dest, nested)
	}
	return t.String()
}

func rel(root, path string) string {
	if root == "" {
		return path
	}
	if r, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}
