// Package format renders run summaries as terminal or Markdown tables.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables, e.g. for CI job summaries
)

// ParseMode maps a flag value to a Mode; anything but "markdown"/"md" is ASCII.
func ParseMode(s string) Mode {
	switch s {
	case "markdown", "md":
		return Markdown
	}
	return ASCII
}

// Table is a thin builder over go-pretty.
type Table struct {
	writer table.Writer
	mode   Mode
}

// NewTable returns a Table that renders in mode m.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	style := table.StyleDefault
	if m == ASCII {
		style = table.StyleLight
	}
	// Keep headers and footers as written; file names and sizes are case-sensitive.
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	w.SetStyle(style)
	return &Table{writer: w, mode: m}
}

// Title sets a caption rendered above the table.
func (t *Table) Title(s string) { t.writer.SetTitle(s) }

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.writer.AppendHeader(row)
}

// Row appends a data row.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendRow(row)
}

// Footer appends a footer row.
func (t *Table) Footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendFooter(row)
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight, AlignFooter: text.AlignRight}
	}
	t.writer.SetColumnConfigs(cfgs)
}

// Len is the number of data rows.
func (t *Table) Len() int { return t.writer.Length() }

// String renders the table.
func (t *Table) String() string {
	if t.mode == Markdown {
		return t.writer.RenderMarkdown()
	}
	return t.writer.Render()
}
