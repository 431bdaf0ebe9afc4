// Package tableview renders rows as terminal or Markdown tables.
package tableview

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the output format.
type Mode int

const (
	ASCII Mode = iota
	Markdown
)

// ParseMode maps "markdown"/"md" to Markdown and anything else to ASCII.
func ParseMode(s string) Mode {
	switch s {
	case "markdown", "md":
		return Markdown
	}
	return ASCII
}

// Table accumulates a header, rows and an optional footer.
type Table struct {
	w    table.Writer
	mode Mode
}

// New returns an empty table rendered in mode m.
func New(m Mode, title string) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	if title != "" {
		w.SetTitle(title)
	}
	return &Table{w: w, mode: m}
}

// Header sets the column headers.
func (t *Table) Header(cols ...string) *Table {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.w.AppendHeader(row)
	return t
}

// Row appends a data row.
func (t *Table) Row(vals ...any) *Table {
	t.w.AppendRow(table.Row(vals))
	return t
}

// Footer appends a footer row, e.g. totals.
func (t *Table) Footer(vals ...any) *Table {
	t.w.AppendFooter(table.Row(vals))
	return t
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(cols ...int) *Table {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, n := range cols {
		cfgs[i] = table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight}
	}
	t.w.SetColumnConfigs(cfgs)
	return t
}

// Len is the number of data rows.
func (t *Table) Len() int { return t.w.Length() }

// String renders the table.
func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}
