// Package table renders rows of text as an ASCII table. Cells may contain
// ANSI color sequences; they are ignored when measuring column widths.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment of the text in a column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table collects a header and rows and writes them on Render.
type Table struct {
	w           io.Writer
	header      []string
	rows        [][]string
	align       []Alignment
	headerAlign []Alignment
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.align = align
	return t
}

func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds one row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

// Render writes the table. Short rows are padded with empty cells.
func (t *Table) Render() {
	widths := t.widths()
	if len(widths) == 0 {
		return
	}
	border := t.border(widths)
	fmt.Fprintln(t.w, border)
	if len(t.header) > 0 {
		fmt.Fprintln(t.w, t.line(t.header, widths, t.headerAlign))
		fmt.Fprintln(t.w, border)
	}
	for _, row := range t.rows {
		fmt.Fprintln(t.w, t.line(row, widths, t.align))
	}
	fmt.Fprintln(t.w, border)
}

func (t *Table) widths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], width(cell))
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) border(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	return b.String()
}

func (t *Table) line(row []string, widths []int, align []Alignment) string {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		a := AlignLeft
		if i < len(align) {
			a = align[i]
		}
		b.WriteString(" ")
		b.WriteString(pad(cell, w, a))
		b.WriteString(" |")
	}
	return b.String()
}

func pad(s string, w int, a Alignment) string {
	gap := w - width(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}

// width is the display width of s without color sequences.
func width(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

func stripAnsi(s string) string {
	return ansi.ReplaceAllString(s, "")
}
