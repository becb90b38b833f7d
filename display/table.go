// Package display renders organized search results as text tables.
package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableSink accepts a finished table: its column headers and rows.
type TableSink interface {
	Table(headers []string, rows [][]string) error
}

// TextTable writes ASCII-bordered tables. Columns are centred except the
// last one, which is left aligned.
type TextTable struct {
	w io.Writer
}

func NewTextTable(w io.Writer) *TextTable {
	return &TextTable{w: w}
}

func (t *TextTable) Table(headers []string, rows [][]string) error {
	last := len(headers) - 1
	cell := lipgloss.NewStyle().Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.ASCIIBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == last && row != table.HeaderRow {
				return cell.Align(lipgloss.Left)
			}
			return cell.Align(lipgloss.Center)
		})

	_, err := fmt.Fprintln(t.w, tbl.Render())
	return err
}

// Recorder is a TableSink that keeps tables in memory.
type Recorder struct {
	Tables []RecordedTable
}

type RecordedTable struct {
	Headers []string
	Rows    [][]string
}

func (r *Recorder) Table(headers []string, rows [][]string) error {
	r.Tables = append(r.Tables, RecordedTable{Headers: headers, Rows: rows})
	return nil
}
