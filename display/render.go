package display

import (
	"strconv"

	"github.com/codetrek/needle/shared/types"
)

const dividerCell = "-----"

var Headers = []string{"File Path", "Line Number", "Line Text"}

// FileTable is the standalone table of one file.
type FileTable struct {
	Path string
	Rows [][]string
}

func fileRows(f types.FileResult) [][]string {
	rows := make([][]string, 0, len(f.Lines))
	for _, line := range f.Lines {
		rows = append(rows, []string{f.Path, strconv.Itoa(line.LineNumber), line.Text})
	}
	return rows
}

func blankRow() []string {
	return make([]string, len(Headers))
}

func dividerRow() []string {
	row := make([]string, len(Headers))
	for i := range row {
		row[i] = dividerCell
	}
	return row
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// groupRows emits each matching file's rows followed by one blank row.
// Files without matches emit nothing.
func groupRows(files []types.FileResult) [][]string {
	rows := [][]string{}
	for _, f := range files {
		if !f.HasMatch() {
			continue
		}
		rows = append(rows, fileRows(f)...)
		rows = append(rows, blankRow())
	}
	return rows
}

// CombinedRows lays out every match in one table: root-level files, then a
// divider row, then nested files. The divider is only emitted when both groups
// have rows, so a table with no nested matches ends on its last root row.
// A trailing blank row is never left at the end.
func CombinedRows(r *types.OrderedResult) [][]string {
	root := groupRows(r.Root)
	nested := groupRows(r.Nested)

	rows := make([][]string, 0, len(root)+len(nested)+1)
	rows = append(rows, root...)
	if len(root) > 0 && len(nested) > 0 {
		rows = append(rows, dividerRow())
	}
	rows = append(rows, nested...)

	if n := len(rows); n > 0 && isBlank(rows[n-1]) {
		rows = rows[:n-1]
	}
	return rows
}

// FileTables returns one table per file with at least one match, root-level
// files first.
func FileTables(r *types.OrderedResult) []FileTable {
	tables := []FileTable{}
	for _, f := range r.Files() {
		if !f.HasMatch() {
			continue
		}
		tables = append(tables, FileTable{Path: f.Path, Rows: fileRows(f)})
	}
	return tables
}

// Render sends the result to sink, as one combined table or as one table per
// matching file.
func Render(r *types.OrderedResult, separateTables bool, sink TableSink) error {
	if !separateTables {
		return sink.Table(Headers, CombinedRows(r))
	}

	for _, t := range FileTables(r) {
		if err := sink.Table(Headers, t.Rows); err != nil {
			return err
		}
	}
	return nil
}
