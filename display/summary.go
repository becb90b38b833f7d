package display

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/codetrek/needle/shared/types"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Summary writes a one line account of a search, e.g.
// "Found 3 matches in 2 files (scanned 10 files, 4.1 kB in 12ms)".
func Summary(w io.Writer, stats *types.Stats) {
	if stats == nil {
		return
	}

	found := color.New(color.FgGreen, color.Bold)
	if stats.LinesMatched == 0 {
		found = color.New(color.FgYellow)
	}

	found.Fprintf(w, "Found %s %s in %s %s",
		humanize.Comma(int64(stats.LinesMatched)), plural(stats.LinesMatched, "match", "matches"),
		humanize.Comma(int64(stats.FilesMatched)), plural(stats.FilesMatched, "file", "files"))

	elapsed := time.Duration(stats.ElapsedNanos).Round(time.Millisecond)
	color.New(color.Faint).Fprintf(w, " (scanned %s %s, %s in %s)",
		humanize.Comma(int64(stats.FilesScanned)), plural(stats.FilesScanned, "file", "files"),
		humanize.Bytes(uint64(stats.BytesScanned)), elapsed)
	fmt.Fprintln(w)
}

// Error prints err in red, prefixed the way the CLI reports fatal errors.
func Error(w io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}

// Hint prints a faint secondary line.
func Hint(w io.Writer, format string, args ...any) {
	color.New(color.Faint).Fprintf(w, format, args...)
	fmt.Fprintln(w)
}
