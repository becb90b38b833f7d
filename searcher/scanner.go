package searcher

import (
	"bufio"
	"bytes"
	"os"
	"unicode/utf8"

	"github.com/codetrek/needle/shared/types"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineSize       = 64 * 1024 * 1024
)

// ScanFile returns the lines of fullPath that match, in file order, numbered
// from 1. Any failure (open, read, undecodable content, over-long line)
// yields no matches; a bad file never aborts a search.
func ScanFile(fullPath string, matcher Matcher) []types.MatchedLine {
	file, err := os.Open(fullPath)
	if err != nil {
		return nil
	}
	defer file.Close()

	results := []types.MatchedLine{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineSize)
	scanner.Split(scanUniversalLines)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		raw := scanner.Bytes()
		if !utf8.Valid(raw) {
			return nil
		}

		line := string(raw)
		if matcher.Match(line) {
			results = append(results, types.MatchedLine{
				LineNumber: lineNumber,
				Text:       line,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil
	}

	return results
}

// scanUniversalLines is bufio.ScanLines with "\n", "\r\n" and a lone "\r" all
// ending a line. The terminator is dropped; nothing else is trimmed.
func scanUniversalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}

		// '\r': look ahead for "\r\n"
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}
