package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyRoot    = errors.New("no directory given")
	ErrNotDirectory = errors.New("not a directory")
	ErrBadPattern   = errors.New("malformed pattern")
)

// SearchConfig fully determines how a search selects files and lines.
// It is built once from flags/config and never mutated afterwards.
type SearchConfig struct {
	Pattern        string   `json:"expression"`
	IsRegex        bool     `json:"regex,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`
	RootDir        string   `json:"directory"`
	Recursive      bool     `json:"recursive,omitempty"`
	NamePattern    string   `json:"filename_pattern,omitempty"`
	SeparateTables bool     `json:"separate_tables,omitempty"`
	Hidden         bool     `json:"hidden,omitempty"`
	UseGitIgnore   bool     `json:"use_git_ignore,omitempty"`
	Exclude        []string `json:"exclude,omitempty"`
	Workers        int      `json:"workers,omitempty"`
}

// Validate reports configuration errors that must stop a run before any
// traversal begins. Regex compilation is checked by the matcher.
func (c SearchConfig) Validate() error {
	if c.RootDir == "" {
		return ErrEmptyRoot
	}

	if _, err := filepath.Match(c.NamePatternOrDefault(), ""); err != nil {
		return fmt.Errorf("%w: filename pattern %q", ErrBadPattern, c.NamePattern)
	}

	for _, ex := range c.Exclude {
		if _, err := filepath.Match(strings.TrimPrefix(ex, "/"), ""); err != nil {
			return fmt.Errorf("%w: exclude pattern %q", ErrBadPattern, ex)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	return nil
}

func (c SearchConfig) NamePatternOrDefault() string {
	if c.NamePattern == "" {
		return "*"
	}
	return c.NamePattern
}

type MatchedLine struct {
	LineNumber int    `json:"line_number"`
	Text       string `json:"text"`
}

// FileResult holds the matches of one file in ascending line order.
// An empty Lines slice means the file was scanned but nothing matched.
type FileResult struct {
	Path  string        `json:"path"`
	Lines []MatchedLine `json:"lines"`
}

func (r FileResult) HasMatch() bool {
	return len(r.Lines) > 0
}

// SearchResult maps a candidate path (relative to the root, '/' separated)
// to its matching lines.
type SearchResult map[string][]MatchedLine

// OrderedResult is the display order of a SearchResult: root-level files
// first, then nested files, each group sorted by path.
type OrderedResult struct {
	Root   []FileResult
	Nested []FileResult
}

// Files returns root-level entries followed by nested entries.
func (r *OrderedResult) Files() []FileResult {
	files := make([]FileResult, 0, len(r.Root)+len(r.Nested))
	files = append(files, r.Root...)
	return append(files, r.Nested...)
}

func (r *OrderedResult) Paths() []string {
	paths := make([]string, 0, len(r.Root)+len(r.Nested))
	for _, f := range r.Files() {
		paths = append(paths, f.Path)
	}
	return paths
}

func (r *OrderedResult) Get(path string) ([]MatchedLine, bool) {
	for _, f := range r.Files() {
		if f.Path == path {
			return f.Lines, true
		}
	}
	return nil, false
}

func (r *OrderedResult) Len() int {
	return len(r.Root) + len(r.Nested)
}

// MarshalJSON encodes the result as a JSON object whose keys keep the
// display order, e.g. {"root.txt":[{"line_number":2,"text":"..."}]}.
func (r *OrderedResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Files() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Path)
		if err != nil {
			return nil, err
		}

		lines := f.Lines
		if lines == nil {
			lines = []MatchedLine{}
		}
		value, err := json.Marshal(lines)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Stats summarizes one search run.
type Stats struct {
	FilesScanned int   `json:"files_scanned"`
	FilesMatched int   `json:"files_matched"`
	LinesMatched int   `json:"lines_matched"`
	BytesScanned int64 `json:"bytes_scanned"`
	ElapsedNanos int64 `json:"elapsed_ns"`
}
