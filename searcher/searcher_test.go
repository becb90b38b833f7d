package searcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrek/needle/shared/types"
)

func fixtureTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "root.txt", "nothing here\nneedle found here\n")
	writeFile(t, dir, "sub/deep.txt", "one\ntwo\nthree\nfour\nanother needle\n")
	return dir
}

func TestSearchEndToEnd(t *testing.T) {
	dir := fixtureTree(t)

	result, stats, err := New(types.SearchConfig{
		Pattern:   "needle",
		RootDir:   dir,
		Recursive: true,
	}, WithWorkers(1)).Search(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"root.txt", "sub/deep.txt"}, result.Paths())
	assert.Equal(t, []types.FileResult{
		{Path: "root.txt", Lines: []types.MatchedLine{{LineNumber: 2, Text: "needle found here"}}},
	}, result.Root)
	assert.Equal(t, []types.FileResult{
		{Path: "sub/deep.txt", Lines: []types.MatchedLine{{LineNumber: 5, Text: "another needle"}}},
	}, result.Nested)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"root.txt":[{"line_number":2,"text":"needle found here"}],"sub/deep.txt":[{"line_number":5,"text":"another needle"}]}`,
		string(data))
	assert.Less(t, strings.Index(string(data), "root.txt"), strings.Index(string(data), "sub/deep.txt"))

	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 2, stats.FilesMatched)
	assert.Equal(t, 2, stats.LinesMatched)
	assert.Positive(t, stats.BytesScanned)
}

func TestSearchNonRecursive(t *testing.T) {
	dir := fixtureTree(t)

	result, _, err := New(types.SearchConfig{Pattern: "needle", RootDir: dir}).Search(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"root.txt"}, result.Paths())
	assert.Empty(t, result.Nested)
}

func TestSearchReportsEveryCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha\n")
	writeFile(t, dir, "b.txt", "needle\n")
	writeFile(t, dir, "c.md", "needle\n")
	writeFile(t, dir, "x/y/z.txt", "zeta\n")

	result, stats, err := New(types.SearchConfig{
		Pattern:     "needle",
		RootDir:     dir,
		Recursive:   true,
		NamePattern: "*.txt",
	}).Search(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt", "x/y/z.txt"}, result.Paths())
	lines, ok := result.Get("a.txt")
	assert.True(t, ok)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
	assert.Equal(t, 3, stats.FilesScanned)
	assert.Equal(t, 1, stats.FilesMatched)
}

func TestSearchIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 40; i++ {
		writeFile(t, dir, fmt.Sprintf("d%d/f%02d.txt", i%4, i), fmt.Sprintf("line\nneedle %d\n", i))
		writeFile(t, dir, fmt.Sprintf("r%02d.txt", i), "needle\n")
	}

	config := types.SearchConfig{Pattern: "NEEDLE", RootDir: dir, Recursive: true}

	first, _, err := New(config, WithWorkers(8)).Search(context.Background())
	require.NoError(t, err)
	second, _, err := New(config, WithWorkers(1)).Search(context.Background())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, 80, first.Len())
}

func TestSearchResilience(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "x\nneedle\n")
	writeFile(t, dir, "bad.txt", "needle\xff\xfe\n")

	result, _, err := New(types.SearchConfig{Pattern: "needle", RootDir: dir}).Search(context.Background())
	require.NoError(t, err)

	bad, ok := result.Get("bad.txt")
	require.True(t, ok)
	assert.Empty(t, bad)

	good, ok := result.Get("good.txt")
	require.True(t, ok)
	assert.Equal(t, []types.MatchedLine{{LineNumber: 2, Text: "needle"}}, good)
}

func TestSearchUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "needle\n")
	locked := writeFile(t, dir, "locked.txt", "needle\n")
	require.NoError(t, os.Chmod(locked, 0))

	result, _, err := New(types.SearchConfig{Pattern: "needle", RootDir: dir}).Search(context.Background())
	require.NoError(t, err)

	lines, ok := result.Get("locked.txt")
	require.True(t, ok)
	assert.Empty(t, lines)

	lines, _ = result.Get("good.txt")
	assert.Len(t, lines, 1)
}

func TestSearchConfigurationErrors(t *testing.T) {
	dir := fixtureTree(t)

	tests := []struct {
		name   string
		config types.SearchConfig
		target error
	}{
		{"bad regex", types.SearchConfig{Pattern: "(", IsRegex: true, RootDir: dir}, types.ErrBadPattern},
		{"bad glob", types.SearchConfig{Pattern: "x", RootDir: dir, NamePattern: "[z-"}, types.ErrBadPattern},
		{"no root", types.SearchConfig{Pattern: "x"}, types.ErrEmptyRoot},
		{"root is a file", types.SearchConfig{Pattern: "x", RootDir: filepath.Join(dir, "root.txt")}, types.ErrNotDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, stats, err := New(tt.config).Search(context.Background())
			assert.ErrorIs(t, err, tt.target)
			assert.Nil(t, result)
			assert.Nil(t, stats)
		})
	}

	_, _, err := New(types.SearchConfig{Pattern: "x", RootDir: filepath.Join(dir, "missing")}).Search(context.Background())
	assert.Error(t, err)
}

func TestSearchHonoursFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "build/\n*.log\n")
	writeFile(t, dir, "main.go", "needle\n")
	writeFile(t, dir, "debug.log", "needle\n")
	writeFile(t, dir, "build/out.go", "needle\n")
	writeFile(t, dir, "gen/x.pb.go", "needle\n")
	writeFile(t, dir, ".secret/key.go", "needle\n")

	result, _, err := New(types.SearchConfig{
		Pattern:      "needle",
		RootDir:      dir,
		Recursive:    true,
		UseGitIgnore: true,
		Exclude:      []string{"*.pb.go"},
	}).Search(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, result.Paths())

	result, _, err = New(types.SearchConfig{
		Pattern:   "needle",
		RootDir:   dir,
		Recursive: true,
		Hidden:    true,
	}).Search(context.Background())
	require.NoError(t, err)
	paths := result.Paths()
	sort.Strings(paths)
	assert.Equal(t, []string{".gitignore", ".secret/key.go", "build/out.go", "debug.log", "gen/x.pb.go", "main.go"}, paths)
}

type recordingMatcher struct {
	panicOn string
}

func (m recordingMatcher) Match(line string) bool {
	if line == m.panicOn {
		panic("boom")
	}
	return strings.Contains(line, "needle")
}

func TestScanAllMapsResultsToPaths(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("f%02d.txt", i)
		// each file has its match on a line equal to its index + 1
		writeFile(t, dir, name, strings.Repeat("x\n", i)+"needle "+name+"\n")
		paths = append(paths, name)
	}
	paths = append(paths, "missing.txt")

	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			s := New(types.SearchConfig{RootDir: dir}, WithWorkers(workers))
			assert.Equal(t, workers, s.Workers())

			result, err := s.ScanAll(context.Background(), recordingMatcher{}, paths)
			require.NoError(t, err)
			require.Len(t, result, len(paths))

			for i, name := range paths[:50] {
				assert.Equal(t, []types.MatchedLine{{LineNumber: i + 1, Text: "needle " + name}}, result[name])
			}
			assert.Empty(t, result["missing.txt"])
		})
	}
}

func TestScanAllIsolatesPanics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.txt", "needle\nexplode\n")
	writeFile(t, dir, "good.txt", "needle\n")

	result, err := New(types.SearchConfig{RootDir: dir}, WithWorkers(2)).
		ScanAll(context.Background(), recordingMatcher{panicOn: "explode"}, []string{"bad.txt", "good.txt"})
	require.NoError(t, err)
	assert.Empty(t, result["bad.txt"])
	assert.Len(t, result["good.txt"], 1)
}

func TestScanAllCancelled(t *testing.T) {
	dir := fixtureTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(types.SearchConfig{RootDir: dir}).
		ScanAll(ctx, recordingMatcher{}, []string{"root.txt", "sub/deep.txt"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestWorkersDefault(t *testing.T) {
	assert.Positive(t, New(types.SearchConfig{}).Workers())
	assert.Equal(t, 3, New(types.SearchConfig{Workers: 3}).Workers())
	assert.Equal(t, 2, New(types.SearchConfig{Workers: 3}, WithWorkers(2)).Workers())
	assert.Equal(t, 3, New(types.SearchConfig{Workers: 3}, WithWorkers(0)).Workers())
}

func TestMatcherSourceIsUsed(t *testing.T) {
	dir := fixtureTree(t)
	var keys []MatcherKey

	src := func(key MatcherKey) (Matcher, error) {
		keys = append(keys, key)
		return NewMatcher(key.Expr, key.IsRegex, key.CaseSensitive)
	}

	_, _, err := New(types.SearchConfig{Pattern: "needle", RootDir: dir}, WithMatcherSource(src)).Search(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []MatcherKey{{Expr: "needle"}}, keys)
}
