package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SearchConfig
		wantErr error
	}{
		{"minimal", SearchConfig{RootDir: "."}, nil},
		{"empty pattern is fine", SearchConfig{RootDir: ".", Pattern: ""}, nil},
		{"glob", SearchConfig{RootDir: ".", NamePattern: "*.[ch]"}, nil},
		{"no root", SearchConfig{}, ErrEmptyRoot},
		{"bad glob", SearchConfig{RootDir: ".", NamePattern: "[a-"}, ErrBadPattern},
		{"bad exclude", SearchConfig{RootDir: ".", Exclude: []string{"ok/", "[x"}}, ErrBadPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Error(t, SearchConfig{RootDir: ".", Workers: -1}.Validate())
}

func TestNamePatternDefault(t *testing.T) {
	assert.Equal(t, "*", SearchConfig{}.NamePatternOrDefault())
	assert.Equal(t, "*.go", SearchConfig{NamePattern: "*.go"}.NamePatternOrDefault())
}

func TestOrderedResult(t *testing.T) {
	r := &OrderedResult{
		Root: []FileResult{
			{Path: "z.txt", Lines: []MatchedLine{{LineNumber: 1, Text: "a \"quoted\" line"}}},
		},
		Nested: []FileResult{
			{Path: "a/b.txt"},
			{Path: "a/c.txt", Lines: []MatchedLine{}},
		},
	}

	assert.Equal(t, []string{"z.txt", "a/b.txt", "a/c.txt"}, r.Paths())
	assert.Equal(t, 3, r.Len())

	lines, ok := r.Get("z.txt")
	assert.True(t, ok)
	assert.Len(t, lines, 1)
	_, ok = r.Get("nope")
	assert.False(t, ok)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	// Root-level keys come first even though "a/..." sorts before "z.txt".
	assert.Equal(t,
		`{"z.txt":[{"line_number":1,"text":"a \"quoted\" line"}],"a/b.txt":[],"a/c.txt":[]}`,
		string(data))

	data, err = json.Marshal(&OrderedResult{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestFileResultHasMatch(t *testing.T) {
	assert.False(t, FileResult{Path: "a"}.HasMatch())
	assert.True(t, FileResult{Path: "a", Lines: []MatchedLine{{LineNumber: 1}}}.HasMatch())
}
