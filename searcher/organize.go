package searcher

import (
	"sort"
	"strings"

	"github.com/codetrek/needle/shared/types"
)

// IsRootLevel reports whether a result path has no directory component.
// Result paths always use '/' regardless of the host.
func IsRootLevel(path string) bool {
	return !strings.Contains(path, "/")
}

// Organize splits a result into root-level and nested files and sorts each
// group by path. Files without matches are kept.
func Organize(result types.SearchResult) *types.OrderedResult {
	ordered := &types.OrderedResult{
		Root:   []types.FileResult{},
		Nested: []types.FileResult{},
	}

	for path, lines := range result {
		entry := types.FileResult{Path: path, Lines: lines}
		if IsRootLevel(path) {
			ordered.Root = append(ordered.Root, entry)
		} else {
			ordered.Nested = append(ordered.Nested, entry)
		}
	}

	byPath := func(files []types.FileResult) func(i, j int) bool {
		return func(i, j int) bool { return files[i].Path < files[j].Path }
	}
	sort.Slice(ordered.Root, byPath(ordered.Root))
	sort.Slice(ordered.Nested, byPath(ordered.Nested))

	return ordered
}
