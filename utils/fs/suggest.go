package fsutils

import (
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SuggestNames returns up to limit file names in dir that look like the
// name glob, for hinting when a pattern selected nothing.
func SuggestNames(dir string, namePattern string, limit int) []string {
	needle := strings.Map(func(r rune) rune {
		switch r {
		case '*', '?', '[', ']', '\\':
			return -1
		}
		return r
	}, namePattern)
	if needle == "" || limit <= 0 {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(needle, names)
	sort.Sort(ranks)

	suggestions := []string{}
	for _, rank := range ranks {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, rank.Target)
	}
	return suggestions
}
