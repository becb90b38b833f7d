package utils

import (
	gitutils "github.com/codetrek/needle/utils/git"
)

// PathFilter prunes traversal entries that are excluded by user patterns or
// by .gitignore files. A nil *PathFilter keeps everything.
type PathFilter struct {
	exclude *gitutils.Rules
	ignore  *gitutils.GitIgnore
}

// Match reports whether path should be kept.
func (f *PathFilter) Match(path string, isDir bool) bool {
	if f == nil {
		return true
	}

	if f.exclude != nil && f.exclude.IsIgnored(path, isDir) {
		return false
	}

	if f.ignore != nil && f.ignore.IsIgnored(path, isDir) {
		return false
	}

	return true
}

// NewPathFilter returns nil when there is nothing to filter.
func NewPathFilter(rootPath string, exclude []string, useGitIgnore bool) *PathFilter {
	if len(exclude) == 0 && !useGitIgnore {
		return nil
	}

	f := &PathFilter{}
	if len(exclude) > 0 {
		f.exclude = gitutils.NewRulesFromPatterns(exclude)
	}
	if useGitIgnore {
		f.ignore = gitutils.NewGitIgnore(rootPath)
	}
	return f
}
