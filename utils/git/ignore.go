package gitutils

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// rule is a single parsed .gitignore line.
type rule struct {
	pattern  string // without leading '!', leading '/' and trailing '/'
	negated  bool
	dirOnly  bool
	anchored bool // matched against the path relative to the rule file, not the base name
}

// Rules is the parsed content of one .gitignore file (or of a list of
// exclude patterns). base is the slash separated directory of the file
// relative to the traversal root, "" for the root itself.
type Rules struct {
	base  string
	rules []rule
}

// ParseRules reads gitignore syntax from r. Blank lines and comments are skipped.
func ParseRules(r io.Reader, base string) (*Rules, error) {
	rs := &Rules{base: strings.Trim(filepath.ToSlash(base), "/")}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if ru, ok := parseRule(line); ok {
			rs.rules = append(rs.rules, ru)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// NewRulesFromPatterns builds root level rules from a list of patterns.
func NewRulesFromPatterns(patterns []string) *Rules {
	rs, _ := ParseRules(strings.NewReader(strings.Join(patterns, "\n")), "")
	return rs
}

func parseRule(line string) (rule, bool) {
	var ru rule
	if strings.HasPrefix(line, "!") {
		ru.negated = true
		line = line[1:]
	}

	// "\#" and "\!" escape a literal leading character
	if strings.HasPrefix(line, `\#`) || strings.HasPrefix(line, `\!`) {
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		ru.dirOnly = true
		line = strings.TrimRight(line, "/")
	}

	if strings.HasPrefix(line, "/") {
		ru.anchored = true
		line = strings.TrimLeft(line, "/")
	}

	if strings.Contains(line, "/") {
		ru.anchored = true
	}

	if line == "" {
		return ru, false
	}

	ru.pattern = line
	return ru, true
}

// Match evaluates the rules against relPath (slash separated, relative to the
// traversal root). matched reports whether any rule applied; ignored is the
// verdict of the last applying rule.
func (rs *Rules) Match(relPath string, isDir bool) (matched, ignored bool) {
	if rs == nil {
		return false, false
	}

	local := relPath
	if rs.base != "" {
		if !strings.HasPrefix(relPath, rs.base+"/") {
			return false, false
		}
		local = strings.TrimPrefix(relPath, rs.base+"/")
	}

	for _, ru := range rs.rules {
		if ru.match(local, isDir) {
			matched = true
			ignored = !ru.negated
		}
	}
	return matched, ignored
}

// IsIgnored is Match reduced to the final verdict.
func (rs *Rules) IsIgnored(relPath string, isDir bool) bool {
	_, ignored := rs.Match(relPath, isDir)
	return ignored
}

func (ru rule) match(local string, isDir bool) bool {
	if ru.dirOnly && !isDir {
		return false
	}

	if !ru.anchored {
		return globMatch(ru.pattern, path.Base(local))
	}

	if !strings.Contains(ru.pattern, "**") {
		return globMatch(ru.pattern, local)
	}

	return matchSegments(strings.Split(ru.pattern, "/"), strings.Split(local, "/"))
}

// matchSegments matches path segments where a "**" segment stands for zero
// or more directories.
func matchSegments(pattern, segments []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segments); i++ {
				if matchSegments(rest, segments[i:]) {
					return true
				}
			}
			return false
		}

		if len(segments) == 0 || !globMatch(pattern[0], segments[0]) {
			return false
		}
		pattern, segments = pattern[1:], segments[1:]
	}
	return len(segments) == 0
}

func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// GitIgnore resolves the .gitignore files of a directory tree lazily, one
// directory at a time, as the traversal reaches it.
type GitIgnore struct {
	rootPath string
	files    map[string]*Rules
}

func NewGitIgnore(rootPath string) *GitIgnore {
	return &GitIgnore{
		rootPath: rootPath,
		files:    make(map[string]*Rules),
	}
}

// IsIgnored reports whether relPath is ignored. Rule files are applied from
// the root down to the path's own directory; the deepest matching rule wins.
func (g *GitIgnore) IsIgnored(relPath string, isDir bool) bool {
	relPath = strings.Trim(filepath.ToSlash(relPath), "/")
	if relPath == "" || strings.HasPrefix(relPath, "../") {
		return false
	}

	if isDir && path.Base(relPath) == ".git" {
		return true
	}

	ignored := false
	for _, dir := range parentDirs(relPath) {
		if matched, v := g.rulesFor(dir).Match(relPath, isDir); matched {
			ignored = v
		}
	}
	return ignored
}

// parentDirs lists "", "a", "a/b" for "a/b/c".
func parentDirs(relPath string) []string {
	dirs := []string{""}
	parts := strings.Split(relPath, "/")
	for i := 1; i < len(parts); i++ {
		dirs = append(dirs, strings.Join(parts[:i], "/"))
	}
	return dirs
}

func (g *GitIgnore) rulesFor(dir string) *Rules {
	if rs, ok := g.files[dir]; ok {
		return rs
	}

	var rs *Rules
	file, err := os.Open(filepath.Join(g.rootPath, filepath.FromSlash(dir), ".gitignore"))
	if err == nil {
		rs, _ = ParseRules(file, dir)
		file.Close()
	}

	g.files[dir] = rs
	return rs
}
