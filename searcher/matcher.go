package searcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codetrek/needle/shared/types"
)

// Matcher decides whether a single line (without its terminator) matches.
type Matcher interface {
	Match(line string) bool
}

type literalMatcher struct {
	expr string
	fold bool
}

func (m *literalMatcher) Match(line string) bool {
	if m.fold {
		line = strings.ToLower(line)
	}
	return strings.Contains(line, m.expr)
}

type regexMatcher struct {
	re   *regexp.Regexp
	fold bool
}

// Match succeeds when the expression is found anywhere in the line.
func (m *regexMatcher) Match(line string) bool {
	if m.fold {
		line = strings.ToLower(line)
	}
	return m.re.MatchString(line)
}

// NewMatcher builds the line matcher for an expression. When caseSensitive is
// false the expression is lower-cased once here and every line is lower-cased
// before testing, in both literal and regex mode.
func NewMatcher(expr string, isRegex bool, caseSensitive bool) (Matcher, error) {
	fold := !caseSensitive
	if fold {
		expr = strings.ToLower(expr)
	}

	if !isRegex {
		return &literalMatcher{expr: expr, fold: fold}, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regular expression: %v", types.ErrBadPattern, err)
	}
	return &regexMatcher{re: re, fold: fold}, nil
}

// MatcherKey identifies a compiled matcher, e.g. for caching.
type MatcherKey struct {
	Expr          string
	IsRegex       bool
	CaseSensitive bool
}

func (k MatcherKey) String() string {
	mode := "literal"
	if k.IsRegex {
		mode = "regex"
	}
	if k.CaseSensitive {
		mode += ",case"
	}
	return fmt.Sprintf("%s(%q)", mode, k.Expr)
}

func KeyOf(config types.SearchConfig) MatcherKey {
	return MatcherKey{
		Expr:          config.Pattern,
		IsRegex:       config.IsRegex,
		CaseSensitive: config.CaseSensitive,
	}
}
