package searcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codetrek/needle/shared/types"
	"github.com/codetrek/needle/utils"
	fsutils "github.com/codetrek/needle/utils/fs"
)

// MatcherSource provides compiled matchers; NewMatcher is used when nil.
type MatcherSource func(key MatcherKey) (Matcher, error)

// Searcher runs one search described by a SearchConfig.
type Searcher struct {
	config   types.SearchConfig
	workers  int
	matchers MatcherSource
}

type Option func(*Searcher)

// WithWorkers overrides the pool size. n <= 0 keeps the default.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithMatcherSource(src MatcherSource) Option {
	return func(s *Searcher) {
		s.matchers = src
	}
}

func New(config types.SearchConfig, opts ...Option) *Searcher {
	s := &Searcher{
		config:  config,
		workers: runtime.NumCPU(),
	}
	if config.Workers > 0 {
		s.workers = config.Workers
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Searcher) Workers() int {
	return s.workers
}

// Candidates lists the files to scan. Errors here are fatal for the search.
func (s *Searcher) Candidates() ([]fsutils.FileInfo, error) {
	root, err := filepath.Abs(s.config.RootDir)
	if err != nil {
		return nil, err
	}

	filter := utils.NewPathFilter(root, s.config.Exclude, s.config.UseGitIgnore)
	options := fsutils.ListFileOptions{
		Recursive:   s.config.Recursive,
		NamePattern: s.config.NamePatternOrDefault(),
		Hidden:      s.config.Hidden,
	}
	// Avoid wrapping a nil *PathFilter in a non-nil interface
	if filter != nil {
		options.Filter = filter
	}

	return fsutils.Candidates(root, options)
}

// Search validates the configuration, collects candidates, scans them and
// returns the organized result. Configuration and traversal errors are
// returned before any file is scanned.
func (s *Searcher) Search(ctx context.Context) (*types.OrderedResult, *types.Stats, error) {
	start := time.Now()

	if err := s.config.Validate(); err != nil {
		return nil, nil, err
	}

	matcher, err := s.matcher()
	if err != nil {
		return nil, nil, err
	}

	files, err := s.Candidates()
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Searching %s for %s: %d candidate files, %d workers",
		s.config.RootDir, KeyOf(s.config), len(files), s.workers)

	paths := make([]string, len(files))
	stats := &types.Stats{FilesScanned: len(files)}
	for i, f := range files {
		paths[i] = f.Path
		stats.BytesScanned += f.Size
	}

	result, err := s.ScanAll(ctx, matcher, paths)
	if err != nil {
		return nil, nil, err
	}

	for _, lines := range result {
		if len(lines) > 0 {
			stats.FilesMatched++
			stats.LinesMatched += len(lines)
		}
	}

	ordered := Organize(result)
	stats.ElapsedNanos = time.Since(start).Nanoseconds()

	log.Printf("Search finished in %s, %d of %d files matched, %d lines",
		time.Since(start), stats.FilesMatched, stats.FilesScanned, stats.LinesMatched)

	return ordered, stats, nil
}

func (s *Searcher) matcher() (Matcher, error) {
	key := KeyOf(s.config)
	if s.matchers != nil {
		return s.matchers(key)
	}
	return NewMatcher(key.Expr, key.IsRegex, key.CaseSensitive)
}

// ScanAll scans every path (relative to the configured root) with a bounded
// pool of workers and maps each path to its matches. All paths are dispatched
// before waiting; each worker writes only its own slot, so results can never
// be attributed to the wrong path. A failing file yields no matches and does
// not affect the others. If ctx is cancelled, no further files are started
// and ctx's error is returned once running workers have finished.
func (s *Searcher) ScanAll(ctx context.Context, matcher Matcher, paths []string) (types.SearchResult, error) {
	root, err := filepath.Abs(s.config.RootDir)
	if err != nil {
		return nil, err
	}

	matches := make([][]types.MatchedLine, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			matches[i] = scanIsolated(filepath.Join(root, filepath.FromSlash(path)), matcher)
			return nil
		})
	}

	// Workers never return errors; Wait is only the join barrier.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search interrupted: %w", err)
	}

	result := make(types.SearchResult, len(paths))
	for i, path := range paths {
		lines := matches[i]
		if lines == nil {
			lines = []types.MatchedLine{}
		}
		result[path] = lines
	}
	return result, nil
}

// scanIsolated turns a panic while scanning one file into "no matches".
func scanIsolated(fullPath string, matcher Matcher) (lines []types.MatchedLine) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
		}
	}()
	return ScanFile(fullPath, matcher)
}
