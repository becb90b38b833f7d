package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codetrek/needle/shared/types"
)

// FileInfo holds information about a file with its relative path
type FileInfo struct {
	Path         string // Relative path from root, '/' separated
	Size         int64  // File size in bytes
	ModifiedTime int64  // Last modified time in nanoseconds
}

type ListFileFilter interface {
	Match(path string, isDir bool) bool
}

type ListFileOptions struct {
	// Recursive descends into subdirectories; otherwise only direct
	// children of the root are visited.
	Recursive bool
	// NamePattern is a glob matched against the base name. Empty means "*".
	NamePattern string
	// Hidden includes entries whose name starts with a dot.
	Hidden bool
	Filter ListFileFilter
}

// ListFiles lists the candidate files under rootPath, calling cb for each one.
// Parameters:
//   - rootPath: The root directory to start searching from
//   - options: Traversal mode, name glob and an optional filter
//
// Returns:
//   - error: The root is missing or unreadable, or the pattern is malformed.
//     Unreadable subdirectories are skipped silently.
func ListFiles(rootPath string, options ListFileOptions, cb func(fileInfo FileInfo) bool) error {
	pattern := options.NamePattern
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("%w: filename pattern %q", types.ErrBadPattern, pattern)
	}

	// Normalize and abs the root path
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", rootPath, types.ErrNotDirectory)
	}

	// A pattern that names dot files explicitly selects them, as shell globs do.
	hiddenFiles := options.Hidden || strings.HasPrefix(pattern, ".")

	type pathItem struct {
		fullPath string
		relPath  string
	}

	queue := []pathItem{{fullPath: rootPath, relPath: ""}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(current.fullPath)
		if err != nil {
			if current.relPath == "" {
				return fmt.Errorf("cannot read directory: %w", err)
			}
			continue
		}

		for _, entry := range entries {
			entryName := entry.Name()
			hidden := strings.HasPrefix(entryName, ".")

			entryRelPath := entryName
			if current.relPath != "" {
				entryRelPath = current.relPath + "/" + entryName
			}
			entryFullPath := filepath.Join(current.fullPath, entryName)

			if entry.IsDir() {
				if !options.Recursive || (hidden && !options.Hidden) {
					continue
				}
				if options.Filter != nil && !options.Filter.Match(entryRelPath, true) {
					continue
				}
				queue = append(queue, pathItem{
					fullPath: entryFullPath,
					relPath:  entryRelPath,
				})
				continue
			}

			if hidden && !hiddenFiles {
				continue
			}

			if ok, _ := filepath.Match(pattern, entryName); !ok {
				continue
			}

			if options.Filter != nil && !options.Filter.Match(entryRelPath, false) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				// Vanished between ReadDir and Info, skip it
				continue
			}

			// Symlinks to directories are not files
			if info.Mode()&os.ModeSymlink != 0 {
				if target, err := os.Stat(entryFullPath); err == nil {
					if target.IsDir() {
						continue
					}
					info = target
				}
			}

			fileInfo := FileInfo{
				Path:         entryRelPath,
				Size:         info.Size(),
				ModifiedTime: info.ModTime().UnixNano(),
			}

			if continueScan := cb(fileInfo); !continueScan {
				return nil
			}
		}
	}

	return nil
}

// Candidates collects every file ListFiles would visit.
func Candidates(rootPath string, options ListFileOptions) ([]FileInfo, error) {
	files := []FileInfo{}
	err := ListFiles(rootPath, options, func(fileInfo FileInfo) bool {
		files = append(files, fileInfo)
		return true
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
