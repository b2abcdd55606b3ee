package fs

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"codesnap/internal/domain"
)

// Walker traverses a base directory, pruning ignored directory names and
// keeping the files accepted by its Filter.
type Walker struct {
	filter      *Filter
	ignoredDirs map[string]bool
	skipPaths   map[string]bool
}

func NewWalker(filter *Filter, ignoredDirs []string) *Walker {
	ignored := make(map[string]bool, len(ignoredDirs))
	for _, name := range ignoredDirs {
		ignored[name] = true
	}
	return &Walker{
		filter:      filter,
		ignoredDirs: ignored,
		skipPaths:   make(map[string]bool),
	}
}

// Skip excludes the given absolute paths from every walk, typically the
// report being written.
func (w *Walker) Skip(paths ...string) {
	for _, p := range paths {
		w.skipPaths[filepath.Clean(p)] = true
	}
}

// Walk returns the matching files under root in traversal order. Entries
// below root that cannot be read are skipped and reported as warnings; only a
// failure on root itself is an error.
func (w *Walker) Walk(root string) (*domain.WalkResult, error) {
	result := &domain.WalkResult{}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// A trailing separator makes WalkDir follow a symlinked root while every
	// reported path stays under root as given.
	start := root
	if !strings.HasSuffix(start, string(filepath.Separator)) {
		start += string(filepath.Separator)
	}

	err = filepath.WalkDir(start, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == start {
				return err
			}
			result.Warnings = append(result.Warnings, domain.WalkWarning{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != start && w.ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinked directories are neither descended nor reported.
		if d.Type()&iofs.ModeSymlink != 0 {
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return nil
			}
		}

		if w.skipPaths[path] {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if w.filter.Match(path, relPath) {
			result.Files = append(result.Files, domain.FileRecord{
				Path:    path,
				RelPath: relPath,
			})
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reader reads files for the report, dropping byte sequences that are not
// valid UTF-8.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadFile(path string) (string, error) {
	return ReadFile(path)
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
