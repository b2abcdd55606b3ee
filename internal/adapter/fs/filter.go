package fs

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides whether a file belongs in the snapshot.
//
// A file is included when its relative path or bare name is in the
// always-include set, or when it lies under one of the included directories
// and its name ends with an allowed extension. Exclude patterns override both.
type Filter struct {
	includeDirs []string
	always      map[string]bool
	extensions  []string
	excludes    []string
}

// NewFilter builds a filter. includeDirs must be absolute; always entries use
// "/" separators.
func NewFilter(includeDirs, always, extensions, excludes []string) *Filter {
	dirs := make([]string, 0, len(includeDirs))
	for _, dir := range includeDirs {
		dirs = append(dirs, filepath.Clean(dir))
	}

	alwaysSet := make(map[string]bool, len(always))
	for _, entry := range always {
		alwaysSet[entry] = true
	}

	return &Filter{
		includeDirs: dirs,
		always:      alwaysSet,
		extensions:  extensions,
		excludes:    excludes,
	}
}

// Match reports whether the file at absPath (relPath relative to the base
// directory, "/"-separated) is part of the snapshot.
func (f *Filter) Match(absPath, relPath string) bool {
	if f.excluded(relPath) {
		return false
	}
	if f.AlwaysIncluded(relPath) {
		return true
	}
	return f.inIncludedDir(absPath) && f.hasAllowedExtension(path.Base(relPath))
}

// AlwaysIncluded reports whether relPath or its bare filename is in the
// always-include set.
func (f *Filter) AlwaysIncluded(relPath string) bool {
	return f.always[relPath] || f.always[path.Base(relPath)]
}

func (f *Filter) inIncludedDir(absPath string) bool {
	for _, dir := range f.includeDirs {
		if IsWithin(absPath, dir) {
			return true
		}
	}
	return false
}

func (f *Filter) hasAllowedExtension(name string) bool {
	for _, ext := range f.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (f *Filter) excluded(relPath string) bool {
	for _, pattern := range f.excludes {
		matched, err := doublestar.Match(pattern, relPath)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// IsWithin reports whether p equals dir or has dir as an ancestor. Paths are
// compared component by component, so /foo/barbaz is not within /foo/bar.
func IsWithin(p, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(p))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
