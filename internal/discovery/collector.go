// Package discovery walks a source tree and collects the files to scan.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gobwas/glob"
)

// Error reports that the scan root, or a directory below it, could not be read.
// It aborts the whole scan.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to read directory %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Collector selects files by name with an include and an exclude regexp.
type Collector struct {
	include    *regexp.Regexp
	exclude    *regexp.Regexp
	ignoreDirs []compiledPattern
}

// NewCollector creates a collector. ignoreDirs are globs matched against
// directory paths relative to the walked root; with none given every
// subdirectory is descended.
func NewCollector(include, exclude *regexp.Regexp, ignoreDirs []string) (*Collector, error) {
	c := &Collector{
		include: include,
		exclude: exclude,
	}

	for _, pattern := range ignoreDirs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile ignore pattern %q: %w", pattern, err)
		}
		c.ignoreDirs = append(c.ignoreDirs, compiledPattern{pattern: pattern, glob: g})
	}

	return c, nil
}

// Collect returns the absolute path of every regular file below rootDir whose
// name matches the include pattern and not the exclude pattern.
//
// Within a directory, matching files come first in name order, followed by
// the contents of each subdirectory in name order. The result is therefore
// stable for an unchanged tree.
func (c *Collector) Collect(rootDir string) ([]string, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, &Error{Path: rootDir, Err: err}
	}

	files := []string{}
	if err := c.walk(absRoot, absRoot, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Collector) walk(root, dir string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &Error{Path: dir, Err: err}
	}

	var subDirs []string
	for _, entry := range entries {
		switch {
		case entry.Type().IsRegular():
			if c.Matches(entry.Name()) {
				*files = append(*files, filepath.Join(dir, entry.Name()))
			}
		case entry.IsDir():
			subDirs = append(subDirs, filepath.Join(dir, entry.Name()))
		}
	}

	for _, subDir := range subDirs {
		if c.IgnoresDir(root, subDir) {
			continue
		}
		if err := c.walk(root, subDir, files); err != nil {
			return err
		}
	}

	return nil
}

// Matches reports whether a file name passes the include and exclude patterns.
func (c *Collector) Matches(name string) bool {
	return c.include.MatchString(name) && !c.exclude.MatchString(name)
}

// IgnoresDir reports whether dir, below root, matches one of the ignoreDirs
// globs. root itself is never ignored.
func (c *Collector) IgnoresDir(root, dir string) bool {
	if len(c.ignoreDirs) == 0 {
		return false
	}

	relPath, err := filepath.Rel(root, dir)
	if err != nil || relPath == "." {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, cp := range c.ignoreDirs {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	return false
}
