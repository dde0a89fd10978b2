// Package config provides configuration loading for depgraph.
//
// Configuration is read once at startup and passed by value into the
// scanner, the resolver and the renderers. Nothing in this package keeps
// process-wide state.
//
// Priority (highest to lowest):
//  1. Environment variables (DEPGRAPH_*)
//  2. Config file (depgraph.config.json, depgraph.config.yaml, depgraph.config.yml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// Config represents the complete depgraph configuration.
// Keys use camelCase to stay compatible with existing depgraph.config files.
type Config struct {
	ProjectDirectory string   `yaml:"projectDirectory" mapstructure:"projectDirectory"` // root of the project, default cwd
	OutputDirectory  string   `yaml:"outputDirectory" mapstructure:"outputDirectory"`   // where rendered artifacts go, default cwd
	IncludePattern   string   `yaml:"includePattern" mapstructure:"includePattern"`     // regexp matched against file names
	ExcludePattern   string   `yaml:"excludePattern" mapstructure:"excludePattern"`     // regexp matched against file names
	Tsconfig         string   `yaml:"tsconfig" mapstructure:"tsconfig"`                 // alias table location, relative to ProjectDirectory
	SourceSubdir     string   `yaml:"sourceSubdir" mapstructure:"sourceSubdir"`         // scanned subdirectory of ProjectDirectory
	Extension        string   `yaml:"extension" mapstructure:"extension"`               // default source extension used for probing and display
	IgnoreDirs       []string `yaml:"ignoreDirs" mapstructure:"ignoreDirs"`             // glob patterns for directories to skip, relative to the scan root
	ExcludeExternal  bool     `yaml:"excludeExternal" mapstructure:"excludeExternal"`   // drop edges whose target is outside the scan root
	Workers          int      `yaml:"workers" mapstructure:"workers"`                   // extraction workers, 1 means sequential
	Formats          []string `yaml:"formats" mapstructure:"formats"`                   // output formats: html, json, dot, sqlite
}

const (
	DefaultIncludePattern = ".ts$"
	DefaultExcludePattern = ".spec.ts$"
	DefaultTsconfig       = "tsconfig.json"
	DefaultSourceSubdir   = "src"
	DefaultExtension      = ".ts"
)

// Default returns a configuration with the built-in defaults.
// Directories are left empty and resolved against the working directory by the loader.
func Default() *Config {
	return &Config{
		ProjectDirectory: "",
		OutputDirectory:  "",
		IncludePattern:   DefaultIncludePattern,
		ExcludePattern:   DefaultExcludePattern,
		Tsconfig:         DefaultTsconfig,
		SourceSubdir:     DefaultSourceSubdir,
		Extension:        DefaultExtension,
		IgnoreDirs:       []string{},
		ExcludeExternal:  false,
		Workers:          1,
		Formats:          []string{"html"},
	}
}

// ResolvePaths makes ProjectDirectory and OutputDirectory absolute,
// interpreting empty or relative values against baseDir.
func (c *Config) ResolvePaths(baseDir string) {
	c.ProjectDirectory = resolveDir(baseDir, c.ProjectDirectory)
	c.OutputDirectory = resolveDir(baseDir, c.OutputDirectory)
}

func resolveDir(baseDir, dir string) string {
	if dir == "" {
		return filepath.Clean(baseDir)
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(baseDir, dir)
}

// ScanRoot returns the directory that is walked for source files.
func (c *Config) ScanRoot() string {
	return filepath.Join(c.ProjectDirectory, c.SourceSubdir)
}

// Patterns compiles the include and exclude patterns.
func (c *Config) Patterns() (include, exclude *regexp.Regexp, err error) {
	include, err = regexp.Compile(c.IncludePattern)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: includePattern %q: %v", ErrInvalidPattern, c.IncludePattern, err)
	}
	exclude, err = regexp.Compile(c.ExcludePattern)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: excludePattern %q: %v", ErrInvalidPattern, c.ExcludePattern, err)
	}
	return include, exclude, nil
}
