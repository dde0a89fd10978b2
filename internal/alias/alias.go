// Package alias loads the compilerOptions.paths table of a tsconfig file and
// rewrites import specifiers that start with one of its prefixes.
package alias

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// ErrNotConfigured is wrapped by LoadError when no tsconfig path was given.
var ErrNotConfigured = errors.New("tsconfig path not configured")

// LoadError reports a tsconfig that could not be loaded. It is never fatal:
// Load returns an empty Mapping alongside it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("tsconfig failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Entry is one alias with its trailing wildcard stripped.
type Entry struct {
	Prefix      string
	Replacement string
}

// Mapping is an ordered alias table. Order follows the source file and
// decides which prefix wins when several match.
type Mapping struct {
	entries []Entry
}

// NewMapping builds a mapping from entries in the given order.
// A repeated prefix replaces the earlier replacement but keeps its position.
func NewMapping(entries ...Entry) *Mapping {
	m := &Mapping{}
	for _, e := range entries {
		m.set(e.Prefix, e.Replacement)
	}
	return m
}

func (m *Mapping) set(prefix, replacement string) {
	for i := range m.entries {
		if m.entries[i].Prefix == prefix {
			m.entries[i].Replacement = replacement
			return
		}
	}
	m.entries = append(m.entries, Entry{Prefix: prefix, Replacement: replacement})
}

// Entries returns a copy of the table in iteration order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

// Len returns the number of aliases.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Resolve rewrites specifier with the first alias whose prefix it starts
// with. The second result reports whether an alias matched; when none does
// the specifier is returned unchanged.
func (m *Mapping) Resolve(specifier string) (string, bool) {
	if m == nil {
		return specifier, false
	}
	for _, e := range m.entries {
		if strings.HasPrefix(specifier, e.Prefix) {
			return e.Replacement + specifier[len(e.Prefix):], true
		}
	}
	return specifier, false
}

// Load reads configDir/tsconfigPath and extracts compilerOptions.paths.
// For every alias only the first replacement is used, and a single trailing
// "*" is stripped from both sides.
//
// On any failure an empty Mapping is returned together with a *LoadError.
// A file without a paths table yields an empty Mapping and no error.
func Load(configDir, tsconfigPath string) (*Mapping, error) {
	if tsconfigPath == "" {
		return &Mapping{}, &LoadError{Path: configDir, Err: ErrNotConfigured}
	}

	path := tsconfigPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(configDir, tsconfigPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &Mapping{}, &LoadError{Path: path, Err: err}
	}

	m, err := Parse(data)
	if err != nil {
		return &Mapping{}, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

// Parse extracts the alias table from tsconfig content. Comments and
// trailing commas are accepted, as in real tsconfig files.
func Parse(data []byte) (*Mapping, error) {
	plain, err := standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tsconfig: %w", err)
	}

	// yaml.Node keeps keys in file order, which decides alias precedence
	var doc yaml.Node
	if err := yaml.Unmarshal(plain, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tsconfig: %w", err)
	}

	m := &Mapping{}
	if len(doc.Content) == 0 {
		return m, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse tsconfig: top level is not an object")
	}

	paths := lookup(lookup(root, "compilerOptions"), "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return m, nil
	}

	for i := 0; i+1 < len(paths.Content); i += 2 {
		key, value := paths.Content[i], paths.Content[i+1]
		if value.Kind != yaml.SequenceNode || len(value.Content) == 0 {
			continue
		}
		first := value.Content[0]
		if first.Kind != yaml.ScalarNode {
			continue
		}
		m.set(strings.TrimSuffix(key.Value, "*"), strings.TrimSuffix(first.Value, "*"))
	}

	return m, nil
}

// lookup returns the value node stored under key in a mapping node.
// The last occurrence wins, matching JSON object semantics.
func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	var found *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			found = node.Content[i+1]
		}
	}
	return found
}

// standardize turns tsconfig's JSON-with-comments into plain JSON. Tabs are
// only legal between tokens in the result, and the YAML decoder rejects
// them there, so they become spaces.
func standardize(data []byte) ([]byte, error) {
	plain, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, err
	}
	return bytes.ReplaceAll(plain, []byte("\t"), []byte(" ")), nil
}
