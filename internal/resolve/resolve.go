// Package resolve turns import specifiers into file-system paths.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/depgraph/internal/alias"
)

// DefaultProbeCacheSize bounds the number of remembered existence checks.
const DefaultProbeCacheSize = 10_000

// Kind tells a resolved target from an unresolved one.
type Kind int

const (
	Unresolved Kind = iota // Path holds the literal specifier
	Resolved               // Path holds an absolute, cleaned file-system path
)

func (k Kind) String() string {
	if k == Resolved {
		return "resolved"
	}
	return "unresolved"
}

// Target is the outcome of resolving one specifier.
type Target struct {
	Kind Kind
	Path string
}

// IsResolved reports whether the target points at an existing file or directory.
func (t Target) IsResolved() bool { return t.Kind == Resolved }

func (t Target) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.Path)
}

// Resolver applies alias rewriting and relative resolution, then probes the
// file system. It is safe for concurrent use.
type Resolver struct {
	projectRoot string
	aliases     *alias.Mapping
	extension   string
	probes      otter.Cache[string, bool]
}

// New creates a resolver. Aliased specifiers are joined onto projectRoot;
// extension is appended when probing for a file (e.g. ".ts").
func New(projectRoot string, aliases *alias.Mapping, extension string) (*Resolver, error) {
	probes, err := otter.MustBuilder[string, bool](DefaultProbeCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create probe cache: %w", err)
	}

	return &Resolver{
		projectRoot: projectRoot,
		aliases:     aliases,
		extension:   extension,
		probes:      probes,
	}, nil
}

// Resolve maps specifier, as written in owningFile, to a target.
//
//  1. An alias match is rewritten and joined onto the project root.
//  2. Otherwise the specifier is joined onto the directory of owningFile.
//  3. The candidate is accepted if it exists as-is, or with the default
//     extension appended (the returned path then carries the extension).
//  4. Anything else is Unresolved and keeps the literal specifier.
func (r *Resolver) Resolve(specifier, owningFile string) Target {
	var candidate string
	if rewritten, ok := r.aliases.Resolve(specifier); ok {
		candidate = filepath.Join(r.projectRoot, rewritten)
	} else {
		candidate = filepath.Join(filepath.Dir(owningFile), specifier)
	}

	if r.exists(candidate) {
		return Target{Kind: Resolved, Path: candidate}
	}
	if withExt := candidate + r.extension; r.exists(withExt) {
		return Target{Kind: Resolved, Path: withExt}
	}

	return Target{Kind: Unresolved, Path: specifier}
}

// exists stats path once and remembers the answer.
func (r *Resolver) exists(path string) bool {
	if found, ok := r.probes.Get(path); ok {
		return found
	}
	_, err := os.Stat(path)
	found := err == nil
	r.probes.Set(path, found)
	return found
}

// Close releases the probe cache.
func (r *Resolver) Close() {
	r.probes.Close()
}
