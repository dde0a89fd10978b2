// Package graph assembles scanned import records into the dependency graph.
package graph

import (
	"path"
	"strings"
)

// Builder filters, cleans and indexes import records.
type Builder struct {
	prefix          string
	extension       string
	excludeExternal bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithExtension sets the extension stripped from identifiers (default ".ts").
func WithExtension(ext string) BuilderOption {
	return func(b *Builder) {
		b.extension = ext
	}
}

// WithExcludeExternal also drops edges whose target is unresolved or lies
// outside the scan root.
func WithExcludeExternal(exclude bool) BuilderOption {
	return func(b *Builder) {
		b.excludeExternal = exclude
	}
}

// NewBuilder creates a builder for files scanned below scanRoot.
func NewBuilder(scanRoot string, opts ...BuilderOption) *Builder {
	b := &Builder{
		prefix:    strings.TrimSuffix(slash(scanRoot), "/") + "/",
		extension: ".ts",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build turns records into a graph.
//
// Records whose importing file is outside the scan root are dropped. Every
// remaining record becomes one edge, duplicates included. Nodes are unique
// by identifier and ordered by first appearance, importer before target.
func (b *Builder) Build(records []ImportRecord) *Graph {
	g := &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}
	index := make(map[string]int)

	addNode := func(id string) {
		node := newNode(id)
		if i, ok := index[id]; ok {
			g.Nodes[i] = node
			return
		}
		index[id] = len(g.Nodes)
		g.Nodes = append(g.Nodes, node)
	}

	for _, rec := range records {
		importer := slash(rec.Importer)
		target := slash(rec.Target)

		if !b.inScope(importer) {
			continue
		}
		if b.excludeExternal && (!rec.Resolved || !b.inScope(target)) {
			continue
		}

		to := b.clean(importer)
		from := b.clean(target)

		addNode(to)
		addNode(from)

		imports := append([]string{}, rec.Imports...)
		g.Edges = append(g.Edges, Edge{
			From:    from,
			To:      to,
			Imports: imports,
			Arrows:  EdgeArrows,
			Label:   strings.Join(imports, "\n"),
			Font:    Font{Align: "horizontal"},
		})
	}

	return g
}

func (b *Builder) inScope(p string) bool {
	return strings.HasPrefix(p, b.prefix)
}

// clean strips the extension and the scan root prefix.
func (b *Builder) clean(p string) string {
	p = strings.TrimSuffix(p, b.extension)
	return strings.TrimPrefix(p, b.prefix)
}

func newNode(id string) Node {
	return Node{
		ID:    id,
		Label: "*" + path.Base(id) + "*\n" + path.Dir(id),
		Shape: NodeShape,
		Color: ColorFor(id),
		Font:  Font{Multi: "md", Size: 14},
	}
}

// slash converts any path separator to "/".
func slash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
