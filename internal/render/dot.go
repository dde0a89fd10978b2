package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	graphlib "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/mvp-joe/depgraph/internal/graph"
)

// DOTFileName is the name of the Graphviz output.
const DOTFileName = "depgraph.dot"

// dotWriter writes a Graphviz description. Graphviz has no use for
// parallel edges, so repeated imports between two modules are folded into
// one edge whose label lists every imported name.
type dotWriter struct{}

func (w *dotWriter) Format() string { return "dot" }

func (w *dotWriter) Write(ctx context.Context, outDir string, g *graph.Graph) ([]string, error) {
	var buf bytes.Buffer
	if err := WriteDOT(&buf, g); err != nil {
		return nil, err
	}

	path := filepath.Join(outDir, DOTFileName)
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// ToGraphLib converts g into a directed dominikbraun graph with an edge
// from each importing module to the module it imports.
func ToGraphLib(g *graph.Graph) (graphlib.Graph[string, string], error) {
	out := graphlib.New(graphlib.StringHash, graphlib.Directed())

	for _, n := range g.Nodes {
		attrs := []func(*graphlib.VertexProperties){
			graphlib.VertexAttribute("label", n.ID),
			graphlib.VertexAttribute("shape", n.Shape),
		}
		if n.Color != "" {
			attrs = append(attrs,
				graphlib.VertexAttribute("style", "filled"),
				graphlib.VertexAttribute("fillcolor", n.Color),
			)
		}
		if err := out.AddVertex(n.ID, attrs...); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add vertex %s: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		err := out.AddEdge(e.To, e.From, graphlib.EdgeAttribute("label", e.Label))
		if err == nil {
			continue
		}
		if !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", e.To, e.From, err)
		}

		existing, err := out.Edge(e.To, e.From)
		if err != nil {
			return nil, fmt.Errorf("failed to read edge %s -> %s: %w", e.To, e.From, err)
		}
		label := existing.Properties.Attributes["label"]
		if e.Label != "" {
			if label != "" {
				label += "\n"
			}
			label += e.Label
		}
		if err := out.UpdateEdge(e.To, e.From, graphlib.EdgeAttribute("label", label)); err != nil {
			return nil, fmt.Errorf("failed to update edge %s -> %s: %w", e.To, e.From, err)
		}
	}

	return out, nil
}

// WriteDOT writes g in Graphviz DOT syntax.
func WriteDOT(w io.Writer, g *graph.Graph) error {
	lib, err := ToGraphLib(g)
	if err != nil {
		return err
	}
	if err := draw.DOT(lib, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return fmt.Errorf("failed to render dot: %w", err)
	}
	return nil
}
