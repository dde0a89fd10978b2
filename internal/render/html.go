package render

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mvp-joe/depgraph/internal/graph"
)

const (
	DataFileName   = "depgraph.data.js"
	ViewerFileName = "depgraph.html"
)

//go:embed viewer/depgraph.html
var viewerHTML []byte

// htmlWriter writes the data script and the static viewer that loads it.
type htmlWriter struct{}

func (w *htmlWriter) Format() string { return "html" }

func (w *htmlWriter) Write(ctx context.Context, outDir string, g *graph.Graph) ([]string, error) {
	data, err := DataScript(g)
	if err != nil {
		return nil, err
	}

	dataPath := filepath.Join(outDir, DataFileName)
	if err := writeAtomic(dataPath, data); err != nil {
		return nil, err
	}

	viewerPath := filepath.Join(outDir, ViewerFileName)
	if err := writeAtomic(viewerPath, viewerHTML); err != nil {
		return nil, err
	}

	return []string{dataPath, viewerPath}, nil
}

// DataScript renders the script the viewer includes:
//
//	const nodes = [...];
//	const edges = [...];
func DataScript(g *graph.Graph) ([]byte, error) {
	nodes, err := json.Marshal(g.Nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nodes: %w", err)
	}
	edges, err := json.Marshal(g.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edges: %w", err)
	}
	return fmt.Appendf(nil, "const nodes = %s;\nconst edges = %s;\n", nodes, edges), nil
}
