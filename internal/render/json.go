package render

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mvp-joe/depgraph/internal/graph"
)

// JSONFileName is the name of the plain graph file.
const JSONFileName = "depgraph.json"

// jsonWriter writes {"nodes": [...], "edges": [...]}.
type jsonWriter struct{}

func (w *jsonWriter) Format() string { return "json" }

func (w *jsonWriter) Write(ctx context.Context, outDir string, g *graph.Graph) ([]string, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph data: %w", err)
	}

	path := filepath.Join(outDir, JSONFileName)
	if err := writeAtomic(path, data); err != nil {
		return nil, err
	}
	return []string{path}, nil
}
