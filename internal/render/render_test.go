package render

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/depgraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for renderers:
// - DataScript() emits the two const declarations the viewer reads
// - html writer writes depgraph.data.js and the static viewer
// - json writer writes {nodes, edges} that decodes back into a Graph
// - dot writer folds parallel edges and carries node colors
// - sqlite writer appends one snapshot per run with every node and edge
// - WriteAll() creates the output directory and rejects unknown formats
// - WriteAll() releases the lock so a second run succeeds

func sampleGraph() *graph.Graph {
	return graph.NewBuilder("/p/src").Build([]graph.ImportRecord{
		{Importer: "/p/src/app.module.ts", Imports: []string{"Foo"}, Target: "/p/src/app.service.ts", Resolved: true},
		{Importer: "/p/src/app.module.ts", Imports: []string{"Bar"}, Target: "/p/src/app.service.ts", Resolved: true},
		{Importer: "/p/src/app.module.ts", Imports: []string{"NgModule"}, Target: "@angular/core"},
	})
}

func TestDataScript(t *testing.T) {
	data, err := DataScript(sampleGraph())

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "const nodes = ["))
	assert.True(t, strings.HasSuffix(lines[0], "];"))
	assert.True(t, strings.HasPrefix(lines[1], "const edges = ["))

	var nodes []graph.Node
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSuffix(strings.TrimPrefix(lines[0], "const nodes = "), ";")), &nodes))
	assert.Len(t, nodes, 3)
	assert.Equal(t, "app.module", nodes[0].ID)
}

func TestWriteAll_HTML(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	paths, err := WriteAll(context.Background(), outDir, []string{"html"}, sampleGraph())

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(outDir, DataFileName),
		filepath.Join(outDir, ViewerFileName),
	}, paths)

	viewer, err := os.ReadFile(filepath.Join(outDir, ViewerFileName))
	require.NoError(t, err)
	assert.Contains(t, string(viewer), DataFileName)
}

func TestWriteAll_JSON(t *testing.T) {
	outDir := t.TempDir()
	g := sampleGraph()

	_, err := WriteAll(context.Background(), outDir, []string{"json"}, g)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, JSONFileName))
	require.NoError(t, err)

	var decoded graph.Graph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *g, decoded)
}

func TestToGraphLib_FoldsParallelEdges(t *testing.T) {
	lib, err := ToGraphLib(sampleGraph())
	require.NoError(t, err)

	order, err := lib.Order()
	require.NoError(t, err)
	assert.Equal(t, 3, order)

	size, err := lib.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	edge, err := lib.Edge("app.module", "app.service")
	require.NoError(t, err)
	assert.Equal(t, "Foo\nBar", edge.Properties.Attributes["label"])

	_, props, err := lib.VertexWithProperties("app.module")
	require.NoError(t, err)
	assert.Equal(t, graph.ColorModule, props.Attributes["fillcolor"])
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteDOT(&buf, sampleGraph()))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "rankdir")
	assert.Contains(t, out, "app.service")
	assert.Contains(t, out, "@angular/core")
}

func TestWriteAll_SQLiteAppendsSnapshots(t *testing.T) {
	outDir := t.TempDir()
	g := sampleGraph()

	_, err := WriteAll(context.Background(), outDir, []string{"sqlite"}, g)
	require.NoError(t, err)
	_, err = WriteAll(context.Background(), outDir, []string{"sqlite"}, g)
	require.NoError(t, err)

	db, err := OpenSnapshotDB(filepath.Join(outDir, SQLiteFileName))
	require.NoError(t, err)
	defer db.Close()

	var runs int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	assert.Equal(t, 2, runs)

	runID, err := LatestRun(db)
	require.NoError(t, err)

	var nodes, edges int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM nodes WHERE run_id = ?", runID).Scan(&nodes))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM edges WHERE run_id = ?", runID).Scan(&edges))
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 3, edges)

	var imports string
	require.NoError(t, db.QueryRow("SELECT imports FROM edges WHERE run_id = ? AND position = 1", runID).Scan(&imports))
	assert.Equal(t, "Bar", imports)
}

func TestWriteAll_UnknownFormat(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := WriteAll(context.Background(), outDir, []string{"pdf"}, sampleGraph())

	assert.ErrorIs(t, err, ErrUnknownFormat)
	// Nothing is created when the format list is invalid
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteAll_NilGraph(t *testing.T) {
	_, err := WriteAll(context.Background(), t.TempDir(), []string{"json"}, nil)

	assert.Error(t, err)
}

func TestWriteAll_MultipleFormats(t *testing.T) {
	outDir := t.TempDir()

	paths, err := WriteAll(context.Background(), outDir, []string{"json", "dot"}, sampleGraph())

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(outDir, JSONFileName),
		filepath.Join(outDir, DOTFileName),
	}, paths)
}
