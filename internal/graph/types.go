package graph

// ImportRecord is one import statement found while scanning:
// Importer imports Imports from Target.
//
// Importer is the path of the scanned file. Target is an absolute path when
// Resolved is true, otherwise the literal specifier as written.
type ImportRecord struct {
	Importer string   `json:"to"`
	Imports  []string `json:"imports"`
	Target   string   `json:"from"`
	Resolved bool     `json:"resolved"`
}

// Font carries viewer text settings.
type Font struct {
	Multi string `json:"multi,omitempty"`
	Size  int    `json:"size,omitempty"`
	Align string `json:"align,omitempty"`
}

// Node is a module in the graph, keyed by its canonical identifier.
type Node struct {
	ID    string `json:"id"`              // canonical identifier (root prefix and extension stripped)
	Label string `json:"label"`           // "*basename*\ndirname"
	Shape string `json:"shape"`           // always "box"
	Color string `json:"color,omitempty"` // role color, empty when no role suffix matches
	Font  Font   `json:"font"`
}

// Edge is one import statement between two modules.
// From is the imported module and To the importing one; the viewer draws
// the arrow head at From.
type Edge struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Imports []string `json:"imports"`
	Arrows  string   `json:"arrows"`
	Label   string   `json:"label"`
	Font    Font     `json:"font"`
}

// Graph is the final dependency graph handed to the renderers.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

const (
	NodeShape  = "box"
	EdgeArrows = "from"
)
