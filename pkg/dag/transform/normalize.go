package transform

import "github.com/matzehuels/composeviz/pkg/dag"

// Result reports what [Normalize] changed.
type Result struct {
	// CyclesRemoved is the number of back edges removed by cycle breaking.
	CyclesRemoved int
	// SubdividersAdded is the number of zero-sized nodes inserted to split
	// long edges.
	SubdividersAdded int
	// MaxRow is the deepest rank after layering.
	MaxRow int
}

// Normalize makes g a proper layered graph: acyclic, ranked by longest path,
// with every edge joining consecutive rows.
func Normalize(g *dag.DAG) Result {
	var res Result
	res.CyclesRemoved = BreakCycles(g)
	AssignLayers(g)
	before := g.NodeCount()
	Subdivide(g)
	res.SubdividersAdded = g.NodeCount() - before
	res.MaxRow = g.MaxRow()
	return res
}
