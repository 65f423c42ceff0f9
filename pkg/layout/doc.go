// Package layout assigns every node of a [graph.Graph] a position.
//
// The default engine is a layered (Sugiyama) drawing: ranks by longest path,
// per-rank ordering by barycentre sweeps with adjacent-swap refinement, then
// coordinate assignment. There is no iteration towards an equilibrium, so a
// small edit to the document moves few nodes. The graphviz engine hands the
// same problem to Graphviz's dot.
//
// Both engines size nodes by kind (see [NodeSize]) and report each node by
// its top-left corner, with the drawing translated so its top-left corner is
// the origin. The same graph and direction always produce the same layout.
//
//	l := layout.Layout(graph.Parse(text), graph.DirectionLR)
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.Position.X, n.Position.Y)
//	}
//
// [graph.Graph]: github.com/matzehuels/composeviz/pkg/graph.Graph
package layout
