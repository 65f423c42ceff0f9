// Package dag provides the ranked directed graph that backs layered layout.
//
// Nodes carry a row (rank) and a footprint. Every accessor that returns
// several nodes does so in insertion order, which is what makes layouts
// built on this package reproducible.
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "svc-web", Width: 280, Height: 150})
//	g.AddNode(dag.Node{ID: "net-default", Width: 150, Height: 50})
//	g.AddEdge(dag.Edge{From: "svc-web", To: "net-default"})
//
// Rows are assigned by the [transform] subpackage, which also breaks cycles
// and subdivides edges spanning several rows so that [DAG.Validate] holds.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a Fenwick
// tree in O(E log V) per layer pair; [CountPairCrossings] supports local
// adjacent-swap refinement.
//
// DAG instances are not safe for concurrent use.
//
// [transform]: github.com/matzehuels/composeviz/pkg/dag/transform
package dag
