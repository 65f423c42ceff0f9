// Package transform prepares a [dag.DAG] for layered drawing.
//
// [Normalize] applies the steps in order:
//
//   - [BreakCycles] removes DFS back edges (dependency cycles are legal in
//     compose documents and must not break the layout)
//   - [AssignLayers] ranks nodes by longest path from the sources
//   - [Subdivide] splits edges spanning several rows into chains through
//     zero-sized subdivider nodes
//
// After Normalize, [dag.DAG.Validate] returns nil.
//
// All steps iterate in node insertion order and modify g in place.
//
// [dag.DAG]: github.com/matzehuels/composeviz/pkg/dag
package transform
