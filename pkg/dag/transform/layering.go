package transform

import "github.com/matzehuels/composeviz/pkg/dag"

// AssignLayers places every node on the row one past the deepest of its
// parents (longest path from a source), so sources sit on row 0 and every
// edge points to a higher row.
//
// The traversal is Kahn's topological sort seeded with sources in insertion
// order. AssignLayers assumes the graph is acyclic: nodes on a cycle never
// reach in-degree zero and keep row 0. Run [BreakCycles] first.
//
// Runs in O(V + E).
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
