package transform

import "github.com/matzehuels/composeviz/pkg/dag"

type visit struct {
	id   string
	next int // index of the next child to examine
}

// BreakCycles removes the back edges found by a depth-first search so the
// graph becomes acyclic, and returns how many edges were removed.
//
// The search starts from sources, then from any node still unvisited, both
// in insertion order, so the same input always loses the same edges.
// Self loops are back edges too. The walk keeps its own stack, so a long
// chain does not grow the goroutine stack.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var backEdges [][2]string

	walk := func(root string) {
		color[root] = gray
		stack := []visit{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, visit{id: child})
			case gray:
				backEdges = append(backEdges, [2]string{top.id, child})
			}
		}
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			walk(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			walk(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
	}
	return len(backEdges)
}
