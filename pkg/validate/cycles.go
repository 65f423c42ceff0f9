package validate

import "github.com/matzehuels/composeviz/pkg/compose"

// DetectCycles returns every depends_on cycle in doc. See [Report.Cycles].
func DetectCycles(doc *compose.Document) [][]string {
	return detectCycles(doc)
}

type frame struct {
	name string
	next int // index of the next neighbour to visit
}

// detectCycles runs a depth-first search from every unvisited service in
// document order. Reaching a service that is still on the search path
// closes a cycle, reported as the path from that service onwards with the
// service repeated at the end: A→B→C→D→B yields [B C D B]. Every detection
// is reported; rotations and rediscoveries are not merged.
//
// The search keeps an explicit stack, so deep dependency chains cost heap,
// not goroutine stack.
func detectCycles(doc *compose.Document) [][]string {
	adj := dependencyGraph(doc)
	cycles := [][]string{}
	visited := make(map[string]bool, len(doc.Services))
	onPath := make(map[string]int, len(doc.Services)) // name -> index in stack

	for _, root := range doc.Services {
		if visited[root.Name] {
			continue
		}

		stack := []frame{{name: root.Name}}
		visited[root.Name] = true
		onPath[root.Name] = 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbours := adj[top.name]
			if top.next == len(neighbours) {
				delete(onPath, top.name)
				stack = stack[:len(stack)-1]
				continue
			}
			next := neighbours[top.next]
			top.next++

			if !visited[next] {
				visited[next] = true
				onPath[next] = len(stack)
				stack = append(stack, frame{name: next})
				continue
			}
			if start, ok := onPath[next]; ok {
				cycle := make([]string, 0, len(stack)-start+1)
				for _, f := range stack[start:] {
					cycle = append(cycle, f.name)
				}
				cycles = append(cycles, append(cycle, next))
			}
		}
	}
	return cycles
}

// dependencyGraph maps each service to its depends_on targets, keeping only
// targets the document declares.
func dependencyGraph(doc *compose.Document) map[string][]string {
	adj := make(map[string][]string, len(doc.Services))
	for _, svc := range doc.Services {
		var deps []string
		for _, dep := range svc.Spec.DependsOn.Names {
			if doc.HasService(dep) {
				deps = append(deps, dep)
			}
		}
		adj[svc.Name] = deps
	}
	return adj
}
