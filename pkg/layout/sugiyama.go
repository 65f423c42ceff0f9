package layout

import (
	"context"

	"github.com/matzehuels/composeviz/pkg/dag"
	"github.com/matzehuels/composeviz/pkg/dag/transform"
	"github.com/matzehuels/composeviz/pkg/graph"
)

// Sugiyama is the native layered layout engine.
type Sugiyama struct {
	opts Options
}

// NewSugiyama returns a layered engine with the given spacing.
func NewSugiyama(opts Options) *Sugiyama {
	return &Sugiyama{opts: opts.withDefaults()}
}

// Name returns "sugiyama".
func (s *Sugiyama) Name() string { return EngineSugiyama }

// Layout positions every node of g. Edges whose endpoints are missing,
// self loops and parallel edges do not influence placement; all edges are
// still returned unchanged.
func (s *Sugiyama) Layout(ctx context.Context, g graph.Graph, dir graph.Direction) (graph.Layout, error) {
	if err := ctx.Err(); err != nil {
		return graph.Layout{}, err
	}
	d := buildDAG(g)
	transform.Normalize(d)
	if err := ctx.Err(); err != nil {
		return graph.Layout{}, err
	}

	orders := s.order(d)
	centres := s.place(d, orders, dir)
	return assemble(g, dir, EngineSugiyama, centres), nil
}

// buildDAG copies g into a layout graph, sized by node kind.
func buildDAG(g graph.Graph) *dag.DAG {
	d := dag.New()
	for _, n := range g.Nodes {
		w, h := NodeSize(n.Kind)
		_ = d.AddNode(dag.Node{ID: n.ID, Width: w, Height: h})
	}
	for _, e := range g.Edges {
		if e.Source == e.Target || d.HasEdge(e.Source, e.Target) {
			continue
		}
		// Unknown endpoints are rejected by AddEdge.
		_ = d.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}
	return d
}
