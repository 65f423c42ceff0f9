package pipeline

import (
	"github.com/matzehuels/composeviz/pkg/graph"
)

// Parse builds the graph of text. It never fails; the outcome says whether
// the text decoded.
func Parse(text string, opts Options) (graph.Graph, graph.Outcome) {
	return graph.ParseWith(text, opts.GraphOptions())
}
