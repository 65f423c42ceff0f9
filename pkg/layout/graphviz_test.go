package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/composeviz/pkg/graph"
)

func TestToDOT(t *testing.T) {
	g := graph.Parse("services:\n  web:\n    image: nginx\n    depends_on: [db]\n    links: [db]\n  db:\n    image: postgres\n")
	dot := toDOT(g, graph.DirectionTB, DefaultOptions())

	assert.Contains(t, dot, "rankdir=TB;")
	assert.Contains(t, dot, "ranksep=1.3889;")
	assert.Contains(t, dot, "n0 [width=3.8889, height=2.0833];")
	assert.Contains(t, dot, "n1 [width=2.0833, height=0.6944];")
	// web depends on and links to db: one dot edge.
	assert.Equal(t, 1, strings.Count(dot, "n0 -> n2;"))
}

const xdotFixture = `digraph G {
	graph [bb="0,0,430,150",
		nodesep=0.6944,
		rankdir=LR,
		ranksep=1.3889
	];
	node [fixedsize=true,
		label="",
		shape=box
	];
	n0	[height=2.0833,
		pos="140,75",
		width=3.8889];
	n1	[height=0.6944,
		pos="355,\
75",
		width=2.0833];
	n0 -> n1	[pos="e,280,75 280,75 300,75 320,75"];
}
`

func TestParsePositions(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{
		{ID: "svc-web", Kind: graph.KindService},
		{ID: "net-default", Kind: graph.KindNetwork},
	}}
	centres, err := parsePositions(xdotFixture, g)
	require.NoError(t, err)
	assert.Equal(t, point{x: 140, y: 75}, centres["svc-web"])
	assert.Equal(t, point{x: 355, y: 75}, centres["net-default"])

	l := assemble(g, graph.DirectionLR, EngineGraphviz, centres)
	pos := l.Positions()
	assert.Equal(t, graph.Position{X: 0, Y: 0}, pos["svc-web"])
	assert.Equal(t, graph.Position{X: 280, Y: 50}, pos["net-default"])
}

func TestParsePositionsMissing(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	_, err := parsePositions(xdotFixture, g)
	assert.ErrorContains(t, err, "no position for c")

	_, err = parsePositions("digraph G {}", g)
	assert.ErrorContains(t, err, "bounding box")
}

func TestGraphvizLayout(t *testing.T) {
	g := graph.Parse("services:\n  web:\n    image: nginx\n    depends_on: [db]\n  db:\n    image: postgres\n")
	l, err := NewGraphviz(Options{}).Layout(context.Background(), g, graph.DirectionLR)
	require.NoError(t, err)

	require.Len(t, l.Nodes, g.NodeCount())
	pos := l.Positions()
	assert.Less(t, pos["svc-web"].X, pos["svc-db"].X)
	assert.Less(t, pos["svc-web"].X, pos["net-default"].X)
	assert.Equal(t, EngineGraphviz, l.Engine)
}

func TestGraphvizEmpty(t *testing.T) {
	l, err := NewGraphviz(Options{}).Layout(context.Background(), graph.Graph{}, graph.DirectionTB)
	require.NoError(t, err)
	assert.Empty(t, l.Nodes)
}
