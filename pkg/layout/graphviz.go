package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/composeviz/pkg/graph"
)

// Graphviz lays out graphs with Graphviz's dot engine.
type Graphviz struct {
	opts Options
}

// NewGraphviz returns a dot-backed engine with the given spacing.
func NewGraphviz(opts Options) *Graphviz {
	return &Graphviz{opts: opts.withDefaults()}
}

// Name returns "graphviz".
func (e *Graphviz) Name() string { return EngineGraphviz }

// Layout renders g through dot and reads node centres back from the xdot
// output.
func (e *Graphviz) Layout(ctx context.Context, g graph.Graph, dir graph.Direction) (graph.Layout, error) {
	if len(g.Nodes) == 0 {
		return assemble(g, dir, EngineGraphviz, nil), nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	pg, err := graphviz.ParseBytes([]byte(toDOT(g, dir, e.opts)))
	if err != nil {
		return graph.Layout{}, fmt.Errorf("parse DOT: %w", err)
	}
	defer pg.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, pg, graphviz.XDOT, &buf); err != nil {
		return graph.Layout{}, fmt.Errorf("render: %w", err)
	}

	centres, err := parsePositions(buf.String(), g)
	if err != nil {
		return graph.Layout{}, err
	}
	return assemble(g, dir, EngineGraphviz, centres), nil
}

// inches converts layout units to inches. dot reports positions in points,
// which map one to one onto layout units.
func inches(v float64) string { return strconv.FormatFloat(v/72, 'f', 4, 64) }

// toDOT names nodes n0, n1, ... by graph index so that arbitrary service
// names never need escaping.
func toDOT(g graph.Graph, dir graph.Direction, opts Options) string {
	index := make(map[string]int, len(g.Nodes))
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n\n")

	for i, n := range g.Nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = i
		w, h := NodeSize(n.Kind)
		fmt.Fprintf(&buf, "  n%d [width=%s, height=%s];\n", i, inches(w), inches(h))
	}

	buf.WriteString("\n")
	seen := make(map[[2]int]bool)
	for _, e := range g.Edges {
		from, okF := index[e.Source]
		to, okT := index[e.Target]
		if !okF || !okT || from == to || seen[[2]int{from, to}] {
			continue
		}
		seen[[2]int{from, to}] = true
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*n(\d+)\s*\[([^\]]*)\]`)
	posRe      = regexp.MustCompile(`\bpos="([-+0-9.eE]+),([-+0-9.eE]+)!?"`)
	bbRe       = regexp.MustCompile(`\bbb="([-+0-9.eE]+),([-+0-9.eE]+),([-+0-9.eE]+),([-+0-9.eE]+)"`)
)

// parsePositions extracts node centres from xdot output, flipping the y axis
// (dot grows y upwards).
func parsePositions(xdot string, g graph.Graph) (map[string]point, error) {
	xdot = strings.ReplaceAll(xdot, "\\\n", "")

	bb := bbRe.FindStringSubmatch(xdot)
	if bb == nil {
		return nil, fmt.Errorf("graphviz output has no bounding box")
	}
	top, err := strconv.ParseFloat(bb[4], 64)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}

	centres := make(map[string]point, len(g.Nodes))
	for _, m := range nodeStmtRe.FindAllStringSubmatch(xdot, -1) {
		i, err := strconv.Atoi(m[1])
		if err != nil || i >= len(g.Nodes) {
			continue
		}
		pos := posRe.FindStringSubmatch(m[2])
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(pos[1], 64)
		y, errY := strconv.ParseFloat(pos[2], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("node %s: bad position %q", g.Nodes[i].ID, pos[0])
		}
		centres[g.Nodes[i].ID] = point{x: x, y: top - y}
	}

	for _, n := range g.Nodes {
		if _, ok := centres[n.ID]; !ok {
			return nil, fmt.Errorf("graphviz output has no position for %s", n.ID)
		}
	}
	return centres, nil
}
