package layout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/composeviz/pkg/graph"
)

// Engine names.
const (
	EngineSugiyama = "sugiyama"
	EngineGraphviz = "graphviz"
)

// ErrUnknownEngine is returned by [New] for an unsupported engine name.
var ErrUnknownEngine = errors.New("unknown layout engine")

// Node footprints.
const (
	ServiceWidth   = 280
	ServiceHeight  = 150
	ResourceWidth  = 150
	ResourceHeight = 50
)

// NodeSize returns the footprint of a node kind. Services get the large
// footprint; networks and volumes share the small one.
func NodeSize(kind graph.Kind) (w, h float64) {
	if kind == graph.KindService {
		return ServiceWidth, ServiceHeight
	}
	return ResourceWidth, ResourceHeight
}

// Options tunes spacing. Zero fields take the [DefaultOptions] value.
type Options struct {
	RankSep float64 // gap between adjacent ranks
	NodeSep float64 // gap between adjacent nodes of a rank
	EdgeSep float64 // gap between edge bend points of a rank
	Passes  int     // ordering sweeps
}

// DefaultOptions returns the standard spacing.
func DefaultOptions() Options {
	return Options{RankSep: 100, NodeSep: 50, EdgeSep: 10, Passes: 24}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RankSep <= 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = d.NodeSep
	}
	if o.EdgeSep <= 0 {
		o.EdgeSep = d.EdgeSep
	}
	if o.Passes <= 0 {
		o.Passes = d.Passes
	}
	return o
}

// Engine lays out graphs. Implementations are safe for concurrent use.
type Engine interface {
	Name() string
	Layout(ctx context.Context, g graph.Graph, dir graph.Direction) (graph.Layout, error)
}

// Engines lists the supported engine names.
func Engines() []string { return []string{EngineSugiyama, EngineGraphviz} }

// New returns the named engine. The empty name selects sugiyama.
func New(name string, opts Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineSugiyama:
		return NewSugiyama(opts), nil
	case EngineGraphviz:
		return NewGraphviz(opts), nil
	}
	return nil, fmt.Errorf("%w: %q (must be one of: %s)", ErrUnknownEngine, name, strings.Join(Engines(), ", "))
}

// Layout lays out g with the default engine and spacing. It cannot fail.
func Layout(g graph.Graph, dir graph.Direction) graph.Layout {
	l, _ := NewSugiyama(DefaultOptions()).Layout(context.Background(), g, dir)
	return l
}

type point struct{ x, y float64 }

// assemble converts node centres into top-left positions, translates the
// drawing to the origin and copies edges through. Nodes missing from
// centres are placed at the origin.
func assemble(g graph.Graph, dir graph.Direction, engine string, centres map[string]point) graph.Layout {
	targetSide, sourceSide := dir.Sides()
	l := graph.Layout{
		Direction: dir,
		Engine:    engine,
		Nodes:     make([]graph.Placed, 0, len(g.Nodes)),
		Edges:     append([]graph.Edge{}, g.Edges...),
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range g.Nodes {
		w, h := NodeSize(n.Kind)
		c := centres[n.ID]
		pos := graph.Position{X: c.x - w/2, Y: c.y - h/2}
		minX, minY = math.Min(minX, pos.X), math.Min(minY, pos.Y)

		placed := graph.Placed{Node: n, Width: w, Height: h, TargetSide: targetSide, SourceSide: sourceSide}
		placed.Position = &pos
		l.Nodes = append(l.Nodes, placed)
	}

	for i := range l.Nodes {
		n := &l.Nodes[i]
		n.Position.X = round(n.Position.X - minX)
		n.Position.Y = round(n.Position.Y - minY)
		l.Width = math.Max(l.Width, n.Position.X+n.Width)
		l.Height = math.Max(l.Height, n.Position.Y+n.Height)
	}
	return l
}

func round(v float64) float64 { return math.Round(v*100) / 100 }
