package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// =============================================================================
// Direction - Primary Flow Axis
// =============================================================================

// Direction is the axis along which ranks advance.
type Direction string

// Layout directions.
const (
	DirectionLR Direction = "LR" // ranks flow left to right
	DirectionTB Direction = "TB" // ranks flow top to bottom
)

// ParseDirection accepts "LR" or "TB" in any case. The empty string maps to
// [DirectionLR].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(DirectionLR):
		return DirectionLR, nil
	case string(DirectionTB):
		return DirectionTB, nil
	}
	return "", fmt.Errorf("invalid direction: %q (must be one of: LR, TB)", s)
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool { return d != DirectionTB }

// Sides returns the node sides where incoming and outgoing edges attach.
func (d Direction) Sides() (target, source Side) {
	if d == DirectionTB {
		return SideTop, SideBottom
	}
	return SideLeft, SideRight
}

// Side is a node border used as a connection point.
type Side string

// Node sides.
const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is a graph whose nodes all carry a position. Edges are passed
// through from the input unchanged and carry no coordinates.
type Layout struct {
	Direction Direction `json:"direction" bson:"direction"`
	Engine    string    `json:"engine" bson:"engine"`
	Width     float64   `json:"width" bson:"width"`
	Height    float64   `json:"height" bson:"height"`
	Nodes     []Placed  `json:"nodes" bson:"nodes"`
	Edges     []Edge    `json:"edges" bson:"edges"`
}

// Placed is a node with its size, top-left position and connection sides.
type Placed struct {
	Node       `bson:",inline"`
	Width      float64 `json:"width" bson:"width"`
	Height     float64 `json:"height" bson:"height"`
	TargetSide Side    `json:"target_side" bson:"target_side"`
	SourceSide Side    `json:"source_side" bson:"source_side"`
}

// Positions returns node id to top-left position.
func (l Layout) Positions() map[string]Position {
	out := make(map[string]Position, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.Position != nil {
			out[n.ID] = *n.Position
		}
	}
	return out
}

// Graph returns the positioned nodes and edges as a plain graph.
func (l Layout) Graph() Graph {
	g := Graph{Nodes: make([]Node, len(l.Nodes)), Edges: l.Edges}
	for i, n := range l.Nodes {
		g.Nodes[i] = n.Node
	}
	return g
}

// MarshalLayout serializes a layout to JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes a layout from JSON.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
