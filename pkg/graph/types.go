package graph

import (
	"github.com/matzehuels/composeviz/pkg/compose"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Kind is the entity a node stands for.
type Kind string

// Node kinds.
const (
	KindService Kind = "service"
	KindNetwork Kind = "network"
	KindVolume  Kind = "volume"
)

// EdgeKind is the relation an edge encodes.
type EdgeKind string

// Edge kinds.
const (
	EdgeNetwork    EdgeKind = "network"    // service is attached to a network
	EdgeVolume     EdgeKind = "volume"     // service mounts a managed volume
	EdgeDependency EdgeKind = "dependency" // service lists another in depends_on
	EdgeLink       EdgeKind = "link"       // service lists another in links
)

// DefaultNetwork is the network a service joins when it lists none.
const DefaultNetwork = "default"

// Node id prefixes.
const (
	servicePrefix = "svc-"
	networkPrefix = "net-"
	volumePrefix  = "vol-"
)

// ServiceID returns the node id of the named service.
func ServiceID(name string) string { return servicePrefix + name }

// NetworkID returns the node id of the named network.
func NetworkID(name string) string { return networkPrefix + name }

// VolumeID returns the node id of the named volume.
func VolumeID(name string) string { return volumePrefix + name }

// EdgeID returns the id of the edge of the given kind from source to the
// entity called name, e.g. "e-svc-web-net-front".
func EdgeID(source string, kind EdgeKind, name string) string {
	return "e-" + source + "-" + edgeInfix(kind) + "-" + name
}

func edgeInfix(kind EdgeKind) string {
	switch kind {
	case EdgeNetwork:
		return "net"
	case EdgeVolume:
		return "vol"
	case EdgeDependency:
		return "dep"
	default:
		return "link"
	}
}

// =============================================================================
// Graph - Deployment Graph
// =============================================================================

// Graph is the node/edge model of a compose document. It is recomputed from
// scratch on every parse and treated as immutable afterwards.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is a service, network or volume.
type Node struct {
	ID       string                `json:"id" bson:"id"`
	Kind     Kind                  `json:"kind" bson:"kind"`
	Label    string                `json:"label" bson:"label"`
	Implicit bool                  `json:"implicit,omitempty" bson:"implicit,omitempty"`
	Service  *compose.ServiceSpec  `json:"service,omitempty" bson:"service,omitempty"`
	Resource *compose.ResourceSpec `json:"resource,omitempty" bson:"resource,omitempty"`
	Position *Position             `json:"position,omitempty" bson:"position,omitempty"`
}

// Position is the top-left corner of a laid out node.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Edge points from the declaring service to the entity it references.
type Edge struct {
	ID     string   `json:"id" bson:"id"`
	Source string   `json:"source" bson:"source"`
	Target string   `json:"target" bson:"target"`
	Kind   EdgeKind `json:"kind" bson:"kind"`
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodesOfKind returns the nodes of one kind in graph order.
func (g Graph) NodesOfKind(kind Kind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOfKind returns the edges of one kind in graph order.
func (g Graph) EdgesOfKind(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// DanglingEdges returns edges whose target is not a node of the graph.
// Only [DanglingKeep] parses produce them.
func (g Graph) DanglingEdges() []Edge {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	var out []Edge
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
