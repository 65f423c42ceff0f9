package graph

import (
	"errors"
	"strings"

	"github.com/matzehuels/composeviz/pkg/compose"
)

// Outcome tells apart the cases a plain [Parse] collapses into an empty graph.
type Outcome int

const (
	// OutcomeOK means the text decoded to a mapping.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the text held no document, or a null one.
	OutcomeEmpty
	// OutcomeMalformed means the text failed to decode or its root is not a
	// mapping.
	OutcomeMalformed
)

// String returns the outcome's name.
func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "ok"
	}
}

// DanglingPolicy decides what happens to a dependency or link naming a
// service that the document does not declare.
type DanglingPolicy int

const (
	// DanglingDrop omits the edge. Every edge then ends at a graph node.
	DanglingDrop DanglingPolicy = iota
	// DanglingKeep emits the edge anyway, pointing at a missing node id.
	DanglingKeep
	// DanglingStub creates an implicit service node for the missing target.
	DanglingStub
)

// ParseDanglingPolicy maps "drop", "keep" and "stub" to a policy.
func ParseDanglingPolicy(s string) (DanglingPolicy, bool) {
	switch strings.ToLower(s) {
	case "", "drop":
		return DanglingDrop, true
	case "keep":
		return DanglingKeep, true
	case "stub":
		return DanglingStub, true
	}
	return DanglingDrop, false
}

// String returns the policy's flag value.
func (p DanglingPolicy) String() string {
	switch p {
	case DanglingKeep:
		return "keep"
	case DanglingStub:
		return "stub"
	default:
		return "drop"
	}
}

// Options configures graph construction. The zero value is ready to use.
type Options struct {
	Dangling DanglingPolicy
}

// Parse builds the graph of a compose document. It never fails: text that
// does not decode, or whose root is not a mapping, yields an empty graph.
// Use [ParseOutcome] to find out which case applied.
func Parse(text string) Graph {
	g, _ := ParseOutcome(text)
	return g
}

// ParseOutcome is [Parse] that also reports how the text decoded.
func ParseOutcome(text string) (Graph, Outcome) {
	return ParseWith(text, Options{})
}

// ParseWith is [ParseOutcome] with explicit options.
func ParseWith(text string, opts Options) (Graph, Outcome) {
	doc, err := compose.Load(text)
	switch {
	case errors.Is(err, compose.ErrEmpty):
		return Graph{Nodes: []Node{}, Edges: []Edge{}}, OutcomeEmpty
	case err != nil:
		return Graph{Nodes: []Node{}, Edges: []Edge{}}, OutcomeMalformed
	}
	return Build(doc, opts), OutcomeOK
}

// Build constructs the graph of a decoded document.
//
// Nodes are created in a fixed order: declared networks, declared volumes,
// then per service its own node followed by any implicit networks, volumes
// and (with [DanglingStub]) service stubs it references first. Edges follow
// service order; per service, network edges precede volume, dependency and
// link edges. Edges with an identical (source, target, kind) collapse.
func Build(doc *compose.Document, opts Options) Graph {
	b := newBuilder(doc, opts)
	b.registerNodes()
	b.emitEdges()
	return b.g
}

type edgeKey struct {
	source, target string
	kind           EdgeKind
}

type builder struct {
	doc   *compose.Document
	opts  Options
	g     Graph
	ids   map[string]bool
	edges map[edgeKey]bool
}

func newBuilder(doc *compose.Document, opts Options) *builder {
	return &builder{
		doc:   doc,
		opts:  opts,
		g:     Graph{Nodes: []Node{}, Edges: []Edge{}},
		ids:   make(map[string]bool),
		edges: make(map[edgeKey]bool),
	}
}

func (b *builder) addNode(n Node) {
	if b.ids[n.ID] {
		return
	}
	b.ids[n.ID] = true
	b.g.Nodes = append(b.g.Nodes, n)
}

// registerNodes is the lookup pre-pass: it creates every node, implicit ones
// included, before any edge exists.
func (b *builder) registerNodes() {
	for _, r := range b.doc.Networks {
		spec := r.Spec
		b.addNode(Node{ID: NetworkID(r.Name), Kind: KindNetwork, Label: r.Name, Resource: &spec})
	}
	for _, r := range b.doc.Volumes {
		spec := r.Spec
		b.addNode(Node{ID: VolumeID(r.Name), Kind: KindVolume, Label: r.Name, Resource: &spec})
	}

	for _, svc := range b.doc.Services {
		spec := svc.Spec
		b.addNode(Node{ID: ServiceID(svc.Name), Kind: KindService, Label: svc.Name, Service: &spec})

		for _, name := range networkRefs(svc.Spec) {
			b.addNode(Node{ID: NetworkID(name), Kind: KindNetwork, Label: name, Implicit: true})
		}
		for _, name := range volumeRefs(svc.Spec) {
			b.addNode(Node{ID: VolumeID(name), Kind: KindVolume, Label: name, Implicit: true})
		}
		if b.opts.Dangling == DanglingStub {
			for _, name := range serviceRefs(svc.Spec) {
				if !b.doc.HasService(name) {
					b.addNode(Node{ID: ServiceID(name), Kind: KindService, Label: name, Implicit: true})
				}
			}
		}
	}
}

func (b *builder) emitEdges() {
	for _, svc := range b.doc.Services {
		src := ServiceID(svc.Name)
		for _, name := range networkRefs(svc.Spec) {
			b.addEdge(src, NetworkID(name), EdgeNetwork, name)
		}
		for _, name := range volumeRefs(svc.Spec) {
			b.addEdge(src, VolumeID(name), EdgeVolume, name)
		}
		for _, name := range svc.Spec.DependsOn.Names {
			b.addServiceEdge(src, EdgeDependency, name)
		}
		for _, name := range linkTargets(svc.Spec) {
			b.addServiceEdge(src, EdgeLink, name)
		}
	}
}

func (b *builder) addServiceEdge(src string, kind EdgeKind, name string) {
	if b.opts.Dangling == DanglingDrop && !b.doc.HasService(name) {
		return
	}
	b.addEdge(src, ServiceID(name), kind, name)
}

func (b *builder) addEdge(src, dst string, kind EdgeKind, name string) {
	key := edgeKey{src, dst, kind}
	if b.edges[key] {
		return
	}
	b.edges[key] = true
	b.g.Edges = append(b.g.Edges, Edge{ID: EdgeID(src, kind, name), Source: src, Target: dst, Kind: kind})
}

// networkRefs returns the networks a service joins. A service without a
// networks value joins the default network.
func networkRefs(s compose.ServiceSpec) []string {
	if !s.Networks.Present() {
		return []string{DefaultNetwork}
	}
	return s.Networks.Names
}

// volumeRefs returns the managed volumes a service mounts, skipping host
// bind mounts.
func volumeRefs(s compose.ServiceSpec) []string {
	var out []string
	for _, m := range s.Volumes {
		if name, ok := m.VolumeName(); ok {
			out = append(out, name)
		}
	}
	return out
}

// linkTargets strips the ":alias" suffix from legacy links.
func linkTargets(s compose.ServiceSpec) []string {
	out := make([]string, 0, len(s.Links))
	for _, l := range s.Links {
		name, _, _ := strings.Cut(l, ":")
		out = append(out, name)
	}
	return out
}

func serviceRefs(s compose.ServiceSpec) []string {
	return append(append([]string{}, s.DependsOn.Names...), linkTargets(s)...)
}
