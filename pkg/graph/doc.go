// Package graph turns a compose document into a node/edge graph and defines
// the wire types for graphs and layouts.
//
// # Parsing
//
// [Parse] builds the graph of a document. It never fails: text that does not
// decode, or whose root is not a mapping, yields an empty graph. Callers that
// need to tell those cases apart use [ParseOutcome].
//
// Nodes are services, networks and volumes, identified by
// [ServiceID], [NetworkID] and [VolumeID]:
//
//	svc-web, net-default, vol-dbdata
//
// A network or volume a service references without declaring it becomes an
// implicit node. A service with no networks joins the "default" network.
// Mounts whose source starts with "." or "/" are host bind mounts and add
// nothing.
//
// Edges point from the declaring service to the referenced entity and have
// one of four kinds: network, volume, dependency and link. A dependency or
// link naming an undeclared service is governed by [DanglingPolicy]; the
// default, [DanglingDrop], omits the edge so every edge ends at a node.
//
// # Serialization
//
// [Graph] and [Layout] are the JSON (and BSON) wire format used by the CLI,
// the HTTP API, the cache and the snapshot store:
//
//	{
//	  "nodes": [{"id": "svc-web", "kind": "service", "label": "web"}],
//	  "edges": [{"id": "e-svc-web-net-default", "source": "svc-web",
//	             "target": "net-default", "kind": "network"}]
//	}
package graph
