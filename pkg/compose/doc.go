// Package compose decodes compose documents into a typed, order-preserving
// model.
//
// # Overview
//
// A compose document is a YAML mapping with optional top-level services,
// networks and volumes sections. The model keeps those sections as ordered
// slices rather than Go maps, because document order decides which node a
// graph builder creates first and the order in which validation findings
// are reported.
//
// # Dynamic Shapes
//
// Several service fields accept more than one shape. networks and
// depends_on may be a list of names or a mapping keyed by name; ports and
// volumes entries may be short-syntax strings or structured mappings;
// environment may be a KEY=VALUE list or a mapping. Each of these is
// decoded into a small tagged type ([NameList], [PortBinding], [Mount])
// that normalizes to an ordered form once, so consumers never inspect raw
// YAML shapes.
//
// # Errors
//
// [Load] returns a [*SyntaxError] when the text is not valid YAML (duplicate
// mapping keys and multi-document streams included) and [ErrNotMapping] when
// the root is not a mapping. Anything else is tolerated: entries of an
// unexpected shape are kept as malformed values and skipped by consumers.
//
// YAML anchors, aliases and merge keys (<<) are resolved while decoding.
package compose
