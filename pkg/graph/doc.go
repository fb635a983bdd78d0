// Package graph provides serialization types for analysis graphs and
// layouts.
//
// This package defines the canonical wire format for foldgraph's data,
// used for input files, API requests and responses, and the layout cache.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/digraph.Graph, pkg/digraph.Hierarchical: Internal graphs
//
// Use [FromGraph]/[ToGraph] and [ExportLayout]/[Apply] to convert between
// them.
//
// # Graph Serialization
//
// Graphs use a vertex-edge JSON format with integer ids:
//
//	{
//	  "vertices": [
//	    {"id": 0, "label": "main", "kind": "method"},
//	    {"id": 1, "label": "loop@12", "kind": "loop", "meta": {"method": "main"}}
//	  ],
//	  "edges": [{"from": 0, "to": 1}]
//	}
//
// Kinds are "plain" (default), "method", "loop", "component", "root" and
// "group". A vertex may hold an "inner" graph of the same shape.
//
// Common operations:
//
//	h, _ := graph.ReadGraphFile("calls.json")      // File → Hierarchical
//	graph.WriteGraphFile(h.Graph(), "out.json")     // Graph → File
//	data, _ := graph.MarshalGraph(h.Graph())        // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)         // []byte → Graph
//
// # Layout Serialization
//
// A [Layout] lists one [Box] per drawn vertex with relative and absolute
// coordinates, and the edges of every drawn level. Edges that stand for
// paths through hidden vertices are marked spliced; edges removed to lay
// out a cyclic component are marked back.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
