// Package io reads and writes dependency graphs as JSON.
//
// The format is a node list and an edge list:
//
//	{
//	  "nodes": [{"id": "zoom", "meta": {"version": "6.0.2-1"}}, {"id": "qt5-webengine"}],
//	  "edges": [{"from": "zoom", "to": "qt5-webengine"}]
//	}
//
// Edges point from a package to a dependency. Node order is preserved on a
// round trip, so a graph read back orders exactly like the one written.
// "relink graph -o deps.json" writes this format and "relink order --graph
// deps.json" orders a saved graph without querying the package database.
package io
