// Package dag builds the dependency graph of a candidate package set and
// orders it so every package comes after the packages it depends on.
//
// # Overview
//
// relink rebuilds broken packages. A package whose library was rebuilt may
// itself become healthy again, so dependencies must be rebuilt before their
// dependents. This package holds that ordering logic.
//
// Edges point from a package to its dependencies ("A depends on B" is the
// edge A → B). Only dependencies that are themselves candidates become
// edges: everything else is either healthy or handled by the regular system
// upgrade, and does not need ordering.
//
// # Basic Usage
//
//	g := dag.Build(
//	    []string{"app", "lib", "core"},
//	    map[string][]string{"app": {"lib", "glibc"}, "lib": {"core"}},
//	)
//	plan, err := g.Order() // [core lib app]
//
// # Ordering
//
// [Graph.Layers] peels the graph breadth-first: each round collects every
// node whose remaining dependencies have all been ordered, in insertion
// order, before any of them is removed. [Graph.Order] concatenates the
// rounds. Both are iterative and leave the graph unchanged.
//
// A dependency cycle makes ordering impossible. It is reported as a
// [*CycleError] (matching [ErrGraphHasCycle] with errors.Is) naming one
// concrete cycle, and no partial order is returned.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. Concurrent reads are fine.
package dag
