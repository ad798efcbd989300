package dag

// Build creates the dependency graph of a candidate set.
//
// Every candidate becomes a node, including those without dependencies.
// An edge A → B is added for each dependency B declared by A in deps, but
// only when B is itself a candidate. Repeated candidates and repeated
// dependencies are merged, so duplicates in the input never change the
// result. Empty names are ignored.
func Build(candidates []string, deps map[string][]string) *Graph {
	g := New()
	for _, c := range candidates {
		_ = g.AddNode(c, nil)
	}
	for _, from := range g.ids {
		for _, to := range deps[from] {
			if g.HasNode(to) {
				_ = g.AddEdge(from, to)
			}
		}
	}
	return g
}
