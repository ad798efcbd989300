package dag

import "slices"

// Layers peels the graph into rounds. The first round holds every node
// without dependencies; each following round holds the nodes whose
// dependencies all lie in earlier rounds. Nodes within a round keep
// insertion order.
//
// The whole round is determined before any of its nodes is removed, so a
// node freed by a same-round sibling waits for the next round. A cycle
// yields a *CycleError and no layers.
func (g *Graph) Layers() ([][]string, error) {
	remaining := make(map[string]int, len(g.ids))
	var round []string
	for _, id := range g.ids {
		remaining[id] = len(g.outgoing[id])
		if remaining[id] == 0 {
			round = append(round, id)
		}
	}

	var layers [][]string
	placed := 0
	for len(round) > 0 {
		layers = append(layers, round)
		placed += len(round)

		var next []string
		for _, leaf := range round {
			for parent := range g.incoming[leaf] {
				remaining[parent]--
				if remaining[parent] == 0 {
					next = append(next, parent)
				}
			}
		}
		slices.SortFunc(next, func(a, b string) int { return g.index[a] - g.index[b] })
		round = next
	}

	if placed < len(g.ids) {
		return nil, g.cycleError(remaining)
	}
	return layers, nil
}

// Order returns every node exactly once such that, for each edge A → B,
// B comes before A. It is the concatenation of [Graph.Layers].
func (g *Graph) Order() ([]string, error) {
	layers, err := g.Layers()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.ids))
	for _, l := range layers {
		order = append(order, l...)
	}
	return order, nil
}

// Levels maps each node to the index of its round in [Graph.Layers].
func (g *Graph) Levels() (map[string]int, error) {
	layers, err := g.Layers()
	if err != nil {
		return nil, err
	}
	levels := make(map[string]int, len(g.ids))
	for i, l := range layers {
		for _, id := range l {
			levels[id] = i
		}
	}
	return levels, nil
}
