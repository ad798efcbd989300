package dag

import (
	"fmt"
	"strings"
)

// CycleError reports that the graph cannot be ordered.
type CycleError struct {
	// Cycle is one concrete cycle, starting and ending with the same node.
	Cycle []string
	// Unordered lists every node that could not be placed, in insertion
	// order: the cycle members and everything depending on them.
	Unordered []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s (%d packages cannot be ordered)",
		ErrGraphHasCycle, strings.Join(e.Cycle, " -> "), len(e.Unordered))
}

// Unwrap makes errors.Is(err, ErrGraphHasCycle) hold.
func (e *CycleError) Unwrap() error { return ErrGraphHasCycle }

// cycleError builds a CycleError from the out-degree counters left over by
// an unfinished peel. Nodes with a positive count were never placed.
func (g *Graph) cycleError(remaining map[string]int) *CycleError {
	unordered := make(map[string]bool)
	var ids []string
	for _, id := range g.ids {
		if remaining[id] > 0 {
			unordered[id] = true
			ids = append(ids, id)
		}
	}
	return &CycleError{Cycle: g.findCycle(unordered), Unordered: ids}
}

// FindCycle returns one directed cycle of the graph, or nil if it is acyclic.
func (g *Graph) FindCycle() []string {
	return g.findCycle(nil)
}

// findCycle runs a white/gray/black depth-first search restricted to the
// nodes in within (all nodes when within is nil). Nodes are visited in
// insertion order so the reported cycle is deterministic.
func (g *Graph) findCycle(within map[string]bool) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.ids))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range g.Children(id) {
			if within != nil && !within[child] {
				continue
			}
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == child {
						cycle = append(append([]string(nil), stack[i:]...), child)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range g.ids {
		if within != nil && !within[id] {
			continue
		}
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}
