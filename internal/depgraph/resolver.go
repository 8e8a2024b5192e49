package depgraph

import (
	"sort"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/prd"
)

// Resolve validates that the graph is acyclic, repairing cycles where
// possible, and transitions the graph from Unvalidated to Valid or
// Unresolvable.
//
// Each pass runs Tarjan's strongly-connected-component scan; any SCC of
// size > 1 is a cycle. Repair removes the lowest-confidence implicit edge
// inside the cycle, breaking confidence ties by lexical order of the edge
// endpoints so repair is reproducible. If a cycle contains no implicit
// edge the graph is Unresolvable and the error carries the cycle path.
//
// This is the only function permitted to mutate the edge set after
// construction.
func Resolve(g *prd.DependencyGraph) error {
	for {
		sccs := tarjan(g)

		var cycle []string
		for _, scc := range sccs {
			if len(scc) > 1 {
				cycle = scc
				break
			}
		}
		if cycle == nil {
			g.State = prd.GraphValid
			return nil
		}

		victim, ok := lowestImplicitEdge(g, cycle)
		if !ok {
			g.State = prd.GraphUnresolvable
			path := cyclePath(g, cycle)
			return errors.NewGraphError("cycle contains no removable implicit edge", errors.ErrCycleUnresolvable).
				WithCycle(path)
		}
		g.RemoveEdge(victim.From, victim.To, prd.EdgeImplicit)
	}
}

// tarjan returns the strongly connected components of the graph. Roots
// are visited in lexical order so component discovery is deterministic.
func tarjan(g *prd.DependencyGraph) [][]string {
	adj := g.Adjacency()

	nodes := make([]string, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Strings(nodes)

	index := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	next := 0
	var sccs [][]string

	var connect func(v string)
	connect = func(v string) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := index[w]; !seen {
				connect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, n := range nodes {
		if _, seen := index[n]; !seen {
			connect(n)
		}
	}
	return sccs
}

// lowestImplicitEdge returns the lowest-confidence implicit edge with both
// endpoints inside the component. Ties break on (From, To) lexical order.
func lowestImplicitEdge(g *prd.DependencyGraph, scc []string) (prd.DependencyEdge, bool) {
	in := make(map[string]bool, len(scc))
	for _, n := range scc {
		in[n] = true
	}

	var best prd.DependencyEdge
	found := false
	for _, e := range g.Edges {
		if e.Kind != prd.EdgeImplicit || !in[e.From] || !in[e.To] {
			continue
		}
		if !found {
			best, found = e, true
			continue
		}
		if e.Confidence < best.Confidence ||
			(e.Confidence == best.Confidence && (e.From < best.From ||
				(e.From == best.From && e.To < best.To))) {
			best = e
		}
	}
	return best, found
}

// cyclePath reconstructs a concrete cycle through the component for
// diagnostics, starting from the lexically smallest node.
func cyclePath(g *prd.DependencyGraph, scc []string) []string {
	in := make(map[string]bool, len(scc))
	for _, n := range scc {
		in[n] = true
	}

	adj := make(map[string][]string, len(scc))
	for _, e := range g.Edges {
		if in[e.From] && in[e.To] {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}
	for n := range adj {
		sort.Strings(adj[n])
	}

	start := scc[0]
	for _, n := range scc {
		if n < start {
			start = n
		}
	}

	// DFS from start back to start through component-internal edges.
	var path []string
	visited := make(map[string]bool, len(scc))
	var walk func(v string) bool
	walk = func(v string) bool {
		path = append(path, v)
		visited[v] = true
		for _, w := range adj[v] {
			if w == start {
				return true
			}
			if !visited[w] && walk(w) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if walk(start) {
		return path
	}
	return scc
}
