// Package depgraph builds and validates the dependency graph between
// decomposed units.
//
// Construction adds one node per unit, one explicit edge per declared
// dependency, and implicit edges inferred from shared entity references.
// Validation runs Tarjan's strongly-connected-component scan and repairs
// cycles by removing low-confidence implicit edges; explicit edges are
// authoritative and never removed automatically.
package depgraph

import (
	"fmt"
	"sort"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/prd"
)

// implicitConfidencePerEntity is the confidence contributed by each shared
// entity between one unit's creates set and another's uses set.
const implicitConfidencePerEntity = 0.3

// Build constructs the dependency graph for a unit set.
//
// Explicit edges point from the declared dependency to the dependent unit.
// Edges that would be self-loops, duplicates, or reference unknown units
// are rejected and recorded as warnings, never silently dropped.
//
// Implicit edges are proposed when one unit's creates set intersects
// another unit's uses set, with confidence min(1, 0.3*|intersection|).
// Proposals below minConfidence are discarded at construction time.
func Build(units []prd.Unit, features map[string]extract.Features, minConfidence float64) (*prd.DependencyGraph, []prd.BuilderWarning) {
	g := prd.NewDependencyGraph()
	var warnings []prd.BuilderWarning

	for i := range units {
		g.AddNode(units[i].ID)
	}

	// Explicit edges from declared dependencies.
	for i := range units {
		u := &units[i]
		for _, dep := range u.DependsOn {
			edge := prd.DependencyEdge{From: dep, To: u.ID, Kind: prd.EdgeExplicit, Confidence: 1}
			switch {
			case dep == u.ID:
				warnings = append(warnings, prd.BuilderWarning{
					Message: fmt.Sprintf("rejected self-loop dependency on %s", u.ID),
					Edge:    &edge,
					UnitID:  u.ID,
				})
			case !g.HasNode(dep):
				warnings = append(warnings, prd.BuilderWarning{
					Message: fmt.Sprintf("unit %s depends on unknown unit %s", u.ID, dep),
					Edge:    &edge,
					UnitID:  u.ID,
				})
			case g.HasEdge(dep, u.ID):
				warnings = append(warnings, prd.BuilderWarning{
					Message: fmt.Sprintf("rejected duplicate edge %s -> %s", dep, u.ID),
					Edge:    &edge,
					UnitID:  u.ID,
				})
			default:
				g.AddEdge(edge)
			}
		}
	}

	// Implicit edges from shared entity references: if A creates what B
	// uses, B likely depends on A.
	for i := range units {
		a := &units[i]
		fa, ok := features[a.ID]
		if !ok {
			continue
		}
		for j := range units {
			if i == j {
				continue
			}
			b := &units[j]
			fb, ok := features[b.ID]
			if !ok {
				continue
			}

			shared := extract.Intersect(fa.Creates, fb.Uses)
			if len(shared) == 0 {
				continue
			}
			conf := implicitConfidencePerEntity * float64(len(shared))
			if conf > 1 {
				conf = 1
			}
			if conf < minConfidence {
				continue
			}
			if g.HasEdge(a.ID, b.ID) {
				continue
			}
			g.AddEdge(prd.DependencyEdge{From: a.ID, To: b.ID, Kind: prd.EdgeImplicit, Confidence: conf})
		}
	}

	return g, warnings
}

// TopologicalOrder returns a valid execution ordering of the graph's nodes
// using Kahn's algorithm. Ties are broken lexically so the ordering is
// deterministic. Returns an error if the graph contains a cycle.
func TopologicalOrder(g *prd.DependencyGraph) ([]string, error) {
	adj := g.Adjacency()
	in := g.InDegrees()

	var ready []string
	for n, d := range in {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		var unblocked []string
		for _, m := range adj[n] {
			in[m]--
			if in[m] == 0 {
				unblocked = append(unblocked, m)
			}
		}
		sort.Strings(unblocked)
		ready = append(ready, unblocked...)
	}

	if len(order) != len(g.Nodes) {
		return nil, errors.NewGraphError("topological order requires an acyclic graph", errors.ErrCycleUnresolvable)
	}
	return order, nil
}

// Audit checks the secondary graph invariants: maximum dependency depth
// within the configured bound, and no silent orphans. Violations are
// reported as warnings, never enforced. The graph must be acyclic.
func Audit(g *prd.DependencyGraph, maxDepth int) []prd.BuilderWarning {
	var warnings []prd.BuilderWarning

	if depth := longestPath(g); maxDepth > 0 && depth > maxDepth {
		warnings = append(warnings, prd.BuilderWarning{
			Message: fmt.Sprintf("dependency chain depth %d exceeds bound %d", depth, maxDepth),
		})
	}

	// An orphan has no edges at all and is not a declared entry point.
	if len(g.Nodes) > 1 {
		connected := make(map[string]bool, len(g.Nodes))
		for _, e := range g.Edges {
			connected[e.From] = true
			connected[e.To] = true
		}
		entry := make(map[string]bool, len(g.EntryPoints))
		for _, n := range g.EntryPoints {
			entry[n] = true
		}
		nodes := make([]string, len(g.Nodes))
		copy(nodes, g.Nodes)
		sort.Strings(nodes)
		for _, n := range nodes {
			if !connected[n] && !entry[n] {
				warnings = append(warnings, prd.BuilderWarning{
					Message: fmt.Sprintf("unit %s is not connected to any other unit", n),
					UnitID:  n,
				})
			}
		}
	}

	return warnings
}

// longestPath returns the number of nodes on the longest directed path.
// Assumes the graph is acyclic.
func longestPath(g *prd.DependencyGraph) int {
	adj := g.Adjacency()
	memo := make(map[string]int, len(g.Nodes))

	var walk func(n string) int
	walk = func(n string) int {
		if d, ok := memo[n]; ok {
			return d
		}
		best := 1
		for _, m := range adj[n] {
			if d := 1 + walk(m); d > best {
				best = d
			}
		}
		memo[n] = best
		return best
	}

	max := 0
	for _, n := range g.Nodes {
		if d := walk(n); d > max {
			max = d
		}
	}
	return max
}
