package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/prd"
)

func unitSet(ids ...string) []prd.Unit {
	units := make([]prd.Unit, len(ids))
	for i, id := range ids {
		units[i] = prd.Unit{ID: id, Title: id}
	}
	return units
}

func TestBuild_ExplicitEdges(t *testing.T) {
	units := unitSet("a", "b", "c")
	units[1].DependsOn = []string{"a"}
	units[2].DependsOn = []string{"a", "b"}

	g, warnings := Build(units, nil, 0.7)

	assert.Empty(t, warnings)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 3)
	assert.True(t, g.HasEdge("a", "b"), "edge should point dependency -> dependent")
	assert.True(t, g.HasEdge("a", "c"))
	assert.True(t, g.HasEdge("b", "c"))
	assert.Equal(t, prd.GraphUnvalidated, g.State)
}

func TestBuild_RejectsSelfLoop(t *testing.T) {
	units := unitSet("a")
	units[0].DependsOn = []string{"a"}

	g, warnings := Build(units, nil, 0.7)

	assert.Empty(t, g.Edges)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "self-loop")
	assert.Equal(t, "a", warnings[0].UnitID)
}

func TestBuild_RejectsUnknownReference(t *testing.T) {
	units := unitSet("a")
	units[0].DependsOn = []string{"ghost"}

	g, warnings := Build(units, nil, 0.7)

	assert.Empty(t, g.Edges)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "unknown unit ghost")
}

func TestBuild_RejectsDuplicateEdge(t *testing.T) {
	units := unitSet("a", "b")
	units[1].DependsOn = []string{"a", "a"}

	g, warnings := Build(units, nil, 0.7)

	assert.Len(t, g.Edges, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "duplicate")
}

func TestBuild_ImplicitEdges(t *testing.T) {
	units := unitSet("a", "b")
	features := map[string]extract.Features{
		"a": {Creates: []string{"account", "profile", "session"}},
		"b": {Uses: []string{"account", "profile", "session"}},
	}

	g, warnings := Build(units, features, 0.7)

	assert.Empty(t, warnings)
	require.Len(t, g.Edges, 1)
	e := g.Edges[0]
	assert.Equal(t, "a", e.From)
	assert.Equal(t, "b", e.To)
	assert.Equal(t, prd.EdgeImplicit, e.Kind)
	assert.InDelta(t, 0.9, e.Confidence, 1e-9)
}

func TestBuild_DiscardsLowConfidenceImplicit(t *testing.T) {
	// One shared entity gives confidence 0.3, below the 0.7 floor.
	units := unitSet("a", "b")
	features := map[string]extract.Features{
		"a": {Creates: []string{"account"}},
		"b": {Uses: []string{"account"}},
	}

	g, _ := Build(units, features, 0.7)
	assert.Empty(t, g.Edges)
}

func TestBuild_ImplicitConfidenceCapped(t *testing.T) {
	units := unitSet("a", "b")
	entities := []string{"e1", "e2", "e3", "e4", "e5"}
	features := map[string]extract.Features{
		"a": {Creates: entities},
		"b": {Uses: entities},
	}

	g, _ := Build(units, features, 0.7)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, 1.0, g.Edges[0].Confidence)
}

func TestBuild_ExplicitShadowsImplicit(t *testing.T) {
	units := unitSet("a", "b")
	units[1].DependsOn = []string{"a"}
	features := map[string]extract.Features{
		"a": {Creates: []string{"x", "y", "z"}},
		"b": {Uses: []string{"x", "y", "z"}},
	}

	g, _ := Build(units, features, 0.7)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, prd.EdgeExplicit, g.Edges[0].Kind)
}

func TestTopologicalOrder(t *testing.T) {
	units := unitSet("c", "a", "b")
	units[0].DependsOn = []string{"a", "b"}
	units[2].DependsOn = []string{"a"}

	g, _ := Build(units, nil, 0.7)
	order, err := TopologicalOrder(g)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g := prd.NewDependencyGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge(prd.DependencyEdge{From: "a", To: "b", Kind: prd.EdgeExplicit})
	g.AddEdge(prd.DependencyEdge{From: "b", To: "a", Kind: prd.EdgeExplicit})

	_, err := TopologicalOrder(g)
	assert.Error(t, err)
}

func TestAudit_DepthBound(t *testing.T) {
	// Chain of 6 nodes has depth 6, exceeding a bound of 5.
	units := unitSet("a", "b", "c", "d", "e", "f")
	for i := 1; i < len(units); i++ {
		units[i].DependsOn = []string{units[i-1].ID}
	}

	g, _ := Build(units, nil, 0.7)
	warnings := Audit(g, 5)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "depth 6 exceeds bound 5")
}

func TestAudit_Orphans(t *testing.T) {
	units := unitSet("a", "b", "lonely")
	units[1].DependsOn = []string{"a"}

	g, _ := Build(units, nil, 0.7)
	warnings := Audit(g, 5)

	require.Len(t, warnings, 1)
	assert.Equal(t, "lonely", warnings[0].UnitID)
}

func TestAudit_EntryPointExemptsOrphan(t *testing.T) {
	units := unitSet("a", "b", "seed")
	units[1].DependsOn = []string{"a"}

	g, _ := Build(units, nil, 0.7)
	g.EntryPoints = []string{"seed"}

	assert.Empty(t, Audit(g, 5))
}
