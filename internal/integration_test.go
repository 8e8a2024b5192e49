package internal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/slicer/internal/decompose"
	"github.com/slicekit/slicer/internal/generator"
	"github.com/slicekit/slicer/internal/logging"
	"github.com/slicekit/slicer/internal/prd"
	"github.com/slicekit/slicer/internal/report"
)

// TestDecompositionPipeline exercises the full path a result travels in
// production: engine run, terminal summary, markdown report, and the JSON
// file round trip the validate command reads back.
func TestDecompositionPipeline(t *testing.T) {
	draft := &generator.Draft{
		Rationale: "sliced by capability",
		Units: []prd.Unit{
			{
				ID:    "u1",
				Title: "Create a shopping list",
				Body:  "Shoppers create a named shopping list. Rejects empty names with an error.",
				Story: prd.UserStory{Role: "shopper", Goal: "to create a list", Benefit: "I can plan my trip"},
				AcceptanceCriteria: []string{
					"Given a name, when the list is created, then it appears on the overview",
					"Given an empty name, when submitted, then creation is rejected with an error",
				},
				Size: prd.SizeS,
			},
			{
				ID:    "u2",
				Title: "Add items to a list",
				Body:  "Shoppers add items to an existing list. Shows an empty state when the list has no items.",
				Story: prd.UserStory{Role: "shopper", Goal: "to add items", Benefit: "I remember what to buy"},
				AcceptanceCriteria: []string{
					"Given a list, when an item is added, then it shows up within 1 second",
				},
				DependsOn: []string{"u1"},
				Size:      prd.SizeS,
			},
		},
	}

	cfg := decompose.DefaultEngineConfig()
	cfg.MinUnits = 2
	cfg.RetryBackoff = time.Millisecond
	cfg.CallTimeout = time.Second

	gen := generator.NewScriptedGenerator(generator.ScriptedResponse{Draft: draft})
	engine, err := decompose.NewEngine(cfg, gen, logging.NopLogger())
	require.NoError(t, err)

	item := prd.RoadmapItem{
		ID:          "item-lists",
		Title:       "Shopping lists",
		Description: "Let shoppers plan purchases with shared lists",
		Type:        prd.ItemFeature,
	}

	res, err := engine.Decompose(context.Background(), item)
	require.NoError(t, err)
	require.Len(t, res.Units, 2)
	assert.Equal(t, prd.GraphValid, res.Graph.State)

	summary := report.NewRenderer(false).Summary(res)
	assert.Contains(t, summary, "item-lists")
	assert.Contains(t, summary, "Create a shopping list")

	md := report.Markdown(res)
	assert.Contains(t, md, "```mermaid")
	assert.Contains(t, md, "u1 --> u2")

	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, report.WriteJSONFile(path, res))

	got, err := report.ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, res.Confidence, got.Confidence)
	require.Len(t, got.Units, 2)
	require.NotNil(t, got.Units[0].Score)
	assert.Equal(t, res.Units[0].Score.Composite, got.Units[0].Score.Composite)
}
