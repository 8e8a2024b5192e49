package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/logging"
	"github.com/slicekit/slicer/internal/prd"
)

func TestParseDraft_Canonical(t *testing.T) {
	raw := `{
		"units": [
			{
				"id": "unit-1",
				"title": "Photo upload",
				"body": "Users upload photos",
				"user_story": {"role": "user", "goal": "to upload photos", "benefit": "I can share them"},
				"acceptance_criteria": ["Given a photo, when uploaded, then it is stored"],
				"depends_on": [],
				"size_class": "S"
			},
			{
				"id": "unit-2",
				"title": "Photo gallery",
				"body": "Users browse photos",
				"depends_on": ["unit-1"],
				"size_class": "M"
			}
		],
		"rationale": "split by user-visible capability"
	}`

	draft, err := ParseDraft([]byte(raw))
	require.NoError(t, err)

	require.Len(t, draft.Units, 2)
	assert.Equal(t, "split by user-visible capability", draft.Rationale)

	u := draft.Units[0]
	assert.Equal(t, "unit-1", u.ID)
	assert.Equal(t, "user", u.Story.Role)
	assert.Equal(t, prd.SizeS, u.Size)
	assert.Len(t, u.AcceptanceCriteria, 1)
	assert.Equal(t, []string{"unit-1"}, draft.Units[1].DependsOn)
}

func TestParseDraft_Aliases(t *testing.T) {
	raw := `{
		"draft": {
			"stories": [
				{
					"title": "Search",
					"description": "Users search the catalog",
					"story": {"role": "shopper", "goal": "to search", "benefit": "I find items"},
					"criteria": ["should return results"],
					"dependencies": ["unit-9"],
					"size": "l"
				}
			]
		}
	}`

	draft, err := ParseDraft([]byte(raw))
	require.NoError(t, err)

	require.Len(t, draft.Units, 1)
	u := draft.Units[0]
	assert.Equal(t, "unit-1", u.ID, "missing id is assigned")
	assert.Equal(t, "Users search the catalog", u.Body)
	assert.Equal(t, "shopper", u.Story.Role)
	assert.Equal(t, []string{"should return results"}, u.AcceptanceCriteria)
	assert.Equal(t, []string{"unit-9"}, u.DependsOn)
	assert.Equal(t, prd.SizeL, u.Size)
}

func TestParseDraft_CodeFence(t *testing.T) {
	raw := "```json\n{\"units\": [{\"id\": \"u1\", \"title\": \"X\"}]}\n```"

	draft, err := ParseDraft([]byte(raw))
	require.NoError(t, err)
	require.Len(t, draft.Units, 1)
	assert.Equal(t, prd.SizeM, draft.Units[0].Size, "invalid size defaults to M")
}

func TestParseDraft_Invalid(t *testing.T) {
	_, err := ParseDraft([]byte("not json at all"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidDraftFormat))
}

func TestParseDraft_Empty(t *testing.T) {
	_, err := ParseDraft([]byte(`{"units": []}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyDraft))
}

func TestScriptedGenerator(t *testing.T) {
	draft := &Draft{Units: []prd.Unit{{ID: "u1", Title: "X"}}}
	gen := NewScriptedGenerator(
		ScriptedResponse{Err: errors.ErrGeneratorUnavailable},
		ScriptedResponse{Draft: draft},
	)

	_, err := gen.Generate(context.Background(), Request{Strategy: "vertical-slice"})
	assert.Error(t, err)

	got, err := gen.Generate(context.Background(), Request{Strategy: "vertical-slice"})
	require.NoError(t, err)
	assert.Equal(t, "u1", got.Units[0].ID)

	// Exhausted scripts repeat the final response.
	got2, err := gen.Generate(context.Background(), Request{})
	require.NoError(t, err)

	// Mutating a returned draft must not leak into the script.
	got2.Units[0].ID = "mutated"
	got3, err := gen.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "u1", got3.Units[0].ID)

	assert.Equal(t, 4, gen.Calls())
	assert.Len(t, gen.Requests(), 4)
}

func TestScriptedGenerator_ContextCancelled(t *testing.T) {
	gen := NewScriptedGenerator(ScriptedResponse{Draft: &Draft{Units: []prd.Unit{{ID: "u1"}}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildPrompt(t *testing.T) {
	req := Request{
		Item: prd.RoadmapItem{
			Title:       "Photo sharing",
			Description: "Share photos with a team",
			Type:        prd.ItemFeature,
			Constraints: prd.Constraints{
				MinUnits:    3,
				MaxUnits:    7,
				MustInclude: []string{"upload"},
				MustExclude: []string{"billing"},
			},
		},
		Strategy:       "vertical-slice",
		StrategyPrompt: "slice through all layers",
		Guidance:       "previous attempt had 9 units",
	}

	prompt := buildPrompt(req)
	assert.Contains(t, prompt, "Photo sharing")
	assert.Contains(t, prompt, "between 3 and 7 units")
	assert.Contains(t, prompt, "must cover: upload")
	assert.Contains(t, prompt, "must not cover: billing")
	assert.Contains(t, prompt, "vertical-slice")
	assert.Contains(t, prompt, "previous attempt had 9 units")
}

func TestNewOpenAIGenerator_RequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIGenerator(OpenAIConfig{}, logging.NopLogger())
	assert.Error(t, err)
}

func TestNewOpenAIGenerator_Defaults(t *testing.T) {
	gen, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "test-key"}, logging.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, defaultModel, gen.model)
	assert.InDelta(t, 0.8, gen.temp, 1e-6)
}
