package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/slicer/internal/prd"
)

func sampleResult() *prd.DecompositionResult {
	g := prd.NewDependencyGraph()
	g.AddNode("u1")
	g.AddNode("u2")
	g.AddEdge(prd.DependencyEdge{From: "u1", To: "u2", Kind: prd.EdgeExplicit, Confidence: 1})
	g.AddEdge(prd.DependencyEdge{From: "u1", To: "u2", Kind: prd.EdgeImplicit, Confidence: 0.9})
	g.State = prd.GraphValid

	return &prd.DecompositionResult{
		ID:       "res-1",
		ItemID:   "item-1",
		Strategy: "vertical-slice",
		Units: []prd.Unit{
			{
				ID:    "u1",
				Title: "Upload a photo",
				Body:  "Users can upload a photo to an album.",
				Story: prd.UserStory{Role: "member", Goal: "upload a photo", Benefit: "my team can see it"},
				AcceptanceCriteria: []string{
					"Given a valid image, when I upload it, then it appears in the album",
				},
				Size: prd.SizeM,
				Score: &prd.INVESTScore{
					Independent: 0.9, Negotiable: 0.8, Valuable: 1.0,
					Estimable: 0.7, Small: 0.8, Testable: 0.9, Composite: 0.85,
				},
			},
			{
				ID:        "u2",
				Title:     "Browse the album",
				Size:      prd.SizeS,
				DependsOn: []string{"u1"},
			},
		},
		Graph: g,
		AntiPatterns: []prd.AntiPatternWarning{
			{
				Pattern:        prd.PatternHappyPathOnly,
				Severity:       prd.SeverityMedium,
				UnitIDs:        []string{"u2"},
				Recommendation: "Add error and edge case criteria",
			},
			{
				Pattern:        prd.PatternHorizontalSlice,
				Severity:       prd.SeverityHigh,
				UnitIDs:        []string{"u1"},
				Recommendation: "Slice vertically through the stack",
			},
		},
		BuilderWarnings: []prd.BuilderWarning{
			{Message: "rejected self-loop on u1", UnitID: "u1"},
		},
		Consistency:    0.92,
		Confidence:     0.81,
		RequiresReview: false,
		GeneratedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSummaryPlain(t *testing.T) {
	res := sampleResult()
	out := NewRenderer(false).Summary(res)

	assert.Contains(t, out, "Decomposition res-1")
	assert.Contains(t, out, "item-1")
	assert.Contains(t, out, "vertical-slice")
	assert.Contains(t, out, "0.81")
	assert.Contains(t, out, "not required")
	assert.Contains(t, out, "Units (2)")
	assert.Contains(t, out, "Upload a photo")
	assert.Contains(t, out, "1 explicit, 1 implicit")
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "Warnings (2)")
	assert.Contains(t, out, "rejected self-loop on u1")

	// Plain mode carries no escape sequences
	assert.NotContains(t, out, "\x1b[")
}

func TestSummaryOrdersWarningsBySeverity(t *testing.T) {
	out := NewRenderer(false).Summary(sampleResult())

	high := strings.Index(out, "horizontal_slice")
	medium := strings.Index(out, "happy_path_only")
	require.Positive(t, high)
	require.Positive(t, medium)
	assert.Less(t, high, medium, "HIGH warnings should be listed first")
}

func TestSummaryReviewRequired(t *testing.T) {
	res := sampleResult()
	res.Confidence = 0.42
	res.RequiresReview = true

	out := NewRenderer(false).Summary(res)
	assert.Contains(t, out, "required")
	assert.NotContains(t, out, "not required")
}

func TestSummaryNilGraph(t *testing.T) {
	res := sampleResult()
	res.Graph = nil

	out := NewRenderer(false).Summary(res)
	assert.Contains(t, out, "absent")
	assert.Contains(t, out, "0 explicit, 0 implicit")
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleResult())

	assert.Contains(t, out, "# Decomposition res-1")
	assert.Contains(t, out, "- **Strategy:** vertical-slice")
	assert.Contains(t, out, "### u1: Upload a photo")
	assert.Contains(t, out, "> As a member, I want upload a photo so that my team can see it.")
	assert.Contains(t, out, "Given a valid image")
	assert.Contains(t, out, "**Depends on:** u1")
	assert.Contains(t, out, "| 0.90 | 0.80 | 1.00 | 0.70 | 0.80 | 0.90 | **0.85** |")
	assert.Contains(t, out, "```mermaid")
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "u1 --> u2")
	assert.Contains(t, out, "| HIGH | horizontal_slice | u1 |")
}

func TestMarkdownEscapesTableCells(t *testing.T) {
	res := sampleResult()
	res.AntiPatterns[0].Recommendation = "split a | b\ninto two"

	out := Markdown(res)
	assert.Contains(t, out, `split a \| b into two`)
}

func TestMarkdownNilGraph(t *testing.T) {
	res := sampleResult()
	res.Graph = nil

	out := Markdown(res)
	assert.Contains(t, out, "No graph was produced.")
}

func TestWriteAndReadJSON(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))
	assert.Contains(t, buf.String(), `"id": "res-1"`)
	assert.Contains(t, buf.String(), `"requires_review": false`)

	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteJSONFile(path, res))

	got, err := ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, res.Confidence, got.Confidence)
	assert.Len(t, got.Units, 2)
	require.NotNil(t, got.Graph)
	assert.Equal(t, prd.GraphValid, got.Graph.State)
}

func TestReadJSONFileErrors(t *testing.T) {
	_, err := ReadJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, WriteJSONFile(path, sampleResult()))

	badPath := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(badPath, []byte("{not json"), 0o644))
	_, err = ReadJSONFile(badPath)
	assert.Error(t, err)
}
