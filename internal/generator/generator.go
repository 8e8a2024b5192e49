// Package generator defines the boundary to the external draft generator.
//
// The engine treats the generator as an opaque, fallible, non-deterministic
// capability: it accepts a roadmap item plus strategy guidance and returns
// a candidate decomposition. Two calls never guarantee comparable output;
// the orchestrator owns sampling and consistency comparison.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/prd"
)

// Request carries one draft generation call.
type Request struct {
	// Item is the roadmap item to decompose.
	Item prd.RoadmapItem

	// Strategy is the selected decomposition strategy tag.
	Strategy string

	// StrategyPrompt is the strategy-specific prompt guidance.
	StrategyPrompt string

	// Guidance carries prior feedback for regeneration rounds, such as a
	// divergence summary or a unit-count correction. Empty on first rounds.
	Guidance string
}

// Draft is one candidate decomposition returned by the generator.
type Draft struct {
	Units     []prd.Unit
	Rationale string
}

// Generator produces candidate decompositions.
type Generator interface {
	// Generate returns one candidate draft. Implementations should honor
	// ctx cancellation and deadlines; a failed or timed-out call returns
	// an error, never a partial draft.
	Generate(ctx context.Context, req Request) (*Draft, error)
}

// -----------------------------------------------------------------------------
// Draft parsing
// -----------------------------------------------------------------------------

// Generators in the wild disagree on field names and wrapping, so the
// payload accepts common aliases and a nested "draft" envelope.
type draftPayload struct {
	Draft     *draftPayload `json:"draft,omitempty"`
	Units     []unitPayload `json:"units"`
	Stories   []unitPayload `json:"stories"`
	Rationale string        `json:"rationale"`
}

type unitPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Description string `json:"description"`

	Story      *storyPayload `json:"user_story"`
	StoryAlias *storyPayload `json:"story"`

	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Criteria           []string `json:"criteria"`

	DependsOn    []string `json:"depends_on"`
	Depends      []string `json:"depends"`
	Dependencies []string `json:"dependencies"`

	Size      string `json:"size_class"`
	SizeAlias string `json:"size"`
}

type storyPayload struct {
	Role    string `json:"role"`
	Goal    string `json:"goal"`
	Benefit string `json:"benefit"`
}

// ParseDraft decodes a generator response into a Draft. It tolerates a
// surrounding markdown code fence, a nested "draft" wrapper, and the
// field aliases generators commonly emit. Units without an id are
// assigned sequential ones.
func ParseDraft(raw []byte) (*Draft, error) {
	cleaned := stripFence(raw)

	var payload draftPayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDraftFormat, err.Error())
	}
	if payload.Draft != nil {
		payload = *payload.Draft
	}

	raws := payload.Units
	if len(raws) == 0 {
		raws = payload.Stories
	}
	if len(raws) == 0 {
		return nil, errors.ErrEmptyDraft
	}

	draft := &Draft{Rationale: payload.Rationale}
	for i, up := range raws {
		draft.Units = append(draft.Units, up.toUnit(i))
	}
	return draft, nil
}

func (up unitPayload) toUnit(index int) prd.Unit {
	u := prd.Unit{
		ID:                 up.ID,
		Title:              up.Title,
		Body:               firstNonEmpty(up.Body, up.Description),
		AcceptanceCriteria: up.AcceptanceCriteria,
		DependsOn:          up.DependsOn,
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("unit-%d", index+1)
	}
	if len(u.AcceptanceCriteria) == 0 {
		u.AcceptanceCriteria = up.Criteria
	}
	if len(u.DependsOn) == 0 {
		u.DependsOn = firstNonEmptySlice(up.Depends, up.Dependencies)
	}

	story := up.Story
	if story == nil {
		story = up.StoryAlias
	}
	if story != nil {
		u.Story = prd.UserStory{Role: story.Role, Goal: story.Goal, Benefit: story.Benefit}
	}

	size := prd.SizeClass(strings.ToUpper(firstNonEmpty(up.Size, up.SizeAlias)))
	if !size.IsValid() {
		size = prd.SizeM
	}
	u.Size = size
	return u
}

// stripFence removes a surrounding ```json ... ``` fence if present.
func stripFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptySlice(slices ...[]string) []string {
	for _, s := range slices {
		if len(s) > 0 {
			return s
		}
	}
	return nil
}
