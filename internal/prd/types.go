// Package prd defines the data model for roadmap decomposition.
//
// A decomposition run takes a single RoadmapItem and produces a set of
// Units (PRDs), a validated DependencyGraph between them, per-unit
// INVESTScores, AntiPatternWarnings, and an aggregate confidence that
// gates whether the result may be auto-accepted.
//
// These are pure data types with no behavior beyond basic accessors and
// serialization helpers. All scoring and graph algorithms live in the
// extract, invest, depgraph, antipattern, and decompose packages.
package prd

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Roadmap Item
// -----------------------------------------------------------------------------

// ItemType categorizes the scale of a roadmap item.
type ItemType string

const (
	// ItemEpic is a large, multi-feature body of work.
	ItemEpic ItemType = "epic"

	// ItemFeature is a single user-facing capability.
	ItemFeature ItemType = "feature"

	// ItemInitiative is a strategic grouping that typically spans epics.
	ItemInitiative ItemType = "initiative"
)

// String returns the string representation of the item type.
func (t ItemType) String() string {
	return string(t)
}

// IsValid returns true if this is a recognized item type.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemEpic, ItemFeature, ItemInitiative:
		return true
	default:
		return false
	}
}

// Constraints bound the shape of an acceptable decomposition.
//
// Zero values mean "no constraint" for the counts; empty slices mean
// no capability requirements.
type Constraints struct {
	// MaxUnits caps how many units the decomposition may contain.
	MaxUnits int `json:"max_units,omitempty"`

	// MinUnits is the fewest units an acceptable decomposition may contain.
	MinUnits int `json:"min_units,omitempty"`

	// MustInclude lists capability names the decomposition must cover.
	MustInclude []string `json:"must_include,omitempty"`

	// MustExclude lists capability names the decomposition must not cover.
	MustExclude []string `json:"must_exclude,omitempty"`
}

// RoadmapItem is the single high-level unit of work submitted for
// decomposition. It is immutable input, created once per request.
type RoadmapItem struct {
	// ID uniquely identifies the roadmap item.
	ID string `json:"id"`

	// Title is a short human-readable name.
	Title string `json:"title"`

	// Description is the free-text body describing the work.
	Description string `json:"description"`

	// Type tags the scale of the item (epic, feature, initiative).
	Type ItemType `json:"type"`

	// Constraints optionally bound the decomposition.
	Constraints Constraints `json:"constraints,omitempty"`
}

// -----------------------------------------------------------------------------
// Units
// -----------------------------------------------------------------------------

// SizeClass is the t-shirt size estimate attached to a unit by the
// draft generator.
type SizeClass string

const (
	SizeXS SizeClass = "XS"
	SizeS  SizeClass = "S"
	SizeM  SizeClass = "M"
	SizeL  SizeClass = "L"
	SizeXL SizeClass = "XL"
)

// IsValid returns true if this is a recognized size class.
func (s SizeClass) IsValid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL:
		return true
	default:
		return false
	}
}

// UserStory is the role/goal/benefit triple of a unit.
type UserStory struct {
	// Role is the actor the unit serves ("registered user", "admin").
	Role string `json:"role"`

	// Goal is what the actor wants to accomplish.
	Goal string `json:"goal"`

	// Benefit is why the actor wants it (the "so that" clause).
	Benefit string `json:"benefit"`
}

// IsEmpty returns true when no part of the story is filled in.
func (s UserStory) IsEmpty() bool {
	return s.Role == "" && s.Goal == "" && s.Benefit == ""
}

// Unit is one decomposed, independently deliverable piece of work (a PRD).
//
// Units are created by the draft generator and mutated only to attach
// computed scores. A unit that fails validation is flagged, never removed
// from the set within a run.
type Unit struct {
	// ID uniquely identifies this unit within the decomposition.
	ID string `json:"id"`

	// Title is a short, human-readable name for the unit.
	Title string `json:"title"`

	// Body is the free-text description of the unit.
	Body string `json:"body"`

	// Story is the user-story triple for the unit.
	Story UserStory `json:"user_story"`

	// AcceptanceCriteria is the ordered list of acceptance-criterion strings.
	AcceptanceCriteria []string `json:"acceptance_criteria"`

	// DependsOn lists unit IDs this unit explicitly declares as dependencies.
	DependsOn []string `json:"depends_on"`

	// Size is the generator's size-class estimate.
	Size SizeClass `json:"size_class"`

	// Score holds the computed INVEST score. Nil until scoring runs.
	Score *INVESTScore `json:"invest_score,omitempty"`
}

// HasDependencies returns true if this unit declares explicit dependencies.
func (u *Unit) HasDependencies() bool {
	return len(u.DependsOn) > 0
}

// WordCount returns the number of whitespace-separated tokens in the body.
func (u *Unit) WordCount() int {
	return len(strings.Fields(u.Body))
}

// Text returns the combined title, body, and rendered user story for
// feature extraction. The rendering matches the "As a ..., I want ...
// so that ..." shape the pattern rules detect.
func (u *Unit) Text() string {
	var b strings.Builder
	b.WriteString(u.Title)
	b.WriteString("\n")
	b.WriteString(u.Body)
	if !u.Story.IsEmpty() {
		fmt.Fprintf(&b, "\nAs a %s, I want %s so that %s.", u.Story.Role, u.Story.Goal, u.Story.Benefit)
	}
	return b.String()
}

// -----------------------------------------------------------------------------
// INVEST Scores
// -----------------------------------------------------------------------------

// Criterion names one of the six INVEST criteria.
type Criterion string

const (
	CriterionIndependent Criterion = "independent"
	CriterionNegotiable  Criterion = "negotiable"
	CriterionValuable    Criterion = "valuable"
	CriterionEstimable   Criterion = "estimable"
	CriterionSmall       Criterion = "small"
	CriterionTestable    Criterion = "testable"
)

// Conflict records a detected trade-off between two criteria, such as
// a unit that scores small but not independent.
type Conflict struct {
	// First and Second are the criteria in tension.
	First  Criterion `json:"first"`
	Second Criterion `json:"second"`

	// Detail explains the conflict in human terms.
	Detail string `json:"detail"`
}

// INVESTScore holds the six sub-scores, the weighted composite, and any
// detected criterion conflicts for a unit. All values lie in [0,1].
//
// Scores are owned by their unit and recomputed whole, never updated
// incrementally.
type INVESTScore struct {
	Independent float64 `json:"independent"`
	Negotiable  float64 `json:"negotiable"`
	Valuable    float64 `json:"valuable"`
	Estimable   float64 `json:"estimable"`
	Small       float64 `json:"small"`
	Testable    float64 `json:"testable"`

	// Composite is the weighted sum of the six sub-scores.
	Composite float64 `json:"composite"`

	// Conflicts lists detected criterion trade-offs.
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// Sub returns the sub-score for a named criterion.
func (s *INVESTScore) Sub(c Criterion) float64 {
	switch c {
	case CriterionIndependent:
		return s.Independent
	case CriterionNegotiable:
		return s.Negotiable
	case CriterionValuable:
		return s.Valuable
	case CriterionEstimable:
		return s.Estimable
	case CriterionSmall:
		return s.Small
	case CriterionTestable:
		return s.Testable
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Dependency Graph
// -----------------------------------------------------------------------------

// EdgeKind distinguishes declared dependencies from inferred ones.
type EdgeKind string

const (
	// EdgeExplicit is a dependency the generator declared on the unit.
	// Explicit edges are authoritative and never removed automatically.
	EdgeExplicit EdgeKind = "explicit"

	// EdgeImplicit is a dependency inferred from shared entity references.
	// Implicit edges carry a confidence and may be removed during cycle
	// repair.
	EdgeImplicit EdgeKind = "implicit"
)

// DependencyEdge is a directed edge in the dependency graph. The edge
// points from the prerequisite unit to the dependent unit.
type DependencyEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"type"`

	// Confidence is meaningful only for implicit edges; explicit edges
	// are serialized with confidence 1.
	Confidence float64 `json:"confidence,omitempty"`
}

// GraphState tracks validation progress of a dependency graph.
type GraphState string

const (
	// GraphUnvalidated is the initial state after construction.
	GraphUnvalidated GraphState = "unvalidated"

	// GraphValid means the cycle scan found no cycles (possibly after repair).
	GraphValid GraphState = "valid"

	// GraphUnresolvable means a cycle remained that repair could not break.
	GraphUnresolvable GraphState = "unresolvable"
)

// DependencyGraph is the set of unit IDs and dependency edges between them.
//
// Invariant: once State is GraphValid the graph contains no directed cycle.
// The cycle resolver is the only component permitted to mutate the edge set
// after construction.
type DependencyGraph struct {
	Nodes []string         `json:"nodes"`
	Edges []DependencyEdge `json:"edges"`
	State GraphState       `json:"state"`

	// EntryPoints lists nodes explicitly marked as graph entry points,
	// exempting them from the orphan check.
	EntryPoints []string `json:"entry_points,omitempty"`
}

// NewDependencyGraph returns an empty graph in the unvalidated state.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{State: GraphUnvalidated}
}

// AddNode adds a node ID if not already present.
func (g *DependencyGraph) AddNode(id string) {
	if !g.HasNode(id) {
		g.Nodes = append(g.Nodes, id)
	}
}

// HasNode reports whether the graph contains the given node.
func (g *DependencyGraph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n == id {
			return true
		}
	}
	return false
}

// HasEdge reports whether an edge from→to already exists, regardless of kind.
func (g *DependencyGraph) HasEdge(from, to string) bool {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// AddEdge appends an edge. Callers are responsible for self-loop and
// duplicate checks; the builder records warnings for rejected edges.
func (g *DependencyGraph) AddEdge(e DependencyEdge) {
	g.Edges = append(g.Edges, e)
}

// RemoveEdge deletes the first edge matching from→to with the given kind.
// Returns true if an edge was removed.
func (g *DependencyGraph) RemoveEdge(from, to string, kind EdgeKind) bool {
	for i, e := range g.Edges {
		if e.From == from && e.To == to && e.Kind == kind {
			g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
			return true
		}
	}
	return false
}

// Adjacency returns the successor map: node → nodes it points to.
func (g *DependencyGraph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n] = nil
	}
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// InDegrees returns the number of incoming edges per node.
func (g *DependencyGraph) InDegrees() map[string]int {
	in := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		in[n] = 0
	}
	for _, e := range g.Edges {
		in[e.To]++
	}
	return in
}

// Mermaid renders the graph as a Mermaid flowchart for summary reports.
// Implicit edges are drawn dashed with their confidence as the label.
func (g *DependencyGraph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	nodes := make([]string, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Strings(nodes)
	for _, n := range nodes {
		fmt.Fprintf(&b, "    %s[%q]\n", mermaidID(n), n)
	}

	edges := make([]DependencyEdge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		if e.Kind == EdgeImplicit {
			fmt.Fprintf(&b, "    %s -. %.1f .-> %s\n", mermaidID(e.From), e.Confidence, mermaidID(e.To))
		} else {
			fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(e.From), mermaidID(e.To))
		}
	}
	return b.String()
}

// mermaidID sanitizes a unit ID for use as a Mermaid node identifier.
func mermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

// -----------------------------------------------------------------------------
// Warnings
// -----------------------------------------------------------------------------

// AntiPatternKind names one of the ten fixed anti-pattern detectors.
type AntiPatternKind string

const (
	PatternHorizontalSlice     AntiPatternKind = "horizontal_slice"
	PatternProcessStepSplit    AntiPatternKind = "process_step_split"
	PatternHappyPathOnly       AntiPatternKind = "happy_path_only"
	PatternCoreFirst           AntiPatternKind = "core_first"
	PatternCRUDSplit           AntiPatternKind = "crud_split"
	PatternTrivialDataSplit    AntiPatternKind = "trivial_data_split"
	PatternInterfaceSplit      AntiPatternKind = "superficial_interface_split"
	PatternBadConjunctionSplit AntiPatternKind = "bad_conjunction_split"
	PatternRoleSplit           AntiPatternKind = "superficial_role_split"
	PatternCriteriaAsUnit      AntiPatternKind = "acceptance_criteria_as_unit"
)

// WarningSeverity grades anti-pattern warnings.
type WarningSeverity string

const (
	SeverityHigh   WarningSeverity = "HIGH"
	SeverityMedium WarningSeverity = "MEDIUM"
)

// AntiPatternWarning flags a known bad decomposition shape.
type AntiPatternWarning struct {
	// Pattern identifies which detector fired.
	Pattern AntiPatternKind `json:"pattern"`

	// Severity is HIGH or MEDIUM.
	Severity WarningSeverity `json:"severity"`

	// UnitIDs lists the affected unit(s), sorted for determinism.
	UnitIDs []string `json:"unit_ids"`

	// Recommendation is a human-readable suggestion for restructuring.
	Recommendation string `json:"recommendation"`
}

// BuilderWarning records a non-fatal condition encountered during graph
// construction, such as a rejected self-loop or duplicate edge.
type BuilderWarning struct {
	Message string          `json:"message"`
	Edge    *DependencyEdge `json:"edge,omitempty"`
	UnitID  string          `json:"unit_id,omitempty"`
}

// -----------------------------------------------------------------------------
// Decomposition Result
// -----------------------------------------------------------------------------

// DecompositionResult is the sole externally visible output of a run.
// It is built once per run and immutable thereafter.
type DecompositionResult struct {
	// ID uniquely identifies this result.
	ID string `json:"id"`

	// ItemID is the roadmap item this result decomposes.
	ItemID string `json:"item_id"`

	// Strategy is the decomposition strategy that produced the draft.
	Strategy string `json:"strategy"`

	// Units is the full unit set with attached INVEST scores.
	Units []Unit `json:"units"`

	// Graph is the validated dependency graph.
	Graph *DependencyGraph `json:"dependency_graph"`

	// AntiPatterns lists all structural warnings found.
	AntiPatterns []AntiPatternWarning `json:"antipatterns"`

	// BuilderWarnings lists non-fatal graph construction warnings.
	BuilderWarnings []BuilderWarning `json:"builder_warnings,omitempty"`

	// Consistency is the cross-sample agreement score in [0,1].
	Consistency float64 `json:"consistency"`

	// Confidence is the aggregate gating scalar in [0,1].
	Confidence float64 `json:"confidence"`

	// RequiresReview is true when confidence fell below the threshold.
	RequiresReview bool `json:"requires_review"`

	// GeneratedAt is the generation timestamp.
	GeneratedAt time.Time `json:"generation_timestamp"`
}

// Unit returns the unit with the given ID, or nil if not present.
func (r *DecompositionResult) Unit(id string) *Unit {
	for i := range r.Units {
		if r.Units[i].ID == id {
			return &r.Units[i]
		}
	}
	return nil
}

// HighSeverityCount returns the number of HIGH severity anti-pattern warnings.
func (r *DecompositionResult) HighSeverityCount() int {
	n := 0
	for _, w := range r.AntiPatterns {
		if w.Severity == SeverityHigh {
			n++
		}
	}
	return n
}

// MediumSeverityCount returns the number of MEDIUM severity warnings.
func (r *DecompositionResult) MediumSeverityCount() int {
	n := 0
	for _, w := range r.AntiPatterns {
		if w.Severity == SeverityMedium {
			n++
		}
	}
	return n
}

// AverageComposite returns the mean composite INVEST score across all
// scored units, or 0 when no unit has been scored.
func (r *DecompositionResult) AverageComposite() float64 {
	sum, n := 0.0, 0
	for i := range r.Units {
		if r.Units[i].Score != nil {
			sum += r.Units[i].Score.Composite
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
