// Package invest scores units against the six-criterion INVEST rubric.
//
// Scoring is a deterministic pure function over a unit and its extracted
// feature bag. Weights and formula constants are passed in explicitly so
// the scorer holds no ambient state and re-running it on an unchanged unit
// yields bit-identical scores.
package invest

import (
	"fmt"
	"strings"

	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/prd"
)

// Weights holds the per-criterion weights for the composite score.
// They are expected to sum to 1; Normalize rescales them if they do not.
type Weights struct {
	Independent float64 `mapstructure:"independent" json:"independent"`
	Negotiable  float64 `mapstructure:"negotiable" json:"negotiable"`
	Valuable    float64 `mapstructure:"valuable" json:"valuable"`
	Estimable   float64 `mapstructure:"estimable" json:"estimable"`
	Small       float64 `mapstructure:"small" json:"small"`
	Testable    float64 `mapstructure:"testable" json:"testable"`
}

// DefaultWeights returns the standard criterion weights.
func DefaultWeights() Weights {
	return Weights{
		Independent: 0.25,
		Negotiable:  0.05,
		Valuable:    0.20,
		Estimable:   0.15,
		Small:       0.15,
		Testable:    0.20,
	}
}

// Sum returns the total of all six weights.
func (w Weights) Sum() float64 {
	return w.Independent + w.Negotiable + w.Valuable + w.Estimable + w.Small + w.Testable
}

// Normalize rescales the weights to sum to 1. Zero weights are returned
// unchanged to avoid dividing by zero.
func (w Weights) Normalize() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return Weights{
		Independent: w.Independent / sum,
		Negotiable:  w.Negotiable / sum,
		Valuable:    w.Valuable / sum,
		Estimable:   w.Estimable / sum,
		Small:       w.Small / sum,
		Testable:    w.Testable / sum,
	}
}

// Formula constants. Kept as named constants rather than inline literals
// so the scoring shape is visible in one place.
const (
	independentKeywordPenalty  = 0.15
	independentExplicitPenalty = 0.20

	valuableRoleTerm    = 0.30
	valuableOutcomeTerm = 0.30
	valuableVerbTerm    = 0.20
	valuableJargonTerm  = 0.20
	jargonDensityCap    = 0.20

	testableCriteriaTerm   = 0.40
	testableStructuredTerm = 0.30
	testableMeasurableTerm = 0.30

	smallCriteriaBudget  = 7
	smallCriteriaPenalty = 0.10
	smallWordBudget      = 500
	smallWordPenalty     = 0.001

	estimableAmbiguousPenalty  = 0.10
	estimableUnresolvedPenalty = 0.20
	estimableUnboundedPenalty  = 0.30

	negotiableMandatePenalty = 0.20

	// Conflict thresholds: a unit that is small but not independent is
	// the classic "too small to stand alone" signature.
	conflictIndependentMax = 0.6
	conflictSmallMin       = 0.8
)

// Score computes the INVEST score for a unit from its feature bag.
// The feature bag must have been extracted from u.Text().
func Score(u *prd.Unit, f extract.Features, w Weights) *prd.INVESTScore {
	s := &prd.INVESTScore{}

	s.Independent = clamp01(1 - min1(
		independentKeywordPenalty*float64(f.DependencyKeywords)+
			independentExplicitPenalty*float64(len(u.DependsOn))))

	s.Valuable = clamp01(
		boolTerm(f.HasRole || u.Story.Role != "", valuableRoleTerm) +
			boolTerm(f.HasOutcome || u.Story.Benefit != "", valuableOutcomeTerm) +
			boolTerm(f.ActionVerbs > 0, valuableVerbTerm) +
			boolTerm(f.TechTermDensity < jargonDensityCap, valuableJargonTerm))

	s.Testable = clamp01(
		boolTerm(len(u.AcceptanceCriteria) > 0, testableCriteriaTerm) +
			testableStructuredTerm*structuredFraction(u.AcceptanceCriteria) +
			boolTerm(hasMeasurable(u, f), testableMeasurableTerm))

	s.Small = clamp01(1 -
		max0(smallCriteriaPenalty*float64(len(u.AcceptanceCriteria)-smallCriteriaBudget)) -
		max0(smallWordPenalty*float64(u.WordCount()-smallWordBudget)))

	s.Estimable = clamp01(1 -
		estimableAmbiguousPenalty*float64(f.AmbiguousTerms) -
		estimableUnresolvedPenalty*float64(f.UnresolvedMarkers) -
		boolTerm(f.ScopeUnbounded, estimableUnboundedPenalty))

	s.Negotiable = clamp01(1 - boolTerm(f.PrescriptiveMandate, negotiableMandatePenalty))

	s.Composite = clamp01(
		w.Independent*s.Independent +
			w.Negotiable*s.Negotiable +
			w.Valuable*s.Valuable +
			w.Estimable*s.Estimable +
			w.Small*s.Small +
			w.Testable*s.Testable)

	if s.Independent < conflictIndependentMax && s.Small > conflictSmallMin {
		s.Conflicts = append(s.Conflicts, prd.Conflict{
			First:  prd.CriterionIndependent,
			Second: prd.CriterionSmall,
			Detail: fmt.Sprintf("unit is small (%.2f) but not independent (%.2f); it may be too small to stand alone", s.Small, s.Independent),
		})
	}

	return s
}

// structuredFraction returns the fraction of acceptance criteria that
// follow a Given/When/Then, should, or verify shape.
func structuredFraction(criteria []string) float64 {
	if len(criteria) == 0 {
		return 0
	}
	n := 0
	for _, c := range criteria {
		if extract.IsStructuredCriterion(c) {
			n++
		}
	}
	return float64(n) / float64(len(criteria))
}

// hasMeasurable checks for a measurable-outcome token in the unit body
// features or anywhere in its acceptance criteria.
func hasMeasurable(u *prd.Unit, f extract.Features) bool {
	if f.Measurables > 0 {
		return true
	}
	if len(u.AcceptanceCriteria) == 0 {
		return false
	}
	ac := extract.Scan(strings.Join(u.AcceptanceCriteria, "\n"))
	return ac.Measurables > 0
}

func boolTerm(b bool, weight float64) float64 {
	if b {
		return weight
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
