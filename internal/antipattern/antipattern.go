// Package antipattern flags known bad decomposition shapes.
//
// Ten independent boolean detectors run over the unit set and graph. Each
// yields zero or one warning naming the affected units. Detectors never
// mutate their input and all ten always run, so a unit set can accumulate
// multiple warnings. The battery is a declarative rule table; adding a
// detector means adding a row, not new control flow.
package antipattern

import (
	"sort"
	"strings"

	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/prd"
)

// Input is the read-only view a detector sees.
type Input struct {
	Units    []prd.Unit
	Features map[string]extract.Features
	Graph    *prd.DependencyGraph
}

// detectFunc returns the IDs of offending units, or nil.
type detectFunc func(in Input) []string

type rule struct {
	kind           prd.AntiPatternKind
	severity       prd.WarningSeverity
	recommendation string
	detect         detectFunc
}

// jargonDensityFloor marks a unit as technical-jargon-dominated.
const jargonDensityFloor = 0.2

// testVocabDensityFloor marks a unit body as test-style rather than a
// feature description.
const testVocabDensityFloor = 0.1

var rules = []rule{
	{
		kind:           prd.PatternHorizontalSlice,
		severity:       prd.SeverityHigh,
		recommendation: "Reslice vertically: each unit should cut through UI, API, and data to deliver user-visible value.",
		detect:         detectHorizontalSlice,
	},
	{
		kind:           prd.PatternProcessStepSplit,
		severity:       prd.SeverityMedium,
		recommendation: "Merge this step into the unit that delivers its outcome; a navigation or setup step has no standalone value.",
		detect:         detectProcessStepSplit,
	},
	{
		kind:           prd.PatternHappyPathOnly,
		severity:       prd.SeverityHigh,
		recommendation: "Add error and edge-case handling to the unit or split the unhappy path into an explicit follow-up.",
		detect:         detectHappyPathOnly,
	},
	{
		kind:           prd.PatternCoreFirst,
		severity:       prd.SeverityHigh,
		recommendation: "Reframe infrastructure work around the first user-visible capability that needs it.",
		detect:         detectCoreFirst,
	},
	{
		kind:           prd.PatternCRUDSplit,
		severity:       prd.SeverityMedium,
		recommendation: "Combine CRUD operations on the same entity into one unit, or split by user workflow instead of verb.",
		detect:         detectCRUDSplit,
	},
	{
		kind:           prd.PatternTrivialDataSplit,
		severity:       prd.SeverityMedium,
		recommendation: "Units that differ only by a field name should be one unit handling all fields.",
		detect:         detectTrivialDataSplit,
	},
	{
		kind:           prd.PatternInterfaceSplit,
		severity:       prd.SeverityMedium,
		recommendation: "Deliver one platform end to end first instead of splitting identical work per platform.",
		detect:         detectInterfaceSplit,
	},
	{
		kind:           prd.PatternBadConjunctionSplit,
		severity:       prd.SeverityMedium,
		recommendation: "A pure setup action is not a deliverable slice; attach it to the capability it enables.",
		detect:         detectBadConjunctionSplit,
	},
	{
		kind:           prd.PatternRoleSplit,
		severity:       prd.SeverityMedium,
		recommendation: "Identical functionality for different roles is one unit; split by role only when behavior differs.",
		detect:         detectRoleSplit,
	},
	{
		kind:           prd.PatternCriteriaAsUnit,
		severity:       prd.SeverityMedium,
		recommendation: "This reads like an acceptance criterion; fold it into its parent unit's criteria list.",
		detect:         detectCriteriaAsUnit,
	},
}

// Detect runs the full battery and returns all warnings. Output is
// deterministic for a given unit set and graph regardless of unit order:
// affected IDs are sorted and warnings follow the fixed rule-table order.
func Detect(units []prd.Unit, features map[string]extract.Features, graph *prd.DependencyGraph) []prd.AntiPatternWarning {
	in := Input{Units: units, Features: features, Graph: graph}

	var warnings []prd.AntiPatternWarning
	for _, r := range rules {
		ids := r.detect(in)
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		warnings = append(warnings, prd.AntiPatternWarning{
			Pattern:        r.kind,
			Severity:       r.severity,
			UnitIDs:        ids,
			Recommendation: r.recommendation,
		})
	}
	return warnings
}

// -----------------------------------------------------------------------------
// Per-unit detectors
// -----------------------------------------------------------------------------

func detectHorizontalSlice(in Input) []string {
	var ids []string
	for i := range in.Units {
		f := in.Features[in.Units[i].ID]
		if f.DominantLayer() != "" && f.TechTermDensity >= jargonDensityFloor {
			ids = append(ids, in.Units[i].ID)
		}
	}
	return ids
}

func detectProcessStepSplit(in Input) []string {
	var ids []string
	for i := range in.Units {
		f := in.Features[in.Units[i].ID]
		if f.SetupAction && !f.HasOutcome && f.Measurables == 0 {
			ids = append(ids, in.Units[i].ID)
		}
	}
	return ids
}

func detectHappyPathOnly(in Input) []string {
	var ids []string
	for i := range in.Units {
		f := in.Features[in.Units[i].ID]
		if f.HappyPathLanguage && !f.ErrorVocab {
			ids = append(ids, in.Units[i].ID)
		}
	}
	return ids
}

func detectCoreFirst(in Input) []string {
	var ids []string
	for i := range in.Units {
		f := in.Features[in.Units[i].ID]
		if f.CoreVocab > 0 && !f.HasRole && !f.HasOutcome {
			ids = append(ids, in.Units[i].ID)
		}
	}
	return ids
}

func detectBadConjunctionSplit(in Input) []string {
	var ids []string
	for i := range in.Units {
		f := in.Features[in.Units[i].ID]
		if f.SetupAction && !f.HasOutcome && f.ActionVerbs == 0 {
			ids = append(ids, in.Units[i].ID)
		}
	}
	return ids
}

func detectCriteriaAsUnit(in Input) []string {
	var ids []string
	for i := range in.Units {
		f := in.Features[in.Units[i].ID]
		if f.WordCount == 0 || f.TestVocab == 0 {
			continue
		}
		if float64(f.TestVocab)/float64(f.WordCount) >= testVocabDensityFloor {
			ids = append(ids, in.Units[i].ID)
		}
	}
	return ids
}

// -----------------------------------------------------------------------------
// Pairwise detectors
// -----------------------------------------------------------------------------

func detectCRUDSplit(in Input) []string {
	// Group units whose titles are identical once CRUD verbs are removed.
	// Two or more units in a group with distinct CRUD verbs is a split by
	// verb, not by value.
	groups := make(map[string][]int)
	for i := range in.Units {
		stripped, verbs := splitTitle(in.Units[i].Title, isCRUDVerb)
		if len(verbs) == 0 || stripped == "" {
			continue
		}
		groups[stripped] = append(groups[stripped], i)
	}

	idSet := make(map[string]bool)
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		verbs := make(map[string]bool)
		for _, i := range members {
			_, vs := splitTitle(in.Units[i].Title, isCRUDVerb)
			for _, v := range vs {
				verbs[v] = true
			}
		}
		if len(verbs) < 2 {
			continue
		}
		for _, i := range members {
			idSet[in.Units[i].ID] = true
		}
	}
	return keys(idSet)
}

func detectTrivialDataSplit(in Input) []string {
	idSet := make(map[string]bool)
	forEachPair(in.Units, func(a, b *prd.Unit) {
		da, db, n := tokenDiff(a.Title, b.Title)
		if n != 1 {
			return
		}
		// One differing token that is neither a verb split nor a platform
		// split means the units vary only by a data field.
		if isCRUDVerb(da) || isCRUDVerb(db) || isPlatform(da) || isPlatform(db) {
			return
		}
		idSet[a.ID] = true
		idSet[b.ID] = true
	})
	return keys(idSet)
}

func detectInterfaceSplit(in Input) []string {
	idSet := make(map[string]bool)
	forEachPair(in.Units, func(a, b *prd.Unit) {
		da, db, n := tokenDiff(a.Title, b.Title)
		if n != 1 || !isPlatform(da) || !isPlatform(db) {
			return
		}
		idSet[a.ID] = true
		idSet[b.ID] = true
	})
	return keys(idSet)
}

func detectRoleSplit(in Input) []string {
	idSet := make(map[string]bool)
	forEachPair(in.Units, func(a, b *prd.Unit) {
		if a.Story.Goal == "" || a.Story.Goal != b.Story.Goal {
			return
		}
		fa, fb := in.Features[a.ID], in.Features[b.ID]
		if fa.HasRole && fb.HasRole && fa.Role != fb.Role {
			idSet[a.ID] = true
			idSet[b.ID] = true
		}
	})
	return keys(idSet)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

var crudTitleVerbs = map[string]bool{
	"create": true, "add": true, "generate": true,
	"read": true, "view": true, "list": true, "display": true, "fetch": true,
	"update": true, "edit": true, "modify": true, "change": true,
	"delete": true, "remove": true, "archive": true,
}

var platformTokens = map[string]bool{"web": true, "mobile": true, "desktop": true}

func isCRUDVerb(tok string) bool { return crudTitleVerbs[tok] }
func isPlatform(tok string) bool { return platformTokens[tok] }

// splitTitle lowercases and tokenizes a title, removing tokens matching
// the predicate. Returns the joined remainder and the removed tokens.
func splitTitle(title string, strip func(string) bool) (string, []string) {
	var kept, removed []string
	for _, tok := range titleTokens(title) {
		if strip(tok) {
			removed = append(removed, tok)
		} else {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " "), removed
}

// tokenDiff compares two titles token by token. Returns the first
// differing token from each and the number of differing positions;
// n is -1 when the titles have different lengths.
func tokenDiff(a, b string) (string, string, int) {
	ta, tb := titleTokens(a), titleTokens(b)
	if len(ta) != len(tb) {
		return "", "", -1
	}
	var da, db string
	n := 0
	for i := range ta {
		if ta[i] != tb[i] {
			if n == 0 {
				da, db = ta[i], tb[i]
			}
			n++
		}
	}
	return da, db, n
}

func titleTokens(title string) []string {
	raw := strings.Fields(strings.ToLower(title))
	toks := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(t, ".,:;()\"'")
		if t != "" {
			toks = append(toks, t)
		}
	}
	return toks
}

func forEachPair(units []prd.Unit, fn func(a, b *prd.Unit)) {
	for i := range units {
		for j := i + 1; j < len(units); j++ {
			fn(&units[i], &units[j])
		}
	}
}

func keys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
