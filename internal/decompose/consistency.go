package decompose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slicekit/slicer/internal/generator"
)

// Consistency scores structural agreement across candidate drafts in
// [0,1]. Three signals carry equal weight: unit-count agreement,
// title/role overlap, and dependency-shape overlap. The comparison is
// order-insensitive over samples and pairs, so identical drafts score
// exactly 1 regardless of arrival order.
func Consistency(drafts []*generator.Draft) float64 {
	if len(drafts) < 2 {
		return 1
	}

	total, pairs := 0.0, 0
	for i := 0; i < len(drafts); i++ {
		for j := i + 1; j < len(drafts); j++ {
			total += pairScore(drafts[i], drafts[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func pairScore(a, b *generator.Draft) float64 {
	count := countAgreement(len(a.Units), len(b.Units))
	title := jaccard(titleKeys(a), titleKeys(b))
	role := jaccard(roleKeys(a), roleKeys(b))
	dep := jaccard(edgeKeys(a), edgeKeys(b))
	return (count + (title+role)/2 + dep) / 3
}

func countAgreement(a, b int) float64 {
	if a == 0 && b == 0 {
		return 1
	}
	min, max := a, b
	if min > max {
		min, max = max, min
	}
	if max == 0 {
		return 0
	}
	return float64(min) / float64(max)
}

// jaccard treats two empty sets as full agreement: samples that both
// declare nothing have not diverged.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter, union := 0, 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union = len(a) + len(b) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// titleKey normalizes a title so samples that phrase the same unit with
// different casing or punctuation still match.
func titleKey(title string) string {
	toks := strings.Fields(strings.ToLower(title))
	for i, t := range toks {
		toks[i] = strings.Trim(t, ".,:;()\"'")
	}
	return strings.Join(toks, " ")
}

func titleKeys(d *generator.Draft) map[string]bool {
	keys := make(map[string]bool, len(d.Units))
	for i := range d.Units {
		if k := titleKey(d.Units[i].Title); k != "" {
			keys[k] = true
		}
	}
	return keys
}

func roleKeys(d *generator.Draft) map[string]bool {
	keys := make(map[string]bool)
	for i := range d.Units {
		if r := strings.ToLower(strings.TrimSpace(d.Units[i].Story.Role)); r != "" {
			keys[r] = true
		}
	}
	return keys
}

// edgeKeys renders each declared dependency as "from => to" over title
// keys, since unit ids are not comparable across samples.
func edgeKeys(d *generator.Draft) map[string]bool {
	byID := make(map[string]string, len(d.Units))
	for i := range d.Units {
		byID[d.Units[i].ID] = titleKey(d.Units[i].Title)
	}

	keys := make(map[string]bool)
	for i := range d.Units {
		to := titleKey(d.Units[i].Title)
		for _, dep := range d.Units[i].DependsOn {
			from, ok := byID[dep]
			if !ok || from == "" || to == "" {
				continue
			}
			keys[from+" => "+to] = true
		}
	}
	return keys
}

// DivergenceSummary describes how the samples disagree, phrased as
// guidance for a regeneration round.
func DivergenceSummary(drafts []*generator.Draft) string {
	var b strings.Builder

	counts := make([]string, len(drafts))
	distinct := make(map[int]bool)
	for i, d := range drafts {
		counts[i] = fmt.Sprintf("%d", len(d.Units))
		distinct[len(d.Units)] = true
	}
	if len(distinct) > 1 {
		fmt.Fprintf(&b, "Earlier attempts disagreed on unit count (%s); converge on one count.\n",
			strings.Join(counts, ", "))
	}

	// Titles that only some samples proposed are the contested ones.
	seen := make(map[string]int)
	for _, d := range drafts {
		for k := range titleKeys(d) {
			seen[k]++
		}
	}
	var contested []string
	for k, n := range seen {
		if n < len(drafts) {
			contested = append(contested, k)
		}
	}
	if len(contested) > 0 {
		sort.Strings(contested)
		if len(contested) > 5 {
			contested = contested[:5]
		}
		fmt.Fprintf(&b, "These units appeared in only some attempts; decide whether each belongs: %s.\n",
			strings.Join(contested, "; "))
	}

	if b.Len() == 0 {
		return "Earlier attempts diverged structurally; produce a single coherent decomposition."
	}
	return strings.TrimSpace(b.String())
}
