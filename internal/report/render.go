// Package report renders decomposition results for humans and machines:
// a styled terminal summary, a markdown report with an embedded Mermaid
// dependency graph, and a stable JSON form for downstream tooling.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/slicekit/slicer/internal/prd"
)

const (
	maxTitleWidth  = 48
	maxAdviceWidth = 96
)

// Renderer produces the terminal summary. Color can be disabled for
// pipes and CI logs.
type Renderer struct {
	color bool

	titleStyle   lipgloss.Style
	labelStyle   lipgloss.Style
	goodStyle    lipgloss.Style
	warnStyle    lipgloss.Style
	badStyle     lipgloss.Style
	subtleStyle  lipgloss.Style
	sectionStyle lipgloss.Style
}

// NewRenderer returns a Renderer. When color is false all styling is
// stripped and output is plain text.
func NewRenderer(color bool) *Renderer {
	r := &Renderer{color: color}
	if color {
		r.titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		r.labelStyle = lipgloss.NewStyle().Bold(true)
		r.goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		r.warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		r.badStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		r.subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		r.sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	} else {
		plain := lipgloss.NewStyle()
		r.titleStyle = plain
		r.labelStyle = plain
		r.goodStyle = plain
		r.warnStyle = plain
		r.badStyle = plain
		r.subtleStyle = plain
		r.sectionStyle = plain
	}
	return r
}

// Summary renders the one-screen terminal view of a result.
func (r *Renderer) Summary(res *prd.DecompositionResult) string {
	var b strings.Builder

	b.WriteString(r.titleStyle.Render(fmt.Sprintf("Decomposition %s", res.ID)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", r.labelStyle.Render("Item:"), res.ItemID)
	fmt.Fprintf(&b, "%s %s\n", r.labelStyle.Render("Strategy:"), res.Strategy)
	fmt.Fprintf(&b, "%s %s\n", r.labelStyle.Render("Confidence:"), r.confidence(res.Confidence))
	fmt.Fprintf(&b, "%s %.2f\n", r.labelStyle.Render("Consistency:"), res.Consistency)
	fmt.Fprintf(&b, "%s %s\n", r.labelStyle.Render("Review:"), r.review(res.RequiresReview))

	b.WriteString("\n")
	b.WriteString(r.sectionStyle.Render(fmt.Sprintf("Units (%d)", len(res.Units))))
	b.WriteString("\n")
	for _, u := range res.Units {
		composite := "-"
		if u.Score != nil {
			composite = fmt.Sprintf("%.2f", u.Score.Composite)
		}
		fmt.Fprintf(&b, "  %s  %-*s %s %s\n",
			u.ID,
			maxTitleWidth, truncate(u.Title, maxTitleWidth),
			r.subtleStyle.Render(string(u.Size)),
			composite)
	}

	b.WriteString("\n")
	b.WriteString(r.sectionStyle.Render("Dependency graph"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", r.labelStyle.Render("State:"), r.graphState(res.Graph))
	explicit, implicit := edgeCounts(res.Graph)
	fmt.Fprintf(&b, "  %s %d explicit, %d implicit\n", r.labelStyle.Render("Edges:"), explicit, implicit)

	if len(res.AntiPatterns) > 0 {
		b.WriteString("\n")
		b.WriteString(r.sectionStyle.Render(fmt.Sprintf("Warnings (%d)", len(res.AntiPatterns))))
		b.WriteString("\n")
		for _, w := range sortedWarnings(res.AntiPatterns) {
			sev := r.warnStyle.Render(string(w.Severity))
			if w.Severity == prd.SeverityHigh {
				sev = r.badStyle.Render(string(w.Severity))
			}
			fmt.Fprintf(&b, "  [%s] %s: %s\n", sev, w.Pattern, strings.Join(w.UnitIDs, ", "))
			fmt.Fprintf(&b, "         %s\n", truncateANSI(r.subtleStyle.Render(w.Recommendation), maxAdviceWidth))
		}
	}

	if len(res.BuilderWarnings) > 0 {
		b.WriteString("\n")
		b.WriteString(r.sectionStyle.Render(fmt.Sprintf("Graph notes (%d)", len(res.BuilderWarnings))))
		b.WriteString("\n")
		for _, w := range res.BuilderWarnings {
			fmt.Fprintf(&b, "  %s\n", r.subtleStyle.Render(w.Message))
		}
	}

	return b.String()
}

func (r *Renderer) confidence(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	switch {
	case v >= 0.7:
		return r.goodStyle.Render(s)
	case v >= 0.5:
		return r.warnStyle.Render(s)
	default:
		return r.badStyle.Render(s)
	}
}

func (r *Renderer) review(required bool) string {
	if required {
		return r.warnStyle.Render("required")
	}
	return r.goodStyle.Render("not required")
}

func (r *Renderer) graphState(g *prd.DependencyGraph) string {
	if g == nil {
		return r.subtleStyle.Render("absent")
	}
	switch g.State {
	case prd.GraphValid:
		return r.goodStyle.Render(string(g.State))
	case prd.GraphUnresolvable:
		return r.badStyle.Render(string(g.State))
	default:
		return r.warnStyle.Render(string(g.State))
	}
}

func edgeCounts(g *prd.DependencyGraph) (explicit, implicit int) {
	if g == nil {
		return 0, 0
	}
	for _, e := range g.Edges {
		if e.Kind == prd.EdgeExplicit {
			explicit++
		} else {
			implicit++
		}
	}
	return explicit, implicit
}

// sortedWarnings orders HIGH before MEDIUM, then by pattern name, so the
// summary is stable across runs.
func sortedWarnings(warnings []prd.AntiPatternWarning) []prd.AntiPatternWarning {
	out := make([]prd.AntiPatternWarning, len(warnings))
	copy(out, warnings)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity == prd.SeverityHigh
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}
