package report

import (
	"fmt"
	"strings"

	"github.com/slicekit/slicer/internal/prd"
)

// Markdown renders a full decomposition report as a markdown document,
// including per-unit stories, acceptance criteria, INVEST scores, the
// warning list, and the dependency graph as a Mermaid flowchart.
func Markdown(res *prd.DecompositionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Decomposition %s\n\n", res.ID)
	fmt.Fprintf(&b, "- **Item:** %s\n", res.ItemID)
	fmt.Fprintf(&b, "- **Strategy:** %s\n", res.Strategy)
	fmt.Fprintf(&b, "- **Confidence:** %.2f\n", res.Confidence)
	fmt.Fprintf(&b, "- **Consistency:** %.2f\n", res.Consistency)
	fmt.Fprintf(&b, "- **Requires review:** %v\n", res.RequiresReview)
	fmt.Fprintf(&b, "- **Generated:** %s\n\n", res.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Units\n\n")
	for i := range res.Units {
		writeUnit(&b, &res.Units[i])
	}

	b.WriteString("## Dependency Graph\n\n")
	if res.Graph != nil {
		fmt.Fprintf(&b, "State: `%s`\n\n", res.Graph.State)
		b.WriteString("```mermaid\n")
		b.WriteString(res.Graph.Mermaid())
		b.WriteString("```\n\n")
	} else {
		b.WriteString("No graph was produced.\n\n")
	}

	if len(res.AntiPatterns) > 0 {
		b.WriteString("## Warnings\n\n")
		b.WriteString("| Severity | Pattern | Units | Recommendation |\n")
		b.WriteString("|----------|---------|-------|----------------|\n")
		for _, w := range sortedWarnings(res.AntiPatterns) {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				w.Severity, w.Pattern, strings.Join(w.UnitIDs, ", "), escapeCell(w.Recommendation))
		}
		b.WriteString("\n")
	}

	if len(res.BuilderWarnings) > 0 {
		b.WriteString("## Graph Notes\n\n")
		for _, w := range res.BuilderWarnings {
			fmt.Fprintf(&b, "- %s\n", w.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeUnit(b *strings.Builder, u *prd.Unit) {
	fmt.Fprintf(b, "### %s: %s\n\n", u.ID, u.Title)

	if !u.Story.IsEmpty() {
		fmt.Fprintf(b, "> As a %s, I want %s so that %s.\n\n", u.Story.Role, u.Story.Goal, u.Story.Benefit)
	}
	if u.Body != "" {
		fmt.Fprintf(b, "%s\n\n", u.Body)
	}
	fmt.Fprintf(b, "**Size:** %s\n\n", u.Size)

	if len(u.AcceptanceCriteria) > 0 {
		b.WriteString("**Acceptance criteria:**\n\n")
		for _, c := range u.AcceptanceCriteria {
			fmt.Fprintf(b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	if len(u.DependsOn) > 0 {
		fmt.Fprintf(b, "**Depends on:** %s\n\n", strings.Join(u.DependsOn, ", "))
	}

	if u.Score != nil {
		b.WriteString("| I | N | V | E | S | T | Composite |\n")
		b.WriteString("|---|---|---|---|---|---|-----------|\n")
		fmt.Fprintf(b, "| %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | **%.2f** |\n\n",
			u.Score.Independent, u.Score.Negotiable, u.Score.Valuable,
			u.Score.Estimable, u.Score.Small, u.Score.Testable, u.Score.Composite)
		for _, c := range u.Score.Conflicts {
			fmt.Fprintf(b, "- Conflict (%s vs %s): %s\n", c.First, c.Second, c.Detail)
		}
		if len(u.Score.Conflicts) > 0 {
			b.WriteString("\n")
		}
	}
}

// escapeCell keeps recommendation text from breaking the markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
