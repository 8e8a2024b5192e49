package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/slicekit/slicer/internal/antipattern"
	"github.com/slicekit/slicer/internal/config"
	"github.com/slicekit/slicer/internal/decompose"
	"github.com/slicekit/slicer/internal/depgraph"
	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/invest"
	"github.com/slicekit/slicer/internal/prd"
	"github.com/slicekit/slicer/internal/report"
)

var validateNoColor bool

var validateCmd = &cobra.Command{
	Use:   "validate <result.json>",
	Short: "Re-validate a stored decomposition result",
	Long: `Re-run the structural checks over a previously written result file:
INVEST scoring, dependency graph construction and cycle repair, the
anti-pattern battery, and confidence aggregation. Useful after hand
editing a result or to check a result produced elsewhere.

Exits non-zero when the dependency graph cannot be made acyclic or when
the recomputed confidence falls below the review threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateNoColor, "no-color", false, "disable styled terminal output")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	res, err := report.ReadJSONFile(args[0])
	if err != nil {
		return err
	}
	if len(res.Units) == 0 {
		return fmt.Errorf("result %s contains no units", res.ID)
	}

	units := res.Units
	features := make(map[string]extract.Features, len(units))
	for i := range units {
		u := &units[i]
		features[u.ID] = extract.Scan(u.Text())
		u.Score = invest.Score(u, features[u.ID], cfg.Engine.Weights)
	}

	graph, builderWarnings := depgraph.Build(units, features, cfg.Engine.ImplicitConfidenceFloor)
	resolveErr := depgraph.Resolve(graph)
	if resolveErr == nil {
		builderWarnings = append(builderWarnings, depgraph.Audit(graph, cfg.Engine.MaxDepth)...)
	}

	warnings := antipattern.Detect(units, features, graph)

	checked := &prd.DecompositionResult{
		ID:              res.ID,
		ItemID:          res.ItemID,
		Strategy:        res.Strategy,
		Units:           units,
		Graph:           graph,
		AntiPatterns:    warnings,
		BuilderWarnings: builderWarnings,
		Consistency:     res.Consistency,
		GeneratedAt:     res.GeneratedAt,
	}
	checked.Confidence = decompose.Confidence(
		res.Consistency,
		checked.AverageComposite(),
		graph.State == prd.GraphValid,
		checked.HighSeverityCount(),
		checked.MediumSeverityCount(),
	)
	checked.RequiresReview = checked.Confidence < cfg.Engine.ConfidenceThreshold

	fmt.Println(report.NewRenderer(cfg.Output.Color && !validateNoColor).Summary(checked))

	// Flag drift between stored and recomputed values
	if drift := math.Abs(checked.Confidence - res.Confidence); drift > 0.005 {
		fmt.Printf("Note: stored confidence %.2f differs from recomputed %.2f\n", res.Confidence, checked.Confidence)
	}

	if resolveErr != nil {
		return fmt.Errorf("dependency graph is unresolvable: %w", resolveErr)
	}
	if checked.RequiresReview {
		return fmt.Errorf("confidence %.2f is below the review threshold %.2f",
			checked.Confidence, cfg.Engine.ConfidenceThreshold)
	}

	fmt.Println("Result is structurally valid.")
	return nil
}
