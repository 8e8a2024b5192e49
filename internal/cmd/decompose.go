package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slicekit/slicer/internal/config"
	"github.com/slicekit/slicer/internal/decompose"
	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/generator"
	"github.com/slicekit/slicer/internal/logging"
	"github.com/slicekit/slicer/internal/prd"
	"github.com/slicekit/slicer/internal/report"
)

var (
	decomposeStrategy string
	decomposeFormat   string
	decomposeOutput   string
	decomposeReport   string
	decomposeNoColor  bool
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <item.yaml>",
	Short: "Decompose a roadmap item into deliverable units",
	Long: `Decompose a roadmap item into small, independently deliverable units.

The item file is YAML:

  id: payments-v2
  title: Payment methods
  description: Let customers pay with cards and saved wallets.
  type: feature
  constraints:
    max_units: 6
    must_include: [refunds]

The strategy is selected automatically from the item's type and wording
unless --strategy forces one. Results are written according to --format:
a JSON result file, a markdown report with the dependency graph, or both.
A summary is always printed to the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	rootCmd.AddCommand(decomposeCmd)

	decomposeCmd.Flags().StringVarP(&decomposeStrategy, "strategy", "s", "",
		fmt.Sprintf("force a slicing strategy (%s)", strings.Join(decompose.StrategyNames(), ", ")))
	decomposeCmd.Flags().StringVarP(&decomposeFormat, "format", "f", "", "output format: json, markdown, or both (default from config)")
	decomposeCmd.Flags().StringVarP(&decomposeOutput, "output", "o", "", "path for the JSON result file (default from config)")
	decomposeCmd.Flags().StringVar(&decomposeReport, "report", "", "path for the markdown report (default: <output>.md)")
	decomposeCmd.Flags().BoolVar(&decomposeNoColor, "no-color", false, "disable styled terminal output")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	item, err := loadRoadmapItem(args[0])
	if err != nil {
		return err
	}

	var strategy *decompose.SlicingStrategy
	if decomposeStrategy != "" {
		strategy = decompose.GetStrategy(decomposeStrategy)
		if strategy == nil {
			return fmt.Errorf("unknown strategy %q (valid: %s)",
				decomposeStrategy, strings.Join(decompose.StrategyNames(), ", "))
		}
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = log.Close() }()

	gen, err := generator.NewOpenAIGenerator(cfg.Generator, log)
	if err != nil {
		return err
	}

	engine, err := decompose.NewEngine(cfg.Engine, gen, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var res *prd.DecompositionResult
	if strategy != nil {
		res, err = engine.DecomposeWithStrategy(ctx, item, strategy)
	} else {
		res, err = engine.Decompose(ctx, item)
	}
	if err != nil {
		if errors.IsFatal(err) {
			return fmt.Errorf("decomposition failed: %w", err)
		}
		return err
	}

	fmt.Println(report.NewRenderer(cfg.Output.Color && !decomposeNoColor).Summary(res))

	format := cfg.Output.Format
	if decomposeFormat != "" {
		format = decomposeFormat
	}
	outPath := cfg.Output.File
	if decomposeOutput != "" {
		outPath = decomposeOutput
	}
	reportPath := decomposeReport
	if reportPath == "" {
		reportPath = strings.TrimSuffix(outPath, ".json") + ".md"
	}

	switch format {
	case "json":
		if err := report.WriteJSONFile(outPath, res); err != nil {
			return err
		}
		fmt.Printf("Result written to %s\n", outPath)
	case "markdown":
		if err := writeMarkdownReport(reportPath, res); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", reportPath)
	case "both":
		if err := report.WriteJSONFile(outPath, res); err != nil {
			return err
		}
		if err := writeMarkdownReport(reportPath, res); err != nil {
			return err
		}
		fmt.Printf("Result written to %s, report to %s\n", outPath, reportPath)
	default:
		return fmt.Errorf("unknown output format %q (valid: %s)",
			format, strings.Join(config.ValidOutputFormats(), ", "))
	}

	return nil
}

// buildLogger wires the configured logger; a disabled config yields a
// no-op logger rather than stderr noise on every run.
func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.ResolveLogDir(), cfg.Logging.Level)
}

func writeMarkdownReport(path string, res *prd.DecompositionResult) error {
	if err := os.WriteFile(path, []byte(report.Markdown(res)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
