package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slicekit/slicer/internal/decompose"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available slicing strategies",
	Long: `List the slicing strategies the engine can apply, with a short
description of when each is selected automatically.`,
	RunE: runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	fmt.Println("Available slicing strategies:")
	fmt.Println()
	for _, s := range decompose.SlicingStrategies {
		fmt.Printf("  %-20s %s\n", s.Strategy, s.Description)
	}
	fmt.Println()
	fmt.Println("The strategy is chosen from the item's type and wording; pass")
	fmt.Println("--strategy to 'slicer decompose' to force one.")
	return nil
}
