package cmd

import (
	"github.com/benchboard/benchboard/core"
	"github.com/spf13/cobra"
)

// benchmarkCmd composes and prints one benchmark.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark [benchmark-id]",
	Short: "Compose a benchmark leaderboard from stored systems",
	Long: `Compose the named benchmark from every stored system evaluated on its datasets,
then print its views.

Each view is a table with one row per system and one column per label. The
"orig" view holds the normalized per-dataset scores; the other views apply
the operations configured for the benchmark.

Examples:
  # Print every view of the GLUE benchmark
  benchboard benchmark glue

  # Show the top 5 systems of one view ranked by a column
  benchboard benchmark glue --view weighted --rank-by score --limit 5

  # Export the leaderboard in long format
  benchboard benchmark glue --output csv --output-file glue.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteBenchmark(rootCtx, cfg, newConfigLoader(), storeManager, args[0])
	},
}

// benchmarkListCmd lists every benchmark configuration.
var benchmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available benchmark configurations",
	Long: `List every benchmark config found under --config-dir along with its
datasets, metrics and view names.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteConfigs(rootCtx, cfg, newConfigLoader())
	},
}
