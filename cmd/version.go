package cmd

import (
	"runtime"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of benchboard.",
	Long: `Display version information including build details.

Shows the release version, the Git commit hash, the build timestamp,
the REST API version and the Go runtime version.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("benchboard CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  API:     %s\n", contract.APIVersion)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
