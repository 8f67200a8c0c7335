package cmd

import (
	"github.com/benchboard/benchboard/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Benchboard MCP server",
	Long: `Launch an MCP server over stdio that allows AI agents to list benchmarks,
compose leaderboards and browse public systems via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, newConfigLoader(), storeManager)
	},
}
