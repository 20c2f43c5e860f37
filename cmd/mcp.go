package cmd

import (
	"github.com/huangsam/drawbias/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Drawbias MCP server",
	Long: `Launch an MCP server over stdio so AI agents can query predictions,
baselines, patterns, profiles and mode suggestions as tools.

Tools:
  predict_numbers      - Full pass with the final selection
  baseline_predictions - Profile-only ranking
  detect_patterns      - Pattern detector findings
  get_profile          - Profile of one number
  suggest_modes        - Projections from the best mode rules`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed by the server itself since stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
