package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Courseload MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents score burnout, recommend subjects and build schedules.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
