package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/taskrank/internal/mcp"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		container := cli.GetContainer()
		if container == nil {
			return errors.New("application not initialized")
		}
		if addr != "" {
			container.Config.MCPAddr = addr
		}

		err := mcpinternal.Serve(cmd.Context(), container, cmd.Root().Version)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from TASKRANK_MCP_ADDR)")
}
