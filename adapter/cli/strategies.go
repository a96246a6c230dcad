package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/api"
)

func newStrategiesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List ranking strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			list := api.StrategyList()
			if asJSON {
				return writeJSON(out, list)
			}
			for _, s := range list {
				fmt.Fprintf(out, "%s\n  %s\n", headerStyle.Render(string(s.Name)), s.Explanation)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
