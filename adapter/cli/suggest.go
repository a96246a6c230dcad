package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

func newSuggestCmd() *cobra.Command {
	var (
		file     string
		strategy string
		now      string
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Show the tasks to work on next",
		Long: `Rank the tasks in a file and show the top few. Without --file a
built-in sample list is used; an empty file ranks nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := requireContainer()
			if err != nil {
				return err
			}

			q := queries.SuggestTasksQuery{Strategy: strategy, Limit: limit}
			if file != "" {
				tasks, fileStrategy, err := LoadTasksFile(file)
				if err != nil {
					return err
				}
				if tasks == nil {
					tasks = []domain.Task{}
				}
				q.Tasks = tasks
				if q.Strategy == "" {
					q.Strategy = fileStrategy
				}
			}
			if q.Now, err = parseNow(now); err != nil {
				return err
			}

			s, err := c.SuggestTasksHandler.Handle(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, s)
			}
			if s.UsedSampleTasks {
				fmt.Fprintln(out, mutedStyle.Render("No task file given, using sample tasks."))
			}
			renderResult(out, s.Strategy, domain.AnalysisResult{
				Tasks:                s.TopTasks,
				CircularDependencies: s.CircularDependencies,
			})
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("\n%d of %d tasks shown", len(s.TopTasks), s.TotalTasksAnalyzed)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "task file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "ranking strategy")
	cmd.Flags().StringVar(&now, "now", "", "reference date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of tasks to show (default from TASKRANK_SUGGEST_LIMIT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the suggestion as JSON")

	return cmd
}
