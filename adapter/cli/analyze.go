package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/pkg/client"
)

type analyzeOptions struct {
	file     string
	strategy string
	now      string
	remote   string
	json     bool
	watch    bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score and order the tasks in a file",
		Example: `  taskrank analyze -f tasks.yaml
  taskrank analyze -f tasks.json -s deadline_driven --now 2025-05-20
  taskrank analyze -f tasks.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch {
				return watchAnalyze(cmd.Context(), cmd.OutOrStdout(), opts)
			}
			return analyzeOnce(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "task file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "smart_balance, fastest_wins, high_impact or deadline_driven")
	cmd.Flags().StringVar(&opts.now, "now", "", "reference date (YYYY-MM-DD), defaults to the current time")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "rank through a remote taskrank API, falling back to local")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-rank whenever the file changes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func analyzeOnce(ctx context.Context, out io.Writer, opts *analyzeOptions) error {
	strategy, result, err := runAnalysis(ctx, opts)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, result)
	}
	renderResult(out, strategy, result)
	return nil
}

func watchAnalyze(ctx context.Context, out io.Writer, opts *analyzeOptions) error {
	w, err := newFileWatcher(opts.file)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.file, err)
	}
	go w.run(ctx)

	report := func() {
		if err := analyzeOnce(ctx, out, opts); err != nil {
			fmt.Fprintln(out, cycleStyle.Render("error: "+err.Error()))
		}
	}

	report()
	for range w.changes {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("\n%s changed at %s", opts.file, time.Now().Format(time.Kitchen))))
		report()
	}
	return nil
}

// runAnalysis loads the file and ranks it locally or through the remote.
func runAnalysis(ctx context.Context, opts *analyzeOptions) (domain.Strategy, domain.AnalysisResult, error) {
	c, err := requireContainer()
	if err != nil {
		return "", domain.AnalysisResult{}, err
	}

	tasks, fileStrategy, err := LoadTasksFile(opts.file)
	if err != nil {
		return "", domain.AnalysisResult{}, err
	}
	strategy := opts.strategy
	if strategy == "" {
		strategy = fileStrategy
	}

	now, err := parseNow(opts.now)
	if err != nil {
		return "", domain.AnalysisResult{}, err
	}

	remote := opts.remote
	if remote == "" {
		remote = c.Config.RemoteURL
	}
	if remote != "" {
		return analyzeRemote(ctx, c, remote, tasks, strategy, now)
	}

	res, err := c.AnalyzeTasksHandler.Handle(ctx, commands.AnalyzeTasksCommand{
		Tasks:    tasks,
		Strategy: strategy,
		Now:      now,
	})
	if err != nil {
		return "", domain.AnalysisResult{}, err
	}
	return res.Strategy, res.Result, nil
}

func analyzeRemote(ctx context.Context, c *app.Container, remote string, tasks []domain.Task, strategy string, now *time.Time) (domain.Strategy, domain.AnalysisResult, error) {
	if err := domain.ValidateTasks(tasks); err != nil {
		return "", domain.AnalysisResult{}, err
	}
	if strategy == "" {
		strategy = string(domain.DefaultStrategy)
	}

	req := client.AnalyzeRequest{Tasks: tasks, Strategy: strategy}
	if now != nil {
		req.Now = *now
	}
	result, err := c.RemoteClient(remote).Analyze(ctx, req)
	if err != nil {
		return "", domain.AnalysisResult{}, err
	}
	return domain.Strategy(strategy), *result, nil
}

func parseNow(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --now: %w", err)
	}
	t := d.Time()
	return &t, nil
}
