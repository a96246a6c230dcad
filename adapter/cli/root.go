// Package cli implements the taskrank command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Version is reported by --version and the MCP server info.
var Version = "dev"

var (
	logger    *slog.Logger
	container *app.Container
	extra     []*cobra.Command
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "taskrank",
		Short: "Rank tasks by urgency, importance, effort and dependencies",
		Long: `taskrank scores a list of tasks under one of four prioritization
strategies, orders them, and reports tasks caught in dependency cycles.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logger == nil {
				logger = slog.Default()
			}
			if verbose {
				logger = observability.NewLogger(observability.LogConfig{
					Level:       observability.LogLevelDebug,
					Format:      observability.LogFormatText,
					Output:      cmd.ErrOrStderr(),
					ServiceName: "taskrank",
				})
			}
			info := commandContext{
				correlationID: uuid.New(),
				startedAt:     time.Now(),
			}
			ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
			ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
			cmd.SetContext(ctx)
			logger.DebugContext(ctx, "command start", "command", cmd.CommandPath())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger == nil {
				logger = slog.Default()
			}
			info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
			if !ok {
				return
			}
			logger.DebugContext(cmd.Context(), "command end",
				"command", cmd.CommandPath(),
				"duration_ms", time.Since(info.startedAt).Milliseconds(),
			)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newAnalyzeCmd(),
		newSuggestCmd(),
		newStrategiesCmd(),
		newServeCmd(),
	)
	root.AddCommand(extra...)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// AddCommand registers a command group defined outside this package.
func AddCommand(cmd *cobra.Command) {
	extra = append(extra, cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// SetContainer sets the dependencies commands run against.
func SetContainer(c *app.Container) {
	container = c
}

// GetContainer returns the dependencies set by SetContainer.
func GetContainer() *app.Container {
	return container
}

func requireContainer() (*app.Container, error) {
	if container == nil {
		return nil, fmt.Errorf("taskrank is not initialized")
	}
	return container, nil
}
