package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

// RegisterPrompts registers prompts for ranking workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("prioritize_tasks").
		Description("Walk through ranking a task list and choosing what to do next. Optional argument: strategy.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return prioritizePrompt(args["strategy"]), nil
		})

	return nil
}

func prioritizePrompt(strategy string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: "Task prioritization session",
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: prioritizeText(strategy),
				},
			},
		},
	}
}

func prioritizeText(strategy string) string {
	if strategy == "" {
		strategy = string(domain.DefaultStrategy)
	}
	explanation := domain.Strategy(strategy).Explanation()
	if explanation == "" {
		explanation = "unknown strategy; every task will score zero unless you pick one from taskrank://strategies"
	}

	return fmt.Sprintf(`Help me decide what to work on next.

1. Collect my tasks with a title, due date (YYYY-MM-DD), estimated hours,
   importance from 0 to 10, and the IDs of tasks each one depends on.
2. Rank them with the tasks.analyze tool using the %q strategy
   (%s).
3. If circular_dependencies is not empty, point out those tasks and ask
   which dependency to drop before anything else.
4. Present the top three with their component scores and one sentence on
   why each is worth doing now.

The strategies available are listed in the taskrank://strategies resource.`, strategy, explanation)
}
