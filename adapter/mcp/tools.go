// Package mcp exposes the ranking engine as MCP tools, resources and prompts.
package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/queries"
)

// ToolDependencies provides the handlers MCP tools call.
type ToolDependencies struct {
	Analyze *commands.AnalyzeTasksHandler
	Suggest *queries.SuggestTasksHandler
}

// RegisterTools registers the ranking tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.Analyze == nil || deps.Suggest == nil {
		return errors.New("analyze and suggest handlers are required")
	}

	srv.Tool("tasks.analyze").
		Description("Score and order tasks under a strategy (smart_balance, fastest_wins, high_impact, deadline_driven). Returns the ranked tasks and the IDs of tasks caught in dependency cycles.").
		Handler(analyzeTool(deps))

	srv.Tool("tasks.suggest").
		Description("Return the top tasks to work on next. Without tasks a built-in sample list is ranked.").
		Handler(suggestTool(deps))

	srv.Tool("strategies.list").
		Description("List the ranking strategies and what each one favors").
		Handler(strategiesTool)

	return nil
}
