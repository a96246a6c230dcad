package mcp

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

type taskInput struct {
	ID             *int    `json:"id,omitempty"`
	Title          string  `json:"title" jsonschema:"required"`
	DueDate        string  `json:"due_date" jsonschema:"required"`
	EstimatedHours float64 `json:"estimated_hours"`
	Importance     int     `json:"importance"`
	Dependencies   []int   `json:"dependencies,omitempty"`
}

type analyzeInput struct {
	Tasks    []taskInput `json:"tasks" jsonschema:"required"`
	Strategy string      `json:"strategy,omitempty"`
	Now      string      `json:"now,omitempty"`
}

type suggestInput struct {
	Tasks    []taskInput `json:"tasks,omitempty"`
	Strategy string      `json:"strategy,omitempty"`
	Limit    int         `json:"limit,omitempty"`
	Now      string      `json:"now,omitempty"`
}

type strategyInfo struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

type strategiesInput struct{}

type strategiesOutput struct {
	Strategies []strategyInfo `json:"strategies"`
	Default    string         `json:"default"`
}

func analyzeTool(deps ToolDependencies) func(context.Context, analyzeInput) (*domain.AnalysisResult, error) {
	return func(ctx context.Context, input analyzeInput) (*domain.AnalysisResult, error) {
		tasks, err := toTasks(input.Tasks)
		if err != nil {
			return nil, err
		}
		now, err := parseNow(input.Now)
		if err != nil {
			return nil, err
		}

		res, err := deps.Analyze.Handle(ctx, commands.AnalyzeTasksCommand{
			Tasks:    tasks,
			Strategy: input.Strategy,
			Now:      now,
		})
		if err != nil {
			return nil, err
		}
		return &res.Result, nil
	}
}

func suggestTool(deps ToolDependencies) func(context.Context, suggestInput) (*queries.Suggestion, error) {
	return func(ctx context.Context, input suggestInput) (*queries.Suggestion, error) {
		var tasks []domain.Task
		if input.Tasks != nil {
			converted, err := toTasks(input.Tasks)
			if err != nil {
				return nil, err
			}
			tasks = converted
		}
		now, err := parseNow(input.Now)
		if err != nil {
			return nil, err
		}

		return deps.Suggest.Handle(ctx, queries.SuggestTasksQuery{
			Tasks:    tasks,
			Strategy: input.Strategy,
			Limit:    input.Limit,
			Now:      now,
		})
	}
}

func strategiesTool(_ context.Context, _ strategiesInput) (*strategiesOutput, error) {
	return &strategiesOutput{
		Strategies: strategyList(),
		Default:    string(domain.DefaultStrategy),
	}, nil
}

func strategyList() []strategyInfo {
	all := domain.Strategies()
	out := make([]strategyInfo, 0, len(all))
	for _, s := range all {
		out = append(out, strategyInfo{Name: string(s), Explanation: s.Explanation()})
	}
	return out
}
