// Package queries holds read-side ranking use cases.
package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/services"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

// DefaultSuggestLimit is the number of tasks suggested when none is given.
const DefaultSuggestLimit = 3

// SuggestTasksQuery asks for the top tasks to work on next.
type SuggestTasksQuery struct {
	// Tasks to rank. Nil uses SampleTasks; an empty list is ranked as given.
	Tasks    []domain.Task
	Strategy string
	// Limit caps the suggestions. Zero or negative uses the handler default.
	Limit int
	Now   *time.Time
}

// Suggestion is the answer to a SuggestTasksQuery.
type Suggestion struct {
	Strategy             domain.Strategy     `json:"strategy"`
	TopTasks             []domain.ScoredTask `json:"top_tasks"`
	TotalTasksAnalyzed   int                 `json:"total_tasks_analyzed"`
	CircularDependencies []domain.TaskID     `json:"circular_dependencies"`
	UsedSampleTasks      bool                `json:"used_sample_tasks"`
}

// SuggestTasksHandler handles the SuggestTasksQuery.
type SuggestTasksHandler struct {
	analyze      *commands.AnalyzeTasksHandler
	defaultLimit int
	clock        func() time.Time
}

// NewSuggestTasksHandler creates a handler that ranks through analyze.
func NewSuggestTasksHandler(analyze *commands.AnalyzeTasksHandler, defaultLimit int) *SuggestTasksHandler {
	if defaultLimit <= 0 {
		defaultLimit = DefaultSuggestLimit
	}
	return &SuggestTasksHandler{
		analyze:      analyze,
		defaultLimit: defaultLimit,
		clock:        time.Now,
	}
}

// Handle executes the SuggestTasksQuery.
func (h *SuggestTasksHandler) Handle(ctx context.Context, q SuggestTasksQuery) (*Suggestion, error) {
	now := h.clock()
	if q.Now != nil {
		now = *q.Now
	}

	tasks := q.Tasks
	sample := tasks == nil
	if sample {
		tasks = SampleTasks(domain.DateOf(now.UTC()))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}

	res, err := h.analyze.Handle(ctx, commands.AnalyzeTasksCommand{
		Tasks:    tasks,
		Strategy: q.Strategy,
		Now:      &now,
	})
	if err != nil {
		return nil, err
	}

	top := services.Top(res.Result, limit)
	cycles := res.Result.CircularDependencies
	if cycles == nil {
		cycles = []domain.TaskID{}
	}

	return &Suggestion{
		Strategy:             res.Strategy,
		TopTasks:             append([]domain.ScoredTask{}, top...),
		TotalTasksAnalyzed:   len(tasks),
		CircularDependencies: cycles,
		UsedSampleTasks:      sample,
	}, nil
}

// SampleTasks returns the demonstration list suggested when the caller
// supplies no tasks. Dates are relative to today.
func SampleTasks(today domain.Date) []domain.Task {
	return []domain.Task{
		{ID: 0, Title: "Fix critical login bug", DueDate: today, EstimatedHours: 3, Importance: 9, Dependencies: []domain.TaskID{}},
		{ID: 1, Title: "Write documentation", DueDate: today.AddDays(7), EstimatedHours: 2, Importance: 6, Dependencies: []domain.TaskID{}},
		{ID: 2, Title: "Refactor user profile page", DueDate: today.AddDays(3), EstimatedHours: 5, Importance: 7, Dependencies: []domain.TaskID{0}},
	}
}
