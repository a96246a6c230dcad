package mcp

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

func parseNow(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid now, use YYYY-MM-DD: %w", err)
	}
	t := d.Time()
	return &t, nil
}

func toTasks(inputs []taskInput) ([]domain.Task, error) {
	converted := make([]domain.TaskInput, 0, len(inputs))
	for i, in := range inputs {
		due, err := domain.ParseDate(in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d].due_date: use YYYY-MM-DD: %w", i, err)
		}
		t := domain.TaskInput{
			Title:          in.Title,
			DueDate:        due,
			EstimatedHours: in.EstimatedHours,
			Importance:     in.Importance,
		}
		if in.ID != nil {
			id := domain.TaskID(*in.ID)
			t.ID = &id
		}
		for _, dep := range in.Dependencies {
			t.Dependencies = append(t.Dependencies, domain.TaskID(dep))
		}
		converted = append(converted, t)
	}
	return domain.BuildTasks(converted, nil), nil
}
