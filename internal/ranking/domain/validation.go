package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength = 200
	MinImportance  = 0
	MaxImportance  = 10
)

// ValidateTasks checks the caller-side contract of a task list. It returns a
// *ValidationError describing every problem, or nil.
func ValidateTasks(tasks []Task) error {
	verr := &ValidationError{}
	seen := make(map[TaskID]int, len(tasks))

	for i, t := range tasks {
		field := func(name string) string { return fmt.Sprintf("tasks[%d].%s", i, name) }

		if t.ID < 0 {
			verr.add(field("id"), "must be non-negative")
		} else if first, dup := seen[t.ID]; dup {
			verr.add(field("id"), fmt.Sprintf("duplicates tasks[%d].id", first))
		} else {
			seen[t.ID] = i
		}

		title := strings.TrimSpace(t.Title)
		if title == "" {
			verr.add(field("title"), "is required")
		} else if utf8.RuneCountInString(t.Title) > MaxTitleLength {
			verr.add(field("title"), fmt.Sprintf("must be at most %d characters", MaxTitleLength))
		}

		if t.DueDate.IsZero() {
			verr.add(field("due_date"), "is required")
		}
		if t.EstimatedHours < 0 {
			verr.add(field("estimated_hours"), "must be non-negative")
		}
		if t.Importance < MinImportance || t.Importance > MaxImportance {
			verr.add(field("importance"), fmt.Sprintf("must be between %d and %d", MinImportance, MaxImportance))
		}
		for j, dep := range t.Dependencies {
			if dep < 0 {
				verr.add(fmt.Sprintf("tasks[%d].dependencies[%d]", i, j), "must be non-negative")
			}
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}
