// Package domain holds the task ranking model: tasks, strategies and the
// scored results produced by an analysis.
//
// Tasks are inputs. The scoring core does not validate them; callers that
// accept tasks from the outside run ValidateTasks first. Non-unique IDs,
// negative hours or out-of-range importance passed straight to the core are
// scored as given.
package domain

import (
	"encoding/json"
	"fmt"
)

// TaskID identifies a task within one analysis request.
type TaskID int

// Task is a unit of work with scheduling metadata.
type Task struct {
	ID             TaskID   `json:"id"`
	Title          string   `json:"title"`
	DueDate        Date     `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
	Importance     int      `json:"importance"`
	Dependencies   []TaskID `json:"dependencies"`
}

// MarshalJSON encodes a missing dependency list as [] rather than null.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	out := plain(t)
	if out.Dependencies == nil {
		out.Dependencies = []TaskID{}
	}
	return json.Marshal(out)
}

// DanglingReference is a dependency on a task absent from the list. It
// unwraps to ErrInvalidTaskReference.
type DanglingReference struct {
	TaskID    TaskID `json:"task_id"`
	MissingID TaskID `json:"missing_id"`
}

func (d DanglingReference) Error() string {
	return fmt.Sprintf("%s: task %d depends on unknown task %d", ErrInvalidTaskReference, d.TaskID, d.MissingID)
}

func (d DanglingReference) Unwrap() error {
	return ErrInvalidTaskReference
}

// DanglingReferences lists dependencies that point outside the task list,
// in input order. They are legal input and only worth a warning.
func DanglingReferences(tasks []Task) []DanglingReference {
	known := make(map[TaskID]struct{}, len(tasks))
	for _, t := range tasks {
		known[t.ID] = struct{}{}
	}

	var refs []DanglingReference
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := known[dep]; !ok {
				refs = append(refs, DanglingReference{TaskID: t.ID, MissingID: dep})
			}
		}
	}
	return refs
}
