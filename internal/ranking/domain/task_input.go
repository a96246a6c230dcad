package domain

// TaskInput is a task as supplied by a caller. The ID is optional.
type TaskInput struct {
	ID             *TaskID  `json:"id,omitempty"`
	Title          string   `json:"title"`
	DueDate        Date     `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
	Importance     int      `json:"importance"`
	Dependencies   []TaskID `json:"dependencies"`
}

// BuildTasks turns inputs into tasks, in order. Explicit IDs are reserved
// first; inputs without one get the next free ID from alloc, so a list
// with no IDs at all is numbered by position from 0.
func BuildTasks(inputs []TaskInput, alloc *IDAllocator) []Task {
	if alloc == nil {
		alloc = NewIDAllocator()
	}
	for _, in := range inputs {
		if in.ID != nil {
			alloc.Reserve(*in.ID)
		}
	}

	tasks := make([]Task, 0, len(inputs))
	for _, in := range inputs {
		var id TaskID
		if in.ID != nil {
			id = *in.ID
		} else {
			id = alloc.Next()
		}
		deps := in.Dependencies
		if deps == nil {
			deps = []TaskID{}
		}
		tasks = append(tasks, Task{
			ID:             id,
			Title:          in.Title,
			DueDate:        in.DueDate,
			EstimatedHours: in.EstimatedHours,
			Importance:     in.Importance,
			Dependencies:   deps,
		})
	}
	return tasks
}
