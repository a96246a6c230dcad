package domain

import (
	"time"

	"github.com/google/uuid"
)

const RoutingKeyAnalysisCompleted = "ranking.analysis.completed"

// AnalysisCompleted is emitted after a task list has been ranked.
type AnalysisCompleted struct {
	EventID       uuid.UUID `json:"event_id"`
	RoutingKey    string    `json:"routing_key"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Strategy      Strategy  `json:"strategy"`
	TaskCount     int       `json:"task_count"`
	CycleCount    int       `json:"cycle_count"`
	TopTaskID     *TaskID   `json:"top_task_id"`
	CacheHit      bool      `json:"cache_hit"`
}

// NewAnalysisCompleted summarizes a result as an event.
func NewAnalysisCompleted(strategy Strategy, result AnalysisResult, correlationID string, cacheHit bool) AnalysisCompleted {
	evt := AnalysisCompleted{
		EventID:       uuid.New(),
		RoutingKey:    RoutingKeyAnalysisCompleted,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
		Strategy:      strategy,
		TaskCount:     len(result.Tasks),
		CycleCount:    len(result.CircularDependencies),
		CacheHit:      cacheHit,
	}
	if len(result.Tasks) > 0 {
		top := result.Tasks[0].Task.ID
		evt.TopTaskID = &top
	}
	return evt
}
