package services

import (
	"math"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

const day = 24 * time.Hour

// TaskScorer computes per-strategy component and final scores.
type TaskScorer struct{}

// NewTaskScorer creates a new scorer.
func NewTaskScorer() *TaskScorer {
	return &TaskScorer{}
}

// Score rates a task under a strategy at the caller-supplied reference time.
// An unknown strategy yields a zero score, zero components and no explanation.
func (s *TaskScorer) Score(task domain.Task, strategy domain.Strategy, now time.Time) (float64, domain.ComponentScores, string) {
	var (
		final float64
		c     domain.ComponentScores
	)

	switch strategy {
	case domain.StrategySmartBalance:
		c.Urgency = urgencyScore(daysUntilDue(task.DueDate, now))
		c.Importance = importanceScore(task.Importance)
		c.Effort = clamp01(1.0 - task.EstimatedHours*0.05)
		c.Dependency = clamp01(1.0 - float64(len(task.Dependencies))*0.1)
		final = 0.3*c.Urgency + 0.3*c.Importance + 0.2*c.Effort + 0.2*c.Dependency
	case domain.StrategyFastestWins:
		c.Effort = clamp01(1.0 - task.EstimatedHours*0.1)
		final = c.Effort
	case domain.StrategyHighImpact:
		c.Importance = importanceScore(task.Importance)
		final = c.Importance
	case domain.StrategyDeadlineDriven:
		c.Urgency = urgencyScore(daysUntilDue(task.DueDate, now))
		final = c.Urgency
	default:
		return 0, domain.ComponentScores{}, ""
	}

	return round2(final), roundComponents(c), strategy.Explanation()
}

// daysUntilDue is ceil((due - now) / 1 day), floored at 0.
func daysUntilDue(due domain.Date, now time.Time) int {
	days := math.Ceil(float64(due.Time().Sub(now)) / float64(day))
	if days <= 0 {
		return 0
	}
	return int(days)
}

func urgencyScore(days int) float64 {
	if days == 0 {
		return 1.0
	}
	return clamp01(1.0 - float64(days)*0.02)
}

func importanceScore(importance int) float64 {
	return clamp01(float64(importance) / 10)
}

func roundComponents(c domain.ComponentScores) domain.ComponentScores {
	return domain.ComponentScores{
		Urgency:    round2(c.Urgency),
		Importance: round2(c.Importance),
		Effort:     round2(c.Effort),
		Dependency: round2(c.Dependency),
	}
}

// round2 keeps two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clamp01 clamps a value between 0 and 1.
func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
