package services

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

// Analyzer ranks a task list. It is the contract shared by the local Ranker
// and remote clients.
type Analyzer interface {
	Analyze(tasks []domain.Task, strategy domain.Strategy, now time.Time) domain.AnalysisResult
}

// Ranker combines cycle detection and scoring into an ordered result.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	graph  *DependencyGraphAnalyzer
	scorer *TaskScorer
}

// NewRanker creates a ranker with the default graph analyzer and scorer.
func NewRanker() *Ranker {
	return &Ranker{
		graph:  NewDependencyGraphAnalyzer(),
		scorer: NewTaskScorer(),
	}
}

// Analyze scores every task and orders them by final score descending,
// then by dependency count ascending. Tasks on a cycle are kept and only
// reported in CircularDependencies. The input slice is not modified.
func (r *Ranker) Analyze(tasks []domain.Task, strategy domain.Strategy, now time.Time) domain.AnalysisResult {
	cycles := r.graph.DetectCycles(tasks)

	scored := make([]domain.ScoredTask, 0, len(tasks))
	for _, t := range tasks {
		final, components, explanation := r.scorer.Score(t, strategy, now)
		scored = append(scored, domain.ScoredTask{
			Task:            t,
			FinalScore:      final,
			ComponentScores: components,
			Explanation:     explanation,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return len(scored[i].Task.Dependencies) < len(scored[j].Task.Dependencies)
	})

	return domain.AnalysisResult{
		Tasks:                scored,
		CircularDependencies: cycles,
	}
}

// Top returns the first n scored tasks, or all of them when n <= 0.
func Top(result domain.AnalysisResult, n int) []domain.ScoredTask {
	if n <= 0 || n >= len(result.Tasks) {
		return result.Tasks
	}
	return result.Tasks[:n]
}

var _ Analyzer = (*Ranker)(nil)
