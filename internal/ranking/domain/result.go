package domain

import "encoding/json"

// ComponentScores is the per-factor breakdown of a score. Every value lies in
// [0, 1] and is rounded to two decimals; factors a strategy ignores are 0.
type ComponentScores struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// ScoredTask pairs a task with its score under one strategy.
type ScoredTask struct {
	Task            Task            `json:"task"`
	FinalScore      float64         `json:"final_score"`
	ComponentScores ComponentScores `json:"component_scores"`
	Explanation     string          `json:"explanation"`
}

// AnalysisResult is the ranked output of one analysis.
type AnalysisResult struct {
	Tasks                []ScoredTask `json:"tasks"`
	CircularDependencies []TaskID     `json:"circular_dependencies"`
}

// MarshalJSON keeps both sequences as arrays even when empty.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type plain AnalysisResult
	out := plain(r)
	if out.Tasks == nil {
		out.Tasks = []ScoredTask{}
	}
	if out.CircularDependencies == nil {
		out.CircularDependencies = []TaskID{}
	}
	return json.Marshal(out)
}

// HasCycles reports whether any task was flagged as cycle-involved.
func (r AnalysisResult) HasCycles() bool {
	return len(r.CircularDependencies) > 0
}

// InCycle reports whether id was flagged as cycle-involved.
func (r AnalysisResult) InCycle(id TaskID) bool {
	for _, c := range r.CircularDependencies {
		if c == id {
			return true
		}
	}
	return false
}
