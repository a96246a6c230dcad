package services

import "github.com/felixgeelhaar/taskrank/internal/ranking/domain"

// DependencyGraphAnalyzer finds tasks that sit on a dependency cycle.
type DependencyGraphAnalyzer struct{}

// NewDependencyGraphAnalyzer creates a new analyzer.
func NewDependencyGraphAnalyzer() *DependencyGraphAnalyzer {
	return &DependencyGraphAnalyzer{}
}

// DetectCycles returns, in input order, the IDs of tasks that can reach
// themselves again by following dependency edges.
//
// Every task is checked from its own root with fresh marker sets, so a task
// that merely depends on a cycle elsewhere is not flagged. Dependencies on
// IDs outside the list are sinks.
func (a *DependencyGraphAnalyzer) DetectCycles(tasks []domain.Task) []domain.TaskID {
	graph := buildAdjacency(tasks)

	cycles := make([]domain.TaskID, 0)
	flagged := make(map[domain.TaskID]bool)
	for _, t := range tasks {
		if flagged[t.ID] {
			continue
		}
		if reachesSelf(graph, t.ID) {
			flagged[t.ID] = true
			cycles = append(cycles, t.ID)
		}
	}
	return cycles
}

func buildAdjacency(tasks []domain.Task) map[domain.TaskID][]domain.TaskID {
	graph := make(map[domain.TaskID][]domain.TaskID, len(tasks))
	for _, t := range tasks {
		graph[t.ID] = t.Dependencies
	}
	return graph
}

// frame is one node on the explicit DFS stack; next indexes its next edge.
type frame struct {
	node domain.TaskID
	next int
}

// reachesSelf runs an iterative DFS from root and reports whether an edge
// leads back to root before the search fully unwinds.
func reachesSelf(graph map[domain.TaskID][]domain.TaskID, root domain.TaskID) bool {
	onPath := map[domain.TaskID]bool{root: true}
	done := make(map[domain.TaskID]bool)
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := graph[top.node]

		if top.next >= len(edges) {
			onPath[top.node] = false
			done[top.node] = true
			stack = stack[:len(stack)-1]
			continue
		}

		dep := edges[top.next]
		top.next++

		if dep == root {
			return true
		}
		// A back edge to another on-path node is a cycle not through root.
		if onPath[dep] || done[dep] {
			continue
		}
		onPath[dep] = true
		stack = append(stack, frame{node: dep})
	}
	return false
}
