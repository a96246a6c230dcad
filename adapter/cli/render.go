package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

var (
	colorAccent = lipgloss.Color("#FFD700")
	colorMuted  = lipgloss.Color("#636363")
	colorDanger = lipgloss.Color("#FF5F5F")
	colorGood   = lipgloss.Color("#5FD75F")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	cycleStyle  = lipgloss.NewStyle().Foreground(colorDanger)
	scoreStyle  = lipgloss.NewStyle().Foreground(colorGood).Bold(true)
)

const titleWidth = 32

// renderResult prints a ranked table followed by any cycle warning.
func renderResult(w io.Writer, strategy domain.Strategy, result domain.AnalysisResult) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Strategy: %s", strategy)))
	if exp := strategy.Explanation(); exp != "" {
		fmt.Fprintln(w, mutedStyle.Render(exp))
	}
	fmt.Fprintln(w)

	if len(result.Tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No tasks to rank."))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(row("#", "ID", "Title", "Score", "Due", "U/I/E/D")))
	for i, st := range result.Tasks {
		line := row(
			fmt.Sprint(i+1),
			fmt.Sprint(st.Task.ID),
			truncate(st.Task.Title, titleWidth),
			scoreStyle.Render(fmt.Sprintf("%.2f", st.FinalScore)),
			st.Task.DueDate.String(),
			mutedStyle.Render(fmt.Sprintf("%.2f/%.2f/%.2f/%.2f",
				st.ComponentScores.Urgency,
				st.ComponentScores.Importance,
				st.ComponentScores.Effort,
				st.ComponentScores.Dependency,
			)),
		)
		if result.InCycle(st.Task.ID) {
			line += " " + cycleStyle.Render("⟳ cycle")
		}
		fmt.Fprintln(w, line)
	}

	if result.HasCycles() {
		ids := make([]string, 0, len(result.CircularDependencies))
		for _, id := range result.CircularDependencies {
			ids = append(ids, fmt.Sprint(id))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, cycleStyle.Render("Circular dependencies: "+strings.Join(ids, ", ")))
	}
}

func row(rank, id, title, score, due, components string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(4).Render(rank),
		lipgloss.NewStyle().Width(6).Render(id),
		lipgloss.NewStyle().Width(titleWidth+2).Render(title),
		lipgloss.NewStyle().Width(7).Render(score),
		lipgloss.NewStyle().Width(12).Render(due),
		components,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
