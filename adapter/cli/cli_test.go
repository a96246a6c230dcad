package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/pkg/config"
)

const yamlTasks = `strategy: high_impact
tasks:
  - title: Write report
    due_date: 2025-05-22
    estimated_hours: 2
    importance: 8
  - id: 7
    title: Review report
    due_date: 2025-05-25
    estimated_hours: 1
    importance: 5
    dependencies: [0]
  - title: Plan sprint
    due_date: 2025-05-21
    estimated_hours: 3
    importance: 9
`

const jsonTasks = `[
  {"id": 1, "title": "A", "due_date": "2025-05-20", "estimated_hours": 1, "importance": 4, "dependencies": [2]},
  {"id": 2, "title": "B", "due_date": "2025-05-20", "estimated_hours": 1, "importance": 6, "dependencies": [1]}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupContainer(t *testing.T) {
	t.Helper()
	c, err := app.NewContainer(context.Background(), &config.Config{
		AppEnv:          "development",
		SuggestLimit:    3,
		CacheTTL:        time.Minute,
		RemoteTimeout:   time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  time.Second,
	}, nil)
	require.NoError(t, err)
	SetContainer(c)
	t.Cleanup(func() {
		c.Close()
		SetContainer(nil)
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadTasksFile(t *testing.T) {
	t.Run("yaml with ids allocated after explicit ones", func(t *testing.T) {
		tasks, strategy, err := LoadTasksFile(writeFile(t, "tasks.yaml", yamlTasks))
		require.NoError(t, err)

		assert.Equal(t, "high_impact", strategy)
		require.Len(t, tasks, 3)
		assert.Equal(t, domain.TaskID(8), tasks[0].ID)
		assert.Equal(t, domain.TaskID(7), tasks[1].ID)
		assert.Equal(t, domain.TaskID(9), tasks[2].ID)
		assert.Equal(t, domain.MustParseDate("2025-05-22"), tasks[0].DueDate)
		assert.Equal(t, []domain.TaskID{0}, tasks[1].Dependencies)
	})

	t.Run("json list", func(t *testing.T) {
		tasks, strategy, err := LoadTasksFile(writeFile(t, "tasks.json", jsonTasks))
		require.NoError(t, err)
		assert.Empty(t, strategy)
		require.Len(t, tasks, 2)
		assert.Equal(t, []domain.TaskID{2}, tasks[0].Dependencies)
	})

	t.Run("empty file", func(t *testing.T) {
		tasks, _, err := LoadTasksFile(writeFile(t, "tasks.yml", ""))
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := LoadTasksFile(writeFile(t, "tasks.json", `[{"title":"a","due_date":"tomorrow"}]`))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadTasksFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestAnalyzeCommand(t *testing.T) {
	setupContainer(t)

	t.Run("renders a ranked table", func(t *testing.T) {
		out, err := run(t, "analyze", "-f", writeFile(t, "tasks.yaml", yamlTasks), "--now", "2025-05-20")
		require.NoError(t, err)

		assert.Contains(t, out, "Strategy: high_impact")
		assert.Contains(t, out, "Plan sprint")
		assert.Less(t, bytes.Index([]byte(out), []byte("Plan sprint")), bytes.Index([]byte(out), []byte("Review report")))
	})

	t.Run("flag strategy overrides the file", func(t *testing.T) {
		out, err := run(t, "analyze", "-f", writeFile(t, "tasks.yaml", yamlTasks), "-s", "fastest_wins", "--json")
		require.NoError(t, err)

		var result domain.AnalysisResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "Review report", result.Tasks[0].Task.Title)
		assert.Equal(t, 0.9, result.Tasks[0].FinalScore)
	})

	t.Run("reports cycles", func(t *testing.T) {
		out, err := run(t, "analyze", "-f", writeFile(t, "tasks.json", jsonTasks))
		require.NoError(t, err)
		assert.Contains(t, out, "Circular dependencies: 1, 2")
	})

	t.Run("rejects invalid tasks", func(t *testing.T) {
		_, err := run(t, "analyze", "-f", writeFile(t, "tasks.json", `[{"id":1,"title":"","due_date":"2025-05-20","importance":3}]`))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidTask)
	})

	t.Run("rejects a bad --now", func(t *testing.T) {
		_, err := run(t, "analyze", "-f", writeFile(t, "tasks.json", jsonTasks), "--now", "soon")
		assert.Error(t, err)
	})

	t.Run("requires a file", func(t *testing.T) {
		_, err := run(t, "analyze")
		assert.Error(t, err)
	})

	t.Run("ranks through a remote", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			_, _ = w.Write([]byte(`{"tasks":[],"circular_dependencies":[]}`))
		}))
		defer srv.Close()

		out, err := run(t, "analyze", "-f", writeFile(t, "tasks.json", jsonTasks), "--remote", srv.URL, "--json")
		require.NoError(t, err)
		assert.Equal(t, 1, hits)
		assert.JSONEq(t, `{"tasks":[],"circular_dependencies":[]}`, out)
	})

	t.Run("falls back locally when the remote is down", func(t *testing.T) {
		out, err := run(t, "analyze", "-f", writeFile(t, "tasks.json", jsonTasks), "--remote", "http://127.0.0.1:1", "--json")
		require.NoError(t, err)

		var result domain.AnalysisResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Len(t, result.Tasks, 2)
	})
}

func TestSuggestCommand(t *testing.T) {
	setupContainer(t)

	t.Run("sample tasks", func(t *testing.T) {
		out, err := run(t, "suggest")
		require.NoError(t, err)
		assert.Contains(t, out, "sample tasks")
		assert.Contains(t, out, "Fix critical login bug")
		assert.Contains(t, out, "3 of 3 tasks shown")
	})

	t.Run("empty file ranks nothing", func(t *testing.T) {
		out, err := run(t, "suggest", "-f", writeFile(t, "empty.json", ""), "--json")
		require.NoError(t, err)

		var s map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, false, s["used_sample_tasks"])
		assert.Equal(t, float64(0), s["total_tasks_analyzed"])
		assert.Empty(t, s["top_tasks"])
	})

	t.Run("limit from file", func(t *testing.T) {
		out, err := run(t, "suggest", "-f", writeFile(t, "tasks.yaml", yamlTasks), "-n", "1", "--json")
		require.NoError(t, err)

		var s map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, "high_impact", s["strategy"])
		assert.Len(t, s["top_tasks"], 1)
		assert.Equal(t, float64(3), s["total_tasks_analyzed"])
	})
}

func TestStrategiesCommand(t *testing.T) {
	out, err := run(t, "strategies")
	require.NoError(t, err)
	for _, s := range domain.Strategies() {
		assert.Contains(t, out, string(s))
		assert.Contains(t, out, s.Explanation())
	}
}

func TestCommandsRequireContainer(t *testing.T) {
	SetContainer(nil)
	_, err := run(t, "suggest")
	assert.Error(t, err)
}

func TestFileWatcher(t *testing.T) {
	path := writeFile(t, "tasks.json", jsonTasks)
	w, err := newFileWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	select {
	case _, ok := <-w.changes:
		assert.True(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	for range w.changes {
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
