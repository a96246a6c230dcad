package domain_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.Strategy
		wantErr  bool
	}{
		{"smart balance", "smart_balance", domain.StrategySmartBalance, false},
		{"fastest wins", "fastest_wins", domain.StrategyFastestWins, false},
		{"high impact", "high_impact", domain.StrategyHighImpact, false},
		{"deadline driven", "deadline_driven", domain.StrategyDeadlineDriven, false},
		{"case sensitive", "Smart_Balance", "", true},
		{"unknown", "unknown", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := domain.ParseStrategy(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrUnrecognizedStrategy)
				assert.Contains(t, err.Error(), tt.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestStrategy_Explanation(t *testing.T) {
	assert.Equal(t, "Balanced prioritization considering urgency, importance, effort, and dependencies.",
		domain.StrategySmartBalance.Explanation())
	assert.Equal(t, "Prioritizing based on estimated effort - shorter tasks first.",
		domain.StrategyFastestWins.Explanation())
	assert.Equal(t, "Prioritizing based on importance rating.",
		domain.StrategyHighImpact.Explanation())
	assert.Equal(t, "Prioritizing based on deadline urgency.",
		domain.StrategyDeadlineDriven.Explanation())
	assert.Empty(t, domain.Strategy("unknown").Explanation())
}

func TestStrategies(t *testing.T) {
	strategies := domain.Strategies()
	require.Len(t, strategies, 4)
	for _, s := range strategies {
		assert.True(t, s.Valid(), s.String())
	}
	assert.Equal(t, domain.StrategySmartBalance, domain.DefaultStrategy)
}

func TestDate(t *testing.T) {
	t.Run("parses calendar date as midnight UTC", func(t *testing.T) {
		d, err := domain.ParseDate("2025-03-09")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), d.Time())
		assert.Equal(t, "2025-03-09", d.String())
	})

	t.Run("rejects timestamps", func(t *testing.T) {
		_, err := domain.ParseDate("2025-03-09T10:00:00Z")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})

	t.Run("json round trip", func(t *testing.T) {
		var d domain.Date
		require.NoError(t, json.Unmarshal([]byte(`"2024-12-31"`), &d))
		out, err := json.Marshal(d)
		require.NoError(t, err)
		assert.JSONEq(t, `"2024-12-31"`, string(out))
	})

	t.Run("json rejects numbers", func(t *testing.T) {
		var d domain.Date
		assert.ErrorIs(t, json.Unmarshal([]byte(`20241231`), &d), domain.ErrInvalidDate)
	})

	t.Run("DateOf drops time of day", func(t *testing.T) {
		loc := time.FixedZone("UTC+9", 9*3600)
		d := domain.DateOf(time.Date(2025, 1, 2, 23, 30, 0, 0, loc))
		assert.Equal(t, "2025-01-02", d.String())
		assert.Equal(t, "2025-01-05", d.AddDays(3).String())
	})
}

func TestTask_JSON(t *testing.T) {
	raw := `{"id":3,"title":"Write docs","due_date":"2025-06-01","estimated_hours":2.5,"importance":7,"dependencies":[1,2]}`

	var task domain.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	assert.Equal(t, domain.TaskID(3), task.ID)
	assert.Equal(t, "2025-06-01", task.DueDate.String())
	assert.Equal(t, []domain.TaskID{1, 2}, task.Dependencies)

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	t.Run("missing dependencies encode as empty list", func(t *testing.T) {
		out, err := json.Marshal(domain.Task{ID: 1, Title: "x", DueDate: domain.MustParseDate("2025-01-01")})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"dependencies":[]`)
	})
}

func TestAnalysisResult_JSON(t *testing.T) {
	out, err := json.Marshal(domain.AnalysisResult{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[],"circular_dependencies":[]}`, string(out))

	r := domain.AnalysisResult{CircularDependencies: []domain.TaskID{4}}
	assert.True(t, r.HasCycles())
	assert.True(t, r.InCycle(4))
	assert.False(t, r.InCycle(5))
}

func TestDanglingReferences(t *testing.T) {
	tasks := []domain.Task{
		{ID: 0, Dependencies: []domain.TaskID{1, 9}},
		{ID: 1, Dependencies: []domain.TaskID{7}},
		{ID: 2},
	}

	refs := domain.DanglingReferences(tasks)
	assert.Equal(t, []domain.DanglingReference{
		{TaskID: 0, MissingID: 9},
		{TaskID: 1, MissingID: 7},
	}, refs)

	assert.Empty(t, domain.DanglingReferences(nil))

	t.Run("reports as invalid task reference", func(t *testing.T) {
		var err error = refs[0]
		assert.ErrorIs(t, err, domain.ErrInvalidTaskReference)
		assert.Equal(t, "invalid task reference: task 0 depends on unknown task 9", err.Error())
	})
}

func validTask(id domain.TaskID) domain.Task {
	return domain.Task{
		ID:             id,
		Title:          "Task",
		DueDate:        domain.MustParseDate("2025-01-10"),
		EstimatedHours: 2,
		Importance:     5,
	}
}

func TestValidateTasks(t *testing.T) {
	t.Run("accepts valid tasks", func(t *testing.T) {
		assert.NoError(t, domain.ValidateTasks([]domain.Task{validTask(0), validTask(1)}))
		assert.NoError(t, domain.ValidateTasks(nil))
	})

	t.Run("accepts boundary values", func(t *testing.T) {
		task := validTask(0)
		task.EstimatedHours = 0
		task.Importance = 0
		task.Dependencies = []domain.TaskID{0, 42}
		assert.NoError(t, domain.ValidateTasks([]domain.Task{task}))
	})

	tests := []struct {
		name   string
		mutate func(*domain.Task)
		field  string
	}{
		{"negative id", func(t *domain.Task) { t.ID = -1 }, "tasks[0].id"},
		{"blank title", func(t *domain.Task) { t.Title = "  " }, "tasks[0].title"},
		{"long title", func(t *domain.Task) { t.Title = string(make([]rune, 201)) }, "tasks[0].title"},
		{"missing due date", func(t *domain.Task) { t.DueDate = domain.Date{} }, "tasks[0].due_date"},
		{"negative hours", func(t *domain.Task) { t.EstimatedHours = -0.5 }, "tasks[0].estimated_hours"},
		{"importance too high", func(t *domain.Task) { t.Importance = 11 }, "tasks[0].importance"},
		{"importance negative", func(t *domain.Task) { t.Importance = -1 }, "tasks[0].importance"},
		{"negative dependency", func(t *domain.Task) { t.Dependencies = []domain.TaskID{-2} }, "tasks[0].dependencies[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask(0)
			tt.mutate(&task)

			err := domain.ValidateTasks([]domain.Task{task})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidTask)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Details, tt.field)
		})
	}

	t.Run("duplicate ids", func(t *testing.T) {
		err := domain.ValidateTasks([]domain.Task{validTask(3), validTask(3)})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"duplicates tasks[0].id"}, verr.Details["tasks[1].id"])
	})
}

func TestIDAllocator(t *testing.T) {
	t.Run("starts at zero and never reuses", func(t *testing.T) {
		a := domain.NewIDAllocator()
		assert.Equal(t, domain.TaskID(0), a.Next())
		assert.Equal(t, domain.TaskID(1), a.Next())
		assert.Equal(t, domain.TaskID(2), a.Next())
	})

	t.Run("reserve skips explicit ids", func(t *testing.T) {
		a := domain.NewIDAllocator()
		a.Reserve(5)
		a.Reserve(2)
		assert.Equal(t, domain.TaskID(6), a.Next())
	})

	t.Run("concurrent allocation is unique", func(t *testing.T) {
		a := domain.NewIDAllocator()
		var mu sync.Mutex
		seen := make(map[domain.TaskID]bool)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := a.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Len(t, seen, 50)
	})
}

func TestNewAnalysisCompleted(t *testing.T) {
	result := domain.AnalysisResult{
		Tasks:                []domain.ScoredTask{{Task: domain.Task{ID: 7}}, {Task: domain.Task{ID: 2}}},
		CircularDependencies: []domain.TaskID{2},
	}

	evt := domain.NewAnalysisCompleted(domain.StrategyHighImpact, result, "corr-1", false)
	assert.Equal(t, domain.RoutingKeyAnalysisCompleted, evt.RoutingKey)
	assert.Equal(t, 2, evt.TaskCount)
	assert.Equal(t, 1, evt.CycleCount)
	require.NotNil(t, evt.TopTaskID)
	assert.Equal(t, domain.TaskID(7), *evt.TopTaskID)
	assert.Equal(t, "corr-1", evt.CorrelationID)

	empty := domain.NewAnalysisCompleted(domain.StrategyHighImpact, domain.AnalysisResult{}, "", false)
	assert.Nil(t, empty.TopTaskID)
}

func TestBuildTasks(t *testing.T) {
	due := domain.MustParseDate("2025-06-01")
	id := func(v domain.TaskID) *domain.TaskID { return &v }

	t.Run("numbers a list without ids by position", func(t *testing.T) {
		tasks := domain.BuildTasks([]domain.TaskInput{
			{Title: "a", DueDate: due},
			{Title: "b", DueDate: due},
			{Title: "c", DueDate: due, Dependencies: []domain.TaskID{0}},
		}, nil)

		require.Len(t, tasks, 3)
		assert.Equal(t, domain.TaskID(0), tasks[0].ID)
		assert.Equal(t, domain.TaskID(1), tasks[1].ID)
		assert.Equal(t, domain.TaskID(2), tasks[2].ID)
		assert.Equal(t, []domain.TaskID{}, tasks[0].Dependencies)
	})

	t.Run("keeps explicit ids and allocates past them", func(t *testing.T) {
		tasks := domain.BuildTasks([]domain.TaskInput{
			{Title: "a", DueDate: due},
			{ID: id(4), Title: "b", DueDate: due},
		}, domain.NewIDAllocator())

		assert.Equal(t, domain.TaskID(5), tasks[0].ID)
		assert.Equal(t, domain.TaskID(4), tasks[1].ID)
	})
}
