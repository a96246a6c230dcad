package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/services"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/internal/ranking/infrastructure/cache"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

var now = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type countingAnalyzer struct {
	calls int
	inner services.Analyzer
}

func (a *countingAnalyzer) Analyze(tasks []domain.Task, strategy domain.Strategy, at time.Time) domain.AnalysisResult {
	a.calls++
	return a.inner.Analyze(tasks, strategy, at)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (*domain.AnalysisResult, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, domain.AnalysisResult) error {
	return errors.New("cache down")
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) error { return errors.New("broker down") }
func (failingPublisher) Close() error                                 { return nil }

func sampleTasks() []domain.Task {
	today := domain.DateOf(now)
	return []domain.Task{
		{ID: 1, Title: "Low", DueDate: today.AddDays(5), EstimatedHours: 2, Importance: 3},
		{ID: 2, Title: "High", DueDate: today.AddDays(5), EstimatedHours: 2, Importance: 9},
		{ID: 3, Title: "Mid", DueDate: today.AddDays(5), EstimatedHours: 2, Importance: 6, Dependencies: []domain.TaskID{2}},
	}
}

type fixture struct {
	handler  *AnalyzeTasksHandler
	analyzer *countingAnalyzer
	bus      *eventbus.InProcessEventBus
	metrics  *observability.InMemoryMetrics
}

func newFixture(cfg AnalyzeTasksConfig, opts ...Option) *fixture {
	f := &fixture{
		analyzer: &countingAnalyzer{inner: services.NewRanker()},
		bus:      eventbus.NewInProcessEventBus(nil),
		metrics:  observability.NewInMemoryMetrics(),
	}
	base := []Option{
		WithCache(cache.NewMemoryCache(time.Minute)),
		WithPublisher(f.bus),
		WithMetrics(f.metrics),
		WithClock(func() time.Time { return now }),
	}
	f.handler = NewAnalyzeTasksHandler(f.analyzer, cfg, append(base, opts...)...)
	return f
}

func TestAnalyzeTasksHandler_Handle(t *testing.T) {
	t.Run("ranks tasks with the requested strategy", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{
			Tasks:    sampleTasks(),
			Strategy: "high_impact",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StrategyHighImpact, res.Strategy)
		require.Len(t, res.Result.Tasks, 3)
		assert.Equal(t, domain.TaskID(2), res.Result.Tasks[0].Task.ID)
		assert.Equal(t, 0.9, res.Result.Tasks[0].FinalScore)
		assert.False(t, res.CacheHit)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricAnalysisTotal, observability.T("strategy", "high_impact")))
	})

	t.Run("empty strategy defaults to smart balance", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: sampleTasks()})
		require.NoError(t, err)
		assert.Equal(t, domain.StrategySmartBalance, res.Strategy)
		assert.Equal(t, domain.StrategySmartBalance.Explanation(), res.Result.Tasks[0].Explanation)
	})

	t.Run("unknown strategy scores zero when permissive", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: sampleTasks(), Strategy: "bogus"})
		require.NoError(t, err)

		for _, st := range res.Result.Tasks {
			assert.Zero(t, st.FinalScore)
			assert.Equal(t, domain.ComponentScores{}, st.ComponentScores)
			assert.Empty(t, st.Explanation)
		}
		// Zero scores tie, so dependency count decides.
		assert.Equal(t, domain.TaskID(3), res.Result.Tasks[2].Task.ID)
	})

	t.Run("unknown strategy fails when strict", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{StrictStrategy: true})

		_, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: sampleTasks(), Strategy: "bogus"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnrecognizedStrategy)
		assert.True(t, IsClientError(err))
		assert.Zero(t, f.analyzer.calls)
	})

	t.Run("rejects invalid tasks", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})
		tasks := sampleTasks()
		tasks[0].Importance = 11

		_, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: tasks})
		require.Error(t, err)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Details, "tasks[0].importance")
		assert.True(t, IsClientError(err))
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricAnalysisRejected, observability.T("reason", "validation")))
	})

	t.Run("skips validation when configured", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{SkipValidation: true})
		tasks := sampleTasks()
		tasks[0].Importance = 11

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: tasks, Strategy: "high_impact"})
		require.NoError(t, err)
		// Components are clamped to [0, 1].
		assert.Equal(t, 1.0, res.Result.Tasks[0].FinalScore)
	})

	t.Run("reports cycles and dangling references", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})
		tasks := sampleTasks()
		tasks[1].Dependencies = []domain.TaskID{3}
		tasks[0].Dependencies = []domain.TaskID{99}

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: tasks})
		require.NoError(t, err)

		assert.Equal(t, []domain.TaskID{2, 3}, res.Result.CircularDependencies)
		assert.Len(t, res.Result.Tasks, 3)
		assert.Equal(t, []domain.DanglingReference{{TaskID: 1, MissingID: 99}}, res.Dangling)
		assert.Equal(t, int64(2), f.metrics.GetCounter(observability.MetricAnalysisCycles, observability.T("strategy", "smart_balance")))
	})

	t.Run("serves repeats from the cache", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})
		cmd := AnalyzeTasksCommand{Tasks: sampleTasks(), Strategy: "fastest_wins"}

		first, err := f.handler.Handle(context.Background(), cmd)
		require.NoError(t, err)
		second, err := f.handler.Handle(context.Background(), cmd)
		require.NoError(t, err)

		assert.Equal(t, 1, f.analyzer.calls)
		assert.False(t, first.CacheHit)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.Result, second.Result)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricAnalysisCacheHits, observability.T("strategy", "fastest_wins")))
	})

	t.Run("explicit now bypasses the clock", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})
		later := now.AddDate(0, 0, 5)

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{
			Tasks:    sampleTasks(),
			Strategy: "deadline_driven",
			Now:      &later,
		})
		require.NoError(t, err)
		// Due today: urgency 1.0.
		assert.Equal(t, 1.0, res.Result.Tasks[0].ComponentScores.Urgency)
	})

	t.Run("cache failures fall through to analysis", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{}, WithCache(failingCache{}))

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: sampleTasks()})
		require.NoError(t, err)
		assert.Len(t, res.Result.Tasks, 3)
		assert.Equal(t, 1, f.analyzer.calls)
	})

	t.Run("publishes an analysis event", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})
		ctx := observability.WithCorrelationID(context.Background(), "corr-42")

		_, err := f.handler.Handle(ctx, AnalyzeTasksCommand{Tasks: sampleTasks(), Strategy: "high_impact"})
		require.NoError(t, err)

		msgs := f.bus.Published()
		require.Len(t, msgs, 1)
		assert.Equal(t, domain.RoutingKeyAnalysisCompleted, msgs[0].RoutingKey)

		var evt domain.AnalysisCompleted
		require.NoError(t, json.Unmarshal(msgs[0].Payload, &evt))
		assert.Equal(t, "corr-42", evt.CorrelationID)
		assert.Equal(t, 3, evt.TaskCount)
		require.NotNil(t, evt.TopTaskID)
		assert.Equal(t, domain.TaskID(2), *evt.TopTaskID)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricEventsPublished))
	})

	t.Run("publish failures do not fail the analysis", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{}, WithPublisher(failingPublisher{}))

		_, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{Tasks: sampleTasks()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricEventsFailed))
	})

	t.Run("empty task list", func(t *testing.T) {
		f := newFixture(AnalyzeTasksConfig{})

		res, err := f.handler.Handle(context.Background(), AnalyzeTasksCommand{})
		require.NoError(t, err)
		assert.Empty(t, res.Result.Tasks)
		assert.Empty(t, res.Result.CircularDependencies)
	})
}
