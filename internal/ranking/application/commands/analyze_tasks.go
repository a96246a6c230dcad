// Package commands holds the ranking use cases that produce analysis results.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/services"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/internal/ranking/infrastructure/cache"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// AnalyzeTasksCommand asks for a task list to be ranked.
type AnalyzeTasksCommand struct {
	Tasks []domain.Task
	// Strategy is the raw strategy name. Empty means smart_balance.
	Strategy string
	// Now overrides the handler clock.
	Now *time.Time
}

// AnalyzeTasksResult contains the ranked tasks and how they were produced.
type AnalyzeTasksResult struct {
	Result   domain.AnalysisResult
	Strategy domain.Strategy
	CacheHit bool
	// Dangling lists dependency IDs that name no task in the input.
	Dangling []domain.DanglingReference
}

// AnalyzeTasksConfig tunes the handler.
type AnalyzeTasksConfig struct {
	// StrictStrategy rejects unknown strategy names instead of scoring
	// every task zero.
	StrictStrategy bool
	// SkipValidation trusts the caller to pass well-formed tasks.
	SkipValidation bool
}

// AnalyzeTasksHandler handles the AnalyzeTasksCommand.
type AnalyzeTasksHandler struct {
	analyzer  services.Analyzer
	cache     cache.ResultCache
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
	config    AnalyzeTasksConfig
	clock     func() time.Time
}

// Option configures an AnalyzeTasksHandler.
type Option func(*AnalyzeTasksHandler)

// WithCache sets the result cache.
func WithCache(c cache.ResultCache) Option {
	return func(h *AnalyzeTasksHandler) { h.cache = c }
}

// WithPublisher sets the event publisher.
func WithPublisher(p eventbus.Publisher) Option {
	return func(h *AnalyzeTasksHandler) { h.publisher = p }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m observability.Metrics) Option {
	return func(h *AnalyzeTasksHandler) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *AnalyzeTasksHandler) { h.logger = l }
}

// WithClock sets the source of the current time.
func WithClock(clock func() time.Time) Option {
	return func(h *AnalyzeTasksHandler) { h.clock = clock }
}

// NewAnalyzeTasksHandler creates a handler. Without options it never caches,
// publishes or records metrics.
func NewAnalyzeTasksHandler(analyzer services.Analyzer, cfg AnalyzeTasksConfig, opts ...Option) *AnalyzeTasksHandler {
	h := &AnalyzeTasksHandler{
		analyzer:  analyzer,
		cache:     cache.NoopCache{},
		publisher: eventbus.NewNoopPublisher(nil),
		metrics:   observability.NoopMetrics{},
		logger:    slog.Default(),
		config:    cfg,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle executes the AnalyzeTasksCommand.
func (h *AnalyzeTasksHandler) Handle(ctx context.Context, cmd AnalyzeTasksCommand) (result *AnalyzeTasksResult, err error) {
	timer := observability.StartTimer("analyze_tasks").WithLogger(h.logger).WithMetrics(h.metrics)
	defer func() { timer.StopWithError(ctx, err) }()

	strategy, err := h.resolveStrategy(cmd.Strategy)
	if err != nil {
		h.metrics.Counter(observability.MetricAnalysisRejected, 1, observability.T("reason", "strategy"))
		return nil, err
	}

	if !h.config.SkipValidation {
		if err := domain.ValidateTasks(cmd.Tasks); err != nil {
			h.metrics.Counter(observability.MetricAnalysisRejected, 1, observability.T("reason", "validation"))
			return nil, err
		}
	}

	dangling := domain.DanglingReferences(cmd.Tasks)
	for _, d := range dangling {
		h.logger.WarnContext(ctx, "dependency references unknown task",
			"task_id", d.TaskID,
			"missing_id", d.MissingID,
			observability.ErrorKey, d.Error(),
		)
	}

	now := h.clock()
	if cmd.Now != nil {
		now = *cmd.Now
	}

	key, keyErr := cache.Key(cmd.Tasks, strategy, now)
	if keyErr != nil {
		h.logger.WarnContext(ctx, "skipping result cache", "error", keyErr)
	}

	analysis, hit := h.lookup(ctx, key)
	if !hit {
		analysis = h.analyzer.Analyze(cmd.Tasks, strategy, now)
		h.store(ctx, key, analysis)
	}

	tags := []observability.Tag{observability.T("strategy", string(strategy))}
	h.metrics.Counter(observability.MetricAnalysisTotal, 1, tags...)
	h.metrics.Histogram(observability.MetricAnalysisTasks, float64(len(cmd.Tasks)), tags...)
	if hit {
		h.metrics.Counter(observability.MetricAnalysisCacheHits, 1, tags...)
	}
	if analysis.HasCycles() {
		h.metrics.Counter(observability.MetricAnalysisCycles, int64(len(analysis.CircularDependencies)), tags...)
		h.logger.WarnContext(ctx, "circular dependencies detected",
			"task_ids", analysis.CircularDependencies,
		)
	}

	h.publish(ctx, strategy, analysis, hit)

	h.logger.InfoContext(ctx, "tasks analyzed",
		"strategy", strategy,
		"tasks", len(analysis.Tasks),
		"cycles", len(analysis.CircularDependencies),
		"cache_hit", hit,
	)

	return &AnalyzeTasksResult{
		Result:   analysis,
		Strategy: strategy,
		CacheHit: hit,
		Dangling: dangling,
	}, nil
}

func (h *AnalyzeTasksHandler) resolveStrategy(name string) (domain.Strategy, error) {
	if name == "" {
		return domain.DefaultStrategy, nil
	}
	strategy, err := domain.ParseStrategy(name)
	if err == nil {
		return strategy, nil
	}
	if h.config.StrictStrategy {
		return "", err
	}
	h.logger.Warn("unrecognized strategy, every task scores zero", "strategy", name)
	return domain.Strategy(name), nil
}

func (h *AnalyzeTasksHandler) lookup(ctx context.Context, key string) (domain.AnalysisResult, bool) {
	if key == "" {
		return domain.AnalysisResult{}, false
	}
	cached, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.WarnContext(ctx, "result cache read failed", "error", err)
		return domain.AnalysisResult{}, false
	}
	if !ok || cached == nil {
		return domain.AnalysisResult{}, false
	}
	return *cached, true
}

func (h *AnalyzeTasksHandler) store(ctx context.Context, key string, analysis domain.AnalysisResult) {
	if key == "" {
		return
	}
	if err := h.cache.Set(ctx, key, analysis); err != nil {
		h.logger.WarnContext(ctx, "result cache write failed", "error", err)
	}
}

func (h *AnalyzeTasksHandler) publish(ctx context.Context, strategy domain.Strategy, analysis domain.AnalysisResult, hit bool) {
	evt := domain.NewAnalysisCompleted(strategy, analysis, observability.CorrelationIDFromContext(ctx), hit)
	if err := eventbus.PublishJSON(ctx, h.publisher, evt.RoutingKey, evt); err != nil {
		h.metrics.Counter(observability.MetricEventsFailed, 1)
		h.logger.ErrorContext(ctx, "failed to publish analysis event",
			"event_id", evt.EventID,
			"error", err,
		)
		return
	}
	h.metrics.Counter(observability.MetricEventsPublished, 1)
}

// IsClientError reports whether err was caused by the request rather than
// the service.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTask) || errors.Is(err, domain.ErrUnrecognizedStrategy)
}
