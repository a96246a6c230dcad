// Package client calls a remote taskrank API, falling back to a local
// analyzer when the remote is unavailable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/services"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/resilience"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// ErrRemoteUnavailable is returned when the remote failed and no fallback
// is configured.
var ErrRemoteUnavailable = errors.New("remote analysis unavailable")

// AnalyzeRequest is the body sent to the analyze endpoint.
type AnalyzeRequest struct {
	Tasks    []domain.Task `json:"tasks"`
	Strategy string        `json:"strategy"`
	// Now is the reference time for both the remote and the local
	// fallback. Zero means the current time on whichever side ranks.
	Now time.Time `json:"now,omitzero"`
}

// StrategyInfo describes one strategy as listed by the remote.
type StrategyInfo struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// StatusError is a non-2xx answer from the remote.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker resilience.BreakerConfig
}

// Client talks to a remote taskrank API.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[any]
	fallback services.Analyzer
	metrics  observability.Metrics
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithFallback ranks locally when the remote call fails.
func WithFallback(a services.Analyzer) Option {
	return func(c *Client) { c.fallback = a }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: observability.NoopMetrics{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = resilience.NewBreaker("remote-analyze", cfg.Breaker, c.logger)
	return c
}

// Analyze ranks tasks remotely. Transport errors, 5xx answers and an open
// breaker fall back to the local analyzer when one is set. 4xx answers
// are returned as *StatusError since a local run would reject them too.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error) {
	result, err := c.analyzeRemote(ctx, req)
	if err == nil {
		return result, nil
	}

	var serr *StatusError
	if errors.As(err, &serr) && serr.StatusCode < http.StatusInternalServerError {
		return nil, err
	}

	if c.fallback == nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	c.logger.WarnContext(ctx, "remote analysis failed, ranking locally", "error", err)
	c.metrics.Counter(observability.MetricRemoteFallbacks, 1)

	strategy := domain.Strategy(req.Strategy)
	if strategy == "" {
		strategy = domain.DefaultStrategy
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	local := c.fallback.Analyze(req.Tasks, strategy, now)
	return &local, nil
}

func (c *Client) analyzeRemote(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error) {
	if c.baseURL == "" {
		return nil, errors.New("no remote URL configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	v, err := c.breaker.Execute(func() (any, error) {
		var out domain.AnalysisResult
		if err := c.do(ctx, http.MethodPost, "/api/v1/tasks/analyze", body, &out); err != nil {
			var serr *StatusError
			if errors.As(err, &serr) && serr.StatusCode < http.StatusInternalServerError {
				// Client errors say nothing about remote health.
				return &clientErrorResult{err: serr}, nil
			}
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	if ce, ok := v.(*clientErrorResult); ok {
		return nil, ce.err
	}
	return v.(*domain.AnalysisResult), nil
}

type clientErrorResult struct {
	err *StatusError
}

// Strategies lists the strategies the remote knows.
func (c *Client) Strategies(ctx context.Context) ([]StrategyInfo, error) {
	var out []StrategyInfo
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.do(ctx, http.MethodGet, "/api/v1/strategies", nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dst any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
