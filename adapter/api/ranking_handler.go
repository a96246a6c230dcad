package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// AnalyzeRequest is the body of POST /api/v1/tasks/analyze. Now is the
// optional reference time, YYYY-MM-DD or RFC 3339; the server clock is
// used when it is empty.
type AnalyzeRequest struct {
	Tasks    []domain.TaskInput `json:"tasks"`
	Strategy string             `json:"strategy"`
	Now      string             `json:"now,omitempty"`
}

// SuggestRequest is the body of POST /api/v1/tasks/suggest.
type SuggestRequest struct {
	Tasks    []domain.TaskInput `json:"tasks"`
	Strategy string             `json:"strategy"`
	Limit    int                `json:"limit"`
	Now      string             `json:"now,omitempty"`
}

// StrategyInfo describes one strategy.
type StrategyInfo struct {
	Name        domain.Strategy `json:"name"`
	Explanation string          `json:"explanation"`
}

// RankingHandler handles the ranking endpoints.
type RankingHandler struct {
	analyze *commands.AnalyzeTasksHandler
	suggest *queries.SuggestTasksHandler
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(analyze *commands.AnalyzeTasksHandler, suggest *queries.SuggestTasksHandler) *RankingHandler {
	return &RankingHandler{analyze: analyze, suggest: suggest}
}

// Analyze handles POST /api/v1/tasks/analyze.
func (h *RankingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	now, ok := parseNow(w, req.Now)
	if !ok {
		return
	}

	res, err := h.analyze.Handle(r.Context(), commands.AnalyzeTasksCommand{
		Tasks:    domain.BuildTasks(req.Tasks, nil),
		Strategy: req.Strategy,
		Now:      now,
	})
	if err != nil {
		writeHandlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Result)
}

// Suggest handles POST /api/v1/tasks/suggest.
func (h *RankingHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	now, ok := parseNow(w, req.Now)
	if !ok {
		return
	}

	q := queries.SuggestTasksQuery{
		Strategy: req.Strategy,
		Limit:    req.Limit,
		Now:      now,
	}
	if req.Tasks != nil {
		q.Tasks = domain.BuildTasks(req.Tasks, nil)
	}
	s, err := h.suggest.Handle(r.Context(), q)
	if err != nil {
		writeHandlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SuggestSample handles GET /api/v1/tasks/suggest over the sample task list.
func (h *RankingHandler) SuggestSample(w http.ResponseWriter, r *http.Request) {
	q := queries.SuggestTasksQuery{Strategy: r.URL.Query().Get("strategy")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeInvalid(w, map[string][]string{"limit": {"must be a positive integer"}})
			return
		}
		q.Limit = limit
	}
	now, ok := parseNow(w, r.URL.Query().Get("now"))
	if !ok {
		return
	}
	q.Now = now

	s, err := h.suggest.Handle(r.Context(), q)
	if err != nil {
		writeHandlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListStrategies handles GET /api/v1/strategies.
func (h *RankingHandler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StrategyList())
}

// StrategyList returns every strategy with its explanation.
func StrategyList() []StrategyInfo {
	all := domain.Strategies()
	out := make([]StrategyInfo, 0, len(all))
	for _, s := range all {
		out = append(out, StrategyInfo{Name: s, Explanation: s.Explanation()})
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeInvalid(w, map[string][]string{"body": {msg}})
		return false
	}
	return true
}

// parseNow reads an optional reference time as a calendar date or an RFC
// 3339 timestamp. It writes a 400 and reports false when raw is malformed.
func parseNow(w http.ResponseWriter, raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if d, err := domain.ParseDate(raw); err == nil {
		t := d.Time()
		return &t, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeInvalid(w, map[string][]string{"now": {"must be YYYY-MM-DD or an RFC 3339 timestamp"}})
		return nil, false
	}
	return &t, true
}

func writeHandlerError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var serr *domain.StrategyError
	switch {
	case errors.As(err, &verr):
		writeInvalid(w, verr.Details)
	case errors.As(err, &serr):
		writeInvalid(w, map[string][]string{"strategy": {serr.Error()}})
	default:
		writeInternal(w, err)
	}
}
