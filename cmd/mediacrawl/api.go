package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/orchestrator"
	"github.com/WessleyAI/mediacrawl/engine/report"
	"github.com/WessleyAI/mediacrawl/pkg/metrics"
	"github.com/WessleyAI/mediacrawl/pkg/mid"
)

// api exposes an orchestrator over HTTP for callers that start a crawl and
// come back for it later.
type api struct {
	orc      *orchestrator.Orchestrator
	reg      *metrics.Registry
	logger   *slog.Logger
	defaults domain.Options
	breaker  func() string
}

func (a *api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tasks", a.handleStart)
	mux.HandleFunc("GET /api/tasks", a.handleList)
	mux.HandleFunc("GET /api/tasks/{id}", a.handlePoll)
	mux.HandleFunc("GET /api/tasks/{id}/result", a.handleResult)
	mux.HandleFunc("GET /api/tasks/{id}/report", a.handleReport)
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.Handle("GET /metrics", a.reg.Handler())

	return mid.Chain(mux,
		mid.OTel("mediacrawl"),
		mid.Recover(a.logger),
		mid.RequestID(),
		mid.Logger(a.logger),
		mid.Metrics(a.reg, routeOf),
	)
}

// routeOf labels a request by the mux pattern that matched it.
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

func (a *api) handleStart(w http.ResponseWriter, r *http.Request) {
	opts := a.defaults
	p := domain.StartParams{Options: &opts}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&p); err != nil {
		writeError(w, domain.NewParamError("body", "", errors.Join(domain.ErrInvalidParameter, err)))
		return
	}
	id, err := a.orc.Start(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/tasks/"+id)
	writeJSONStatus(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (a *api) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, map[string]any{"tasks": a.orc.Tasks()})
}

func (a *api) handlePoll(w http.ResponseWriter, r *http.Request) {
	st, err := a.orc.PollOnce(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, st)
}

func (a *api) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := a.orc.FetchResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, res)
}

func (a *api) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := a.orc.FetchResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	in := report.Input{Summary: &res.Summary, Trending: res.Trending, Sentiment: res.Sentiment}
	if err := report.Render(w, in); err != nil {
		a.logger.Error("render report", "task_id", res.TaskID, "err", err)
	}
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ok", "backend_breaker": a.breaker()})
}

// statusFor maps the domain error taxonomy to HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter), errors.Is(err, domain.ErrUnsupportedSource):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateTaskID), errors.Is(err, domain.ErrTaskNotReady):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBackendUnavailable), errors.Is(err, domain.ErrBackendTaskFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrPollTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONStatus(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
