// Package orchestrator drives remote crawl tasks through their lifecycle:
// start, poll to a terminal status under a local time budget, and turn the
// backend's result files into statistics.
//
// Timing out locally never stops the remote job. The registry keeps the last
// status the backend reported.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/WessleyAI/mediacrawl/engine/analysis"
	"github.com/WessleyAI/mediacrawl/engine/backend"
	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/results"
	"github.com/WessleyAI/mediacrawl/engine/schema"
	"github.com/WessleyAI/mediacrawl/engine/tasks"
	"github.com/WessleyAI/mediacrawl/pkg/fn"
	"github.com/WessleyAI/mediacrawl/pkg/metrics"
)

const (
	DefaultTimeout      = 600 * time.Second
	DefaultPollInterval = 2 * time.Second
)

// Backend is the crawler service as seen by the orchestrator.
type Backend interface {
	Start(ctx context.Context, req backend.StartRequest) error
	Status(ctx context.Context) fn.Result[backend.StatusResponse]
}

// Orchestrator starts and tracks crawl tasks. It is safe for concurrent use.
type Orchestrator struct {
	backend  Backend
	registry *tasks.Registry
	locator  results.Locator
	notifier Notifier
	metrics  *Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	loc      *time.Location

	timeout  time.Duration
	interval time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry shares an existing task registry.
func WithRegistry(r *tasks.Registry) Option { return func(o *Orchestrator) { o.registry = r } }

// WithNotifier sends lifecycle events to n.
func WithNotifier(n Notifier) Option { return func(o *Orchestrator) { o.notifier = n } }

// WithMetrics registers the orchestrator collectors on r.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *Orchestrator) { o.metrics = NewMetrics(r) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

// WithClock replaces time.Now for task ids, elapsed times and deadlines.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithLocation sets the zone used to read epoch timestamps in results.
func WithLocation(loc *time.Location) Option { return func(o *Orchestrator) { o.loc = loc } }

// WithTimeout sets the wait budget Crawl and AwaitAll use.
func WithTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.timeout = d } }

// WithPollInterval sets the poll interval Crawl and AwaitAll use.
func WithPollInterval(d time.Duration) Option { return func(o *Orchestrator) { o.interval = d } }

// New returns an Orchestrator over b, reading results through loc.
func New(b Backend, loc results.Locator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  b,
		locator:  loc,
		logger:   slog.Default(),
		tracer:   otel.Tracer("github.com/WessleyAI/mediacrawl/engine/orchestrator"),
		now:      time.Now,
		loc:      time.Local,
		timeout:  DefaultTimeout,
		interval: DefaultPollInterval,
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = tasks.NewRegistry()
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(metrics.NewBare())
	}
	return o
}

// TaskStatus is one observation of a task's backend status.
type TaskStatus struct {
	TaskID    string        `json:"task_id"`
	Status    domain.Status `json:"status"`
	RawStatus string        `json:"raw_status"`
	Source    domain.Source `json:"platform"`
	Mode      domain.Mode   `json:"mode"`
	StartedAt time.Time     `json:"start_time"`
	Elapsed   float64       `json:"elapsed_time"`
}

// TaskResult is the statistics derived from a completed task's files.
type TaskResult struct {
	TaskID        string                   `json:"task_id"`
	Source        domain.Source            `json:"platform"`
	SourceName    string                   `json:"platform_name"`
	Mode          domain.Mode              `json:"mode"`
	Files         results.Files            `json:"data_files"`
	TotalPosts    int                      `json:"total_posts"`
	TotalComments int                      `json:"total_comments"`
	Summary       analysis.Summary         `json:"summary"`
	Trending      *analysis.TrendStats     `json:"trending,omitempty"`
	Sentiment     *analysis.SentimentStats `json:"sentiment,omitempty"`
}

// Tasks lists registered tasks in start order.
func (o *Orchestrator) Tasks() []domain.Task { return o.registry.List() }

// Task returns the registered task with id.
func (o *Orchestrator) Task(id string) (domain.Task, error) { return o.registry.Lookup(id) }

// Start validates p, submits it to the backend and registers the task.
// A task id already in use, by a registered task or a start in flight,
// fails with ErrDuplicateTaskID before any backend request.
func (o *Orchestrator) Start(ctx context.Context, p domain.StartParams) (string, error) {
	if err := domain.ValidateStart(p); err != nil {
		return "", err
	}
	startedAt := o.now()
	id := domain.TaskID(p.Source, p.Mode, startedAt)

	if err := o.reserve(id); err != nil {
		return "", err
	}
	defer o.release(id)

	err := o.timed("start", func() error {
		return o.backend.Start(ctx, backend.NewStartRequest(p))
	})
	if err != nil {
		o.logger.Error("start crawl failed", "task_id", id, "source", p.Source, "mode", p.Mode, "err", err)
		return "", domain.NewTaskError("start", id, domain.ErrBackendUnavailable, err)
	}

	t := domain.Task{ID: id, Source: p.Source, Mode: p.Mode, StartedAt: startedAt, Status: domain.StatusPolling}
	switch p.Mode {
	case domain.ModeSearch:
		t.Keywords = p.Keywords
	case domain.ModeDetail:
		t.PostIDs = p.PostIDs
	case domain.ModeCreator:
		t.CreatorIDs = p.CreatorIDs
	}
	if err := o.registry.Register(t); err != nil {
		return "", err
	}

	o.metrics.started.WithLabelValues(string(p.Source)).Inc()
	o.logger.Info("crawl started", "task_id", id, "source", p.Source, "mode", p.Mode, "identifier", t.Identifier())
	o.emit(ctx, EventStarted, t, nil)
	return id, nil
}

func (o *Orchestrator) reserve(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.pending[id]; busy || o.registry.Has(id) {
		return domain.NewTaskError("start", id, domain.ErrDuplicateTaskID, nil)
	}
	o.pending[id] = struct{}{}
	return nil
}

func (o *Orchestrator) release(id string) {
	o.mu.Lock()
	delete(o.pending, id)
	o.mu.Unlock()
}

// PollOnce asks the backend for its current status. It never changes the
// registry, so repeated calls are safe.
func (o *Orchestrator) PollOnce(ctx context.Context, id string) (TaskStatus, error) {
	t, err := o.registry.Lookup(id)
	if err != nil {
		return TaskStatus{}, err
	}

	var sr backend.StatusResponse
	err = o.timed("status", func() error {
		var err error
		sr, err = o.backend.Status(ctx).Unwrap()
		return err
	})
	if err != nil {
		return TaskStatus{}, domain.NewTaskError("poll", id, domain.ErrBackendUnavailable, err)
	}

	st := TaskStatus{
		TaskID:    id,
		Status:    domain.StatusFromBackend(sr.Status),
		RawStatus: sr.Status,
		Source:    t.Source,
		Mode:      t.Mode,
		StartedAt: t.StartedAt,
		Elapsed:   o.now().Sub(t.StartedAt).Seconds(),
	}
	if sr.Platform != "" {
		st.Source = domain.Source(sr.Platform)
	}
	o.metrics.polls.WithLabelValues(string(st.Status)).Inc()
	return st, nil
}

// AwaitCompletion polls id every interval until the backend reports idle
// (nil) or error (ErrBackendTaskFailed), or until more than timeout has
// passed since the call began (ErrPollTimeout). The deadline is checked
// before every poll and before every sleep. Cancelling ctx returns its
// error. Each observed status is recorded in the registry.
func (o *Orchestrator) AwaitCompletion(ctx context.Context, id string, timeout, interval time.Duration) (err error) {
	t, err := o.registry.Lookup(id)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.AwaitCompletion", trace.WithAttributes(
		attribute.String("task.id", id),
		attribute.String("task.source", string(t.Source)),
		attribute.String("task.mode", string(t.Mode)),
	))
	awaiting := o.metrics.awaiting.WithLabelValues(string(t.Source))
	awaiting.Inc()
	defer func() {
		awaiting.Dec()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	began := o.now()
	expired := func() bool { return o.now().Sub(began) > timeout }
	polls := 0

	for {
		if expired() {
			return o.timedOut(ctx, t, timeout, polls)
		}
		st, err := o.PollOnce(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				o.metrics.outcomes.WithLabelValues(outcomeCancelled).Inc()
				return ctxErr
			}
			o.metrics.outcomes.WithLabelValues(outcomeUnavailable).Inc()
			return err
		}
		polls++
		if err := o.registry.SetStatus(id, st.Status); err != nil {
			o.logger.Debug("record status failed", "task_id", id, "err", err)
		}
		t.Status = st.Status

		switch st.Status {
		case domain.StatusIdle:
			o.metrics.outcomes.WithLabelValues(outcomeCompleted).Inc()
			o.logger.Info("crawl completed", "task_id", id, "polls", polls, "elapsed_s", st.Elapsed)
			o.emit(ctx, EventCompleted, t, nil)
			return nil
		case domain.StatusError:
			err := domain.NewTaskError("await", id, domain.ErrBackendTaskFailed, nil)
			o.metrics.outcomes.WithLabelValues(outcomeFailed).Inc()
			o.logger.Error("crawl failed", "task_id", id, "polls", polls)
			o.emit(ctx, EventFailed, t, err)
			return err
		}

		if expired() {
			return o.timedOut(ctx, t, timeout, polls)
		}
		o.logger.Debug("crawl running", "task_id", id, "status", st.RawStatus, "elapsed_s", st.Elapsed)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			o.metrics.outcomes.WithLabelValues(outcomeCancelled).Inc()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (o *Orchestrator) timedOut(ctx context.Context, t domain.Task, timeout time.Duration, polls int) error {
	err := domain.NewTaskError("await", t.ID, domain.ErrPollTimeout,
		fmt.Errorf("no terminal status within %s", timeout))
	o.metrics.outcomes.WithLabelValues(outcomeTimedOut).Inc()
	o.logger.Warn("crawl wait timed out", "task_id", t.ID, "timeout", timeout, "polls", polls, "last_status", t.Status)
	o.emit(ctx, EventTimedOut, t, err)
	return err
}

// FetchResult re-polls id and, when the backend is idle, locates the task's
// result files and analyzes them. Unreadable files are logged and leave
// their part of the result empty.
func (o *Orchestrator) FetchResult(ctx context.Context, id string) (*TaskResult, error) {
	t, err := o.registry.Lookup(id)
	if err != nil {
		return nil, err
	}
	st, err := o.PollOnce(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Status != domain.StatusIdle {
		return nil, domain.NewTaskError("fetch", id, domain.ErrTaskNotReady, fmt.Errorf("status %s", st.Status))
	}

	files, err := o.locator.Locate(t)
	if err != nil {
		return nil, err
	}
	a, err := analysis.New(t.Source, analysis.WithLocation(o.loc))
	if err != nil {
		return nil, err
	}

	res := &TaskResult{
		TaskID:     id,
		Source:     t.Source,
		SourceName: schema.DisplayName(t.Source),
		Mode:       t.Mode,
		Files:      files,
	}

	contents := o.load(id, files, results.KindContents)
	res.TotalPosts = len(contents)
	res.Summary = a.Summarize(contents)
	if len(contents) > 0 {
		tr := a.Trending(contents)
		res.Trending = &tr
	}

	if _, ok := files[results.KindComments]; ok {
		comments := o.load(id, files, results.KindComments)
		res.TotalComments = len(comments)
		s := a.Sentiment(comments)
		res.Sentiment = &s
	}
	return res, nil
}

func (o *Orchestrator) load(id string, files results.Files, k results.Kind) []schema.Record {
	path, ok := files[k]
	if !ok {
		return nil
	}
	recs, err := o.locator.Load(path)
	if err != nil {
		o.logger.Warn("read result file failed", "task_id", id, "kind", k, "path", path, "err", err)
		return nil
	}
	return recs
}

// Crawl starts p, waits for it with the configured budget, and fetches the
// result.
func (o *Orchestrator) Crawl(ctx context.Context, p domain.StartParams) (*TaskResult, error) {
	id, err := o.Start(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := o.AwaitCompletion(ctx, id, o.timeout, o.interval); err != nil {
		return nil, err
	}
	return o.FetchResult(ctx, id)
}

// AwaitAll waits for every id concurrently. The first failure cancels the
// remaining waits and is returned; remote jobs are left running.
func (o *Orchestrator) AwaitAll(ctx context.Context, ids ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			return o.AwaitCompletion(ctx, id, o.timeout, o.interval)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) timed(op string, call func() error) error {
	start := time.Now()
	err := call()
	o.metrics.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}

func (o *Orchestrator) emit(ctx context.Context, typ EventType, t domain.Task, cause error) {
	if o.notifier == nil {
		return
	}
	e := Event{
		ID:     uuid.NewString(),
		Type:   typ,
		TaskID: t.ID,
		Source: t.Source,
		Mode:   t.Mode,
		Status: t.Status,
		At:     o.now(),
	}
	if cause != nil {
		e.Error = cause.Error()
	}
	if err := o.notifier.Notify(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Warn("lifecycle event not delivered", "task_id", t.ID, "event", typ, "err", err)
	}
}
