// Package backend is the HTTP client for the remote crawler service.
//
// Every failure it returns wraps domain.ErrBackendUnavailable: transport
// errors, non-2xx responses, undecodable bodies, and calls rejected by the
// circuit breaker. Requests are never retried here; WaitHealthy is the only
// retrying call.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/pkg/fn"
	"github.com/WessleyAI/mediacrawl/pkg/resilience"
)

const (
	pathStart  = "/api/crawler/start"
	pathStatus = "/api/crawler/status"
	pathHealth = "/api/health"

	// DefaultRequestTimeout bounds a single backend request.
	DefaultRequestTimeout = 5 * time.Minute

	maxErrorBody = 512
)

// Client talks to one crawler backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter paces outgoing requests.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() resilience.State { return c.breaker.State() }

// StartRequest is the backend's start payload.
type StartRequest struct {
	Platform          domain.Source `json:"platform"`
	CrawlerType       domain.Mode   `json:"crawler_type"`
	LoginType         string        `json:"login_type"`
	SaveOption        string        `json:"save_option"`
	Headless          bool          `json:"headless"`
	EnableComments    bool          `json:"enable_comments"`
	EnableSubComments bool          `json:"enable_sub_comments"`
	StartPage         int           `json:"start_page"`
	Keywords          *string       `json:"keywords,omitempty"`
	SpecifiedIDs      *string       `json:"specified_ids,omitempty"`
	CreatorIDs        *string       `json:"creator_ids,omitempty"`
}

// NewStartRequest builds the payload for p. Only the mode-selected id field
// is set; the backend always reuses the saved cookie login. Nil options
// fall back to domain.DefaultOptions.
func NewStartRequest(p domain.StartParams) StartRequest {
	o := p.CrawlOptions()
	if o.SaveFormat == "" {
		o.SaveFormat = domain.DefaultOptions.SaveFormat
	}
	if o.StartPage <= 0 {
		o.StartPage = domain.DefaultOptions.StartPage
	}
	req := StartRequest{
		Platform:          p.Source,
		CrawlerType:       p.Mode,
		LoginType:         "cookie",
		SaveOption:        o.SaveFormat,
		Headless:          o.Headless,
		EnableComments:    o.EnableComments,
		EnableSubComments: o.EnableSubComments,
		StartPage:         o.StartPage,
	}
	v := p.Identifier()
	switch p.Mode {
	case domain.ModeSearch:
		req.Keywords = &v
	case domain.ModeDetail:
		req.SpecifiedIDs = &v
	case domain.ModeCreator:
		req.CreatorIDs = &v
	}
	return req
}

// StatusResponse is the backend's report on its current job. The backend
// runs one job at a time and does not echo task ids.
type StatusResponse struct {
	Status      string `json:"status"`
	Platform    string `json:"platform,omitempty"`
	CrawlerType string `json:"crawler_type,omitempty"`
}

// Start submits a job. The response body is not interpreted.
func (c *Client) Start(ctx context.Context, req StartRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: encode start: %w", domain.ErrBackendUnavailable, err)
	}
	r := c.do(ctx, http.MethodPost, pathStart, body)
	_, err = r.Unwrap()
	return err
}

// Status fetches the backend's current job status.
func (c *Client) Status(ctx context.Context) fn.Result[StatusResponse] {
	return fn.AndThenResult(c.do(ctx, http.MethodGet, pathStatus, nil), func(raw []byte) fn.Result[StatusResponse] {
		var sr StatusResponse
		if err := json.Unmarshal(raw, &sr); err != nil {
			return fn.Err[StatusResponse](fmt.Errorf("%w: decode status: %w", domain.ErrBackendUnavailable, err))
		}
		return fn.Ok(sr)
	})
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, pathHealth, nil).Unwrap()
	return err
}

// WaitHealthy polls Health with backoff until it succeeds, the attempts in
// opts run out, or ctx ends.
func (c *Client) WaitHealthy(ctx context.Context, opts fn.RetryOpts) error {
	r := fn.Retry(ctx, opts, func(ctx context.Context) fn.Result[struct{}] {
		if err := c.Health(ctx); err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})
	_, err := r.Unwrap()
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) fn.Result[[]byte] {
	if err := c.limiter.Wait(ctx); err != nil {
		return fn.Err[[]byte](fmt.Errorf("%w: %s %s: %w", domain.ErrBackendUnavailable, method, path, err))
	}
	r := resilience.CallResult(c.breaker, ctx, func(ctx context.Context) fn.Result[[]byte] {
		return c.roundTrip(ctx, method, path, body)
	})
	if _, err := r.Unwrap(); err != nil {
		return fn.Err[[]byte](fmt.Errorf("%w: %s %s: %w", domain.ErrBackendUnavailable, method, path, err))
	}
	return r
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) fn.Result[[]byte] {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fn.Err[[]byte](err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fn.Err[[]byte](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fn.Err[[]byte](&StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))})
	}
	return fn.FromPair(io.ReadAll(resp.Body))
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}
