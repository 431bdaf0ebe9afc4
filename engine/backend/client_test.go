package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/pkg/fn"
	"github.com/WessleyAI/mediacrawl/pkg/resilience"
)

func newTestClient(url string, opts ...Option) *Client {
	opts = append([]Option{WithLimiter(rate.NewLimiter(rate.Inf, 1))}, opts...)
	return New(url, opts...)
}

func TestNewStartRequest(t *testing.T) {
	p := domain.StartParams{
		Source: domain.SourceDouyin, Mode: domain.ModeDetail, PostIDs: "1,2",
		Keywords: "ignored", Options: &domain.DefaultOptions,
	}
	raw, err := json.Marshal(NewStartRequest(p))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	_ = json.Unmarshal(raw, &got)

	want := map[string]any{
		"platform":            "dy",
		"crawler_type":        "detail",
		"login_type":          "cookie",
		"save_option":         "json",
		"headless":            true,
		"enable_comments":     true,
		"enable_sub_comments": false,
		"start_page":          float64(1),
		"specified_ids":       "1,2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStartRequest_Defaults(t *testing.T) {
	req := NewStartRequest(domain.StartParams{Source: domain.SourceZhihu, Mode: domain.ModeCreator, CreatorIDs: "u"})
	if req.SaveOption != "json" || req.StartPage != 1 {
		t.Errorf("expected defaults, got %+v", req)
	}
	if req.CreatorIDs == nil || *req.CreatorIDs != "u" || req.Keywords != nil || req.SpecifiedIDs != nil {
		t.Errorf("expected only creator_ids set, got %+v", req)
	}
}

func TestNewStartRequest_ExplicitFalseOptions(t *testing.T) {
	opts := domain.Options{}
	req := NewStartRequest(domain.StartParams{
		Source: domain.SourceXiaohongshu, Mode: domain.ModeSearch, Keywords: "x", Options: &opts,
	})
	if req.Headless || req.EnableComments || req.EnableSubComments {
		t.Errorf("expected explicit false options to be sent, got %+v", req)
	}
	if req.SaveOption != "json" || req.StartPage != 1 {
		t.Errorf("expected save format and page defaults, got %+v", req)
	}
}

func TestNewStartRequest_NilOptionsUseDefaults(t *testing.T) {
	req := NewStartRequest(domain.StartParams{Source: domain.SourceXiaohongshu, Mode: domain.ModeSearch, Keywords: "x"})
	if !req.Headless || !req.EnableComments || req.EnableSubComments {
		t.Errorf("expected default options, got %+v", req)
	}
}

func TestNewStartRequest_PayloadKeys(t *testing.T) {
	for _, n := range []int{5, 500} {
		opts := domain.DefaultOptions
		opts.StartPage = n
		raw, err := json.Marshal(NewStartRequest(domain.StartParams{
			Source: domain.SourceXiaohongshu, Mode: domain.ModeSearch, Keywords: "x", Options: &opts,
		}))
		if err != nil {
			t.Fatal(err)
		}
		var got map[string]any
		_ = json.Unmarshal(raw, &got)
		keys := make([]string, 0, len(got))
		for k := range got {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		want := []string{
			"crawler_type", "enable_comments", "enable_sub_comments", "headless",
			"keywords", "login_type", "platform", "save_option", "start_page",
		}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Errorf("payload keys mismatch (-want +got):\n%s", diff)
		}
		if got["start_page"] != float64(n) {
			t.Errorf("expected start_page %d, got %v", n, got["start_page"])
		}
	}
}

func TestStart(t *testing.T) {
	var got StartRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != pathStart {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL + "/")
	req := NewStartRequest(domain.StartParams{Source: domain.SourceXiaohongshu, Mode: domain.ModeSearch, Keywords: "咖啡"})
	if err := c.Start(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if got.Keywords == nil || *got.Keywords != "咖啡" || got.Platform != domain.SourceXiaohongshu {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestStart_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "crawler busy", http.StatusConflict)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Start(context.Background(), StartRequest{})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusConflict || se.Body != "crawler busy" {
		t.Fatalf("expected StatusError 409, got %v", err)
	}
}

func TestStart_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newTestClient(url).Start(context.Background(), StartRequest{})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathStatus {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"running","platform":"xhs","extra":1}`))
	}))
	defer srv.Close()

	sr, err := newTestClient(srv.URL).Status(context.Background()).Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if sr.Status != "running" || sr.Platform != "xhs" {
		t.Errorf("unexpected status %+v", sr)
	}
}

func TestStatus_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Status(context.Background()).Unwrap()
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := resilience.NewBreaker(resilience.BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	c := newTestClient(srv.URL, WithBreaker(b))
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_ = c.Health(ctx)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 requests before the breaker opened, got %d", hits.Load())
	}
	err := c.Health(ctx)
	if !errors.Is(err, domain.ErrBackendUnavailable) || !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected unavailable via open breaker, got %v", err)
	}
	if c.BreakerState() != resilience.StateOpen {
		t.Fatalf("expected open breaker, got %v", c.BreakerState())
	}
}

func TestWaitHealthy(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	opts := fn.RetryOpts{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	if err := c.WaitHealthy(context.Background(), opts); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestWaitHealthy_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.WaitHealthy(context.Background(), fn.RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestLimiterCancelled(t *testing.T) {
	c := New("http://127.0.0.1:0", WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// rate.Limiter.Wait fails fast on a done ctx.
	if err := c.Health(ctx); !errors.Is(err, domain.ErrBackendUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled limiter wait, got %v", err)
	}
}
