package main

import (
	"context"
	"fmt"
	"time"

	"github.com/WessleyAI/mediacrawl/engine/backend"
	"github.com/WessleyAI/mediacrawl/engine/orchestrator"
	"github.com/WessleyAI/mediacrawl/engine/results"
	"github.com/WessleyAI/mediacrawl/pkg/metrics"
	"github.com/WessleyAI/mediacrawl/pkg/natsutil"
	"github.com/WessleyAI/mediacrawl/pkg/resilience"
)

func newClient() *backend.Client {
	opts := resilience.DefaultBreakerOpts
	opts.OnStateChange = func(from, to resilience.State) {
		app.logger.Warn("backend breaker state changed", "from", from.String(), "to", to.String())
	}
	return backend.New(app.cfg.APIURL, backend.WithBreaker(resilience.NewBreaker(opts)))
}

func newLocator() results.Locator {
	return results.Locator{ProjectRoot: app.cfg.ProjectRoot}
}

// newOrchestrator builds an orchestrator over c from app.cfg. When NATS is
// configured, lifecycle events are published and the returned close func
// drains the connection.
func newOrchestrator(c *backend.Client, reg *metrics.Registry) (*orchestrator.Orchestrator, func(), error) {
	opts := []orchestrator.Option{
		orchestrator.WithLogger(app.logger),
		orchestrator.WithTimeout(app.cfg.Timeout),
		orchestrator.WithPollInterval(app.cfg.PollInterval),
	}
	if reg != nil {
		opts = append(opts, orchestrator.WithMetrics(reg))
	}
	closer := func() {}
	if app.cfg.NATSURL != "" {
		nc, err := natsutil.Connect(app.cfg.NATSURL, "mediacrawl", app.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats: %w", err)
		}
		opts = append(opts, orchestrator.WithNotifier(orchestrator.NewNATSNotifier(nc, orchestrator.DefaultSubjectPrefix)))
		closer = func() {
			if err := nc.Drain(); err != nil {
				app.logger.Warn("nats drain failed", "err", err)
			}
		}
	}
	return orchestrator.New(c, newLocator(), opts...), closer, nil
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
