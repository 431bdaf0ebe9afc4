package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/pkg/metrics"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task API and Prometheus metrics",
	Long: "serve keeps an in-process task registry and exposes it over HTTP:\n" +
		"  POST /api/tasks              start a crawl\n" +
		"  GET  /api/tasks              list started tasks\n" +
		"  GET  /api/tasks/{id}         poll once\n" +
		"  GET  /api/tasks/{id}/result  statistics once idle\n" +
		"  GET  /api/tasks/{id}/report  HTML charts once idle\n" +
		"  GET  /metrics, /healthz",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (default :PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	reg := metrics.New()
	client := newClient()
	orc, closeFn, err := newOrchestrator(client, reg)
	if err != nil {
		return err
	}
	defer closeFn()

	a := &api{
		orc:      orc,
		reg:      reg,
		logger:   app.logger,
		defaults: app.cfg.Crawl,
		breaker:  func() string { return client.BreakerState().String() },
	}

	addr := serveFlags.addr
	if addr == "" {
		addr = ":" + app.cfg.Port
	}
	ctx := cmd.Context()
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("serving", "addr", addr, "backend", app.cfg.APIURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
