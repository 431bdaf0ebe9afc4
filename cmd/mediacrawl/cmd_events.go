package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/engine/orchestrator"
	"github.com/WessleyAI/mediacrawl/pkg/natsutil"
)

var eventsFlags struct {
	prefix string
	count  int
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print task lifecycle events published on NATS",
	Long: "events subscribes to {prefix}.> on the configured NATS server and prints\n" +
		"one JSON line per event until interrupted or --count events arrive.",
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.StringVar(&eventsFlags.prefix, "prefix", orchestrator.DefaultSubjectPrefix, "subject prefix")
	f.IntVar(&eventsFlags.count, "count", 0, "exit after this many events (0 means never)")
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if app.cfg.NATSURL == "" {
		return errors.New("events: NATS_URL or nats_url must be set")
	}
	nc, err := natsutil.Connect(app.cfg.NATSURL, "mediacrawl-events", app.logger)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		mu   sync.Mutex
		seen int
	)
	enc := json.NewEncoder(cmd.OutOrStdout())
	sub, err := natsutil.Subscribe(nc, eventsFlags.prefix+".>", func(_ context.Context, e orchestrator.Event) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(e); err != nil {
			app.logger.Warn("write event failed", "err", err)
		}
		seen++
		if eventsFlags.count > 0 && seen >= eventsFlags.count {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	app.logger.Info("listening for events", "subject", sub.Subject)
	<-ctx.Done()
	return nil
}
