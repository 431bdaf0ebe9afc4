package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/pkg/fn"
)

var healthFlags struct {
	attempts int
	wait     time.Duration
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the MediaCrawler API server is reachable",
	RunE:  runHealth,
}

func init() {
	f := healthCmd.Flags()
	f.IntVar(&healthFlags.attempts, "attempts", 1, "tries before giving up")
	f.DurationVar(&healthFlags.wait, "wait", time.Second, "initial wait between tries")
}

func runHealth(cmd *cobra.Command, _ []string) error {
	c := newClient()
	opts := fn.DefaultRetry
	opts.MaxAttempts = max(healthFlags.attempts, 1)
	opts.InitialWait = healthFlags.wait
	ctx, cancel := withTimeout(cmd.Context(), app.cfg.Timeout)
	defer cancel()
	if err := c.WaitHealthy(ctx, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", c.BaseURL())
	return nil
}
