package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

var startOpts struct {
	crawlFlags
	wait bool
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a crawl and print its task id",
	Long: "start sends one crawl request to the backend and returns immediately.\n" +
		"With --wait it polls until the backend is idle and prints the status.",
	RunE: runStart,
}

func init() {
	f := startCmd.Flags()
	startOpts.register(f)
	f.BoolVar(&startOpts.wait, "wait", false, "poll until the crawl finishes")
	_ = startCmd.MarkFlagRequired("source")
}

func runStart(cmd *cobra.Command, _ []string) error {
	orc, closeFn, err := newOrchestrator(newClient(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	id, err := orc.Start(ctx, startOpts.params(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !startOpts.wait {
		fmt.Fprintln(out, id)
		return nil
	}
	if err := orc.AwaitCompletion(ctx, id, app.cfg.Timeout, app.cfg.PollInterval); err != nil {
		return err
	}
	t, err := orc.Task(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\t%s\n", id, t.Status)
	if t.Status == domain.StatusIdle {
		fmt.Fprintf(out, "run 'mediacrawl analyze -s %s --latest %s' for statistics\n", t.Source, t.Mode)
	}
	return nil
}
