package main

import (
	"github.com/spf13/cobra"
)

var crawlOpts crawlFlags

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Start a crawl, wait for it and print statistics",
	Example: "  mediacrawl crawl -s xhs -k 咖啡\n" +
		"  mediacrawl crawl -s dy -m detail --post-ids 7301,7302 --format json",
	RunE: runCrawl,
}

func init() {
	crawlOpts.register(crawlCmd.Flags())
	_ = crawlCmd.MarkFlagRequired("source")
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	orc, closeFn, err := newOrchestrator(newClient(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := orc.Crawl(cmd.Context(), crawlOpts.params(cmd))
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), rootFlags.format, res)
}
