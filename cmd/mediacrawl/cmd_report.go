package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/engine/analysis"
	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/report"
	"github.com/WessleyAI/mediacrawl/engine/results"
)

var reportFlags struct {
	source   string
	contents string
	comments string
	latest   string
	out      string
	title    string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an HTML chart report from result files",
	Example: "  mediacrawl report -s xhs --latest search -o xhs.html\n" +
		"  mediacrawl report -s wb --contents c.json --comments cm.json -o -",
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFlags.source, "source", "s", "", "platform code (required)")
	f.StringVar(&reportFlags.contents, "contents", "", "contents file")
	f.StringVar(&reportFlags.comments, "comments", "", "comments file")
	f.StringVar(&reportFlags.latest, "latest", "", "crawl mode whose newest files to use")
	f.StringVarP(&reportFlags.out, "out", "o", "report.html", "output file, - for stdout")
	f.StringVar(&reportFlags.title, "title", "", "page title")
	_ = reportCmd.MarkFlagRequired("source")
	reportCmd.MarkFlagsMutuallyExclusive("contents", "latest")
	reportCmd.MarkFlagsOneRequired("contents", "latest")
}

func runReport(cmd *cobra.Command, _ []string) error {
	src := domain.Source(reportFlags.source)
	contents, comments := reportFlags.contents, reportFlags.comments
	if reportFlags.latest != "" {
		var err error
		if contents, err = latestFile(src, domain.Mode(reportFlags.latest), results.KindContents); err != nil {
			return err
		}
		if comments == "" {
			// comments are optional; a crawl without them still reports
			comments, _ = latestFile(src, domain.Mode(reportFlags.latest), results.KindComments)
		}
	}

	in, err := buildReport(src, contents, comments)
	if err != nil {
		return err
	}
	in.Title = reportFlags.title

	if reportFlags.out == "-" {
		return report.Render(cmd.OutOrStdout(), in)
	}
	f, err := os.Create(reportFlags.out)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := writeReport(f, in); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reportFlags.out)
	return nil
}

func writeReport(f io.WriteCloser, in report.Input) error {
	err := report.Render(f, in)
	return errors.Join(err, f.Close())
}

func buildReport(src domain.Source, contentsPath, commentsPath string) (report.Input, error) {
	a, err := analysis.New(src)
	if err != nil {
		return report.Input{}, err
	}
	posts, err := results.Load(contentsPath)
	if err != nil {
		return report.Input{}, err
	}
	sum := a.Summarize(posts)
	in := report.Input{Summary: &sum}
	if len(posts) > 0 {
		tr := a.Trending(posts)
		in.Trending = &tr
	}
	if commentsPath != "" {
		comments, err := results.Load(commentsPath)
		if err != nil {
			return report.Input{}, err
		}
		st := a.Sentiment(comments)
		in.Sentiment = &st
	}
	return in, nil
}
