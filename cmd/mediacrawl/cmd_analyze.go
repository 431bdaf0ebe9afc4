package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/engine/analysis"
	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/results"
	"github.com/WessleyAI/mediacrawl/engine/schema"
)

var analyzeFlags struct {
	source string
	kind   string
	file   string
	latest string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a MediaCrawler JSON file",
	Long: "analyze runs one analysis over a result file. Give the file with --file,\n" +
		"or use --latest MODE to pick today's newest file for the source.\n" +
		"Sentiment reads the comments file, the other analyses the contents file.",
	Example: "  mediacrawl analyze -s xhs --file data/xhs/json/search_contents_2024-01-01.json\n" +
		"  mediacrawl analyze -s bili --latest search --kind sentiment",
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.source, "source", "s", "", "platform code (required)")
	f.StringVar(&analyzeFlags.kind, "kind", string(analysis.KindSummary), "summary, trending or sentiment")
	f.StringVar(&analyzeFlags.file, "file", "", "result file to analyze")
	f.StringVar(&analyzeFlags.latest, "latest", "", "crawl mode whose newest file to analyze")
	_ = analyzeCmd.MarkFlagRequired("source")
	analyzeCmd.MarkFlagsMutuallyExclusive("file", "latest")
	analyzeCmd.MarkFlagsOneRequired("file", "latest")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	src := domain.Source(analyzeFlags.source)
	kind := analysis.Kind(analyzeFlags.kind)

	path := analyzeFlags.file
	if path == "" {
		want := results.KindContents
		if kind == analysis.KindSentiment {
			want = results.KindComments
		}
		var err error
		if path, err = latestFile(src, domain.Mode(analyzeFlags.latest), want); err != nil {
			return err
		}
	}

	records, err := results.Load(path)
	if err != nil {
		return err
	}
	out, err := analysis.Analyze(kind, records, src)
	if err != nil {
		return err
	}
	app.logger.Info("analyzed", "source", src, "kind", kind, "file", path, "records", len(records))
	return printAnalysis(cmd.OutOrStdout(), rootFlags.format, out)
}

// latestFile finds today's newest result file of kind k for src and mode.
func latestFile(src domain.Source, mode domain.Mode, k results.Kind) (string, error) {
	if !mode.Valid() {
		return "", domain.NewParamError("latest", string(mode), domain.ErrInvalidParameter)
	}
	files, err := newLocator().Locate(domain.Task{Source: src, Mode: mode})
	if err != nil {
		return "", err
	}
	path, ok := files[k]
	if !ok {
		dir, _ := newLocator().Dir(src)
		return "", fmt.Errorf("no %s %s file for %s in %s", mode, k, schema.DisplayName(src), dir)
	}
	return path, nil
}
