package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/WessleyAI/mediacrawl/engine/domain"
)

// crawlFlags are shared by crawl and start.
type crawlFlags struct {
	source      string
	mode        string
	keywords    string
	postIDs     string
	creatorIDs  string
	startPage   int
	noComments  bool
	subComments bool
	headful     bool
}

func (c *crawlFlags) register(f *pflag.FlagSet) {
	f.StringVarP(&c.source, "source", "s", "", "platform code: xhs, dy, ks, bili, wb, tieba, zhihu (required)")
	f.StringVarP(&c.mode, "mode", "m", string(domain.ModeSearch), "search, detail or creator")
	f.StringVarP(&c.keywords, "keywords", "k", "", "comma-separated keywords (search)")
	f.StringVar(&c.postIDs, "post-ids", "", "comma-separated post ids (detail)")
	f.StringVar(&c.creatorIDs, "creator-ids", "", "comma-separated creator ids (creator)")
	f.IntVar(&c.startPage, "start-page", 0, "first result page (0 uses config)")
	f.BoolVar(&c.noComments, "no-comments", false, "skip comments")
	f.BoolVar(&c.subComments, "sub-comments", false, "also collect replies to comments")
	f.BoolVar(&c.headful, "headful", false, "show the browser")
}

// params merges flags over the configured crawl options. Only flags the
// user set override config.
func (c *crawlFlags) params(cmd *cobra.Command) domain.StartParams {
	opts := app.cfg.Crawl
	f := cmd.Flags()
	if c.startPage > 0 {
		opts.StartPage = c.startPage
	}
	if f.Changed("no-comments") {
		opts.EnableComments = !c.noComments
	}
	if f.Changed("sub-comments") {
		opts.EnableSubComments = c.subComments
	}
	if f.Changed("headful") {
		opts.Headless = !c.headful
	}
	return domain.StartParams{
		Source:     domain.Source(c.source),
		Mode:       domain.Mode(c.mode),
		Keywords:   c.keywords,
		PostIDs:    c.postIDs,
		CreatorIDs: c.creatorIDs,
		Options:    &opts,
	}
}
