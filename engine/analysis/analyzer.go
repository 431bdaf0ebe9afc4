// Package analysis computes summary, trend, and sentiment statistics over
// crawled records of any supported source, reading every value through the
// source's schema so results are comparable across platforms.
package analysis

import (
	"fmt"
	"time"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/schema"
)

// Kind selects an analysis.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindTrending  Kind = "trending"
	KindSentiment Kind = "sentiment"
)

// Kinds lists the supported analyses.
var Kinds = []Kind{KindSummary, KindTrending, KindSentiment}

const (
	topAuthorsLimit = 10
	topPostsLimit   = 10
	peakHoursLimit  = 3

	msgNoData            = "No data to analyze"
	msgNoComments        = "No comments to analyze"
	msgNoTimeData        = "No time data available"
	msgNotEnoughForTrend = "Not enough data for trend analysis"

	unknownAuthor = "Unknown"
)

// Analyzer runs analyses for one source.
type Analyzer struct {
	source domain.Source
	acc    *schema.Accessor
	loc    *time.Location
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLocation sets the zone used to read epoch timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(a *Analyzer) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// New returns an Analyzer for src, or ErrUnsupportedSource.
func New(src domain.Source, opts ...Option) (*Analyzer, error) {
	acc, err := schema.For(src)
	if err != nil {
		return nil, err
	}
	a := &Analyzer{source: src, acc: acc, loc: time.Local}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Source returns the analyzed source.
func (a *Analyzer) Source() domain.Source { return a.source }

// Run dispatches kind over records.
func (a *Analyzer) Run(kind Kind, records []schema.Record) (any, error) {
	switch kind {
	case KindSummary:
		return a.Summarize(records), nil
	case KindTrending:
		return a.Trending(records), nil
	case KindSentiment:
		return a.Sentiment(records), nil
	}
	return nil, domain.NewParamError("analysis_type", string(kind), domain.ErrInvalidParameter)
}

// Analyze runs kind over records of src.
func Analyze(kind Kind, records []schema.Record, src domain.Source) (any, error) {
	a, err := New(src)
	if err != nil {
		return nil, err
	}
	return a.Run(kind, records)
}

// Summarize is a convenience for New(src).Summarize(records).
func Summarize(records []schema.Record, src domain.Source) (Summary, error) {
	a, err := New(src)
	if err != nil {
		return Summary{}, err
	}
	return a.Summarize(records), nil
}

// Trending is a convenience for New(src).Trending(records).
func Trending(records []schema.Record, src domain.Source) (TrendStats, error) {
	a, err := New(src)
	if err != nil {
		return TrendStats{}, err
	}
	return a.Trending(records), nil
}

// Sentiment is a convenience for New(src).Sentiment(comments).
func Sentiment(comments []schema.Record, src domain.Source) (SentimentStats, error) {
	a, err := New(src)
	if err != nil {
		return SentimentStats{}, err
	}
	return a.Sentiment(comments), nil
}

func (a *Analyzer) author(rec schema.Record) string {
	return a.acc.String(rec, schema.FieldUserName, unknownAuthor)
}

func (a *Analyzer) likes(rec schema.Record) int64 {
	return a.acc.Count(rec, schema.FieldLikeCount)
}

func hourLabel(h int) string { return fmt.Sprintf("%d:00", h) }
