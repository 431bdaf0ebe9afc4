// Package report renders analysis results as a single HTML page of charts.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/WessleyAI/mediacrawl/engine/analysis"
	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/schema"
	"github.com/WessleyAI/mediacrawl/pkg/fn"
)

// Chart titles.
const (
	TitleHours     = "Posting hours"
	TitleAuthors   = "Most active authors"
	TitleRising    = "Authors by total likes"
	TitleTrend     = "Engagement trend"
	TitleSentiment = "Comment sentiment"
)

// Input is what a report is drawn from. Nil sections are skipped.
type Input struct {
	Title     string
	Summary   *analysis.Summary
	Trending  *analysis.TrendStats
	Sentiment *analysis.SentimentStats
}

// Render writes the report page for in to w.
func Render(w io.Writer, in Input) error {
	page := components.NewPage()
	page.PageTitle = in.pageTitle()

	for _, c := range in.charts() {
		page.AddCharts(c)
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

func (in Input) pageTitle() string {
	if in.Title != "" {
		return in.Title
	}
	if src := in.source(); src != "" {
		return schema.DisplayName(src) + " report"
	}
	return "mediacrawl report"
}

// source is taken from whichever section is present.
func (in Input) source() domain.Source {
	switch {
	case in.Summary != nil && in.Summary.Source != "":
		return in.Summary.Source
	case in.Trending != nil && in.Trending.Source != "":
		return in.Trending.Source
	case in.Sentiment != nil:
		return in.Sentiment.Source
	}
	return ""
}

func (in Input) charts() []components.Charter {
	var out []components.Charter
	if s := in.Summary; s != nil {
		if s.Time != nil && len(s.Time.Hours) > 0 {
			out = append(out, hoursChart(s.Time))
		}
		if s.Authors != nil && len(s.Authors.TopAuthors) > 0 {
			out = append(out, authorsChart(s.Authors))
		}
	}
	if tr := in.Trending; tr != nil {
		if len(tr.RisingAuthors) > 0 {
			out = append(out, risingChart(tr.RisingAuthors))
		}
		if tr.EngagementTrend != nil && !tr.EngagementTrend.Insufficient() {
			out = append(out, trendChart(tr.EngagementTrend))
		}
	}
	if st := in.Sentiment; st != nil && st.TotalComments > 0 {
		out = append(out, sentimentChart(st))
	}
	return out
}

func newBar(title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	return bar
}

// hoursChart draws all 24 hours so gaps stay visible.
func hoursChart(td *analysis.TimeDistribution) *charts.Bar {
	peaks := fn.Map(td.PeakHours, func(h analysis.HourCount) string { return h.Hour })
	bar := newBar(TitleHours, "peak: "+strings.Join(peaks, ", "))
	x := make([]string, 24)
	y := make([]opts.BarData, 24)
	for h := 0; h < 24; h++ {
		x[h] = strconv.Itoa(h)
		y[h] = opts.BarData{Value: td.Hours[h]}
	}
	bar.SetXAxis(x).AddSeries("Posts", y)
	return bar
}

func authorsChart(as *analysis.AuthorStats) *charts.Bar {
	bar := newBar(TitleAuthors, fmt.Sprintf("%d unique authors", as.UniqueAuthors))
	x := make([]string, len(as.TopAuthors))
	y := make([]opts.BarData, len(as.TopAuthors))
	for i, a := range as.TopAuthors {
		x[i] = a.Name
		y[i] = opts.BarData{Value: a.PostCount}
	}
	bar.SetXAxis(x).AddSeries("Posts", y)
	return bar
}

func risingChart(authors []analysis.AuthorLikes) *charts.Bar {
	bar := newBar(TitleRising, "")
	x := make([]string, len(authors))
	total := make([]opts.BarData, len(authors))
	avg := make([]opts.BarData, len(authors))
	for i, a := range authors {
		x[i] = a.Author
		total[i] = opts.BarData{Value: a.TotalLikes}
		avg[i] = opts.BarData{Value: a.AvgLikes}
	}
	bar.SetXAxis(x).
		AddSeries("Total likes", total).
		AddSeries("Average likes", avg)
	return bar
}

func trendChart(t *analysis.EngagementTrend) *charts.Bar {
	bar := newBar(TitleTrend, fmt.Sprintf("%s, %.2f%%", t.Trend, t.ChangeRate))
	bar.SetXAxis([]string{"First period", "Second period"}).
		AddSeries("Average likes", []opts.BarData{{Value: t.FirstPeriodAvg}, {Value: t.SecondPeriodAvg}})
	return bar
}

func sentimentChart(st *analysis.SentimentStats) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: TitleSentiment, Subtitle: fmt.Sprintf("score %.3f", st.Score)}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	pie.AddSeries("Comments", []opts.PieData{
		{Name: string(analysis.Positive), Value: st.Positive.Count},
		{Name: string(analysis.Negative), Value: st.Negative.Count},
		{Name: string(analysis.Neutral), Value: st.Neutral.Count},
	})
	return pie
}
