package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/WessleyAI/mediacrawl/engine/analysis"
	"github.com/WessleyAI/mediacrawl/engine/orchestrator"
	"github.com/WessleyAI/mediacrawl/engine/results"
	"github.com/WessleyAI/mediacrawl/engine/schema"
	"github.com/WessleyAI/mediacrawl/pkg/fn"
	"github.com/WessleyAI/mediacrawl/pkg/tableview"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printResult(w io.Writer, format string, res *orchestrator.TaskResult) error {
	if format == "json" {
		return writeJSON(w, res)
	}
	mode := tableview.ParseMode(format)
	tb := tableview.New(mode, fmt.Sprintf("%s %s (%s)", res.SourceName, res.Mode, res.TaskID)).
		Header("Metric", "Value").
		Row("posts", res.TotalPosts).
		Row("comments", res.TotalComments)
	for _, k := range []results.Kind{results.KindContents, results.KindComments} {
		if path, ok := res.Files[k]; ok {
			tb.Row(string(k)+" file", path)
		}
	}
	blocks := []string{tb.String(), summaryTable(mode, res.Summary)}
	if res.Trending != nil {
		blocks = append(blocks, trendingTable(mode, *res.Trending))
	}
	if res.Sentiment != nil {
		blocks = append(blocks, sentimentTable(mode, *res.Sentiment))
	}
	_, err := fmt.Fprintln(w, strings.Join(nonEmpty(blocks), "\n\n"))
	return err
}

func printAnalysis(w io.Writer, format string, v any) error {
	if format == "json" {
		return writeJSON(w, v)
	}
	mode := tableview.ParseMode(format)
	var out string
	switch a := v.(type) {
	case analysis.Summary:
		out = summaryTable(mode, a)
	case analysis.TrendStats:
		out = trendingTable(mode, a)
	case analysis.SentimentStats:
		out = sentimentTable(mode, a)
	default:
		return writeJSON(w, v)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func nonEmpty(blocks []string) []string {
	return fn.Filter(blocks, func(s string) bool { return s != "" })
}

func summaryTable(mode tableview.Mode, s analysis.Summary) string {
	tb := tableview.New(mode, schema.DisplayName(s.Source)+" summary").Header("Metric", "Value")
	if s.Message != "" {
		return tb.Row("message", s.Message).String()
	}
	tb.Row("items", s.TotalItems)
	if e := s.Engagement; e != nil {
		tb.Row("likes total", e.Likes.Total).
			Row("likes avg", e.Likes.Average).
			Row("likes max", e.Likes.Max).
			Row("likes min", e.Likes.Min).
			Row("comments total", e.Comments.Total).
			Row("shares total", e.Shares.Total).
			Row("collects total", e.TotalCollects).
			Row("engagement rate", e.EngagementRate)
	}
	if a := s.Authors; a != nil {
		tb.Row("unique authors", a.UniqueAuthors)
		top := fn.Map(a.TopAuthors, func(c analysis.AuthorCount) string {
			return fmt.Sprintf("%s (%d)", c.Name, c.PostCount)
		})
		if len(top) > 0 {
			tb.Row("top authors", strings.Join(top, ", "))
		}
	}
	if td := s.Time; td != nil {
		if td.Message != "" {
			tb.Row("peak hours", td.Message)
		} else {
			tb.Row("peak hours", strings.Join(fn.Map(td.PeakHours, func(h analysis.HourCount) string {
				return fmt.Sprintf("%s (%d)", h.Hour, h.Count)
			}), ", "))
		}
	}
	if c := s.Content; c != nil {
		tb.Row("avg title length", c.AverageTitleLength)
	}
	if p := s.TopPost; p != nil {
		tb.Row("top post", fmt.Sprintf("%s by %s, %d likes", p.Title, p.Author, p.Likes))
	}
	return tb.AlignRight(2).String()
}

func trendingTable(mode tableview.Mode, t analysis.TrendStats) string {
	if t.Message != "" {
		return tableview.New(mode, "Trending").Header("Metric", "Value").Row("message", t.Message).String()
	}
	posts := tableview.New(mode, "Top posts").Header("#", "Title", "Author", "Likes", "Comments")
	for i, p := range t.TopPosts {
		posts.Row(i+1, p.Title, p.Author, p.Likes, p.Comments)
	}
	authors := tableview.New(mode, "Rising authors").Header("Author", "Posts", "Total likes", "Avg likes")
	for _, a := range t.RisingAuthors {
		authors.Row(a.Author, a.PostCount, a.TotalLikes, a.AvgLikes)
	}
	trend := tableview.New(mode, "Engagement trend").Header("Metric", "Value")
	if et := t.EngagementTrend; et != nil {
		if et.Insufficient() {
			trend.Row("message", et.Message)
		} else {
			trend.Row("trend", et.Trend).
				Row("change rate %", et.ChangeRate).
				Row("first period avg", et.FirstPeriodAvg).
				Row("second period avg", et.SecondPeriodAvg)
		}
	}
	if len(t.PeakTimes) > 0 {
		trend.Row("peak times", strings.Join(t.PeakTimes, ", "))
	}
	return strings.Join([]string{posts.String(), authors.String(), trend.String()}, "\n\n")
}

func sentimentTable(mode tableview.Mode, s analysis.SentimentStats) string {
	tb := tableview.New(mode, "Comment sentiment").Header("Class", "Count", "Percent")
	if s.Message != "" {
		return tb.Row("message", s.Message, "").String()
	}
	return tb.Row(analysis.Positive, s.Positive.Count, s.Positive.Percentage).
		Row(analysis.Negative, s.Negative.Count, s.Negative.Percentage).
		Row(analysis.Neutral, s.Neutral.Count, s.Neutral.Percentage).
		Footer("score", s.TotalComments, s.Score).
		AlignRight(2, 3).
		String()
}
