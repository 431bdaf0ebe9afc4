package analysis

import (
	"fmt"
	"slices"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/schema"
)

// TrendStats ranks posts and authors and compares engagement over time.
type TrendStats struct {
	Source          domain.Source    `json:"source"`
	TopPosts        []PostRef        `json:"top_posts,omitempty"`
	RisingAuthors   []AuthorLikes    `json:"rising_authors,omitempty"`
	EngagementTrend *EngagementTrend `json:"engagement_trend,omitempty"`
	PeakTimes       []string         `json:"peak_times,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// AuthorLikes ranks an author by the likes their posts collected.
type AuthorLikes struct {
	Author     string  `json:"author"`
	PostCount  int     `json:"post_count"`
	TotalLikes int64   `json:"total_likes"`
	AvgLikes   float64 `json:"avg_likes"`
}

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// EngagementTrend compares mean likes of the earlier and later halves of a
// time-ordered batch.
type EngagementTrend struct {
	Trend           string  `json:"trend,omitempty"`
	ChangeRate      float64 `json:"change_rate"`
	FirstPeriodAvg  float64 `json:"first_period_avg"`
	SecondPeriodAvg float64 `json:"second_period_avg"`
	Message         string  `json:"message,omitempty"`
}

// Insufficient reports whether there were too few records to compare halves.
func (t EngagementTrend) Insufficient() bool { return t.Trend == "" }

// Trending ranks posts by likes, authors by total likes, and computes the
// two-period engagement trend.
func (a *Analyzer) Trending(records []schema.Record) TrendStats {
	ts := TrendStats{Source: a.source}
	if len(records) == 0 {
		ts.Message = msgNoData
		return ts
	}
	ts.TopPosts = a.topPosts(records, topPostsLimit)
	ts.RisingAuthors = a.risingAuthors(records)
	ts.EngagementTrend = a.engagementTrend(a.sortByTime(records))
	ts.PeakTimes = a.peakTimes(records)
	return ts
}

// sortByTime returns a copy of records in ascending time order; records whose
// time cannot be read sort first, ties keep their input order.
func (a *Analyzer) sortByTime(records []schema.Record) []schema.Record {
	type keyed struct {
		key float64
		rec schema.Record
	}
	ks := make([]keyed, len(records))
	for i, rec := range records {
		ks[i] = keyed{key: sortKey(rec, a.loc), rec: rec}
	}
	slices.SortStableFunc(ks, func(x, y keyed) int {
		switch {
		case x.key < y.key:
			return -1
		case x.key > y.key:
			return 1
		}
		return 0
	})
	out := make([]schema.Record, len(ks))
	for i, k := range ks {
		out[i] = k.rec
	}
	return out
}

func (a *Analyzer) topPosts(records []schema.Record, limit int) []PostRef {
	idx := make([]int, len(records))
	likes := make([]int64, len(records))
	for i, rec := range records {
		idx[i] = i
		likes[i] = a.likes(rec)
	}
	slices.SortStableFunc(idx, func(x, y int) int {
		switch {
		case likes[x] > likes[y]:
			return -1
		case likes[x] < likes[y]:
			return 1
		}
		return 0
	})
	if len(idx) > limit {
		idx = idx[:limit]
	}
	out := make([]PostRef, len(idx))
	for i, j := range idx {
		out[i] = *a.postRef(records[j])
	}
	return out
}

func (a *Analyzer) risingAuthors(records []schema.Record) []AuthorLikes {
	stats := make(map[string]*AuthorLikes)
	var order []*AuthorLikes
	for _, rec := range records {
		name := a.author(rec)
		s, ok := stats[name]
		if !ok {
			s = &AuthorLikes{Author: name}
			stats[name] = s
			order = append(order, s)
		}
		s.PostCount++
		s.TotalLikes += a.likes(rec)
	}

	slices.SortStableFunc(order, func(x, y *AuthorLikes) int {
		switch {
		case x.TotalLikes > y.TotalLikes:
			return -1
		case x.TotalLikes < y.TotalLikes:
			return 1
		}
		return 0
	})
	if len(order) > topAuthorsLimit {
		order = order[:topAuthorsLimit]
	}
	out := make([]AuthorLikes, len(order))
	for i, s := range order {
		s.AvgLikes = round(mean(s.TotalLikes, s.PostCount), 2)
		out[i] = *s
	}
	return out
}

// engagementTrend splits sorted at len/2; with an odd count the middle record
// belongs to the second half.
func (a *Analyzer) engagementTrend(sorted []schema.Record) *EngagementTrend {
	if len(sorted) < 2 {
		return &EngagementTrend{Message: msgNotEnoughForTrend}
	}
	mid := len(sorted) / 2
	first := a.meanLikes(sorted[:mid])
	second := a.meanLikes(sorted[mid:])

	t := &EngagementTrend{
		Trend:           TrendDecreasing,
		FirstPeriodAvg:  round(first, 2),
		SecondPeriodAvg: round(second, 2),
	}
	if second > first {
		t.Trend = TrendIncreasing
	}
	if first > 0 {
		t.ChangeRate = round((second-first)/first*100, 2)
	}
	return t
}

func (a *Analyzer) meanLikes(records []schema.Record) float64 {
	var sum int64
	for _, rec := range records {
		sum += a.likes(rec)
	}
	return mean(sum, len(records))
}

// peakTimes returns the three busiest posting hours as "H:00-H+1:00" windows.
func (a *Analyzer) peakTimes(records []schema.Record) []string {
	hc := newHourCounter()
	hc.count(records, a.loc)
	var out []string
	for _, h := range hc.top(peakHoursLimit) {
		out = append(out, fmt.Sprintf("%d:00-%d:00", h, h+1))
	}
	return out
}
