package analysis

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/schema"
)

// Summary is the overview of a batch of content records.
type Summary struct {
	Source     domain.Source     `json:"source"`
	TotalItems int               `json:"total_items"`
	Engagement *Engagement       `json:"engagement_metrics,omitempty"`
	Authors    *AuthorStats      `json:"author_stats,omitempty"`
	Time       *TimeDistribution `json:"time_distribution,omitempty"`
	Content    *ContentStats     `json:"content_stats,omitempty"`
	TopPost    *PostRef          `json:"top_post,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// CountStats aggregates one count field.
type CountStats struct {
	Total   int64   `json:"total"`
	Average float64 `json:"average"`
	Max     int64   `json:"max"`
}

// LikeStats also reports the minimum.
type LikeStats struct {
	CountStats
	Min int64 `json:"min"`
}

// Engagement aggregates interaction counts.
type Engagement struct {
	Likes          LikeStats  `json:"likes"`
	Comments       CountStats `json:"comments"`
	Shares         CountStats `json:"shares"`
	TotalCollects  int64      `json:"total_collects"`
	EngagementRate float64    `json:"engagement_rate"`
}

// AuthorCount is an author and how many records they posted.
type AuthorCount struct {
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

// AuthorStats summarizes authorship by post frequency.
type AuthorStats struct {
	UniqueAuthors int           `json:"total_unique_authors"`
	TopAuthors    []AuthorCount `json:"top_authors"`
}

// HourCount is a posting hour and its frequency.
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// TimeDistribution is the hour-of-day histogram of posting times. When
// no record carries a time only Message is set.
type TimeDistribution struct {
	Hours     map[int]int `json:"hour_distribution"`
	PeakHours []HourCount `json:"peak_hours"`
	Message   string      `json:"message,omitempty"`
}

// MarshalJSON writes either the message alone or both histogram fields,
// empty rather than null when no time parsed.
func (t TimeDistribution) MarshalJSON() ([]byte, error) {
	if t.Message != "" {
		return json.Marshal(struct {
			Message string `json:"message"`
		}{t.Message})
	}
	type plain TimeDistribution
	p := plain(t)
	if p.Hours == nil {
		p.Hours = map[int]int{}
	}
	if p.PeakHours == nil {
		p.PeakHours = []HourCount{}
	}
	return json.Marshal(p)
}

// ContentStats summarizes titles.
type ContentStats struct {
	AverageTitleLength float64 `json:"average_title_length"`
	TotalWithTitle     int     `json:"total_with_title"`
}

// PostRef identifies a single post.
type PostRef struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments,omitempty"`
	URL      string `json:"url"`
}

// Summarize computes engagement, author, time and content statistics.
// An empty batch yields a Summary carrying only a message.
func (a *Analyzer) Summarize(records []schema.Record) Summary {
	s := Summary{Source: a.source, TotalItems: len(records)}
	if len(records) == 0 {
		s.Message = msgNoData
		return s
	}
	s.Engagement = a.engagement(records)
	s.Authors = a.authors(records)
	s.Time = a.timeDistribution(records)
	s.Content = a.content(records)
	s.TopPost = a.topPost(records)
	return s
}

func (a *Analyzer) engagement(records []schema.Record) *Engagement {
	n := len(records)
	likes := a.column(records, schema.FieldLikeCount)
	comments := a.column(records, schema.FieldCommentCount)
	shares := a.column(records, schema.FieldShareCount)
	collects := a.column(records, schema.FieldCollectCount)

	e := &Engagement{
		Likes:    LikeStats{CountStats: countStats(likes), Min: minOf(likes)},
		Comments: countStats(comments),
		Shares:   countStats(shares),
	}
	e.TotalCollects = sumOf(collects)
	total := e.Likes.Total + e.Comments.Total + e.Shares.Total
	e.EngagementRate = round(mean(total, n), 2)
	return e
}

func (a *Analyzer) column(records []schema.Record, f schema.Field) []int64 {
	out := make([]int64, len(records))
	for i, rec := range records {
		out[i] = a.acc.Count(rec, f)
	}
	return out
}

func countStats(vals []int64) CountStats {
	sum := sumOf(vals)
	return CountStats{Total: sum, Average: round(mean(sum, len(vals)), 2), Max: maxOf(vals)}
}

func sumOf(vals []int64) int64 {
	var s int64
	for _, v := range vals {
		s += v
	}
	return s
}

func maxOf(vals []int64) int64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []int64) int64 {
	if len(vals) == 0 {
		return 0
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (a *Analyzer) authors(records []schema.Record) *AuthorStats {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		name := a.author(rec)
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	top := topKeys(order, counts, topAuthorsLimit)
	stats := &AuthorStats{UniqueAuthors: len(order), TopAuthors: make([]AuthorCount, len(top))}
	for i, name := range top {
		stats.TopAuthors[i] = AuthorCount{Name: name, PostCount: counts[name]}
	}
	return stats
}

func (a *Analyzer) timeDistribution(records []schema.Record) *TimeDistribution {
	hc := newHourCounter()
	if seen := hc.count(records, a.loc); seen == 0 {
		return &TimeDistribution{Message: msgNoTimeData}
	}

	td := &TimeDistribution{Hours: hc.counts, PeakHours: []HourCount{}}
	for _, h := range hc.top(peakHoursLimit) {
		td.PeakHours = append(td.PeakHours, HourCount{Hour: hourLabel(h), Count: hc.counts[h]})
	}
	return td
}

func (a *Analyzer) content(records []schema.Record) *ContentStats {
	var total, titled int
	for _, rec := range records {
		title := a.acc.String(rec, schema.FieldContentTitle, "")
		if title == "" {
			continue
		}
		titled++
		total += utf8.RuneCountInString(title)
	}
	return &ContentStats{
		AverageTitleLength: round(mean(int64(total), titled), 2),
		TotalWithTitle:     titled,
	}
}

// topPost returns the first record with the highest like count.
func (a *Analyzer) topPost(records []schema.Record) *PostRef {
	best := 0
	bestLikes := a.likes(records[0])
	for i := 1; i < len(records); i++ {
		if l := a.likes(records[i]); l > bestLikes {
			best, bestLikes = i, l
		}
	}
	return a.postRef(records[best])
}

func (a *Analyzer) postRef(rec schema.Record) *PostRef {
	return &PostRef{
		Title:    a.acc.String(rec, schema.FieldContentTitle, ""),
		Author:   a.acc.String(rec, schema.FieldUserName, ""),
		Likes:    a.likes(rec),
		Comments: a.acc.Count(rec, schema.FieldCommentCount),
		URL:      a.acc.String(rec, schema.FieldContentURL, ""),
	}
}
