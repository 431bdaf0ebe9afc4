package analysis

import (
	"strings"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/engine/schema"
)

// Polarity is the lexicon classification of one comment.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

// The lexicons are fixed; classification is substring containment.
var (
	PositiveKeywords = []string{"好", "棒", "赞", "喜欢", "优秀", "完美", "厉害", "支持"}
	NegativeKeywords = []string{"差", "烂", "垃圾", "不好", "失望", "糟糕", "讨厌"}
)

// Classify returns Positive or Negative when text contains keywords of only
// that lexicon, otherwise Neutral.
func Classify(text string) Polarity {
	pos := containsAny(text, PositiveKeywords)
	neg := containsAny(text, NegativeKeywords)
	switch {
	case pos && !neg:
		return Positive
	case neg && !pos:
		return Negative
	}
	return Neutral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ClassCount is the size of one polarity class.
type ClassCount struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SentimentStats is the polarity breakdown of a batch of comments.
type SentimentStats struct {
	Source        domain.Source `json:"source"`
	TotalComments int           `json:"total_comments"`
	Positive      ClassCount    `json:"positive"`
	Negative      ClassCount    `json:"negative"`
	Neutral       ClassCount    `json:"neutral"`
	// Score is (positive-negative)/total in [-1, 1], rounded to 3 places.
	Score   float64 `json:"sentiment_score"`
	Message string  `json:"message,omitempty"`
}

// Sentiment classifies each comment's content field.
func (a *Analyzer) Sentiment(comments []schema.Record) SentimentStats {
	st := SentimentStats{Source: a.source, TotalComments: len(comments)}
	if len(comments) == 0 {
		st.Message = msgNoComments
		return st
	}
	for _, c := range comments {
		switch Classify(a.acc.String(c, schema.FieldCommentContent, "")) {
		case Positive:
			st.Positive.Count++
		case Negative:
			st.Negative.Count++
		default:
			st.Neutral.Count++
		}
	}
	total := len(comments)
	st.Positive.Percentage = percent(st.Positive.Count, total)
	st.Negative.Percentage = percent(st.Negative.Count, total)
	st.Neutral.Percentage = percent(st.Neutral.Count, total)
	st.Score = round(float64(st.Positive.Count-st.Negative.Count)/float64(total), 3)
	return st
}
