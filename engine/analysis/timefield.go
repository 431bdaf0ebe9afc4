package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/WessleyAI/mediacrawl/engine/schema"
)

// timeKeys is the fallback chain of raw timestamp keys; the first non-empty
// value wins.
var timeKeys = []string{"time", "create_time", "publish_time"}

// Epoch values above this are taken to be milliseconds.
const millisThreshold = 1e12

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// rawTime returns the first truthy value in the timeKeys chain.
func rawTime(rec schema.Record) (any, bool) {
	for _, k := range timeKeys {
		v, ok := rec[k]
		if ok && truthy(v) {
			return v, true
		}
	}
	return nil, false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		return x != "" && x != "0"
	case bool:
		return x
	}
	return true
}

// parseTime interprets a numeric epoch (seconds or milliseconds) in loc, or
// an ISO-8601 string. Naive strings are read as wall time in loc.
func parseTime(v any, loc *time.Location) (time.Time, bool) {
	if f, ok := numeric(v); ok {
		return fromEpoch(f, loc)
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func fromEpoch(f float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if math.Abs(f) > millisThreshold {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).In(loc), true
}

// sortKey returns the epoch seconds used to order records in time; values
// that cannot be read sort as 0.
func sortKey(rec schema.Record, loc *time.Location) float64 {
	v, ok := rawTime(rec)
	if !ok {
		return 0
	}
	if f, ok := numeric(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		if math.Abs(f) > millisThreshold {
			return f / 1000
		}
		return f
	}
	t, ok := parseTime(v, loc)
	if !ok {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}

// hourCounter tallies hours keeping first-seen order for tie-breaking.
type hourCounter struct {
	counts map[int]int
	order  []int
}

func newHourCounter() *hourCounter {
	return &hourCounter{counts: make(map[int]int)}
}

func (h *hourCounter) add(hour int) {
	if _, ok := h.counts[hour]; !ok {
		h.order = append(h.order, hour)
	}
	h.counts[hour]++
}

func (h *hourCounter) top(n int) []int {
	return topKeys(h.order, h.counts, n)
}

func (h *hourCounter) count(records []schema.Record, loc *time.Location) (seen int) {
	for _, rec := range records {
		v, ok := rawTime(rec)
		if !ok {
			continue
		}
		seen++
		t, ok := parseTime(v, loc)
		if !ok {
			continue
		}
		h.add(t.Hour())
	}
	return seen
}
