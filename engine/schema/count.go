package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseCount coerces a raw count value to an integer. Numbers pass through
// (fractions truncated); text is parsed as a plain number, then as a "k"
// (×1,000) or "w"/"万" (×10,000) abbreviation. Anything else is 0.
func ParseCount(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return truncate(float64(n))
	case float64:
		return truncate(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		return parseCountText(n.String())
	case string:
		return parseCountText(n)
	}
	return 0
}

func parseCountText(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, ok := parseFinite(s); ok {
		return truncate(f)
	}

	lower := strings.ToLower(s)
	var (
		prefix string
		mult   float64
	)
	switch {
	case strings.HasSuffix(lower, "k"):
		prefix, mult = strings.TrimSuffix(lower, "k"), 1_000
	case strings.HasSuffix(lower, "w"):
		prefix, mult = strings.TrimSuffix(lower, "w"), 10_000
	case strings.HasSuffix(lower, "万"):
		prefix, mult = strings.TrimSuffix(lower, "万"), 10_000
	default:
		return 0
	}
	f, ok := parseFinite(strings.TrimSpace(prefix))
	if !ok {
		return 0
	}
	return truncate(f * mult)
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truncate rounds toward zero, absorbing binary representation error so that
// 1.2*1000 yields 1200 rather than 1199.
func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if r := math.Round(f); math.Abs(f-r) < 1e-9 {
		return int64(r)
	}
	return int64(math.Trunc(f))
}
