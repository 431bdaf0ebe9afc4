package analysis

import "strconv"

// round rounds x to n decimal places using the exact binary value of x and
// half-to-even on true ties, so 0.125 → 0.12 and 2.675 → 2.67.
func round(x float64, n int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', n, 64), 64)
	if err != nil {
		return x
	}
	return r
}

func mean(sum int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(part)/float64(total)*100, 2)
}
