package analysis

import "slices"

// topKeys orders keys by descending count, keeping first-seen order among
// equal counts, and returns at most n of them.
func topKeys[K comparable](order []K, counts map[K]int, n int) []K {
	keys := slices.Clone(order)
	slices.SortStableFunc(keys, func(a, b K) int {
		return counts[b] - counts[a]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
