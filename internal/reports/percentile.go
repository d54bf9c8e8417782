package reports

import "math"

// Percentile estimates the p-th percentile (0-100) of sorted values by
// linear interpolation between order statistics: the target rank is
// h = p/100 * (n-1), and the result interpolates between the values at
// floor(h) and ceil(h). This is the one estimation method used across
// every percentile report. Returns 0 for an empty input.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	h := p / 100 * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
