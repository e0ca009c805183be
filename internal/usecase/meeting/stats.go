package meeting

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median of values; an even count yields the mean of the two middle values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percentage of part in total rounded to the nearest integer, 0 for an empty total.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func scoreStats(scores []float64) ScoreStats {
	lo, hi := minMax(scores)
	if scores == nil {
		scores = []float64{}
	}
	return ScoreStats{
		Count:   len(scores),
		Average: round2(mean(scores)),
		Min:     lo,
		Max:     hi,
		Median:  round2(median(scores)),
		Scores:  scores,
	}
}
