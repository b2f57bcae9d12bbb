package analytics

import "github.com/agridash/dealer-insights/internal/models"

// GrowthRate compares the trailing window of a chronological month series
// against the window preceding it:
//
//	growth = (recent - previous) / previous * 100
//
// When the previous-window sum is 0 the growth is defined as 0, never a
// division by zero. A series shorter than two windows compares whatever
// prefix is available; an empty series yields 0.
func GrowthRate(series []models.MonthTotal, window int) float64 {
	if window <= 0 || len(series) == 0 {
		return 0
	}

	recentStart := len(series) - window
	if recentStart < 0 {
		recentStart = 0
	}
	previousStart := recentStart - window
	if previousStart < 0 {
		previousStart = 0
	}

	recent := sumAmounts(series[recentStart:])
	previous := sumAmounts(series[previousStart:recentStart])
	if previous == 0 {
		return 0
	}
	return (recent - previous) / previous * 100
}

func sumAmounts(series []models.MonthTotal) float64 {
	total := 0.0
	for _, mt := range series {
		total += mt.Amount
	}
	return total
}
