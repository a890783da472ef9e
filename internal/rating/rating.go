// Package rating computes a movie's derived review statistics.
package rating

import "github.com/shopspring/decimal"

// Summary is the derived state stored on a movie.
type Summary struct {
	Count   int64
	Average float64
}

// Summarize returns the count and mean of ratings, the mean rounded to one
// decimal place half away from zero. It reports false for an empty set so
// callers can leave stored statistics untouched.
func Summarize(ratings []int) (Summary, bool) {
	if len(ratings) == 0 {
		return Summary{}, false
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	count := int64(len(ratings))
	mean := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count))
	return Summary{Count: count, Average: mean.Round(1).InexactFloat64()}, true
}

// Round1 rounds value to one decimal place, half away from zero.
func Round1(value float64) float64 {
	return decimal.NewFromFloat(value).Round(1).InexactFloat64()
}

// Ratio returns part/whole*100 rounded to one decimal place, or 0 when whole is 0.
func Ratio(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	pct := decimal.NewFromInt(part * 100).Div(decimal.NewFromInt(whole))
	return pct.Round(1).InexactFloat64()
}
