// Package analytics reduces the catalog into summary statistics.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/rating"
)

// PositiveThreshold is the lowest rating counted as positive.
const PositiveThreshold = 4

// Compute derives catalog statistics from every movie and every review rating.
// The overall average is the mean of the per-movie averages, not of the raw
// ratings. Empty inputs produce zeros.
func Compute(movies []domain.Movie, ratings []int) domain.Analytics {
	out := domain.Analytics{
		TotalMovies:  int64(len(movies)),
		TotalReviews: int64(len(ratings)),
	}

	if len(movies) > 0 {
		sum := decimal.Zero
		for _, m := range movies {
			sum = sum.Add(decimal.NewFromFloat(m.AvgRating))
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(movies))))
		out.OverallAvgRating = mean.Round(1).InexactFloat64()
	}

	var positive int64
	for _, r := range ratings {
		if r >= PositiveThreshold {
			positive++
		}
	}
	out.PositivePercentage = rating.Ratio(positive, out.TotalReviews)
	return out
}
