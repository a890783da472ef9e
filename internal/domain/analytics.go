package domain

// Analytics summarises the whole catalog.
type Analytics struct {
	TotalMovies        int64   `json:"total_movies"`
	TotalReviews       int64   `json:"total_reviews"`
	OverallAvgRating   float64 `json:"overall_avg_rating"`
	PositivePercentage float64 `json:"positive_percentage"`
}
