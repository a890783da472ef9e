package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rating bounds for a single review.
const (
	MinRating = 1
	MaxRating = 5
)

// Sentiment is the label attached to a review by the caller.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is one of the known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Review is a single user's rating and comment for a movie. Reviews are
// identified by (MovieID, Timestamp) and never change once written.
type Review struct {
	MovieID   int64
	UserEmail string
	Rating    int
	Comment   string
	Sentiment Sentiment
	Timestamp time.Time
}

// NewReview captures the payload required to submit a review.
type NewReview struct {
	MovieID   int64
	UserEmail string
	Rating    int
	Comment   string
	Sentiment Sentiment
}

// Validate checks rating bounds, author, comment and sentiment label.
func (r NewReview) Validate() error {
	if r.MovieID <= 0 {
		return fmt.Errorf("%w: movie id must be positive", ErrInvalidInput)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, MinRating, MaxRating)
	}
	if strings.TrimSpace(r.UserEmail) == "" {
		return fmt.Errorf("%w: user email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Comment) == "" {
		return fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}
	if !r.Sentiment.Valid() {
		return fmt.Errorf("%w: unknown sentiment %q", ErrInvalidInput, r.Sentiment)
	}
	return nil
}
