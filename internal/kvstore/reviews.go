package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// CreateReview stores a review in the movie's partition and recomputes the
// movie's statistics in the same transaction. The movie and the author must
// exist. Reviews landing on the same nanosecond are shifted forward so each
// keeps its own key.
func (s *Store) CreateReview(ctx context.Context, params domain.NewReview) (time.Time, error) {
	if err := params.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("create review: %w", err)
	}

	var ts time.Time
	err := s.update(ctx, "create review", func(txn *badger.Txn) error {
		found, err := exists(txn, movieKey(params.MovieID))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("movie %d: %w", params.MovieID, domain.ErrNotFound)
		}
		found, err = exists(txn, userKey(params.UserEmail))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("user %s: %w", params.UserEmail, domain.ErrNotFound)
		}

		ts = time.Now().UTC()
		for {
			taken, err := exists(txn, reviewKey(params.MovieID, ts))
			if err != nil {
				return err
			}
			if !taken {
				break
			}
			ts = ts.Add(time.Nanosecond)
		}

		payload, err := encodeDocument(document{
			"movie_id":   intNumber(params.MovieID),
			"user_email": params.UserEmail,
			"rating":     intNumber(int64(params.Rating)),
			"comment":    params.Comment,
			"sentiment":  string(params.Sentiment),
			"timestamp":  formatTime(ts),
		})
		if err != nil {
			return fmt.Errorf("encode review: %w", err)
		}
		if err := txn.Set(reviewKey(params.MovieID, ts), payload); err != nil {
			return err
		}
		return recompute(txn, params.MovieID)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("create review: %w", err)
	}
	return ts, nil
}

// ListReviews returns a movie's reviews, most recent first.
func (s *Store) ListReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	reviews := make([]domain.Review, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, partitionPrefix(movieID), true, func(_ []byte, doc document) error {
			review, err := reviewFromDocument(movieID, doc)
			if err != nil {
				return err
			}
			reviews = append(reviews, review)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// ListRatings returns the rating of every stored review.
func (s *Store) ListRatings(ctx context.Context) ([]int, error) {
	ratings := make([]int, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, []byte(feedbackPrefix), false, func(_ []byte, doc document) error {
			ratings = append(ratings, int(doc.intField("rating")))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func reviewFromDocument(movieID int64, doc document) (domain.Review, error) {
	ts, err := doc.timeField("timestamp")
	if err != nil {
		return domain.Review{}, err
	}
	return domain.Review{
		MovieID:   movieID,
		UserEmail: doc.stringField("user_email"),
		Rating:    int(doc.intField("rating")),
		Comment:   doc.stringField("comment"),
		Sentiment: domain.Sentiment(doc.stringField("sentiment")),
		Timestamp: ts,
	}, nil
}
