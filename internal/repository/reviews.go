package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// ReviewsRepository provides helpers for movie reviews, stored in the
// feedback table.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a review and recomputes the movie's statistics in the same
// transaction, returning the review's timestamp.
func (r *ReviewsRepository) Create(ctx context.Context, params domain.NewReview) (time.Time, error) {
	const insert = `
        INSERT INTO feedback (movie_id, user_email, rating, comment, sentiment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING "timestamp"
    `

	var ts time.Time
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockMovie(ctx, tx, params.MovieID); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, insert,
			params.MovieID,
			params.UserEmail,
			params.Rating,
			params.Comment,
			string(params.Sentiment),
		).Scan(&ts)
		if err != nil {
			return err
		}
		_, err = recompute(ctx, tx, params.MovieID)
		return err
	})
	if err != nil {
		return time.Time{}, mapError("create review", err)
	}
	return ts, nil
}

// ListByMovie returns a movie's reviews, most recent first.
func (r *ReviewsRepository) ListByMovie(ctx context.Context, movieID int64) ([]domain.Review, error) {
	const query = `
        SELECT movie_id, user_email, rating, comment, sentiment, "timestamp"
        FROM feedback
        WHERE movie_id = $1
        ORDER BY "timestamp" DESC, id DESC
    `
	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, mapError("list reviews", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var (
			review    domain.Review
			sentiment string
		)
		if err := rows.Scan(&review.MovieID, &review.UserEmail, &review.Rating, &review.Comment, &sentiment, &review.Timestamp); err != nil {
			return nil, mapError("scan review", err)
		}
		review.Sentiment = domain.Sentiment(sentiment)
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list reviews", err)
	}
	return reviews, nil
}

// Ratings returns the rating of every stored review.
func (r *ReviewsRepository) Ratings(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating FROM feedback ORDER BY id`)
	if err != nil {
		return nil, mapError("list ratings", err)
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, mapError("list ratings", err)
	}
	return ratings, nil
}
