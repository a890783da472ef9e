package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/rating"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    description,
    poster_url,
    genre,
    avg_rating::float8,
    total_reviews,
    created_at
`

// Create inserts a new movie row and returns the stored entity. Identifiers
// are assigned by the database; params.ID is ignored.
func (r *MoviesRepository) Create(ctx context.Context, params domain.NewMovie) (domain.Movie, error) {
	params = params.Normalize()
	query := fmt.Sprintf(`
        INSERT INTO movies (title, description, poster_url, genre)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, params.Title, params.Description, params.PosterURL, params.Genre)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, mapError("create movie", err)
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, mapError("get movie", err)
	}
	return movie, nil
}

// List returns every movie, best rated first. Ties keep insertion order.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY avg_rating DESC, id ASC`, movieColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError("list movies", err)
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, mapError("scan movie", err)
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list movies", err)
	}
	return items, nil
}

// Delete removes a movie and all of its reviews in one transaction and
// returns the number of reviews removed.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockMovie(ctx, tx, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM feedback WHERE movie_id = $1`, id)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected()
		_, err = tx.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return 0, mapError("delete movie", err)
	}
	return removed, nil
}

// RecomputeRating rewrites avg_rating and total_reviews from the movie's
// current reviews. A movie without reviews keeps its stored statistics.
func (r *MoviesRepository) RecomputeRating(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockMovie(ctx, tx, id); err != nil {
			return err
		}
		_, err := recompute(ctx, tx, id)
		return err
	})
	return mapError("recompute rating", err)
}

// recompute must run after lockMovie in the same transaction.
func recompute(ctx context.Context, tx pgx.Tx, movieID int64) (bool, error) {
	rows, err := tx.Query(ctx, `SELECT rating FROM feedback WHERE movie_id = $1`, movieID)
	if err != nil {
		return false, err
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return false, err
	}

	summary, ok := rating.Summarize(ratings)
	if !ok {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
        UPDATE movies
        SET avg_rating = $2::float8, total_reviews = $3
        WHERE id = $1
    `, movieID, summary.Average, summary.Count)
	return err == nil, err
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.PosterURL,
		&movie.Genre,
		&movie.AvgRating,
		&movie.TotalReviews,
		&movie.CreatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
