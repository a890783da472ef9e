package repository

import (
	"context"
	"time"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// Name identifies the backend in logs and metrics.
func (r *Repository) Name() string { return "postgres" }

func (r *Repository) GetUser(ctx context.Context, email string) (domain.User, error) {
	return r.Users.Get(ctx, email)
}

func (r *Repository) CreateUser(ctx context.Context, params domain.NewUser) (domain.User, error) {
	return r.Users.Create(ctx, params)
}

func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return r.Users.List(ctx)
}

func (r *Repository) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	return r.Movies.List(ctx)
}

func (r *Repository) GetMovie(ctx context.Context, id int64) (domain.Movie, error) {
	return r.Movies.GetByID(ctx, id)
}

func (r *Repository) CreateMovie(ctx context.Context, params domain.NewMovie) (domain.Movie, error) {
	return r.Movies.Create(ctx, params)
}

func (r *Repository) DeleteMovie(ctx context.Context, id int64) (int64, error) {
	return r.Movies.Delete(ctx, id)
}

func (r *Repository) RecomputeMovieRating(ctx context.Context, id int64) error {
	return r.Movies.RecomputeRating(ctx, id)
}

func (r *Repository) CreateReview(ctx context.Context, params domain.NewReview) (time.Time, error) {
	return r.Reviews.Create(ctx, params)
}

func (r *Repository) ListReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	return r.Reviews.ListByMovie(ctx, movieID)
}

func (r *Repository) ListRatings(ctx context.Context) ([]int, error) {
	return r.Reviews.Ratings(ctx)
}

// HealthCheck pings the pool.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
