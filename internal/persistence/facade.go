// Package persistence is the single entry point to storage. It hides which
// backend is configured, coerces movie identifiers, keeps derived movie
// statistics in step with reviews and reports every outcome as a Result.
package persistence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/cinema-pulse/internal/analytics"
	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/metrics"
	"github.com/Clark-Hu/cinema-pulse/internal/notify"
)

// Backend is a storage backend. Implementations return domain sentinel
// errors (wrapped) for missing, duplicate and invalid data.
type Backend interface {
	Name() string
	HealthCheck(ctx context.Context) error

	GetUser(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, params domain.NewUser) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	ListMovies(ctx context.Context) ([]domain.Movie, error)
	GetMovie(ctx context.Context, id int64) (domain.Movie, error)
	CreateMovie(ctx context.Context, params domain.NewMovie) (domain.Movie, error)
	DeleteMovie(ctx context.Context, id int64) (int64, error)
	RecomputeMovieRating(ctx context.Context, id int64) error

	CreateReview(ctx context.Context, params domain.NewReview) (time.Time, error)
	ListReviews(ctx context.Context, movieID int64) ([]domain.Review, error)
	ListRatings(ctx context.Context) ([]int, error)
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger used for failed operations.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Facade) { f.logger = logger }
}

// WithNotifier sets where successful writes are announced.
func WithNotifier(n notify.Notifier) Option {
	return func(f *Facade) {
		if n != nil {
			f.notifier = n
		}
	}
}

// Facade dispatches to one backend for the life of the process. It holds no
// mutable state and is safe for concurrent use.
type Facade struct {
	backend  Backend
	logger   zerolog.Logger
	notifier notify.Notifier
}

// New wraps backend.
func New(backend Backend, opts ...Option) *Facade {
	f := &Facade{
		backend:  backend,
		logger:   zerolog.Nop(),
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With().Str("component", "persistence").Str("backend", backend.Name()).Logger()
	return f
}

// Backend returns the name of the configured backend.
func (f *Facade) Backend() string { return f.backend.Name() }

// finish classifies err, records the call and, on failure, swaps value for
// the negative shape.
func finish[T any](f *Facade, op string, value, empty T, err error) Result[T] {
	code := classify(err)
	metrics.PersistenceOperations.WithLabelValues(op, f.backend.Name(), code.outcome()).Inc()
	if code == CodeOK {
		return Result[T]{Value: value}
	}

	if code == CodeUnavailable {
		f.logger.Error().Err(err).Str("op", op).Msg("backend failure")
	} else {
		f.logger.Debug().Err(err).Str("op", op).Str("code", string(code)).Msg("operation rejected")
	}
	return Result[T]{Value: empty, Code: code, Err: err}
}

// GetUser looks a user up by email.
func (f *Facade) GetUser(ctx context.Context, email string) Result[domain.User] {
	user, err := f.backend.GetUser(ctx, email)
	return finish(f, "GetUser", user, domain.User{}, err)
}

// CreateUser registers a user. An existing email yields CodeConflict and
// leaves the stored user unchanged.
func (f *Facade) CreateUser(ctx context.Context, params domain.NewUser) Result[domain.User] {
	if err := params.Validate(); err != nil {
		return finish(f, "CreateUser", domain.User{}, domain.User{}, err)
	}
	user, err := f.backend.CreateUser(ctx, params)
	if err == nil {
		event := notify.NewEvent(notify.EventUserRegistered)
		event.UserEmail = user.Email
		f.notifier.Notify(ctx, event)
	}
	return finish(f, "CreateUser", user, domain.User{}, err)
}

// ListUsers returns every user, newest first.
func (f *Facade) ListUsers(ctx context.Context) Result[[]domain.User] {
	users, err := f.backend.ListUsers(ctx)
	return finish(f, "ListUsers", users, []domain.User{}, err)
}

// GetAllMovies returns every movie ordered by average rating, best first.
// Movies with equal ratings keep the backend's scan order.
func (f *Facade) GetAllMovies(ctx context.Context) Result[[]domain.Movie] {
	movies, err := f.backend.ListMovies(ctx)
	if err == nil {
		sortByRating(movies)
	}
	return finish(f, "GetAllMovies", movies, []domain.Movie{}, err)
}

func sortByRating(movies []domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].AvgRating > movies[j].AvgRating
	})
}

// GetMovieByID fetches a movie. id may be any value CoerceMovieID accepts.
func (f *Facade) GetMovieByID(ctx context.Context, id any) Result[domain.Movie] {
	movieID, err := CoerceMovieID(id)
	if err != nil {
		return finish(f, "GetMovieByID", domain.Movie{}, domain.Movie{}, err)
	}
	movie, err := f.backend.GetMovie(ctx, movieID)
	return finish(f, "GetMovieByID", movie, domain.Movie{}, err)
}

// CreateMovie adds a movie to the catalog.
func (f *Facade) CreateMovie(ctx context.Context, params domain.NewMovie) Result[domain.Movie] {
	if err := params.Validate(); err != nil {
		return finish(f, "CreateMovie", domain.Movie{}, domain.Movie{}, err)
	}
	movie, err := f.backend.CreateMovie(ctx, params)
	if err == nil {
		event := notify.NewEvent(notify.EventMovieCreated)
		event.MovieID = movie.ID
		f.notifier.Notify(ctx, event)
	}
	return finish(f, "CreateMovie", movie, domain.Movie{}, err)
}

// DeleteMovie removes a movie and all of its reviews, returning how many
// reviews went with it.
func (f *Facade) DeleteMovie(ctx context.Context, id any) Result[int64] {
	movieID, err := CoerceMovieID(id)
	if err != nil {
		return finish[int64](f, "DeleteMovie", 0, 0, err)
	}
	removed, err := f.backend.DeleteMovie(ctx, movieID)
	if err == nil {
		event := notify.NewEvent(notify.EventMovieDeleted)
		event.MovieID = movieID
		f.notifier.Notify(ctx, event)
	}
	return finish[int64](f, "DeleteMovie", removed, 0, err)
}

// RecomputeMovieRating re-derives a movie's statistics from its reviews.
// A movie without reviews is left as it is.
func (f *Facade) RecomputeMovieRating(ctx context.Context, id any) Outcome {
	movieID, err := CoerceMovieID(id)
	if err == nil {
		err = f.backend.RecomputeMovieRating(ctx, movieID)
		metrics.RatingRecomputations.WithLabelValues(f.backend.Name(), classify(err).outcome()).Inc()
	}
	return finish(f, "RecomputeMovieRating", struct{}{}, struct{}{}, err)
}

// CreateReview stores a review and refreshes the movie's statistics before
// returning the review's timestamp.
func (f *Facade) CreateReview(ctx context.Context, movieID any, userEmail string, rating int, comment string, sentiment domain.Sentiment) Result[time.Time] {
	id, err := CoerceMovieID(movieID)
	if err != nil {
		return finish(f, "CreateReview", time.Time{}, time.Time{}, err)
	}

	params := domain.NewReview{
		MovieID:   id,
		UserEmail: userEmail,
		Rating:    rating,
		Comment:   comment,
		Sentiment: sentiment,
	}
	if err := params.Validate(); err != nil {
		return finish(f, "CreateReview", time.Time{}, time.Time{}, err)
	}

	ts, err := f.backend.CreateReview(ctx, params)
	if err == nil {
		metrics.RatingRecomputations.WithLabelValues(f.backend.Name(), "ok").Inc()
		event := notify.NewEvent(notify.EventReviewCreated)
		event.MovieID = id
		event.UserEmail = userEmail
		event.Rating = rating
		f.notifier.Notify(ctx, event)
	}
	return finish(f, "CreateReview", ts, time.Time{}, err)
}

// GetReviewsForMovie lists a movie's reviews, most recent first. An unknown
// movie has no reviews.
func (f *Facade) GetReviewsForMovie(ctx context.Context, movieID any) Result[[]domain.Review] {
	id, err := CoerceMovieID(movieID)
	if err != nil {
		return finish(f, "GetReviewsForMovie", []domain.Review{}, []domain.Review{}, err)
	}
	reviews, err := f.backend.ListReviews(ctx, id)
	return finish(f, "GetReviewsForMovie", reviews, []domain.Review{}, err)
}

// GetAnalytics summarises the catalog from a full scan of movies and
// reviews.
func (f *Facade) GetAnalytics(ctx context.Context) Result[domain.Analytics] {
	movies, err := f.backend.ListMovies(ctx)
	if err != nil {
		return finish(f, "GetAnalytics", domain.Analytics{}, domain.Analytics{}, fmt.Errorf("movies: %w", err))
	}
	ratings, err := f.backend.ListRatings(ctx)
	if err != nil {
		return finish(f, "GetAnalytics", domain.Analytics{}, domain.Analytics{}, fmt.Errorf("ratings: %w", err))
	}
	return finish(f, "GetAnalytics", analytics.Compute(movies, ratings), domain.Analytics{}, nil)
}

// HealthCheck reports whether the backend is reachable.
func (f *Facade) HealthCheck(ctx context.Context) Outcome {
	return finish(f, "HealthCheck", struct{}{}, struct{}{}, f.backend.HealthCheck(ctx))
}
