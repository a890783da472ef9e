package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

func newTestStore(t testing.TB) *Store {
	t.Helper()
	st, err := Open(Options{InMemory: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustCreateUser(t testing.TB, st *Store, email string) {
	t.Helper()
	_, err := st.CreateUser(context.Background(), domain.NewUser{
		Email: email, PasswordHash: "hash", Salt: "salt", Name: "Test", Role: domain.RoleViewer,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
}

func mustCreateMovie(t testing.TB, st *Store, id int64, title string) domain.Movie {
	t.Helper()
	movie, err := st.CreateMovie(context.Background(), domain.NewMovie{ID: id, Title: title, Description: "desc"})
	if err != nil {
		t.Fatalf("create movie %s: %v", title, err)
	}
	return movie
}

func mustReview(t testing.TB, st *Store, movieID int64, email string, value int) {
	t.Helper()
	_, err := st.CreateReview(context.Background(), domain.NewReview{
		MovieID: movieID, UserEmail: email, Rating: value, Comment: "c", Sentiment: domain.SentimentPositive,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
}

func TestStore_Users(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, st, "a@example.com")
	mustCreateUser(t, st, "b@example.com")

	got, err := st.GetUser(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Role != domain.RoleViewer || got.Salt != "salt" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := st.GetUser(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = st.CreateUser(ctx, domain.NewUser{Email: "a@example.com", Name: "Other", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, _ = st.GetUser(ctx, "a@example.com")
	if got.Name != "Test" {
		t.Fatalf("duplicate create overwrote user: %+v", got)
	}

	users, err := st.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsers len = %d, want 2", len(users))
	}
}

func TestStore_ConcurrentCreateUser(t *testing.T) {
	st := newTestStore(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		dupes     atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.CreateUser(context.Background(), domain.NewUser{
				Email: "race@example.com", Name: fmt.Sprintf("racer-%d", i), Role: domain.RoleViewer,
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrDuplicate):
				dupes.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes.Load() != 1 || dupes.Load() != workers-1 {
		t.Fatalf("successes=%d dupes=%d, want 1 and %d", successes.Load(), dupes.Load(), workers-1)
	}
}

func TestStore_CreateMovieIdentifiers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	explicit := mustCreateMovie(t, st, 1, "Explicit")
	if explicit.ID != 1 {
		t.Fatalf("explicit id = %d, want 1", explicit.ID)
	}
	if explicit.Genre != domain.DefaultGenre || explicit.PosterURL != domain.DefaultPosterURL {
		t.Fatalf("defaults not applied: %+v", explicit)
	}

	if _, err := st.CreateMovie(ctx, domain.NewMovie{ID: 1, Title: "Again", Description: "d"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	generated := mustCreateMovie(t, st, 0, "Generated")
	if generated.ID != 2 {
		t.Fatalf("generated id = %d, want 2 (1 is taken)", generated.ID)
	}

	got, err := st.GetMovie(ctx, generated.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.Title != "Generated" || got.AvgRating != 0 || got.TotalReviews != 0 {
		t.Fatalf("unexpected movie: %+v", got)
	}

	if _, err := st.GetMovie(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RecomputeAverage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, st, "u@example.com")
	movie := mustCreateMovie(t, st, 0, "Averaged")

	for _, v := range []int{5, 5, 4, 5} {
		mustReview(t, st, movie.ID, "u@example.com", v)
	}

	got, err := st.GetMovie(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.AvgRating != 4.8 || got.TotalReviews != 4 {
		t.Fatalf("stats = %v/%d, want 4.8/4", got.AvgRating, got.TotalReviews)
	}

	if err := st.RecomputeMovieRating(ctx, movie.ID); err != nil {
		t.Fatalf("RecomputeMovieRating: %v", err)
	}
	if err := st.RecomputeMovieRating(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown movie, got %v", err)
	}
}

func TestStore_RecomputeWithoutReviewsKeepsStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	movie := mustCreateMovie(t, st, 0, "Quiet")

	if err := st.RecomputeMovieRating(ctx, movie.ID); err != nil {
		t.Fatalf("RecomputeMovieRating: %v", err)
	}
	got, _ := st.GetMovie(ctx, movie.ID)
	if got.AvgRating != 0 || got.TotalReviews != 0 {
		t.Fatalf("stats changed: %+v", got)
	}
}

func TestStore_RecomputePreservesUnknownAttributes(t *testing.T) {
	st := newTestStore(t)
	mustCreateUser(t, st, "u@example.com")

	err := st.db.Update(func(txn *badger.Txn) error {
		payload := []byte(`{"id":7,"title":"Legacy","description":"d","genre":"Drama",` +
			`"avg_rating":0,"total_reviews":0,"created_at":"2024-01-01T00:00:00Z",` +
			`"box_office":{"gross":123456789.25,"weeks":[1,2,3]}}`)
		return txn.Set(movieKey(7), payload)
	})
	if err != nil {
		t.Fatalf("seed legacy movie: %v", err)
	}

	mustReview(t, st, 7, "u@example.com", 3)
	mustReview(t, st, 7, "u@example.com", 4)

	var doc document
	err = st.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getDocument(txn, movieKey(7))
		return err
	})
	if err != nil {
		t.Fatalf("read movie: %v", err)
	}

	if doc.floatField("avg_rating") != 3.5 || doc.intField("total_reviews") != 2 {
		t.Fatalf("stats = %v/%v, want 3.5/2", doc["avg_rating"], doc["total_reviews"])
	}
	if doc.stringField("genre") != "Drama" || doc.stringField("title") != "Legacy" {
		t.Fatalf("known attributes changed: %v", doc)
	}
	boxOffice, ok := doc["box_office"].(map[string]any)
	if !ok {
		t.Fatalf("unknown attribute dropped: %v", doc)
	}
	if boxOffice["gross"] != 123456789.25 {
		t.Fatalf("nested number = %#v", boxOffice["gross"])
	}
	weeks, ok := boxOffice["weeks"].([]any)
	if !ok || len(weeks) != 3 || weeks[2] != float64(3) {
		t.Fatalf("nested list = %#v", boxOffice["weeks"])
	}
}

func TestStore_StoresExactDecimal(t *testing.T) {
	st := newTestStore(t)
	mustCreateUser(t, st, "u@example.com")
	movie := mustCreateMovie(t, st, 0, "Exact")
	for _, v := range []int{5, 5, 4, 5} {
		mustReview(t, st, movie.ID, "u@example.com", v)
	}

	var raw string
	err := st.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(movieKey(movie.ID))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		raw = string(val)
		return err
	})
	if err != nil {
		t.Fatalf("read raw movie: %v", err)
	}
	if !strings.Contains(raw, `"avg_rating":4.8`) {
		t.Fatalf("avg_rating not stored as decimal literal: %s", raw)
	}
}

func TestStore_LargeMovieIDKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mustCreateUser(t, st, "u@example.com")

	// 2^53 + 1 has no exact float64 representation.
	const id int64 = 9007199254740993
	mustCreateMovie(t, st, id, "Huge")
	mustReview(t, st, id, "u@example.com", 4)

	got, err := st.GetMovie(ctx, id)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.ID != id || got.TotalReviews != 1 {
		t.Fatalf("GetMovie = %d/%d, want %d/1", got.ID, got.TotalReviews, id)
	}

	movies, err := st.ListMovies(ctx)
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != id {
		t.Fatalf("ListMovies = %+v", movies)
	}

	reviews, err := st.ListReviews(ctx, id)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].MovieID != id {
		t.Fatalf("ListReviews = %+v", reviews)
	}

	var raw string
	err = st.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(movieKey(id))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		raw = string(val)
		return err
	})
	if err != nil {
		t.Fatalf("read raw movie: %v", err)
	}
	if !strings.Contains(raw, `"id":9007199254740993`) {
		t.Fatalf("stored id rewritten after recompute: %s", raw)
	}
}

func TestMovieIDFromKey(t *testing.T) {
	if id, err := movieIDFromKey(movieKey(42)); err != nil || id != 42 {
		t.Fatalf("movieIDFromKey = %d, %v; want 42", id, err)
	}
	for _, key := range [][]byte{[]byte("user:x"), []byte("movie:abc"), movieKey(0)} {
		if _, err := movieIDFromKey(key); err == nil {
			t.Fatalf("movieIDFromKey(%q) should fail", key)
		}
	}
}

func TestStore_ListReviewsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, st, "u@example.com")
	movie := mustCreateMovie(t, st, 0, "Ordered")
	other := mustCreateMovie(t, st, 0, "Other")

	for _, v := range []int{1, 2, 3} {
		mustReview(t, st, movie.ID, "u@example.com", v)
	}
	mustReview(t, st, other.ID, "u@example.com", 5)

	reviews, err := st.ListReviews(ctx, movie.ID)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("len = %d, want 3", len(reviews))
	}
	for i, want := range []int{3, 2, 1} {
		if reviews[i].Rating != want {
			t.Fatalf("reviews[%d].Rating = %d, want %d", i, reviews[i].Rating, want)
		}
	}
	if !reviews[0].Timestamp.After(reviews[1].Timestamp) {
		t.Fatalf("timestamps not descending: %v, %v", reviews[0].Timestamp, reviews[1].Timestamp)
	}

	empty, err := st.ListReviews(ctx, 12345)
	if err != nil {
		t.Fatalf("ListReviews unknown: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestStore_CreateReviewRejectsUnknownReferences(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, st, "u@example.com")
	movie := mustCreateMovie(t, st, 0, "Referenced")

	cases := []struct {
		name   string
		params domain.NewReview
		want   error
	}{
		{"unknown movie", domain.NewReview{MovieID: 999, UserEmail: "u@example.com", Rating: 4, Comment: "c", Sentiment: domain.SentimentNeutral}, domain.ErrNotFound},
		{"unknown user", domain.NewReview{MovieID: movie.ID, UserEmail: "ghost@example.com", Rating: 4, Comment: "c", Sentiment: domain.SentimentNeutral}, domain.ErrNotFound},
		{"rating out of range", domain.NewReview{MovieID: movie.ID, UserEmail: "u@example.com", Rating: 6, Comment: "c", Sentiment: domain.SentimentNeutral}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := st.CreateReview(ctx, tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	got, _ := st.GetMovie(ctx, movie.ID)
	if got.TotalReviews != 0 {
		t.Fatalf("failed writes changed stats: %+v", got)
	}
}

func TestStore_ConcurrentReviews(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	movie := mustCreateMovie(t, st, 0, "Busy")
	const workers = 10
	for i := 0; i < workers; i++ {
		mustCreateUser(t, st, fmt.Sprintf("user-%d@example.com", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.CreateReview(ctx, domain.NewReview{
				MovieID:   movie.ID,
				UserEmail: fmt.Sprintf("user-%d@example.com", i),
				Rating:    1 + i%5,
				Comment:   "parallel",
				Sentiment: domain.SentimentNeutral,
			})
			if err != nil {
				t.Errorf("review %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := st.GetMovie(ctx, movie.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.TotalReviews != workers || got.AvgRating != 3 {
		t.Fatalf("stats = %v/%d, want 3/%d", got.AvgRating, got.TotalReviews, workers)
	}
	reviews, _ := st.ListReviews(ctx, movie.ID)
	if len(reviews) != workers {
		t.Fatalf("stored reviews = %d, want %d", len(reviews), workers)
	}
}

func TestStore_DeleteMovieCascades(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, st, "u@example.com")
	doomed := mustCreateMovie(t, st, 0, "Doomed")
	kept := mustCreateMovie(t, st, 0, "Kept")
	mustReview(t, st, doomed.ID, "u@example.com", 4)
	mustReview(t, st, doomed.ID, "u@example.com", 2)
	mustReview(t, st, kept.ID, "u@example.com", 5)

	removed, err := st.DeleteMovie(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := st.GetMovie(ctx, doomed.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("movie still present: %v", err)
	}
	if _, err := st.DeleteMovie(ctx, doomed.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}

	ratings, err := st.ListRatings(ctx)
	if err != nil {
		t.Fatalf("ListRatings: %v", err)
	}
	if len(ratings) != 1 || ratings[0] != 5 {
		t.Fatalf("ratings = %v, want [5]", ratings)
	}
	movies, _ := st.ListMovies(ctx)
	if len(movies) != 1 || movies[0].ID != kept.ID {
		t.Fatalf("movies = %+v", movies)
	}
}

func TestStore_ReopenFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := Open(Options{Dir: dir, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustCreateUser(t, st, "u@example.com")
	first := mustCreateMovie(t, st, 0, "Persisted")
	mustReview(t, st, first.ID, "u@example.com", 4)
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = Open(Options{Dir: dir, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.GetMovie(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetMovie after reopen: %v", err)
	}
	if got.AvgRating != 4 || got.TotalReviews != 1 {
		t.Fatalf("stats after reopen = %v/%d", got.AvgRating, got.TotalReviews)
	}
	second := mustCreateMovie(t, st, 0, "After reopen")
	if second.ID <= first.ID {
		t.Fatalf("sequence reused id %d (first %d)", second.ID, first.ID)
	}
}

func TestStore_HealthCheck(t *testing.T) {
	st, err := Open(Options{InMemory: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if st.Name() != "badger" {
		t.Fatalf("Name = %q", st.Name())
	}
	_ = st.Close()
	if err := st.HealthCheck(context.Background()); err == nil {
		t.Fatalf("expected error after close")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	live := newTestStore(t)
	if _, err := live.ListMovies(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpen_RequiresDirectory(t *testing.T) {
	if _, err := Open(Options{Logger: zerolog.Nop()}); err == nil {
		t.Fatalf("expected error without directory")
	}
}

func BenchmarkStoreCreateReview(b *testing.B) {
	st := newTestStore(b)
	mustCreateUser(b, st, "bench@example.com")
	movie := mustCreateMovie(b, st, 0, "Bench")
	for i := 0; i < b.N; i++ {
		_, err := st.CreateReview(context.Background(), domain.NewReview{
			MovieID: movie.ID, UserEmail: "bench@example.com", Rating: 1 + i%5, Comment: "bench", Sentiment: domain.SentimentNeutral,
		})
		if err != nil {
			b.Fatalf("create review: %v", err)
		}
	}
}
