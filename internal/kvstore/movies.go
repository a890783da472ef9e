package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/rating"
)

// CreateMovie stores a movie. A positive params.ID is used as given and must
// be free; zero draws the next free identifier from the movie sequence.
func (s *Store) CreateMovie(ctx context.Context, params domain.NewMovie) (domain.Movie, error) {
	params = params.Normalize()
	if params.ID < 0 {
		return domain.Movie{}, fmt.Errorf("create movie: %w: negative id", domain.ErrInvalidInput)
	}

	movie := domain.Movie{
		Title:       params.Title,
		Description: params.Description,
		PosterURL:   params.PosterURL,
		Genre:       params.Genre,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.update(ctx, "create movie", func(txn *badger.Txn) error {
		id := params.ID
		if id == 0 {
			var err error
			if id, err = s.nextMovieID(txn); err != nil {
				return err
			}
		} else {
			found, err := exists(txn, movieKey(id))
			if err != nil {
				return err
			}
			if found {
				return fmt.Errorf("movie %d: %w", id, domain.ErrDuplicate)
			}
		}
		movie.ID = id

		payload, err := encodeDocument(movieDocument(movie))
		if err != nil {
			return fmt.Errorf("encode movie: %w", err)
		}
		return txn.Set(movieKey(id), payload)
	})
	if err != nil {
		return domain.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	return movie, nil
}

// nextMovieID draws identifiers until one is not taken in txn's snapshot.
// Sequence values start at zero, identifiers at one.
func (s *Store) nextMovieID(txn *badger.Txn) (int64, error) {
	for {
		n, err := s.seq.Next()
		if err != nil {
			return 0, fmt.Errorf("movie sequence: %w", err)
		}
		id := int64(n) + 1
		found, err := exists(txn, movieKey(id))
		if err != nil {
			return 0, err
		}
		if !found {
			return id, nil
		}
	}
}

// GetMovie fetches a movie by identifier.
func (s *Store) GetMovie(ctx context.Context, id int64) (domain.Movie, error) {
	var movie domain.Movie
	err := s.view(ctx, func(txn *badger.Txn) error {
		doc, err := getDocument(txn, movieKey(id))
		if err != nil {
			return err
		}
		movie, err = movieFromDocument(id, doc)
		return err
	})
	if err != nil {
		return domain.Movie{}, fmt.Errorf("get movie: %w", err)
	}
	return movie, nil
}

// ListMovies returns every movie in key order. Callers apply their own
// ordering.
func (s *Store) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	movies := make([]domain.Movie, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, []byte(moviePrefix), false, func(key []byte, doc document) error {
			id, err := movieIDFromKey(key)
			if err != nil {
				return err
			}
			movie, err := movieFromDocument(id, doc)
			if err != nil {
				return err
			}
			movies = append(movies, movie)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// DeleteMovie removes the movie and its review partition in one transaction
// and returns the number of reviews removed.
func (s *Store) DeleteMovie(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := s.update(ctx, "delete movie", func(txn *badger.Txn) error {
		removed = 0
		found, err := exists(txn, movieKey(id))
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}

		keys, err := partitionKeys(txn, id)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return txn.Delete(movieKey(id))
	})
	if err != nil {
		return 0, fmt.Errorf("delete movie: %w", err)
	}
	return removed, nil
}

// RecomputeMovieRating rewrites avg_rating and total_reviews from the
// movie's partition. A movie without reviews keeps its stored statistics.
func (s *Store) RecomputeMovieRating(ctx context.Context, id int64) error {
	err := s.update(ctx, "recompute rating", func(txn *badger.Txn) error {
		return recompute(txn, id)
	})
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	return nil
}

// recompute reads the movie item before the partition so any concurrent
// writer of either the movie or its statistics conflicts with txn.
func recompute(txn *badger.Txn, movieID int64) error {
	doc, err := getDocument(txn, movieKey(movieID))
	if err != nil {
		return err
	}

	ratings := make([]int, 0)
	err = scan(txn, partitionPrefix(movieID), false, func(_ []byte, review document) error {
		ratings = append(ratings, int(review.intField("rating")))
		return nil
	})
	if err != nil {
		return err
	}

	summary, ok := rating.Summarize(ratings)
	if !ok {
		return nil
	}

	doc["id"] = intNumber(movieID)
	doc["avg_rating"] = decimalNumber(summary.Average)
	doc["total_reviews"] = intNumber(summary.Count)
	payload, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode movie: %w", err)
	}
	return txn.Set(movieKey(movieID), payload)
}

func partitionKeys(txn *badger.Txn, movieID int64) ([][]byte, error) {
	prefix := partitionPrefix(movieID)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

func movieDocument(m domain.Movie) document {
	return document{
		"id":            intNumber(m.ID),
		"title":         m.Title,
		"description":   m.Description,
		"poster_url":    m.PosterURL,
		"genre":         m.Genre,
		"avg_rating":    decimalNumber(m.AvgRating),
		"total_reviews": intNumber(m.TotalReviews),
		"created_at":    formatTime(m.CreatedAt),
	}
}

func movieFromDocument(id int64, doc document) (domain.Movie, error) {
	createdAt, err := doc.timeField("created_at")
	if err != nil {
		return domain.Movie{}, err
	}
	return domain.Movie{
		ID:           id,
		Title:        doc.stringField("title"),
		Description:  doc.stringField("description"),
		PosterURL:    doc.stringField("poster_url"),
		Genre:        doc.stringField("genre"),
		AvgRating:    doc.floatField("avg_rating"),
		TotalReviews: doc.intField("total_reviews"),
		CreatedAt:    createdAt,
	}, nil
}
