// Package kvstore is the key-value storage backend. Users, movies and reviews
// are schemaless JSON documents in BadgerDB, grouped by key prefix.
package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/cinema-pulse/internal/logging"
)

// Key prefixes for the three collections.
const (
	userPrefix     = "user:"
	moviePrefix    = "movie:"
	feedbackPrefix = "feedback:"
	movieSeqKey    = "seq:movie"
)

const (
	defaultMaxRetries = 16
	movieSeqBandwidth = 100
)

// Options controls how the Badger database is opened.
type Options struct {
	Dir        string
	InMemory   bool
	MaxRetries int
	Logger     zerolog.Logger
}

// Store implements the persistence backend on top of BadgerDB.
type Store struct {
	db      *badger.DB
	seq     *badger.Sequence
	logger  zerolog.Logger
	retries int
}

// Open opens (or creates) the database described by opts.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger.With().Str("component", "kvstore").Logger()

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, errors.New("kvstore: directory is required")
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts = bopts.WithLogger(logging.NewBadgerLogger(opts.Logger))

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	seq, err := db.GetSequence([]byte(movieSeqKey), movieSeqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("movie sequence: %w", err)
	}

	retries := opts.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	logger.Info().Str("dir", opts.Dir).Bool("in_memory", opts.InMemory).Msg("badger opened")
	return &Store{db: db, seq: seq, logger: logger, retries: retries}, nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.seq.Release(); err != nil {
		s.logger.Warn().Err(err).Msg("release movie sequence")
	}
	return s.db.Close()
}

// Name identifies the backend in logs and metrics.
func (s *Store) Name() string { return "badger" }

// HealthCheck reports whether the database is open.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil || s.db.IsClosed() {
		return errors.New("kvstore: database closed")
	}
	return nil
}

// update runs fn in a read-write transaction, re-running it when Badger
// reports a conflict with a concurrently committed transaction.
func (s *Store) update(ctx context.Context, op string, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= s.retries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug().Str("op", op).Int("attempt", attempt).Msg("transaction conflict, retrying")
		time.Sleep(time.Duration(attempt) * time.Millisecond)
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", op, s.retries, err)
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func userKey(email string) []byte {
	return []byte(userPrefix + email)
}

func movieKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", moviePrefix, id))
}

// movieIDFromKey recovers the identifier encoded in a movie key. The key,
// not the document body, is the movie's identity.
func movieIDFromKey(key []byte) (int64, error) {
	raw, ok := bytes.CutPrefix(key, []byte(moviePrefix))
	if !ok {
		return 0, fmt.Errorf("not a movie key: %q", key)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("malformed movie key %q", key)
	}
	return id, nil
}

func partitionPrefix(movieID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:", feedbackPrefix, movieID))
}

func reviewKey(movieID int64, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", feedbackPrefix, movieID, ts.UnixNano()))
}

// exists reports whether key is present in txn's snapshot. The read is
// tracked for conflict detection.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// scan calls fn with the decoded document of every item under prefix.
func scan(txn *badger.Txn, prefix []byte, reverse bool, fn func(key []byte, doc document) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = reverse
	it := txn.NewIterator(opts)
	defer it.Close()

	start := prefix
	if reverse {
		start = append(append([]byte{}, prefix...), 0xFF)
	}
	for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
		var doc document
		err := it.Item().Value(func(val []byte) error {
			var err error
			doc, err = decodeDocument(val)
			return err
		})
		if err != nil {
			return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		if err := fn(it.Item().Key(), doc); err != nil {
			return err
		}
	}
	return nil
}
