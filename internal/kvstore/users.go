package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// CreateUser stores a user unless the email is taken. Two concurrent writers
// conflict on the key; the retried loser sees it and gets ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, params domain.NewUser) (domain.User, error) {
	user := domain.User{
		Email:        params.Email,
		Name:         params.Name,
		Role:         params.Role,
		PasswordHash: params.PasswordHash,
		Salt:         params.Salt,
		CreatedAt:    time.Now().UTC(),
	}
	payload, err := encodeDocument(userDocument(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("encode user: %w", err)
	}

	key := userKey(params.Email)
	err = s.update(ctx, "create user", func(txn *badger.Txn) error {
		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("user %s: %w", params.Email, domain.ErrDuplicate)
		}
		return txn.Set(key, payload)
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUser fetches a user by email.
func (s *Store) GetUser(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := s.view(ctx, func(txn *badger.Txn) error {
		doc, err := getDocument(txn, userKey(email))
		if err != nil {
			return err
		}
		user, err = userFromDocument(doc)
		return err
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, []byte(userPrefix), false, func(_ []byte, doc document) error {
			user, err := userFromDocument(doc)
			if err != nil {
				return err
			}
			users = append(users, user)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

// getDocument reads and decodes a single item.
func getDocument(txn *badger.Txn, key []byte) (document, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = decodeDocument(val)
		return err
	})
	return doc, err
}

func userDocument(u domain.User) document {
	return document{
		"email":         u.Email,
		"name":          u.Name,
		"role":          string(u.Role),
		"password_hash": u.PasswordHash,
		"salt":          u.Salt,
		"created_at":    formatTime(u.CreatedAt),
	}
}

func userFromDocument(doc document) (domain.User, error) {
	createdAt, err := doc.timeField("created_at")
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		Email:        doc.stringField("email"),
		Name:         doc.stringField("name"),
		Role:         domain.Role(doc.stringField("role")),
		PasswordHash: doc.stringField("password_hash"),
		Salt:         doc.stringField("salt"),
		CreatedAt:    createdAt,
	}, nil
}
