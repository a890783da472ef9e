package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

// UsersRepository provides persistence helpers for users.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `email, name, role, password_hash, salt, created_at`

// Create inserts a user. A duplicate email is rejected by the primary key, so
// concurrent registrations of one address yield exactly one success.
func (r *UsersRepository) Create(ctx context.Context, params domain.NewUser) (domain.User, error) {
	const query = `
        INSERT INTO users (email, password_hash, salt, name, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, params.Email, params.PasswordHash, params.Salt, params.Name, string(params.Role))
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapError("create user", err)
	}
	return user, nil
}

// Get fetches a user by email.
func (r *UsersRepository) Get(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return domain.User{}, mapError("get user", err)
	}
	return user, nil
}

// List returns every user, newest first.
func (r *UsersRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, email ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list users", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(&user.Email, &user.Name, &role, &user.PasswordHash, &user.Salt, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}
