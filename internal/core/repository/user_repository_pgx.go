// Package repository provides pgx-backed implementations of the domain
// data-access contracts.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/minhdang/passport/internal/core/domain"
)

// DB is the subset of pgxpool.Pool used by the repository. It is satisfied
// by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxUserRepository implements domain.UserRepository on PostgreSQL.
type PgxUserRepository struct {
	db DB
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db DB) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

// Create inserts a new user and returns it with the generated ID.
// The UNIQUE constraint on users.email makes the uniqueness check atomic;
// a unique violation is reported as domain.ErrDuplicateEmail.
func (r *PgxUserRepository) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	query := `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query, name, email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	return &domain.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}, nil
}

// FindByEmail returns the user matching the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash FROM users WHERE email = $1`

	var u domain.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

var _ domain.UserRepository = (*PgxUserRepository)(nil)
