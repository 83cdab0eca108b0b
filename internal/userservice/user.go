package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/sushihentaime/inkpost/internal/common"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	args := []any{
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case common.IsUniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}

// getUserByEmail expects email to be normalized (trimmed, lower case) already.
func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, password, created_at, updated_at
		FROM users
		WHERE email = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password.hash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// findIDsByName returns the ids of users whose first or last name contains fragment, ignoring case.
func (m *DBModel) findIDsByName(ctx context.Context, fragment string) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM users
		WHERE first_name ILIKE $1 OR last_name ILIKE $1`

	rows, err := m.db.QueryContext(ctx, query, common.ContainsPattern(fragment))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
