package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sushihentaime/inkpost/internal/common"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserForeignKey = errors.New("author does not exist")
	ErrDuplicateTitle = errors.New("a blog with this title already exists")
	ErrEditConflict   = errors.New("edit conflict")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// blogColumns selects a blog joined with its author. Queries using it alias blogs as b and users as u.
const blogColumns = `b.id, b.title, b.description, b.body, b.author_id, b.state, b.read_count, b.reading_time, b.tags,
		b.created_at, b.updated_at, b.version, u.first_name, u.last_name, u.email`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (*Blog, error) {
	var (
		blog   Blog
		author Author
	)

	err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Description,
		&blog.Body,
		&blog.AuthorID,
		&blog.State,
		&blog.ReadCount,
		&blog.ReadingTime,
		pq.Array(&blog.Tags),
		&blog.CreatedAt,
		&blog.UpdatedAt,
		&blog.Version,
		&author.FirstName,
		&author.LastName,
		&author.Email,
	)
	if err != nil {
		return nil, err
	}

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	author.ID = blog.AuthorID
	blog.Author = &author

	return &blog, nil
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (id, title, description, body, author_id, state, reading_time, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING read_count, created_at, updated_at, version`

	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	args := []any{
		blog.ID,
		blog.Title,
		blog.Description,
		blog.Body,
		blog.AuthorID,
		string(blog.State),
		blog.ReadingTime,
		pq.Array(blog.Tags),
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ReadCount, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case common.IsUniqueViolation(err, "blogs_title_key"):
			return ErrDuplicateTitle
		case ForeignKeyError(err, "blogs_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getByID returns a blog in any state, joined with its author.
func (m *BlogModel) getByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN users u ON b.author_id = u.id
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) titleExists(ctx context.Context, title string) (bool, error) {
	var exists bool

	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blogs WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// update writes every mutable field. It fails with ErrEditConflict when the
// blog changed or disappeared since it was read.
func (m *BlogModel) update(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, description = $2, body = $3, state = $4, reading_time = $5, tags = $6,
			updated_at = now(), version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING updated_at, version`

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	args := []any{
		blog.Title,
		blog.Description,
		blog.Body,
		string(blog.State),
		blog.ReadingTime,
		pq.Array(blog.Tags),
		blog.ID,
		blog.Version,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		case common.IsUniqueViolation(err, "blogs_title_key"):
			return ErrDuplicateTitle
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) delete(ctx context.Context, id uuid.UUID) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// incrementReadCount bumps the read count of a published blog in a single
// statement and returns the blog as stored after the increment.
func (m *BlogModel) incrementReadCount(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `
		WITH b AS (
			UPDATE blogs
			SET read_count = read_count + 1
			WHERE id = $1 AND state = $2
			RETURNING *
		)
		SELECT ` + blogColumns + `
		FROM b
		JOIN users u ON b.author_id = u.id`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id, string(StatePublished)))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) count(ctx context.Context, f filter) (int, error) {
	where, args := f.where()

	var total int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs b WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count blogs: %w", err)
	}

	return total, nil
}

func (m *BlogModel) list(ctx context.Context, f filter, s sortOrder, limit, offset int) ([]Blog, error) {
	where, args := f.where()
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON b.author_id = u.id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, blogColumns, where, s.orderBy(), len(args)-1, len(args))

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
