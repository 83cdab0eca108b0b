package blogservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/inkpost/internal/common"
)

type State string

const (
	StateDraft     State = "draft"
	StatePublished State = "published"
)

// Author is the denormalized view of a blog's owner returned with every blog.
type Author struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

type Blog struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	// Body is stored in Markdown format.
	Body        string    `json:"body"`
	AuthorID    uuid.UUID `json:"author_id"`
	Author      *Author   `json:"author,omitempty"`
	State       State     `json:"state"`
	ReadCount   int       `json:"read_count"`
	ReadingTime int       `json:"reading_time"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"-"`
}

// Page is the envelope returned by every listing operation.
type Page struct {
	Blogs       []Blog `json:"blogs"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	TotalBlogs  int    `json:"totalBlogs"`
}

type CreateBlogRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Body        string `json:"body"`
	// Tags is a comma separated list.
	Tags string `json:"tags"`
}

// UpdateBlogRequest is a partial update. Absent fields keep their value.
type UpdateBlogRequest struct {
	Title       common.Optional[string] `json:"title"`
	Description common.Optional[string] `json:"description"`
	Body        common.Optional[string] `json:"body"`
	Tags        common.Optional[string] `json:"tags"`
	State       common.Optional[string] `json:"state"`
}

// SearchQuery holds the public listing parameters. Zero values select the defaults.
type SearchQuery struct {
	Title  string
	Tags   string
	Author string
	Sort   string
	Order  string
	Page   int
	Limit  int
}

type OwnedQuery struct {
	State string
	Page  int
	Limit int
}

// AuthorFinder resolves an author name fragment to user ids.
type AuthorFinder interface {
	FindAuthorIDs(ctx context.Context, fragment string) ([]uuid.UUID, error)
}

type blogStore interface {
	insert(ctx context.Context, blog *Blog) error
	getByID(ctx context.Context, id uuid.UUID) (*Blog, error)
	titleExists(ctx context.Context, title string) (bool, error)
	update(ctx context.Context, blog *Blog) error
	delete(ctx context.Context, id uuid.UUID) error
	incrementReadCount(ctx context.Context, id uuid.UUID) (*Blog, error)
	count(ctx context.Context, f filter) (int, error)
	list(ctx context.Context, f filter, s sortOrder, limit, offset int) ([]Blog, error)
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m       blogStore
	authors AuthorFinder
}
