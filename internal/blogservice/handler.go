package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sushihentaime/inkpost/internal/common"
)

var ErrForbidden = errors.New("you are not the owner of this blog")

func NewBlogService(db *sql.DB, authors AuthorFinder) *BlogService {
	return &BlogService{m: newBlogModel(db), authors: authors}
}

// CreateBlog stores a new draft owned by authorID.
func (s *BlogService) CreateBlog(ctx context.Context, authorID uuid.UUID, req CreateBlogRequest) (*Blog, error) {
	blog := Blog{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Body:        sanitizeMarkdown(req.Body),
		AuthorID:    authorID,
		State:       StateDraft,
		Tags:        parseTags(req.Tags),
	}

	v := common.NewValidator()
	validateTitle(v, blog.Title)
	validateBody(v, blog.Body)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.m.titleExists(ctx, blog.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	blog.ReadingTime = ReadingTime(blog.Body)

	if err := s.m.insert(ctx, &blog); err != nil {
		return nil, err
	}

	return &blog, nil
}

// UpdateBlog applies a partial update. Only the owner may update a blog.
func (s *BlogService) UpdateBlog(ctx context.Context, requesterID, blogID uuid.UUID, req UpdateBlogRequest) (*Blog, error) {
	blog, err := s.ownedBlog(ctx, requesterID, blogID)
	if err != nil {
		return nil, err
	}

	v := common.NewValidator()

	if req.Title.Present {
		title := strings.TrimSpace(req.Title.Value)
		validateTitle(v, title)
		if v.Valid() && title != blog.Title {
			exists, err := s.m.titleExists(ctx, title)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrDuplicateTitle
			}
		}
		blog.Title = title
	}

	if req.Body.Present {
		body := sanitizeMarkdown(req.Body.Value)
		validateBody(v, body)
		if body != blog.Body {
			blog.Body = body
			blog.ReadingTime = ReadingTime(body)
		}
	}

	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.Description.Present {
		blog.Description = strings.TrimSpace(req.Description.Value)
	}

	if req.Tags.Present {
		blog.Tags = parseTags(req.Tags.Value)
	}

	if req.State.IsSet() && validState(req.State.Value) {
		blog.State = State(req.State.Value)
	}

	if err := s.m.update(ctx, blog); err != nil {
		return nil, err
	}

	return blog, nil
}

// DeleteBlog removes a blog permanently. Only the owner may delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, requesterID, blogID uuid.UUID) error {
	if _, err := s.ownedBlog(ctx, requesterID, blogID); err != nil {
		return err
	}

	return s.m.delete(ctx, blogID)
}

// GetOwnedBlogs lists the requester's blogs in any state, newest first.
// An unknown state filter is ignored.
func (s *BlogService) GetOwnedBlogs(ctx context.Context, requesterID uuid.UUID, q OwnedQuery) (*Page, error) {
	f := filter{owner: requesterID}
	if validState(q.State) {
		f.state = State(q.State)
	}

	return s.page(ctx, f, newestFirst, q.Page, q.Limit)
}

// GetPublishedBlogs searches the published blogs of every author.
func (s *BlogService) GetPublishedBlogs(ctx context.Context, q SearchQuery) (*Page, error) {
	f := filter{
		state: StatePublished,
		title: strings.TrimSpace(q.Title),
		tags:  parseTags(q.Tags),
	}

	if author := strings.TrimSpace(q.Author); author != "" {
		ids, err := s.authors.FindAuthorIDs(ctx, author)
		if err != nil {
			return nil, err
		}

		if len(ids) == 0 {
			page, _ := normalizePage(q.Page, q.Limit)
			return &Page{Blogs: []Blog{}, CurrentPage: page}, nil
		}

		f.authors = ids
	}

	return s.page(ctx, f, resolveSort(q.Sort, q.Order), q.Page, q.Limit)
}

// GetPublishedBlog returns a published blog and counts the read.
func (s *BlogService) GetPublishedBlog(ctx context.Context, id uuid.UUID) (*Blog, error) {
	return s.m.incrementReadCount(ctx, id)
}

func (s *BlogService) ownedBlog(ctx context.Context, requesterID, blogID uuid.UUID) (*Blog, error) {
	blog, err := s.m.getByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if blog.AuthorID != requesterID {
		return nil, ErrForbidden
	}

	return blog, nil
}

func (s *BlogService) page(ctx context.Context, f filter, order sortOrder, page, limit int) (*Page, error) {
	page, limit = normalizePage(page, limit)

	total, err := s.m.count(ctx, f)
	if err != nil {
		return nil, err
	}

	blogs, err := s.m.list(ctx, f, order, limit, offset(page, limit))
	if err != nil {
		return nil, err
	}

	return &Page{
		Blogs:       blogs,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
		TotalBlogs:  total,
	}, nil
}
