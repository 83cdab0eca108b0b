package blogservice

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory blogStore used by the service tests.
type memStore struct {
	mu         sync.Mutex
	blogs      map[uuid.UUID]Blog
	clock      time.Time
	countCalls int
	listCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		blogs: make(map[uuid.UUID]Blog),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *memStore) insert(_ context.Context, blog *Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.blogs {
		if b.Title == blog.Title {
			return ErrDuplicateTitle
		}
	}

	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}
	blog.CreatedAt = s.tick()
	blog.UpdatedAt = blog.CreatedAt
	blog.Version = 1
	blog.Author = &Author{ID: blog.AuthorID}
	s.blogs[blog.ID] = *blog

	return nil
}

func (s *memStore) getByID(_ context.Context, id uuid.UUID) (*Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blogs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return &b, nil
}

func (s *memStore) titleExists(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.blogs {
		if b.Title == title {
			return true, nil
		}
	}

	return false, nil
}

func (s *memStore) update(_ context.Context, blog *Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.blogs[blog.ID]
	if !ok || current.Version != blog.Version {
		return ErrEditConflict
	}

	for id, b := range s.blogs {
		if id != blog.ID && b.Title == blog.Title {
			return ErrDuplicateTitle
		}
	}

	blog.Version++
	blog.UpdatedAt = s.tick()
	s.blogs[blog.ID] = *blog

	return nil
}

func (s *memStore) delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blogs[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.blogs, id)

	return nil
}

func (s *memStore) incrementReadCount(_ context.Context, id uuid.UUID) (*Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blogs[id]
	if !ok || b.State != StatePublished {
		return nil, ErrRecordNotFound
	}
	b.ReadCount++
	s.blogs[id] = b

	return &b, nil
}

func (s *memStore) matching(f filter) []Blog {
	var out []Blog
	for _, b := range s.blogs {
		if f.state != "" && b.State != f.state {
			continue
		}
		if f.owner != uuid.Nil && b.AuthorID != f.owner {
			continue
		}
		if f.title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.title)) {
			continue
		}
		if len(f.tags) > 0 && !slices.ContainsFunc(b.Tags, func(tag string) bool { return slices.Contains(f.tags, tag) }) {
			continue
		}
		if len(f.authors) > 0 && !slices.Contains(f.authors, b.AuthorID) {
			continue
		}
		out = append(out, b)
	}

	return out
}

func (s *memStore) count(_ context.Context, f filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countCalls++
	return len(s.matching(f)), nil
}

func (s *memStore) list(_ context.Context, f filter, order sortOrder, limit, offset int) ([]Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	blogs := s.matching(f)

	slices.SortFunc(blogs, func(a, b Blog) int {
		var c int
		switch order.field {
		case SortReadCount:
			c = cmp.Compare(a.ReadCount, b.ReadCount)
		case SortReadingTime:
			c = cmp.Compare(a.ReadingTime, b.ReadingTime)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if order.desc {
			return -c
		}
		return c
	})

	if offset >= len(blogs) {
		return []Blog{}, nil
	}

	return blogs[offset:min(offset+limit, len(blogs))], nil
}

// fakeAuthors resolves name fragments against a fixed set of names.
type fakeAuthors struct {
	names map[uuid.UUID]string
	calls int
}

func (f *fakeAuthors) FindAuthorIDs(_ context.Context, fragment string) ([]uuid.UUID, error) {
	f.calls++

	var ids []uuid.UUID
	for id, name := range f.names {
		if strings.Contains(strings.ToLower(name), strings.ToLower(fragment)) {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
