package blogservice

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sushihentaime/inkpost/internal/common"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

const (
	SortCreatedAt   = "createdAt"
	SortReadCount   = "read_count"
	SortReadingTime = "reading_time"
)

var sortColumns = map[string]string{
	SortCreatedAt:   "b.created_at",
	SortReadCount:   "b.read_count",
	SortReadingTime: "b.reading_time",
}

// filter is a conjunction of conditions over blogs. Zero fields are not applied.
type filter struct {
	state   State
	owner   uuid.UUID
	title   string
	tags    []string
	authors []uuid.UUID
}

type sortOrder struct {
	field string
	desc  bool
}

var newestFirst = sortOrder{field: SortCreatedAt, desc: true}

// resolveSort maps the public sort parameters to an order. An omitted field
// sorts by creation time in the requested direction. An unknown field falls
// back to newest first whatever the requested direction.
func resolveSort(field, order string) sortOrder {
	if field == "" {
		field = SortCreatedAt
	}

	if _, ok := sortColumns[field]; !ok {
		return newestFirst
	}

	return sortOrder{field: field, desc: order != "asc"}
}

// normalizePage applies the paging defaults. page is bounded so that the
// offset of the page always fits in an int.
func normalizePage(page, limit int) (int, int) {
	if limit < 1 {
		limit = DefaultPageSize
	}

	if page < 1 {
		page = DefaultPage
	}
	page = min(page, math.MaxInt/limit)

	return page, limit
}

func offset(page, limit int) int {
	return (page - 1) * limit
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

// parseTags splits a comma separated list, trimming each entry and dropping empty ones.
func parseTags(csv string) []string {
	tags := []string{}
	for _, tag := range strings.Split(csv, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// where renders f as a SQL condition over the blogs table aliased b.
func (f filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.state != "" {
		add("b.state = $%d", string(f.state))
	}

	if f.owner != uuid.Nil {
		add("b.author_id = $%d", f.owner)
	}

	if f.title != "" {
		add("b.title ILIKE $%d", common.ContainsPattern(f.title))
	}

	if len(f.tags) > 0 {
		add("b.tags && $%d::text[]", pq.StringArray(f.tags))
	}

	if len(f.authors) > 0 {
		ids := make([]string, len(f.authors))
		for i, id := range f.authors {
			ids[i] = id.String()
		}
		add("b.author_id = ANY($%d::uuid[])", pq.StringArray(ids))
	}

	if len(conds) == 0 {
		return "TRUE", args
	}

	return strings.Join(conds, " AND "), args
}

// orderBy breaks ties on the id so that pages do not overlap.
func (s sortOrder) orderBy() string {
	column, ok := sortColumns[s.field]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}

	direction := "ASC"
	if s.desc {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s, b.id %s", column, direction, direction)
}
